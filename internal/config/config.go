package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Fetch modes.
const (
	FetchHTTP    = "http"
	FetchBrowser = "browser"
)

// dateLayout is the format of the values in Config.Days.
const dateLayout = "2006-01-02"

// Config is the top-level application configuration.
type Config struct {
	// ScheduleURL and SpeakersURL are the two source pages.
	ScheduleURL string `yaml:"schedule_url" json:"schedule_url"`
	SpeakersURL string `yaml:"speakers_url" json:"speakers_url"`

	// CacheDir holds downloaded pages between runs.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// Output is the path of the generated .ics file.
	Output string `yaml:"output" json:"output"`

	// FetchMode selects how pages are retrieved:
	//   - "http" (default)
	//   - "browser" (headless Chromium, for script-built pages)
	FetchMode string `yaml:"fetch_mode" json:"fetch_mode"`

	// Timezone is the IANA zone of the venue (e.g. "America/Los_Angeles").
	Timezone string `yaml:"timezone" json:"timezone"`

	// ProductID is written as the calendar PRODID.
	ProductID string `yaml:"prodid" json:"prodid"`

	// Days maps the schedule page's day headings to dates (YYYY-MM-DD).
	Days map[string]string `yaml:"days" json:"days"`

	// Aliases maps speaker-page titles to the schedule page's spelling.
	Aliases map[string]string `yaml:"aliases" json:"aliases"`

	// LastSlotMinutes is the length of a talk no later slot bounds.
	LastSlotMinutes int `yaml:"last_slot_minutes" json:"last_slot_minutes"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns an in-memory default configuration for DEF CON 23.
func DefaultConfig() *Config {
	return &Config{
		ScheduleURL:     "https://www.defcon.org/html/defcon-23/dc-23-schedule.html",
		SpeakersURL:     "https://www.defcon.org/html/defcon-23/dc-23-speakers.html",
		CacheDir:        "./var/page-cache",
		Output:          "defcon23.ics",
		FetchMode:       FetchHTTP,
		Timezone:        "America/Los_Angeles",
		ProductID:       "-//DefCon 23 Schedule//defcon.org//",
		Days:            defaultDays(),
		Aliases:         defaultAliases(),
		LastSlotMinutes: 60,
		LogLevel:        "info",
	}
}

func defaultDays() map[string]string {
	return map[string]string{
		"Thursday": "2015-08-06",
		"Friday":   "2015-08-07",
		"Saturday": "2015-08-08",
		"Sunday":   "2015-08-09",
	}
}

// defaultAliases are the known differences between the DEF CON 23 speaker
// and schedule pages.
func defaultAliases() map[string]string {
	return map[string]string{
		"DEF CON 101: The Panel.": "DEF CON 101: The Panel",
		"Introduction to SDR and the Wireless Village": "Introduction to SDR and the Wireless Village",
		"Key-Logger, Video, Mouse — How To Turn Your KVM Into a Raging Key-logging Monster": "Key-Logger, Video, Mouse — How To Turn Your KVM Into a Raging Key-logging",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.ScheduleURL == "" {
		c.ScheduleURL = def.ScheduleURL
	}
	if c.SpeakersURL == "" {
		c.SpeakersURL = def.SpeakersURL
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.Output == "" {
		c.Output = def.Output
	}
	switch c.FetchMode {
	case FetchHTTP, FetchBrowser:
		// ok
	default:
		c.FetchMode = FetchHTTP
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.ProductID == "" {
		c.ProductID = def.ProductID
	}
	if len(c.Days) == 0 {
		c.Days = def.Days
	}
	// A nil alias table means "not configured"; an explicit empty one is kept.
	if c.Aliases == nil {
		c.Aliases = def.Aliases
	}
	if c.LastSlotMinutes <= 0 {
		c.LastSlotMinutes = def.LastSlotMinutes
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DayDates parses Days into dates.
func (c *Config) DayDates() (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(c.Days))
	for label, v := range c.Days {
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("config: day %q: %w", label, err)
		}
		out[label] = d
	}
	return out, nil
}

// LastSlotSpan returns LastSlotMinutes as a duration.
func (c *Config) LastSlotSpan() time.Duration {
	return time.Duration(c.LastSlotMinutes) * time.Minute
}

// Validate checks the values Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.DayDates(); err != nil {
		return err
	}
	return nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults and validate
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".confcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
