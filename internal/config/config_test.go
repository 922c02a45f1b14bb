package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "confcal.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// The written file loads back to the same values.
	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadPartialFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "confcal.yaml")
	yml := `
schedule_url: https://example.org/schedule.html
fetch_mode: carrier-pigeon
days:
  Monday: "2024-08-05"
aliases: {}
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/schedule.html", cfg.ScheduleURL)
	assert.Equal(t, DefaultConfig().SpeakersURL, cfg.SpeakersURL)
	assert.Equal(t, FetchHTTP, cfg.FetchMode)
	assert.Equal(t, 60, cfg.LastSlotMinutes)
	assert.Equal(t, time.Hour, cfg.LastSlotSpan())
	assert.Empty(t, cfg.Aliases, "explicit empty alias table is kept")

	days, err := cfg.DayDates()
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, time.Date(2024, 8, 5, 0, 0, 0, 0, time.UTC), days["Monday"])
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad timezone": "timezone: Mars/Olympus_Mons\n",
		"bad date":     "days:\n  Thursday: 08/06/2015\n",
		"bad yaml":     "days: [\n",
	}
	for name, yml := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "confcal.yaml")
			require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestDefaultLocation(t *testing.T) {
	loc, err := DefaultConfig().Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Los_Angeles", loc.String())
}

func TestEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
	assert.Error(t, Save("", DefaultConfig()))
	assert.Error(t, Save("x.yaml", nil))
}
