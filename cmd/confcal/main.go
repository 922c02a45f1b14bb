package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"confcal/internal/capture"
	"confcal/internal/config"
	"confcal/internal/fetch"
	appLog "confcal/internal/log"
	"confcal/internal/pipeline"
)

// flagConfig holds CLI flag values; they override the config file.
type flagConfig struct {
	configPath string
	output     string
	logLevel   string
	refresh    bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	if flags.output != "" {
		conf.Output = flags.output
	}
	if flags.logLevel != "" {
		conf.LogLevel = flags.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Info("confcal starting", "version", "0.1.0")
	appLog.Info("effective config",
		"schedule_url", conf.ScheduleURL,
		"speakers_url", conf.SpeakersURL,
		"cache_dir", conf.CacheDir,
		"output", conf.Output,
		"fetch_mode", conf.FetchMode,
		"timezone", conf.Timezone,
		"days", len(conf.Days),
		"aliases", len(conf.Aliases),
		"refresh", flags.refresh,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf, flags.refresh); err != nil {
		appLog.Error("conversion failed", err)
		stop()
		os.Exit(1)
	}
	appLog.Info("confcal exiting")
}

func run(ctx context.Context, conf *config.Config, refresh bool) error {
	loc, err := conf.Location()
	if err != nil {
		return err
	}
	days, err := conf.DayDates()
	if err != nil {
		return err
	}

	fetchOpts := fetch.Options{CacheDir: conf.CacheDir, Refresh: refresh}
	if conf.FetchMode == config.FetchBrowser {
		fetchOpts.Renderer = &capture.Browser{}
	}
	src := fetch.New(fetchOpts)

	res, err := pipeline.Run(ctx, src, conf.Output, pipeline.Options{
		Schedule:     fetch.Document{ID: "schedule", URL: conf.ScheduleURL},
		Speakers:     fetch.Document{ID: "speakers", URL: conf.SpeakersURL},
		Days:         days,
		Location:     loc,
		Aliases:      conf.Aliases,
		LastSlotSpan: conf.LastSlotSpan(),
		ProductID:    conf.ProductID,
	})
	if err != nil {
		return err
	}

	appLog.Info("conversion completed",
		"talks", res.Talks,
		"linked", res.Linked,
		"events", len(res.Events),
		"missing_details", len(res.MissingDetails),
		"output", conf.Output,
	)
	return nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "confcal.yaml", "Path to config file (created with defaults if missing)")
	flag.StringVar(&cfg.output, "output", "", "Calendar output path (overrides config if set)")
	flag.StringVar(&cfg.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config if set)")
	flag.BoolVar(&cfg.refresh, "refresh", false, "Revalidate cached pages with the origin")

	flag.Parse()

	return cfg
}
