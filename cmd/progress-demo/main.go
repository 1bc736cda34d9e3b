// Command progress-demo drives the full progress pipeline with synthetic
// parallel workers: a TrackAggregator merges the workers into one tree, a
// Pacer throttles the stream, and a fan-out feeds a zap line tracker, a
// StatsWindow and the Prometheus collector.
//
// Configuration is read from progress-demo.yaml in the working directory
// (or the path in PROGRESS_DEMO_CONFIG), with every key overridable via
// PROGRESS_DEMO_* environment variables.
package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/progress"
	"github.com/meigma/progress/metrics"
)

type config struct {
	Workers       int           `mapstructure:"workers"`
	ItemsPerTrack int           `mapstructure:"items_per_track"`
	ItemDelay     time.Duration `mapstructure:"item_delay"`
	Hz            int           `mapstructure:"hz"`
	StatsWindow   time.Duration `mapstructure:"stats_window"`
}

func loadConfig() (config, error) {
	v := viper.New()
	v.SetDefault("workers", 3)
	v.SetDefault("items_per_track", 40)
	v.SetDefault("item_delay", 75*time.Millisecond)
	v.SetDefault("hz", 10)
	v.SetDefault("stats_window", 30*time.Second)

	v.SetEnvPrefix("PROGRESS_DEMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("PROGRESS_DEMO_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("progress-demo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "progress-demo:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck // stderr sync failure is unactionable

	promReg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(promReg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	stats := progress.NewStatsWindow(progress.StatsWithWindow(cfg.StatsWindow))
	sink := progress.Fanout(
		lineTracker(log, stats),
		stats,
		collector.Observe("demo"),
	)

	reg := progress.NewRegistry(
		progress.RegistryWithTracker(sink),
		progress.RegistryWithPacing(cfg.Hz),
		progress.RegistryWithLogger(log),
	)
	defer reg.Close() //nolint:errcheck // Close never fails

	op, err := reg.Begin("demo")
	if err != nil {
		return err
	}
	defer op.Close() //nolint:errcheck // Close never fails

	base, err := progress.New("Processing items", int64(cfg.Workers))
	if err != nil {
		return err
	}
	agg := progress.NewTrackAggregator(op.Tracker(), base, cfg.Workers)

	var g errgroup.Group
	for i := range cfg.Workers {
		track := agg.StartTrack(i, fmt.Sprintf("worker %d", i))
		g.Go(func() error {
			defer track.Close()
			runWorker(track, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	agg.Close()

	log.Info("demo finished")
	return nil
}

// runWorker reports one synthetic sub-task stream through its track.
func runWorker(track *progress.Track, cfg config) {
	report := progress.Must(progress.New("crunching", int64(cfg.ItemsPerTrack)))
	track.Report(report)
	for range cfg.ItemsPerTrack {
		time.Sleep(jitter(cfg.ItemDelay))
		report = report.WithIncremented(1)
		track.Report(report)
	}
}

// jitter returns d spread randomly up to 2d, or zero for a non-positive
// d (item_delay: 0 means full speed).
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(d)
}

// lineTracker logs one line per delivered snapshot, decorating it with
// the current rate estimate when one is available.
func lineTracker(log *zap.Logger, stats *progress.StatsWindow) progress.Tracker {
	return progress.TrackerFunc(func(s progress.Snapshot) {
		fields := []zap.Field{
			zap.Int64("completed", s.Completed()),
			zap.Int64("expected_total", s.ExpectedTotal()),
		}
		if rate, ok := stats.Rate(); ok {
			fields = append(fields, zap.Float64("rate_per_sec", rate))
		}
		if eta, ok := stats.ETA(); ok {
			fields = append(fields, zap.Duration("eta", eta))
		}
		msg := s.Message()
		if msg == "" {
			msg = "working"
		}
		log.Info(msg, fields...)
	})
}
