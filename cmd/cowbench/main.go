package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/cowkit-go/internal/bench"
	"github.com/yndnr/cowkit-go/internal/infra/buildinfo"
	"github.com/yndnr/cowkit-go/internal/infra/confloader"
	"github.com/yndnr/cowkit-go/internal/telemetry/logger"
	"github.com/yndnr/cowkit-go/internal/telemetry/metric"
)

func main() {
	app := newApp()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// appConfig is the full configuration tree resolved by confloader.
type appConfig struct {
	Bench bench.Config `koanf:"bench"`
	Log   struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"`
	} `koanf:"log"`
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "cowbench",
		Usage:   "copy-on-write map contention benchmark",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to YAML configuration file",
				EnvVars: []string{"COWKIT_CONFIG"},
			},
			&cli.DurationFlag{
				Name:    "duration",
				Aliases: []string{"d"},
				Usage:   "run duration",
			},
			&cli.IntFlag{
				Name:  "readers",
				Usage: "number of reader goroutines",
			},
			&cli.IntFlag{
				Name:  "writers",
				Usage: "number of writer goroutines",
			},
			&cli.IntFlag{
				Name:  "entries",
				Usage: "number of prefilled entries",
			},
			&cli.BoolFlag{
				Name:  "ordered",
				Usage: "use the insertion-order-preserving copy strategy",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "report format: table, json",
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "serve Prometheus metrics on this address during the run",
				EnvVars: []string{"COWKIT_METRICS_ADDR"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level: debug, info, warn, error",
				EnvVars: []string{"COWKIT_LOG_LEVEL"},
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	runner, err := bench.NewRunner(cfg.Bench, log)
	if err != nil {
		return err
	}

	// SIGINT/SIGTERM cancels the run; the report covers the elapsed part.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsServer := startMetrics(c.String("metrics-addr"), runner, log)
	if metricsServer != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	return report.Render(os.Stdout, cfg.Bench.Output)
}

// loadConfig resolves configuration with priority flags > env > file >
// defaults, mirroring the server-side loader convention.
func loadConfig(c *cli.Context) (*appConfig, error) {
	loader := confloader.NewLoader(confloader.WithConfigFile(c.String("config")))

	if err := loader.LoadMap(bench.Defaults()); err != nil {
		return nil, err
	}
	if err := loader.LoadMap(map[string]any{
		"log.level":  "info",
		"log.format": "text",
	}); err != nil {
		return nil, err
	}

	var cfg appConfig
	if err := loader.Load(&cfg); err != nil {
		return nil, err
	}

	// Explicit flags override everything.
	if c.IsSet("duration") {
		cfg.Bench.Duration = c.Duration("duration")
	}
	if c.IsSet("readers") {
		cfg.Bench.Readers = c.Int("readers")
	}
	if c.IsSet("writers") {
		cfg.Bench.Writers = c.Int("writers")
	}
	if c.IsSet("entries") {
		cfg.Bench.Entries = c.Int("entries")
	}
	if c.IsSet("ordered") {
		cfg.Bench.Ordered = c.Bool("ordered")
	}
	if c.IsSet("output") {
		cfg.Bench.Output = c.String("output")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}

	return &cfg, nil
}

// startMetrics registers the map collector and serves promhttp, or returns
// nil when no address is configured.
func startMetrics(addr string, runner *bench.Runner, log logger.Logger) *http.Server {
	if addr == "" {
		return nil
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(metric.NewCollector("cowbench", runner.Map()))

	mux := http.NewServeMux()
	mux.Handle("/metrics", metric.Handler(registry))

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		log.Info("metrics listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", "error", err)
		}
	}()
	return server
}
