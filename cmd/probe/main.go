package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/routerelay/internal/probe"
	"github.com/okian/routerelay/pkg/logger"
)

// Default configuration constants.
const (
	defaultWorkers    = 4
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:8080", "Base URL of the relay")
		origin      = flag.String("origin", "52.3676,4.9041", "Origin location")
		destination = flag.String("destination", "52.0907,5.1214", "Destination location")
		repeat      = flag.Int("repeat", 1, "Times to send the full matrix")
		workers     = flag.Int("workers", defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose     = flag.Bool("verbose", false, "Log every result")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	cfg := &probe.Config{
		BaseURL:     *baseURL,
		Origin:      *origin,
		Destination: *destination,
		Repeat:      *repeat,
		Workers:     *workers,
		Timeout:     *timeout,
		Verbose:     *verbose,
	}

	log := logger.Named("probe")
	report, err := probe.Run(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "probe failed", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "probe finished",
		logger.Int("requests", len(report.Results)),
		logger.Int("nonOK", len(report.Failed())),
		logger.Duration("duration", report.Duration))
}
