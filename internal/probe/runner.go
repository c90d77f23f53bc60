package probe

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/routerelay/pkg/logger"
)

// Report summarises a probe run.
type Report struct {
	Results  []Result
	ByStatus map[int]int
	Duration time.Duration
}

// Failed lists results that were not answered with 200.
func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status != 200 {
			out = append(out, res)
		}
	}
	return out
}

// Statuses returns the observed status codes in ascending order.
func (r Report) Statuses() []int {
	codes := make([]int, 0, len(r.ByStatus))
	for c := range r.ByStatus {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

// Run checks relay health, submits the request matrix and verifies the answers.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, fmt.Errorf("invalid probe config: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}

	log.Info(ctx, "starting route relay probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("workers", cfg.Workers),
		logger.Int("repeat", cfg.Repeat),
		logger.Duration("timeout", cfg.Timeout))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := client.health(ctx); err != nil {
		return Report{}, fmt.Errorf("service health check failed: %w", err)
	}

	reqs := Matrix(cfg.Origin, cfg.Destination, cfg.Repeat)

	var mu sync.Mutex
	onResult := func(res Result) {
		if !cfg.Verbose {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		log.Info(ctx, "probe result",
			logger.String("requestID", res.RequestID),
			logger.String("vehicleType", string(res.Request.VehicleType)),
			logger.String("fuelType", string(res.Request.FuelType)),
			logger.String("routePreference", string(res.Request.RoutePreference)),
			logger.Int("status", res.Status),
			logger.Duration("latency", res.Latency),
			logger.String("error", res.Error))
	}

	start := time.Now()
	results := client.submit(ctx, cfg.Workers, reqs, onResult)
	report := Report{Results: results, ByStatus: map[int]int{}, Duration: time.Since(start)}
	for _, res := range results {
		report.ByStatus[res.Status]++
	}

	for _, code := range report.Statuses() {
		log.Info(ctx, "probe summary", logger.Int("status", code), logger.Int("count", report.ByStatus[code]))
	}

	if err := verify(report); err != nil {
		return report, err
	}
	return report, nil
}
