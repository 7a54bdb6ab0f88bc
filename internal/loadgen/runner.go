package loadgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/rd2weekly/internal/domain/period"
	"github.com/okian/rd2weekly/pkg/logger"
)

const (
	directoryPermission = 0750
	filePermission      = 0600
)

// ErrMismatch means the service standings disagree with the replayed season.
var ErrMismatch = errors.New("standings mismatch")

// Run generates a season, submits it, waits for every summary and checks
// the standings. Mismatches are listed in the returned stats.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("loadgen")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting season replay",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("periods", cfg.Periods),
		logger.Int("teams", cfg.Teams),
		logger.Int("workers", cfg.Workers),
		logger.Bool("resubmit", cfg.Resubmit))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := client.health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	periods, err := Generate(cfg)
	if err != nil {
		return stats, err
	}
	stats.PeriodsGenerated = len(periods)
	if cfg.OutputFile != "" {
		if err := saveSeason(cfg.OutputFile, periods); err != nil {
			log.Warn(ctx, "failed to save season", logger.Error(err))
		}
	}

	submitPeriods(ctx, cfg, client, periods, stats)
	if cfg.Resubmit {
		submitPeriods(ctx, cfg, client, periods, stats)
	}
	if stats.Failed > 0 {
		return stats, fmt.Errorf("%d submissions failed", stats.Failed)
	}

	if err := waitForPeriods(ctx, cfg, client, len(periods)); err != nil {
		return stats, err
	}

	got, err := client.standings(ctx, cfg.Teams)
	if err != nil {
		return stats, fmt.Errorf("standings retrieval failed: %w", err)
	}
	stats.StandingsChecked = len(got)
	expected, err := Expected(periods)
	if err != nil {
		return stats, err
	}
	stats.Mismatches = Verify(expected, got)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "final statistics",
		logger.Int("periodsGenerated", stats.PeriodsGenerated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("standingsChecked", stats.StandingsChecked),
		logger.Int("mismatches", len(stats.Mismatches)),
		logger.Duration("duration", stats.Duration))

	if len(stats.Mismatches) > 0 {
		for _, m := range stats.Mismatches {
			log.Warn(ctx, "standings mismatch", logger.String("detail", m))
		}
		return stats, fmt.Errorf("%w: %d problems", ErrMismatch, len(stats.Mismatches))
	}
	return stats, nil
}

// waitForPeriods polls until the service has stored want periods.
func waitForPeriods(ctx context.Context, cfg *Config, client *HTTPClient, want int) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.PollTimeout)
	defer cancel()
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	for {
		stored, err := client.periods(ctx)
		if err == nil && len(stored) >= want {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %d stored periods: %w", want, ctx.Err())
		case <-ticker.C:
		}
	}
}

func saveSeason(path string, periods []period.Period) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(periods, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal season: %w", err)
	}
	return os.WriteFile(path, data, filePermission)
}
