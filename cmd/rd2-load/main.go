// Command rd2-load replays a generated season against a running rd2weekly
// service and checks the standings it reports.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/okian/rd2weekly/internal/loadgen"
	"github.com/okian/rd2weekly/pkg/logger"
)

const (
	defaultPeriods     = 20
	defaultTeams       = 12
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultPoll        = 100 * time.Millisecond
	defaultPollTimeout = 2 * time.Minute
	defaultRunTimeout  = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		periods    = flag.Int("periods", defaultPeriods, "Number of scoring periods to generate")
		teams      = flag.Int("teams", defaultTeams, "Teams in the league (at most the service standings limit)")
		divisions  = flag.String("divisions", "East,West", "Comma separated division names")
		seed       = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Generator seed")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		resubmit   = flag.Bool("resubmit", true, "Submit every period twice to exercise dedupe")
		outputFile = flag.String("output", "", "Write the generated season to this JSON file")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	var names []string
	for _, d := range strings.Split(*divisions, ",") {
		if d = strings.TrimSpace(d); d != "" {
			names = append(names, d)
		}
	}

	cfg := &loadgen.Config{
		BaseURL:      strings.TrimRight(*baseURL, "/"),
		Periods:      *periods,
		Teams:        *teams,
		Divisions:    names,
		Seed:         *seed,
		Workers:      *workers,
		Timeout:      *timeout,
		PollInterval: defaultPoll,
		PollTimeout:  defaultPollTimeout,
		Resubmit:     *resubmit,
		OutputFile:   *outputFile,
	}

	if _, err := loadgen.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "replay failed", logger.Error(err), logger.Int64("seed", int64(*seed)))
		cancel()
		stop()
		os.Exit(1)
	}
}
