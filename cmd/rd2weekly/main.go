// Command rd2weekly builds weekly fantasy baseball superlatives. With
// -period-file it prints one post and exits; otherwise it serves the HTTP
// API, its reference docs and the MCP tools.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/rd2weekly/internal/adapters/http/api"
	"github.com/okian/rd2weekly/internal/adapters/http/swagger"
	"github.com/okian/rd2weekly/internal/adapters/mcpserver"
	service "github.com/okian/rd2weekly/internal/app"
	"github.com/okian/rd2weekly/internal/config"
	"github.com/okian/rd2weekly/internal/domain/lineup"
	"github.com/okian/rd2weekly/internal/domain/period"
	"github.com/okian/rd2weekly/internal/domain/summary"
	"github.com/okian/rd2weekly/pkg/logger"
	"github.com/okian/rd2weekly/pkg/metrics"
)

var version = "dev"

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 30 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		// The logger may not be up yet.
		_, _ = os.Stderr.WriteString("rd2weekly: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("rd2weekly", flag.ContinueOnError)
	fs.SetOutput(stderr)
	periodFile := fs.String("period-file", "", "build the post for this period JSON file, print it and exit")
	showVersion := fs.Bool("version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		_, err := fmt.Fprintln(stdout, version)
		return err
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Logs go to stderr so a printed post stays clean on stdout.
	if err := logger.InitWithWriter(stderr, logger.Format(cfg.LogFormat)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	metrics.SetEnabled(cfg.MetricsEnabled)

	svc, err := newService(cfg, log)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	if *periodFile != "" {
		return printPost(ctx, svc, *periodFile, stdout)
	}
	return serve(ctx, cfg, svc, log)
}

// builderOptions maps configuration onto the summary builder.
func builderOptions(cfg *config.Config) []summary.Option {
	slots := make(lineup.Slots, 0, len(cfg.LineupSlots))
	for _, s := range cfg.LineupSlots {
		slots = append(slots, lineup.Slot{Position: s.Position, Count: s.Count})
	}
	return []summary.Option{
		summary.WithBoardSize(cfg.BoardSize),
		summary.WithPitcherBoardSize(cfg.PitcherBoardSize),
		summary.WithAllStarSeed(cfg.AllStarSeed),
		summary.WithMaxEvaluations(cfg.MaxEvaluations),
		summary.WithSlots(slots),
		summary.WithParallel(cfg.ParallelCategories),
	}
}

func newService(cfg *config.Config, log logger.Logger) (*service.Service, error) {
	return service.New(
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithNicknames(cfg.Nicknames),
		service.WithBuilderOptions(builderOptions(cfg)...),
	)
}

func printPost(ctx context.Context, svc *service.Service, path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open period: %w", err)
	}
	defer f.Close()

	p, err := period.Decode(f)
	if err != nil {
		return err
	}
	s, err := svc.Summarize(ctx, p)
	if err != nil {
		return fmt.Errorf("summarize period %d: %w", p.Number, err)
	}
	md, err := svc.Render(s)
	if err != nil {
		return fmt.Errorf("render period %d: %w", p.Number, err)
	}
	_, err = io.WriteString(w, md)
	return err
}

// newMux mounts the API, the reference docs and, when configured, the MCP endpoint.
func newMux(ctx context.Context, cfg *config.Config, svc *service.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	if cfg.MCPPath != "" {
		tools := mcpserver.NewServer(svc, version, mcpserver.WithLogger(logger.Named("mcp")))
		mux.Handle(cfg.MCPPath, api.MetricsMiddleware(tools.Handler().ServeHTTP, "mcp"))
	}
	return mux
}

func serve(ctx context.Context, cfg *config.Config, svc *service.Service, log logger.Logger) error {
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go metrics.RunSystemSampler(ctx, systemMetricsInterval)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("mcp_path", cfg.MCPPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}
