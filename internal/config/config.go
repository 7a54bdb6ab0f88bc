// Package config defines service configuration and its loading.
//
// Values are layered defaults -> YAML file -> environment; see Load.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// SlotConfig is one lineup slot entry: a position tag and how many players fill it.
type SlotConfig struct {
	Position string `koanf:"position"`
	Count    int    `koanf:"count"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// MCPPath is where the MCP streamable HTTP handler is mounted. Empty disables it.
	MCPPath string `koanf:"mcp_path"`

	// MetricsEnabled switches the Prometheus recorders on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// QueueSize bounds the in-memory period job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of summary workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many submission keys are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// BoardSize is the tier budget of the team boards ("top three").
	BoardSize int `koanf:"board_size"`

	// PitcherBoardSize is the tier budget of the pitcher role boards.
	PitcherBoardSize int `koanf:"pitcher_board_size"`

	// AllStarSeed is how many overall leaders seed the all-star candidate pools.
	AllStarSeed int `koanf:"all_star_seed"`

	// MaxEvaluations caps complete lineups evaluated per search; 0 means no cap.
	MaxEvaluations int `koanf:"max_evaluations"`

	// ParallelCategories computes summary categories on separate goroutines.
	ParallelCategories bool `koanf:"parallel_categories"`

	// LineupSlots is the ordered all-star slot configuration.
	LineupSlots []SlotConfig `koanf:"lineup_slots"`

	// Nicknames maps a player id to the name printed in summaries.
	Nicknames map[string]string `koanf:"nicknames"`
}

// DefaultLineupSlots mirrors a standard roto hitting lineup.
func DefaultLineupSlots() []SlotConfig {
	return []SlotConfig{
		{Position: "C", Count: 1},
		{Position: "1B", Count: 1},
		{Position: "2B", Count: 1},
		{Position: "3B", Count: 1},
		{Position: "SS", Count: 1},
		{Position: "CF", Count: 1},
		{Position: "OF", Count: 2},
		{Position: "U", Count: 2},
	}
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		MCPPath:          "/mcp",
		MetricsEnabled:   true,
		QueueSize:        64,
		WorkerCount:      runtime.NumCPU(),
		DedupeSize:       1024,
		BoardSize:        3,
		PitcherBoardSize: 3,
		AllStarSeed:      10,
		LineupSlots:      DefaultLineupSlots(),
		Nicknames:        map[string]string{},
	}
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.DedupeSize < 1:
		return fmt.Errorf("%w: dedupe_size must be positive, got %d", ErrInvalidConfig, c.DedupeSize)
	case c.BoardSize < 1 || c.PitcherBoardSize < 1 || c.AllStarSeed < 1:
		return fmt.Errorf("%w: board sizes must be positive", ErrInvalidConfig)
	case c.MaxEvaluations < 0:
		return fmt.Errorf("%w: max_evaluations must not be negative", ErrInvalidConfig)
	case c.MCPPath != "" && !strings.HasPrefix(c.MCPPath, "/"):
		return fmt.Errorf("%w: mcp_path must start with /", ErrInvalidConfig)
	}
	if len(c.LineupSlots) == 0 {
		return fmt.Errorf("%w: lineup_slots must not be empty", ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(c.LineupSlots))
	for _, s := range c.LineupSlots {
		if s.Position == "" || s.Count < 1 {
			return fmt.Errorf("%w: bad lineup slot %q x%d", ErrInvalidConfig, s.Position, s.Count)
		}
		if _, dup := seen[s.Position]; dup {
			return fmt.Errorf("%w: lineup slot %q listed twice", ErrInvalidConfig, s.Position)
		}
		seen[s.Position] = struct{}{}
	}
	return nil
}
