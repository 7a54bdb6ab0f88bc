// Package loadgen generates a random season of league periods, replays it
// against a running service and checks the season standings it reports.
package loadgen

import "time"

// Config holds configuration for a replay.
type Config struct {
	BaseURL      string        // Base URL of the service
	Periods      int           // Number of scoring periods to generate
	Teams        int           // Teams in the league
	Divisions    []string      // Division names, assigned round robin
	Seed         uint64        // Generator seed; the same seed gives the same season
	Workers      int           // Concurrent submitters
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Delay between checks for stored summaries
	PollTimeout  time.Duration // Give up waiting for summaries after this long
	Resubmit     bool          // Submit every period a second time to exercise dedupe
	OutputFile   string        // Write the generated season here when set
}

// Stats holds replay statistics.
type Stats struct {
	PeriodsGenerated int
	Submitted        int
	Accepted         int
	Duplicate        int
	Failed           int
	StandingsChecked int
	Mismatches       []string
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}

type submitResponse struct {
	Status    string `json:"status"`
	Key       string `json:"key"`
	Duplicate bool   `json:"duplicate"`
}

type periodsResponse struct {
	Periods []int `json:"periods"`
}
