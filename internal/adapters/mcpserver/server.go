// Package mcpserver exposes weekly summaries as Model Context Protocol tools
// over streamable HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/okian/rd2weekly/internal/adapters/repository"
	"github.com/okian/rd2weekly/internal/domain/period"
	"github.com/okian/rd2weekly/internal/domain/summary"
	"github.com/okian/rd2weekly/pkg/logger"
	"github.com/okian/rd2weekly/pkg/metrics"
)

const (
	serverName     = "rd2-weekly"
	defaultLimit   = 10
	ToolSummary    = "weekly_summary"
	ToolAllStars   = "all_stars"
	ToolTeam       = "team_superlatives"
	ToolStandings  = "standings"
	componentLabel = "mcp"
)

// Service is what the tools need from the application layer.
type Service interface {
	Summarize(ctx context.Context, p period.Period) (summary.Summary, error)
	Render(s summary.Summary) (string, error)
	Section(s summary.Summary, c summary.Category) (summary.Section, error)
	Standings(ctx context.Context, n int) ([]repository.Entry, error)
	Rank(ctx context.Context, team string) (repository.Entry, error)
}

// PeriodArgs carries a period document.
type PeriodArgs struct {
	Period period.Period `json:"period" jsonschema:"the scoring period document: teams, matchups and positional leaderboards"`
}

// TeamArgs selects the superlatives one team appears in.
type TeamArgs struct {
	Period period.Period `json:"period" jsonschema:"the scoring period document"`
	Team   string        `json:"team" jsonschema:"fantasy team name, matched case-insensitively"`
}

// StandingsArgs selects season standings.
type StandingsArgs struct {
	Team  string `json:"team,omitempty" jsonschema:"optional team name; when set only that team's standing is returned"`
	Limit int    `json:"limit,omitempty" jsonschema:"number of teams to return (default 10)"`
}

// ToolInfo describes a registered tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Tools holds the tool handlers.
type Tools struct {
	svc    Service
	logger logger.Logger
}

// Option configures Tools.
type Option func(*Tools)

// WithLogger sets the tools logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Tools) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTools creates the tool handlers over svc.
func NewTools(svc Service, opts ...Option) *Tools {
	t := &Tools{svc: svc, logger: logger.Get().Named("mcp")}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Server is an MCP server with the summary tools registered.
type Server struct {
	server   *mcp.Server
	registry []ToolInfo
}

// NewServer registers every tool on a new MCP server.
func NewServer(svc Service, version string, opts ...Option) *Server {
	t := NewTools(svc, opts...)
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil),
	}

	addTool(s, &mcp.Tool{
		Name:        ToolSummary,
		Description: "Build the weekly superlatives post for a period and return it as markdown",
	}, t.WeeklySummary)
	addTool(s, &mcp.Tool{
		Name:        ToolAllStars,
		Description: "Every maximum-point all-star lineup of a period",
	}, t.AllStars)
	addTool(s, &mcp.Tool{
		Name:        ToolTeam,
		Description: "The superlatives a single team appears in for a period",
	}, t.TeamSuperlatives)
	addTool(s, &mcp.Tool{
		Name:        ToolStandings,
		Description: "Season standings accumulated from stored weekly summaries",
	}, t.Standings)
	return s
}

func addTool[T any](s *Server, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	s.registry = append(s.registry, ToolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(s.server, tool, handler)
}

// MCP returns the underlying server.
func (s *Server) MCP() *mcp.Server { return s.server }

// Tools lists the registered tools in registration order.
func (s *Server) Tools() []ToolInfo {
	out := make([]ToolInfo, len(s.registry))
	copy(out, s.registry)
	return out
}

// Handler serves the tools over streamable HTTP with plain JSON responses.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}

// WeeklySummary renders a period's post.
func (t *Tools) WeeklySummary(ctx context.Context, _ *mcp.CallToolRequest, args PeriodArgs) (*mcp.CallToolResult, any, error) {
	s, err := t.svc.Summarize(ctx, args.Period)
	if err != nil {
		return t.toolError(ctx, ToolSummary, err), nil, nil
	}
	md, err := t.svc.Render(s)
	if err != nil {
		return t.toolError(ctx, ToolSummary, err), nil, nil
	}
	return toolText(md), nil, nil
}

// AllStars returns the all-star section of a period.
func (t *Tools) AllStars(ctx context.Context, _ *mcp.CallToolRequest, args PeriodArgs) (*mcp.CallToolResult, any, error) {
	s, err := t.svc.Summarize(ctx, args.Period)
	if err != nil {
		return t.toolError(ctx, ToolAllStars, err), nil, nil
	}
	sec, err := t.svc.Section(s, summary.AllStars)
	if err != nil {
		return t.toolError(ctx, ToolAllStars, err), nil, nil
	}
	if sec.Error != "" {
		return t.toolError(ctx, ToolAllStars, fmt.Errorf("all stars: %s", sec.Error)), nil, nil
	}
	return toolJSON(sec)
}

// TeamSuperlatives returns the sections that name a team.
func (t *Tools) TeamSuperlatives(ctx context.Context, _ *mcp.CallToolRequest, args TeamArgs) (*mcp.CallToolResult, any, error) {
	team := strings.TrimSpace(args.Team)
	if team == "" {
		return t.toolError(ctx, ToolTeam, fmt.Errorf("team is required")), nil, nil
	}
	s, err := t.svc.Summarize(ctx, args.Period)
	if err != nil {
		return t.toolError(ctx, ToolTeam, err), nil, nil
	}
	out := make([]summary.Section, 0)
	for _, sec := range s.Sections {
		if mentions(sec, team) {
			out = append(out, sec)
		}
	}
	return toolJSON(map[string]any{"period": s.Period, "team": team, "sections": out})
}

// Standings returns the top of the season table or one team's row.
func (t *Tools) Standings(ctx context.Context, _ *mcp.CallToolRequest, args StandingsArgs) (*mcp.CallToolResult, any, error) {
	if team := strings.TrimSpace(args.Team); team != "" {
		e, err := t.svc.Rank(ctx, team)
		if err != nil {
			return t.toolError(ctx, ToolStandings, err), nil, nil
		}
		return toolJSON(e)
	}
	limit := args.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	entries, err := t.svc.Standings(ctx, limit)
	if err != nil {
		return t.toolError(ctx, ToolStandings, err), nil, nil
	}
	return toolJSON(map[string]any{"standings": entries})
}

// mentions reports whether a section ranks, pairs or sweeps team. Player
// rows count when the player is rostered by team.
func mentions(sec summary.Section, team string) bool {
	same := func(name string) bool { return strings.EqualFold(name, team) }
	for _, r := range sec.Teams {
		if same(r.Team) {
			return true
		}
	}
	for _, r := range sec.Players {
		if same(r.Player.Team) {
			return true
		}
	}
	for _, m := range sec.Matchups {
		if same(m.Team1.Name) || same(m.Team2.Name) {
			return true
		}
	}
	for _, sw := range sec.Sweeps {
		if same(sw.Team.Name) {
			return true
		}
	}
	for _, l := range sec.Lineups {
		for _, a := range l.Assignments {
			if same(a.Player.Team) {
				return true
			}
		}
	}
	return false
}

func (t *Tools) toolError(ctx context.Context, tool string, err error) *mcp.CallToolResult {
	metrics.RecordErrorByComponent(componentLabel, tool)
	t.logger.Warn(ctx, "tool call failed", logger.String("tool", tool), logger.Error(err))
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)}},
		IsError: true,
	}
}

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode tool result: %w", err)
	}
	return toolText(string(b)), nil, nil
}
