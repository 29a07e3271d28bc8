// Package mcp exposes the squad service as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	repository "github.com/okian/fplsquad/internal/adapters/repository"
	service "github.com/okian/fplsquad/internal/app"
	"github.com/okian/fplsquad/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Tool names.
const (
	ToolBuildSquad = "build_squad"
	ToolTopPlayers = "top_players"

	defaultTopPlayers = 10
)

// Dependencies are the service operations the tools call.
type Dependencies interface {
	BuildSquad(ctx context.Context, req service.Request) (service.Result, error)
	TopPlayers(ctx context.Context, n int, pos model.Position) ([]repository.Entry, error)
}

// BuildSquadArgs is the input schema for build_squad.
type BuildSquadArgs struct {
	Budget                float64  `json:"budget,omitempty" jsonschema:"Budget in millions (default 100)"`
	Locked                []int    `json:"locked,omitempty" jsonschema:"Player ids that must be in the squad"`
	Excluded              []int    `json:"excluded,omitempty" jsonschema:"Player ids that must not be picked"`
	AvailabilityThreshold *float64 `json:"availability_threshold,omitempty" jsonschema:"Lowest chance of playing (0-100) for doubtful players"`
}

// TopPlayersArgs is the input schema for top_players.
type TopPlayersArgs struct {
	Limit    int    `json:"limit,omitempty" jsonschema:"How many players to return (default 10)"`
	Position string `json:"position,omitempty" jsonschema:"GK, DEF, MID or FWD; empty for all"`
}

// NewServer registers the tools on a fresh MCP server.
func NewServer(deps Dependencies, version string) *sdk.Server {
	server := sdk.NewServer(&sdk.Implementation{Name: "fplsquad", Version: version}, nil)

	sdk.AddTool(server, &sdk.Tool{
		Name:        ToolBuildSquad,
		Description: "Build a 15 player FPL squad under budget, quotas and the club cap, with starting XI and captaincy",
	}, BuildSquadHandler(deps))

	sdk.AddTool(server, &sdk.Tool{
		Name:        ToolTopPlayers,
		Description: "List the best scored players, optionally for one position",
	}, TopPlayersHandler(deps))

	return server
}

// Handler serves server over streamable HTTP.
func Handler(server *sdk.Server) http.Handler {
	return sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server {
		return server
	}, &sdk.StreamableHTTPOptions{JSONResponse: true})
}

// BuildSquadHandler is the tool handler for build_squad. An incomplete squad is
// reported as a tool error that still carries the partial result.
func BuildSquadHandler(deps Dependencies) func(context.Context, *sdk.CallToolRequest, BuildSquadArgs) (*sdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *sdk.CallToolRequest, args BuildSquadArgs) (*sdk.CallToolResult, any, error) {
		req := service.Request{
			Locked:                args.Locked,
			Excluded:              args.Excluded,
			AvailabilityThreshold: args.AvailabilityThreshold,
		}
		if args.Budget != 0 {
			budget := decimal.NewFromFloat(args.Budget)
			req.Budget = &budget
		}

		res, err := deps.BuildSquad(ctx, req)
		if err != nil {
			if errors.Is(err, model.ErrSquadIncomplete) {
				out := toolJSON(res)
				out.IsError = true
				return out, nil, nil
			}
			return toolError(err), nil, nil
		}
		return toolJSON(res), nil, nil
	}
}

// TopPlayersHandler is the tool handler for top_players.
func TopPlayersHandler(deps Dependencies) func(context.Context, *sdk.CallToolRequest, TopPlayersArgs) (*sdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *sdk.CallToolRequest, args TopPlayersArgs) (*sdk.CallToolResult, any, error) {
		n := args.Limit
		if n <= 0 {
			n = defaultTopPlayers
		}
		var pos model.Position
		if args.Position != "" {
			p, err := model.ParsePosition(args.Position)
			if err != nil {
				return toolError(err), nil, nil
			}
			pos = p
		}
		entries, err := deps.TopPlayers(ctx, n, pos)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(entries), nil, nil
	}
}

func toolJSON(v any) *sdk.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err)
	}
	return &sdk.CallToolResult{Content: []sdk.Content{&sdk.TextContent{Text: string(b)}}}
}

func toolError(err error) *sdk.CallToolResult {
	return &sdk.CallToolResult{
		IsError: true,
		Content: []sdk.Content{&sdk.TextContent{Text: fmt.Sprintf("error: %v", err)}},
	}
}
