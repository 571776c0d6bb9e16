// Package mcpserver exposes the HR assistant over the Model Context Protocol
// so agent hosts can ask questions, inspect routing, and read knowledge base
// statistics as tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/adanianlabs/hrassist/kb"
	"github.com/adanianlabs/hrassist/router"
)

// StatsProvider reports knowledge base statistics, satisfied by kb.Client.
type StatsProvider interface {
	Stats(ctx context.Context) (kb.Stats, error)
}

// NewServer builds the MCP server around the query router and knowledge base.
func NewServer(r *router.Router, stats StatsProvider) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "hrassist",
		Version: "0.1.0",
		Title:   "HR knowledge assistant",
	}, nil)

	addAskTool(server, r)
	addRouteTool(server)
	addStatsTool(server, stats)

	return server
}

func addAskTool(server *mcp.Server, r *router.Router) {
	type args struct {
		Question string `json:"question" jsonschema:"The HR question to answer"`
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_hr",
		Description: "Answer an HR question from company documents or HR metrics",
	}, func(ctx context.Context, req *mcp.CallToolRequest, a args) (*mcp.CallToolResult, any, error) {
		question := strings.TrimSpace(a.Question)
		if question == "" {
			return nil, nil, fmt.Errorf("question is required")
		}

		answer := r.Ask(ctx, question)
		payload, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return nil, nil, fmt.Errorf("encode answer: %w", err)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: string(payload)},
			},
		}, nil, nil
	})
}

func addRouteTool(server *mcp.Server) {
	type args struct {
		Question string `json:"question" jsonschema:"The question to classify without answering it"`
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "route_query",
		Description: "Classify a question as a structured data query or a document query",
	}, func(ctx context.Context, req *mcp.CallToolRequest, a args) (*mcp.CallToolResult, any, error) {
		question := strings.TrimSpace(a.Question)
		if question == "" {
			return nil, nil, fmt.Errorf("question is required")
		}

		decision := router.Route(question)
		payload, err := json.MarshalIndent(decision, "", "  ")
		if err != nil {
			return nil, nil, fmt.Errorf("encode decision: %w", err)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: string(payload)},
			},
		}, nil, nil
	})
}

func addStatsTool(server *mcp.Server, stats StatsProvider) {
	type args struct{}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "kb_stats",
		Description: "Report article and chunk counts for the HR knowledge base",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ args) (*mcp.CallToolResult, any, error) {
		s, err := stats.Stats(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load stats: %w", err)
		}
		payload, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, nil, fmt.Errorf("encode stats: %w", err)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: string(payload)},
			},
		}, nil, nil
	})
}
