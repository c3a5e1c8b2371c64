// ABOUTME: MCP tool implementations for task chart aggregations.
// ABOUTME: Registers task_categories and task_timeline tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/feedkit/internal/charts"
)

func (s *Server) registerChartTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "task_categories",
		Description: "Count tasks per category (exact title match against the fixed category set) plus the overall total.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {}
		}`),
	}, s.handleTaskCategories)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "task_timeline",
		Description: "Per-category counts of closed tasks bucketed by calendar date, with an optional date-range filter that zeroes buckets outside the range.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"start_date": {"type": "string", "description": "Range start, YYYY-MM-DD (optional)"},
				"end_date": {"type": "string", "description": "Range end, YYYY-MM-DD (optional)"}
			}
		}`),
	}, s.handleTaskTimeline)
}

func (s *Server) handleTaskCategories(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	tasks, err := charts.LoadTasks(ctx, s.store)
	if err != nil {
		return toolError("failed to load tasks: %v", err), nil
	}

	dist := charts.CategoryDistribution(tasks)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total tasks: %d\n", dist.Total))
	for i, label := range dist.Labels {
		sb.WriteString(fmt.Sprintf("%s: %d\n", label, dist.Counts[i]))
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: sb.String()}},
	}, nil
}

func (s *Server) handleTaskTimeline(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	var start, end time.Time
	var err error
	if args.StartDate != "" {
		start, err = time.Parse("2006-01-02", args.StartDate)
		if err != nil {
			return toolError("invalid start_date: %v", err), nil
		}
	}
	if args.EndDate != "" {
		end, err = time.Parse("2006-01-02", args.EndDate)
		if err != nil {
			return toolError("invalid end_date: %v", err), nil
		}
	}

	tasks, err := charts.LoadTasks(ctx, s.store)
	if err != nil {
		return toolError("failed to load tasks: %v", err), nil
	}

	series := charts.BuildTimeSeries(tasks).Filtered(start, end)
	if len(series.Dates) == 0 {
		return &gomcp.CallToolResult{
			Content: []gomcp.Content{&gomcp.TextContent{Text: "No closed tasks."}},
		}, nil
	}

	var sb strings.Builder
	sb.WriteString("Dates: " + strings.Join(series.DateLabels(), ", ") + "\n")
	for _, label := range charts.Categories {
		counts := series.Series[label]
		parts := make([]string, len(counts))
		for i, c := range counts {
			parts[i] = fmt.Sprintf("%d", c)
		}
		sb.WriteString(fmt.Sprintf("%s: [%s]\n", label, strings.Join(parts, ", ")))
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: sb.String()}},
	}, nil
}
