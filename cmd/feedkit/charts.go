// ABOUTME: Cobra commands for task chart aggregations.
// ABOUTME: Renders category distribution bars and the closed-task timeline.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/2389-research/feedkit/internal/charts"
	"github.com/2389-research/feedkit/internal/tui"
)

var timelineFrom string
var timelineTo string

var chartsCmd = &cobra.Command{
	Use:   "charts",
	Short: "Task activity charts",
}

var chartsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Show task counts per category",
	RunE:  runChartsCategories,
}

var chartsTimelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show closed tasks per category over time",
	RunE:  runChartsTimeline,
}

func init() {
	chartsTimelineCmd.Flags().StringVar(&timelineFrom, "from", "", "range start, YYYY-MM-DD")
	chartsTimelineCmd.Flags().StringVar(&timelineTo, "to", "", "range end, YYYY-MM-DD")

	chartsCmd.AddCommand(chartsCategoriesCmd)
	chartsCmd.AddCommand(chartsTimelineCmd)
	rootCmd.AddCommand(chartsCmd)
}

func runChartsCategories(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	tasks, err := charts.LoadTasks(ctx, globalStore)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	fmt.Print(tui.RenderDistribution(charts.CategoryDistribution(tasks)))
	return nil
}

func runChartsTimeline(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	var start, end time.Time
	var err error
	if timelineFrom != "" {
		start, err = time.Parse("2006-01-02", timelineFrom)
		if err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
	}
	if timelineTo != "" {
		end, err = time.Parse("2006-01-02", timelineTo)
		if err != nil {
			return fmt.Errorf("invalid --to date: %w", err)
		}
	}

	tasks, err := charts.LoadTasks(ctx, globalStore)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	series := charts.BuildTimeSeries(tasks).Filtered(start, end)
	fmt.Print(tui.RenderTimeline(series))
	return nil
}
