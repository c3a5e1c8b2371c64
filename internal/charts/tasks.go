// ABOUTME: Batch aggregations over the tasks collection for chart datasets.
// ABOUTME: Fixed-category distribution and a dense closed-by-date time series.
package charts

import (
	"context"
	"sort"
	"time"

	"github.com/2389-research/feedkit/internal/models"
	"github.com/2389-research/feedkit/internal/store"
)

// Categories is the closed set of task labels. A task whose title is not
// an exact match for one of these is excluded from every aggregation.
var Categories = []string{
	"Levantamento Técnico",
	"Eventos",
	"Caderno Teste",
	"Survey",
	"Atividade Remotar",
	"Viagem POE",
	"Outro",
	"Operação Assistida",
}

// Distribution is the per-category task count, pie-chart ready. Counts
// is index-aligned with Labels.
type Distribution struct {
	Labels []string
	Counts []int
	Total  int
}

// TimeSeries is a dense (date × category) count matrix: every category
// has one count per date, with explicit zeros, no sparse gaps. Dates are
// the sorted union of all closure dates seen.
type TimeSeries struct {
	Dates  []time.Time
	Series map[string][]int
}

// LoadTasks performs the one-shot batch read of the tasks collection.
// Documents that fail shape validation are skipped.
func LoadTasks(ctx context.Context, st store.Store) ([]models.Task, error) {
	docs, err := st.GetCollectionOnce(ctx, models.CollectionTasks, nil)
	if err != nil {
		return nil, err
	}
	tasks := make([]models.Task, 0, len(docs))
	for _, doc := range docs {
		task, err := models.TaskFromDocument(doc)
		if err != nil {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// CategoryDistribution counts tasks per category by exact title match.
// Unmatched titles are silently excluded. A task without a closure date
// still counts here.
func CategoryDistribution(tasks []models.Task) Distribution {
	counts := make(map[string]int, len(Categories))
	for _, label := range Categories {
		counts[label] = 0
	}

	total := 0
	for _, task := range tasks {
		if _, known := counts[task.Title]; !known {
			continue
		}
		counts[task.Title]++
		total++
	}

	dist := Distribution{
		Labels: append([]string(nil), Categories...),
		Counts: make([]int, len(Categories)),
		Total:  total,
	}
	for i, label := range Categories {
		dist.Counts[i] = counts[label]
	}
	return dist
}

// BuildTimeSeries buckets closed tasks by UTC calendar date and category.
// Tasks without a closure date are excluded from the series (but remain
// eligible for the category distribution); unknown titles are excluded
// entirely.
func BuildTimeSeries(tasks []models.Task) TimeSeries {
	known := make(map[string]bool, len(Categories))
	for _, label := range Categories {
		known[label] = true
	}

	buckets := make(map[string]map[time.Time]int)
	dateSet := make(map[time.Time]bool)
	for _, task := range tasks {
		if task.ClosedAt.IsZero() || !known[task.Title] {
			continue
		}
		day := bucketDate(task.ClosedAt)
		dateSet[day] = true
		if buckets[task.Title] == nil {
			buckets[task.Title] = make(map[time.Time]int)
		}
		buckets[task.Title][day]++
	}

	dates := make([]time.Time, 0, len(dateSet))
	for day := range dateSet {
		dates = append(dates, day)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	series := make(map[string][]int, len(Categories))
	for _, label := range Categories {
		row := make([]int, len(dates))
		for i, day := range dates {
			row[i] = buckets[label][day]
		}
		series[label] = row
	}

	return TimeSeries{Dates: dates, Series: series}
}

// Filtered returns a copy with counts outside [start, end] zeroed. The
// receiver is untouched, so the filter is non-destructive and can be
// reapplied with a different range. A zero start or end leaves that side
// unbounded.
func (ts TimeSeries) Filtered(start, end time.Time) TimeSeries {
	out := TimeSeries{
		Dates:  append([]time.Time(nil), ts.Dates...),
		Series: make(map[string][]int, len(ts.Series)),
	}
	for label, row := range ts.Series {
		filtered := make([]int, len(row))
		for i, count := range row {
			if inRange(ts.Dates[i], start, end) {
				filtered[i] = count
			}
		}
		out.Series[label] = filtered
	}
	return out
}

// DateLabels formats the bucket dates for display, day-first as the
// source data has always been presented.
func (ts TimeSeries) DateLabels() []string {
	labels := make([]string, len(ts.Dates))
	for i, day := range ts.Dates {
		labels[i] = day.Format("02/01/2006")
	}
	return labels
}

func bucketDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func inRange(day, start, end time.Time) bool {
	if !start.IsZero() && day.Before(bucketDate(start)) {
		return false
	}
	if !end.IsZero() && day.After(bucketDate(end)) {
		return false
	}
	return true
}
