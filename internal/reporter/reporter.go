package reporter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/actionsum/worktrack/internal/models"
	"github.com/actionsum/worktrack/internal/tracker"
	"github.com/actionsum/worktrack/pkg/utils"
)

type appTotals struct {
	seconds int64
	idle    int64
	events  int
}

// Reporter aggregates forwarded usage records in memory for the lifetime
// of the agent. Nothing is persisted.
type Reporter struct {
	mu    sync.Mutex
	apps  map[string]*appTotals
	since time.Time
	clock clockwork.Clock
}

// New creates a new reporter
func New(clock clockwork.Clock) *Reporter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Reporter{
		apps:  make(map[string]*appTotals),
		since: clock.Now(),
		clock: clock,
	}
}

// Add folds rec into the per-app totals.
func (r *Reporter) Add(rec tracker.UsageRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	totals, ok := r.apps[rec.App]
	if !ok {
		totals = &appTotals{}
		r.apps[rec.App] = totals
	}
	totals.seconds += int64(rec.Duration)
	// idle_duration is the running idle stretch, so keep the largest seen
	if int64(rec.IdleDuration) > totals.idle {
		totals.idle = int64(rec.IdleDuration)
	}
	totals.events++
}

// Reset drops all totals and restarts the reporting window.
func (r *Reporter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps = make(map[string]*appTotals)
	r.since = r.clock.Now()
}

// GenerateReport summarises everything added since New or the last Reset.
func (r *Reporter) GenerateReport() *models.Report {
	r.mu.Lock()
	summaries := make([]models.AppSummary, 0, len(r.apps))
	var totalSeconds int64
	for app, totals := range r.apps {
		summaries = append(summaries, models.AppSummary{
			AppName:      app,
			TotalSeconds: totals.seconds,
			PeakIdle:     totals.idle,
			EventCount:   totals.events,
		})
		totalSeconds += totals.seconds
	}
	since := r.since
	r.mu.Unlock()

	for i := range summaries {
		summaries[i].TotalMinutes = float64(summaries[i].TotalSeconds) / 60.0
		summaries[i].TotalHours = float64(summaries[i].TotalSeconds) / 3600.0
		if totalSeconds > 0 {
			summaries[i].Percentage = (float64(summaries[i].TotalSeconds) / float64(totalSeconds)) * 100.0
		}
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalSeconds != summaries[j].TotalSeconds {
			return summaries[i].TotalSeconds > summaries[j].TotalSeconds
		}
		return summaries[i].AppName < summaries[j].AppName
	})

	return &models.Report{
		Since:        since,
		Apps:         summaries,
		TotalSeconds: totalSeconds,
		TotalMinutes: float64(totalSeconds) / 60.0,
		TotalHours:   float64(totalSeconds) / 3600.0,
		GeneratedAt:  r.clock.Now(),
	}
}

// FormatReportText formats the report as human-readable text
func FormatReportText(report *models.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Usage since %s\n", report.Since.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Total Time: %s (%.2fh)\n\n", utils.FormatRoundedUnit(report.TotalSeconds), report.TotalHours)

	if len(report.Apps) == 0 {
		b.WriteString("No activity recorded yet.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-30s %10s %10s %8s %9s\n", "Application", "Time", "Peak idle", "Events", "Percent")
	b.WriteString(strings.Repeat("-", 71) + "\n")

	for _, app := range report.Apps {
		fmt.Fprintf(&b, "%-30s %10s %10s %8d %8.1f%%\n",
			truncate(app.AppName, 30),
			utils.FormatRoundedUnit(app.TotalSeconds),
			utils.FormatRoundedUnit(app.PeakIdle),
			app.EventCount,
			app.Percentage)
	}

	return b.String()
}

// FormatReportJSON formats the report as JSON
func FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
