package reporter

import (
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionsum/worktrack/internal/tracker"
)

func TestGenerateReport(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	r := New(clock)

	r.Add(tracker.UsageRecord{App: "code", Duration: 60})
	r.Add(tracker.UsageRecord{App: "firefox", Duration: 30, IdleDuration: 10})
	r.Add(tracker.UsageRecord{App: "code", Duration: 90})
	r.Add(tracker.UsageRecord{App: "firefox", Duration: 20, IdleDuration: 40})
	r.Add(tracker.UsageRecord{App: "slack", Duration: 0})

	clock.Advance(time.Hour)
	report := r.GenerateReport()

	require.Len(t, report.Apps, 3)
	assert.Equal(t, int64(200), report.TotalSeconds)
	assert.Equal(t, clock.Now(), report.GeneratedAt)

	code := report.Apps[0]
	assert.Equal(t, "code", code.AppName)
	assert.Equal(t, int64(150), code.TotalSeconds)
	assert.Equal(t, 2, code.EventCount)
	assert.InDelta(t, 75.0, code.Percentage, 0.001)
	assert.InDelta(t, 2.5, code.TotalMinutes, 0.001)

	ff := report.Apps[1]
	assert.Equal(t, "firefox", ff.AppName)
	assert.Equal(t, int64(40), ff.PeakIdle)

	assert.Equal(t, "slack", report.Apps[2].AppName)
	assert.Zero(t, report.Apps[2].Percentage)
}

func TestReset(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := New(clock)
	r.Add(tracker.UsageRecord{App: "code", Duration: 60})

	clock.Advance(time.Minute)
	r.Reset()

	report := r.GenerateReport()
	assert.Empty(t, report.Apps)
	assert.Equal(t, clock.Now(), report.Since)
}

func TestFormatReportText(t *testing.T) {
	r := New(clockwork.NewFakeClock())
	assert.Contains(t, FormatReportText(r.GenerateReport()), "No activity recorded yet.")

	r.Add(tracker.UsageRecord{App: "a-very-long-application-name-that-overflows", Duration: 3700})
	text := FormatReportText(r.GenerateReport())

	assert.Contains(t, text, "Total Time: 1h")
	assert.Contains(t, text, "a-very-long-application-nam...")
	assert.True(t, strings.Contains(text, "100.0%"))
}

func TestFormatReportJSON(t *testing.T) {
	r := New(clockwork.NewFakeClock())
	r.Add(tracker.UsageRecord{App: "code", Duration: 5})

	out, err := FormatReportJSON(r.GenerateReport())
	require.NoError(t, err)
	assert.Contains(t, out, `"app_name": "code"`)
	assert.Contains(t, out, `"total_seconds": 5`)
}
