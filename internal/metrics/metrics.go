package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Tracking metrics
	TicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "worktrack_ticks_total",
			Help: "Total poll ticks evaluated while tracking",
		},
	)

	RecordsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worktrack_usage_records_total",
			Help: "Usage records emitted, by transition kind",
		},
		[]string{"kind"},
	)

	UsageSeconds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worktrack_usage_seconds_total",
			Help: "Seconds attributed to each foreground application",
		},
		[]string{"app"},
	)

	IdleSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worktrack_accumulated_idle_seconds",
			Help: "Idle seconds accumulated in the current idle stretch",
		},
	)

	Tracking = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worktrack_tracking",
			Help: "1 while a tracking session is active",
		},
	)

	// Screenshot metrics
	WorkerRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worktrack_screenshot_worker_running",
			Help: "1 while the screenshot worker is running",
		},
	)

	UploadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "worktrack_screenshot_uploads_total",
			Help: "Screenshots uploaded successfully",
		},
	)

	UploadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "worktrack_screenshot_upload_bytes_total",
			Help: "Encoded screenshot bytes uploaded",
		},
	)

	WorkerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worktrack_screenshot_failures_total",
			Help: "Screenshot worker failures, by kind",
		},
		[]string{"kind"},
	)

	// Forwarding metrics
	ForwardErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worktrack_forward_errors_total",
			Help: "Usage records the sink failed to forward",
		},
		[]string{"sink"},
	)
)

func init() {
	prometheus.MustRegister(
		TicksTotal,
		RecordsEmitted,
		UsageSeconds,
		IdleSeconds,
		Tracking,
		WorkerRunning,
		UploadsTotal,
		UploadBytes,
		WorkerFailures,
		ForwardErrors,
	)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
