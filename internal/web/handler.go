package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/actionsum/worktrack/internal/metrics"
	"github.com/actionsum/worktrack/internal/models"
	"github.com/actionsum/worktrack/internal/tracker"
	"github.com/actionsum/worktrack/pkg/utils"
)

// Tracker is the host command surface of the tracking service.
type Tracker interface {
	Start() bool
	Stop()
	Resume(elapsed uint64) bool
	Elapsed() uint64
	Tick() *tracker.UsageRecord
	Snapshot() tracker.SessionState
	Worker() tracker.WorkerStatus
}

type Credentials interface {
	Set(token string)
	Clear()
	Token() (string, bool)
}

type Summarizer interface {
	GenerateReport() *models.Report
	Reset()
}

type History interface {
	RecentUploads(limit int) ([]models.ScreenshotLog, error)
	RecentFailures(limit int) ([]models.ErrorLog, error)
}

// RecordFunc receives records produced by the tick endpoint.
type RecordFunc func(ctx context.Context, rec tracker.UsageRecord)

// Status is the body of GET /api/status.
type Status struct {
	Session  tracker.SessionState `json:"session"`
	Worker   tracker.WorkerStatus `json:"worker"`
	TokenSet bool                 `json:"token_set"`
	Elapsed  string               `json:"elapsed"`
}

// HistoryResponse is the body of GET /api/history.
type HistoryResponse struct {
	Uploads  []models.ScreenshotLog `json:"uploads"`
	Failures []models.ErrorLog      `json:"failures"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type resumeRequest struct {
	Elapsed uint64 `json:"elapsed"`
}

type startResponse struct {
	Started bool                 `json:"started"`
	Session tracker.SessionState `json:"session"`
}

type elapsedResponse struct {
	Elapsed   uint64 `json:"elapsed"`
	Formatted string `json:"formatted"`
}

type Handler struct {
	tracker  Tracker
	creds    Credentials
	summary  Summarizer
	history  History
	onRecord RecordFunc
	tickAPI  bool
	logger   zerolog.Logger
}

func NewHandler(t Tracker, creds Credentials, summary Summarizer, logger zerolog.Logger) *Handler {
	return &Handler{
		tracker: t,
		creds:   creds,
		summary: summary,
		logger:  logger.With().Str("component", "web").Logger(),
	}
}

// WithHistory exposes upload history under /api/history.
func (h *Handler) WithHistory(history History) *Handler {
	h.history = history
	return h
}

// EnableTick exposes POST /api/tracking/tick for an external host. It must
// not be enabled while another poller ticks the same service.
func (h *Handler) EnableTick(onRecord RecordFunc) *Handler {
	h.tickAPI = true
	h.onRecord = onRecord
	return h
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("PUT /api/token", h.handleSetToken)
	mux.HandleFunc("DELETE /api/token", h.handleClearToken)

	mux.HandleFunc("POST /api/tracking/start", h.handleStart)
	mux.HandleFunc("POST /api/tracking/stop", h.handleStop)
	mux.HandleFunc("POST /api/tracking/resume", h.handleResume)
	mux.HandleFunc("GET /api/tracking/elapsed", h.handleElapsed)
	if h.tickAPI {
		mux.HandleFunc("POST /api/tracking/tick", h.handleTick)
	}

	mux.HandleFunc("GET /api/status", h.handleStatus)
	mux.HandleFunc("GET /api/summary", h.handleSummary)
	mux.HandleFunc("DELETE /api/summary", h.handleResetSummary)
	if h.history != nil {
		mux.HandleFunc("GET /api/history", h.handleHistory)
	}

	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /health", h.handleHealth)
}

func (h *Handler) handleSetToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		http.Error(w, "token cannot be empty", http.StatusBadRequest)
		return
	}

	h.creds.Set(req.Token)
	h.logger.Info().Msg("Auth token set")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleClearToken(w http.ResponseWriter, r *http.Request) {
	h.creds.Clear()
	h.logger.Info().Msg("Auth token cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	started := h.tracker.Start()
	respondJSON(w, http.StatusOK, startResponse{Started: started, Session: h.tracker.Snapshot()})
}

func (h *Handler) handleStop(w http.ResponseWriter, r *http.Request) {
	h.tracker.Stop()
	respondJSON(w, http.StatusOK, h.elapsed())
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	var req resumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	started := h.tracker.Resume(req.Elapsed)
	respondJSON(w, http.StatusOK, startResponse{Started: started, Session: h.tracker.Snapshot()})
}

func (h *Handler) handleElapsed(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.elapsed())
}

func (h *Handler) elapsed() elapsedResponse {
	secs := h.tracker.Elapsed()
	return elapsedResponse{Elapsed: secs, Formatted: utils.FormatClock(secs)}
}

func (h *Handler) handleTick(w http.ResponseWriter, r *http.Request) {
	rec := h.tracker.Tick()
	if rec == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if h.onRecord != nil {
		h.onRecord(r.Context(), *rec)
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	_, tokenSet := h.creds.Token()
	session := h.tracker.Snapshot()

	respondJSON(w, http.StatusOK, Status{
		Session:  session,
		Worker:   h.tracker.Worker(),
		TokenSet: tokenSet,
		Elapsed:  utils.FormatClock(session.Elapsed),
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.summary.GenerateReport())
}

func (h *Handler) handleResetSummary(w http.ResponseWriter, r *http.Request) {
	h.summary.Reset()
	h.logger.Info().Msg("Usage summary reset")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	uploads, err := h.history.RecentUploads(limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read upload history")
		http.Error(w, "failed to read history", http.StatusInternalServerError)
		return
	}
	failures, err := h.history.RecentFailures(limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read failure history")
		http.Error(w, "failed to read history", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, HistoryResponse{Uploads: uploads, Failures: failures})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
