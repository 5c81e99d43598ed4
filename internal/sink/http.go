package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/actionsum/worktrack/internal/config"
	"github.com/actionsum/worktrack/internal/screenshot"
	"github.com/actionsum/worktrack/internal/tracker"
)

// HTTPSink posts each record as JSON to the event buffering endpoint.
type HTTPSink struct {
	url        string
	tokens     screenshot.TokenSource
	httpClient *http.Client
}

func NewHTTPSink(url string, timeout time.Duration, tokens screenshot.TokenSource) *HTTPSink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSink{
		url:        url,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSink) Forward(ctx context.Context, rec tracker.UsageRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal usage record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.tokens != nil {
		if token, ok := s.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("event buffering returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (s *HTTPSink) Name() string { return config.SinkHTTP }

func (s *HTTPSink) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}
