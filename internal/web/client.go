package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/actionsum/worktrack/internal/models"
	"github.com/actionsum/worktrack/internal/tracker"
)

// ErrNotRunning is returned when nothing listens on the control address.
var ErrNotRunning = errors.New("agent is not running")

// Client drives a running agent through its control API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient targets addr, given as host:port or a full URL.
func NewClient(addr string) *Client {
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &Client{
		baseURL:    strings.TrimRight(addr, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) SetToken(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPut, "/api/token", tokenRequest{Token: token}, nil)
}

func (c *Client) ClearToken(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/token", nil, nil)
}

// Start reports whether a new session was started.
func (c *Client) Start(ctx context.Context) (bool, error) {
	var resp startResponse
	err := c.do(ctx, http.MethodPost, "/api/tracking/start", nil, &resp)
	return resp.Started, err
}

// Stop returns the elapsed seconds of the stopped session.
func (c *Client) Stop(ctx context.Context) (uint64, error) {
	var resp elapsedResponse
	err := c.do(ctx, http.MethodPost, "/api/tracking/stop", nil, &resp)
	return resp.Elapsed, err
}

func (c *Client) Resume(ctx context.Context, elapsed uint64) (bool, error) {
	var resp startResponse
	err := c.do(ctx, http.MethodPost, "/api/tracking/resume", resumeRequest{Elapsed: elapsed}, &resp)
	return resp.Started, err
}

func (c *Client) Elapsed(ctx context.Context) (uint64, error) {
	var resp elapsedResponse
	err := c.do(ctx, http.MethodGet, "/api/tracking/elapsed", nil, &resp)
	return resp.Elapsed, err
}

// Tick returns nil without error when no record was completed.
func (c *Client) Tick(ctx context.Context) (*tracker.UsageRecord, error) {
	var rec tracker.UsageRecord
	found := false
	err := c.doStatus(ctx, http.MethodPost, "/api/tracking/tick", nil, func(status int, body io.Reader) error {
		if status == http.StatusNoContent {
			return nil
		}
		found = true
		return json.NewDecoder(body).Decode(&rec)
	})
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) Status(ctx context.Context) (*Status, error) {
	var st Status
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) Summary(ctx context.Context) (*models.Report, error) {
	var report models.Report
	if err := c.do(ctx, http.MethodGet, "/api/summary", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// ResetSummary clears the agent's run summary.
func (c *Client) ResetSummary(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/summary", nil, nil)
}

func (c *Client) History(ctx context.Context, limit int) (*HistoryResponse, error) {
	var resp HistoryResponse
	path := "/api/history?limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	return c.doStatus(ctx, method, path, in, func(status int, body io.Reader) error {
		if out == nil || status == http.StatusNoContent {
			return nil
		}
		return json.NewDecoder(body).Decode(out)
	})
}

func (c *Client) doStatus(ctx context.Context, method, path string, in any, decode func(int, io.Reader) error) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return ErrNotRunning
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := decode(resp.StatusCode, resp.Body); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
