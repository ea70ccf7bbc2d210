// Package hrapi is the REST client for the HR onboarding API.
package hrapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const userAgent = "onboarding-dashboard/1.0"

type Client struct {
	baseURL string
	http    *http.Client
	token   string
	metrics *Metrics
	logger  *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, metrics *Metrics, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		metrics: metrics,
		logger:  logger,
	}
}

// WithToken returns a copy of the client that authenticates every call with token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token

	return &clone
}

type request struct {
	op          string
	method      string
	path        string
	body        io.Reader
	contentType string
}

func jsonRequest(op, method, path string, payload any) (request, error) {
	req := request{op: op, method: method, path: path}
	if payload == nil {
		return req, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return req, fmt.Errorf("encode %s request: %w", op, err)
	}

	req.body = bytes.NewReader(data)
	req.contentType = "application/json"

	return req, nil
}

// send performs the call and returns the response only for 2xx statuses.
// The caller owns the returned body.
func (c *Client) send(ctx context.Context, req request) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, req.body)
	if err != nil {
		return nil, &FetchError{Op: req.op, Err: err}
	}

	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.metrics.observe(req.op, 0, time.Since(start))
		c.logger.Error("HR API request failed", slog.String("op", req.op), slog.String("error", err.Error()))
		return nil, &FetchError{Op: req.op, Err: err}
	}
	c.metrics.observe(req.op, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()

		detail := readDetail(resp.Body)
		c.logger.Warn("HR API returned error",
			slog.String("op", req.op),
			slog.Int("status", resp.StatusCode),
			slog.String("detail", detail),
		)

		return nil, &FetchError{Op: req.op, StatusCode: resp.StatusCode, Detail: detail}
	}

	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, req request, out any) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Op: req.op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}
