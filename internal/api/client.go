package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/rentdesk/internal/observability/metrics"
	"github.com/aryan0dhankhar/rentdesk/internal/observability/tracing"
	"github.com/aryan0dhankhar/rentdesk/internal/reliability/circuitbreaker"
)

// TokenSource supplies the bearer token for the signed-in user, or "" when anonymous
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Config holds client configuration
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Tokens     TokenSource
	Breaker    *circuitbreaker.CircuitBreaker
	Logger     *slog.Logger
	HTTPClient *http.Client
}

// Client talks to the marketplace REST API. Each method performs exactly one request.
type Client struct {
	baseURL    string
	tokens     TokenSource
	breaker    *circuitbreaker.CircuitBreaker
	logger     *slog.Logger
	httpClient *http.Client
}

// New creates a new API client
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: tracing.Transport(http.DefaultTransport),
		}
	}

	tokens := cfg.Tokens
	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		tokens:     tokens,
		breaker:    cfg.Breaker,
		logger:     logger,
		httpClient: httpClient,
	}, nil
}

// request describes one call. route is the templated path used for metrics.
type request struct {
	method      string
	route       string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonRequest(method, route, path string, payload any) (request, error) {
	req := request{method: method, route: route, path: path}
	if payload == nil {
		return req, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return req, fmt.Errorf("encode request: %w", err)
	}
	req.body = bytes.NewReader(data)
	req.contentType = "application/json"
	return req, nil
}

// do executes req and decodes a 2xx JSON body into out when out is non-nil
func (c *Client) do(ctx context.Context, req request, out any) error {
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			metrics.ObserveAPIRequest(req.method, req.route, "circuit_open", 0)
			return err
		}
	}

	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, req.body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if token := c.tokens.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	logger := c.logger.With(
		slog.String("request_id", requestID),
		slog.String("method", req.method),
		slog.String("route", req.route),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.recordFailure()
		metrics.ObserveAPIRequest(req.method, req.route, "transport_error", time.Since(start))
		logger.Warn("api request failed", slog.String("error", err.Error()))
		return fmt.Errorf("%s %s: %w", req.method, req.route, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	metrics.ObserveAPIRequest(req.method, req.route, strconv.Itoa(resp.StatusCode), time.Since(start))
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		c.recordFailure()
	} else {
		c.recordSuccess()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseError(resp.StatusCode, body)
		logger.Debug("api request rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("message", apiErr.Message),
		)
		return apiErr
	}

	logger.Debug("api request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.route, err)
	}
	return nil
}

func (c *Client) recordFailure() {
	if c.breaker != nil {
		c.breaker.RecordFailure()
		metrics.SetBreakerState(int(c.breaker.State()))
	}
}

func (c *Client) recordSuccess() {
	if c.breaker != nil {
		c.breaker.RecordSuccess()
		metrics.SetBreakerState(int(c.breaker.State()))
	}
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}
