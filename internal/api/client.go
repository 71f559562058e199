// Package api is the typed HTTP client for the multipost backend. All
// network traffic goes through this package; callers get canonical error
// types (multired.TimeoutError, NetworkError, HTTPError) instead of raw
// transport failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/blacktop/multipost/internal/logutil"
	"github.com/blacktop/multipost/internal/multired"
)

// Default budgets. Multi-target publishes run sequentially per network on the
// server side, hence the longer allowance.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultSingleTimeout = 60 * time.Second
	DefaultMultiTimeout  = 180 * time.Second
)

// Config configures a backend client.
type Config struct {
	BaseURL       string
	Token         string
	Timeout       time.Duration // general requests (auth, chat)
	SingleTimeout time.Duration // single-target publish budget
	MultiTimeout  time.Duration // batch publish budget
	HTTPClient    *http.Client
}

// Client talks to the multipost backend over its JSON contract.
type Client struct {
	baseURL       string
	token         string
	timeout       time.Duration
	singleTimeout time.Duration
	multiTimeout  time.Duration
	httpClient    *http.Client
}

// NewClient builds a Client, applying defaults for anything unset.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.SingleTimeout <= 0 {
		cfg.SingleTimeout = DefaultSingleTimeout
	}
	if cfg.MultiTimeout <= 0 {
		cfg.MultiTimeout = DefaultMultiTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Transport: defaultTransport()}
	}
	return &Client{
		baseURL:       cfg.BaseURL,
		token:         cfg.Token,
		timeout:       cfg.Timeout,
		singleTimeout: cfg.SingleTimeout,
		multiTimeout:  cfg.MultiTimeout,
		httpClient:    cfg.HTTPClient,
	}
}

// SetToken replaces the bearer token used for authenticated calls.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the bearer token currently in use.
func (c *Client) Token() string { return c.token }

// defaultTransport caps connections per host so a slow backend cannot pile
// up sockets during long publish cycles.
func defaultTransport() *http.Transport {
	return &http.Transport{
		MaxConnsPerHost:     100,
		MaxIdleConnsPerHost: 10,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// do issues one JSON request and decodes a 2xx body into out (when non-nil).
// Non-2xx responses become multired.HTTPError with the detail field already
// unwrapped; transport failures are classified by classify.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	logutil.Debugf("%s %s", method, path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classify(ctx, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return classify(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return multired.HTTPError{
			StatusCode: resp.StatusCode,
			Detail:     extractDetail(payload),
		}
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// classify separates a timed-out dispatch from a plain transport failure.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return multired.TimeoutError{}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return multired.TimeoutError{}
	}
	return multired.NetworkError{Err: err}
}

// errorBody is the backend's error envelope: detail is either a plain string
// or an object carrying mensaje and/or error.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type errorDetail struct {
	Mensaje string `json:"mensaje"`
	Error   string `json:"error"`
}

const genericErrorMessage = "publish request failed"

// extractDetail unwraps the detail field, preferring mensaje over error over
// a generic message.
func extractDetail(payload []byte) string {
	var envelope errorBody
	if err := json.Unmarshal(payload, &envelope); err != nil || len(envelope.Detail) == 0 {
		return genericErrorMessage
	}

	var asString string
	if err := json.Unmarshal(envelope.Detail, &asString); err == nil {
		if asString == "" {
			return genericErrorMessage
		}
		return asString
	}

	var structured errorDetail
	if err := json.Unmarshal(envelope.Detail, &structured); err == nil {
		if structured.Mensaje != "" {
			return structured.Mensaje
		}
		if structured.Error != "" {
			return structured.Error
		}
	}
	return genericErrorMessage
}
