// Package backend talks to the remote master-data REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultLocale is the locale tag the API expects on every call.
const DefaultLocale = "VIET"

// Credentials carries the bearer token of the signed-in user.
type Credentials struct {
	Token string
}

// Recorder observes backend calls.
type Recorder interface {
	ObserveBackend(op, outcome string, elapsed time.Duration)
}

// Config configures a Client.
type Config struct {
	BaseURL  string
	Locale   string
	Timeout  time.Duration
	Logger   *slog.Logger
	Recorder Recorder
	HTTP     *http.Client
}

// Client performs JSON calls against the API.
type Client struct {
	baseURL  string
	locale   string
	http     *http.Client
	logger   *slog.Logger
	recorder Recorder
}

// NewClient constructs a Client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	locale := cfg.Locale
	if locale == "" {
		locale = DefaultLocale
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		locale:   locale,
		http:     httpClient,
		logger:   logger,
		recorder: cfg.Recorder,
	}
}

// Locale returns the locale tag sent with every call.
func (c *Client) Locale() string {
	return c.locale
}

// envelope is the common response shape of the API.
type envelope struct {
	Status      string          `json:"status"`
	Result      json.RawMessage `json:"result"`
	Messages    []string        `json:"messages"`
	AccessToken string          `json:"access_token"`
}

type call struct {
	op       string
	method   string
	path     string
	body     any
	fallback string
}

// do sends the call and decodes the envelope. Transport failures wrap
// ErrUnavailable; non-2xx answers and a non-success status become *APIError.
func (c *Client) do(ctx context.Context, creds Credentials, req call) (*envelope, error) {
	start := time.Now()
	env, err := c.send(ctx, creds, req)
	if c.recorder != nil {
		c.recorder.ObserveBackend(req.op, outcome(err), time.Since(start))
	}
	if err != nil {
		c.logger.Warn("backend call failed", slog.String("op", req.op), slog.Any("error", err))
	}
	return env, err
}

func (c *Client) send(ctx context.Context, creds Credentials, req call) (*envelope, error) {
	target := c.baseURL + req.path
	var body io.Reader
	if req.method == http.MethodGet {
		q := url.Values{}
		q.Set("Lag", c.locale)
		target += "?" + q.Encode()
	} else {
		payload, err := withLocale(req.body, c.locale)
		if err != nil {
			return nil, fmt.Errorf("backend: encode %s: %w", req.op, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("backend: build %s: %w", req.op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	if creds.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+creds.Token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, req.op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", ErrUnavailable, req.op, err)
	}
	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("backend: decode %s: %w", req.op, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !successStatus(env.Status) {
		return nil, newAPIError(resp.StatusCode, env.Messages, req.fallback)
	}
	return &env, nil
}

func successStatus(status string) bool {
	return status == "" || strings.EqualFold(status, "success")
}

// withLocale encodes body and adds the Lag field.
func withLocale(body any, locale string) ([]byte, error) {
	fields := map[string]any{}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
	}
	fields["Lag"] = locale
	return json.Marshal(fields)
}

func decodeResult[T any](env *envelope) ([]T, error) {
	if env == nil || len(env.Result) == 0 || string(env.Result) == "null" {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(env.Result, &out); err != nil {
		// A non-array result means "no rows" for list endpoints.
		var probe any
		if json.Unmarshal(env.Result, &probe) == nil {
			if _, isArray := probe.([]any); !isArray {
				return []T{}, nil
			}
		}
		return nil, fmt.Errorf("backend: decode result: %w", err)
	}
	return out, nil
}

func outcome(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.As(err, &apiErr):
		return "rejected"
	default:
		return "error"
	}
}
