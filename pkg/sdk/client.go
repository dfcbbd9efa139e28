// Package sdk is the Go client for the mostachar HTTP API.
package sdk

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrStreamTruncated reports a streaming response that ended before the
// sources event arrived. An abrupt end after content has been received is
// not detectable as an error at the protocol level; callers must treat it
// as inconclusive.
var ErrStreamTruncated = errors.New("sdk: stream ended before sources event")

// Client is the mostachar SDK entry point.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (e.g. for timeouts).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Chat asks a legal question and returns the complete answer with sources.
func (c *Client) Chat(ctx context.Context, message string) (ChatResult, error) {
	var result ChatResult
	if err := c.postJSON(ctx, "/api/chat/sync", map[string]string{"message": message}, &result); err != nil {
		return ChatResult{}, err
	}
	return result, nil
}

// ChatStream asks a legal question and forwards streaming events to the
// handler as they arrive. Returns once the stream ends or the handler
// rejects an event; cancelling ctx aborts the request.
func (c *Client) ChatStream(ctx context.Context, message string, handler StreamHandler) error {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return fmt.Errorf("sdk: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sdk: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sdk: chat stream: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	return decodeStream(resp.Body, handler)
}

// Health fetches the server health report.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var status HealthStatus
	if err := c.getJSON(ctx, "/api/health", &status); err != nil {
		return HealthStatus{}, err
	}
	return status, nil
}

// Stats fetches corpus statistics.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	if err := c.getJSON(ctx, "/api/stats", &stats); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// decodeStream reads NDJSON events and dispatches them to the handler.
func decodeStream(r io.Reader, handler StreamHandler) error {
	type event struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}

	sawSources := false
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var ev event
		if err := json.Unmarshal(line, &ev); err != nil {
			return fmt.Errorf("sdk: malformed stream event: %w", err)
		}

		switch ev.Type {
		case "sources":
			var sources []Source
			if err := json.Unmarshal(ev.Data, &sources); err != nil {
				return fmt.Errorf("sdk: malformed sources event: %w", err)
			}
			sawSources = true
			if err := handler.OnSources(sources); err != nil {
				return err
			}
		case "content":
			var fragment string
			if err := json.Unmarshal(ev.Data, &fragment); err != nil {
				return fmt.Errorf("sdk: malformed content event: %w", err)
			}
			if err := handler.OnContent(fragment); err != nil {
				return err
			}
		default:
			// Ignore unknown event types for forward compatibility.
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("sdk: read stream: %w", err)
	}
	if !sawSources {
		return ErrStreamTruncated
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("sdk: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sdk: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doJSON(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("sdk: build request: %w", err)
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sdk: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("sdk: decode response: %w", err)
	}
	return nil
}

// APIError is a non-200 response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sdk: API error %d: %s", e.StatusCode, e.Message)
}

func apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
}
