// Package flowise talks to the Flowise document-store API.
package flowise

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/middleware"
	"github.com/PaysanCorrezien/Flowise-AutomaticUpsert/internal/payload"
)

const redacted = "[REDACTED]"

// Result is the decoded upsert response, passed through as-is.
type Result map[string]any

// TransportError reports a failed upsert: a network failure, a non-2xx
// status or a response body that is not JSON.
type TransportError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("flowise upsert failed: %v", e.Err)
	case e.Err != nil:
		return fmt.Sprintf("flowise upsert failed: status %d: %v", e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("flowise upsert failed: status %d: %s", e.StatusCode, snippet(e.Body))
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client uploads payloads to one document store.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	storeID    string
}

// NewClient returns a client for the document store storeID. No request
// timeout is applied; callers bound requests through the context.
func NewClient(baseURL, apiKey, storeID string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("baseURL cannot be empty")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("apiKey cannot be empty")
	}
	if strings.TrimSpace(storeID) == "" {
		return nil, fmt.Errorf("storeID cannot be empty")
	}

	parsed, err := url.ParseRequestURI(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("baseURL must include scheme and host")
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Transport = middleware.NewCorrelationTransport(httpClient.Transport)

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		storeID:    storeID,
	}, nil
}

// SetHTTPClient replaces the underlying HTTP client. Its transport is
// wrapped so requests still carry the correlation id.
func (c *Client) SetHTTPClient(hc *http.Client) {
	wrapped := *hc
	wrapped.Transport = middleware.NewCorrelationTransport(hc.Transport)
	c.httpClient = &wrapped
}

// Endpoint is the upsert URL of the configured document store.
func (c *Client) Endpoint() string {
	return c.baseURL + "/document-store/upsert/" + url.PathEscape(c.storeID)
}

// Upsert posts p to the document store and returns the decoded response.
func (c *Client) Upsert(ctx context.Context, p *payload.Payload) (Result, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		slog.DebugContext(ctx, "upsert request",
			"url", req.URL.String(),
			"headers", redactHeaders(req.Header),
			"payload", redactPayload(p),
		)
	}

	var result Result
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{StatusCode: resp.StatusCode, Body: respBody}
	}

	if err := json.Unmarshal(respBody, v); err != nil {
		return &TransportError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			Err:        fmt.Errorf("failed to unmarshal response body: %w", err),
		}
	}
	return nil
}

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		if k == "Authorization" {
			out[k] = redacted
			continue
		}
		out[k] = h.Get(k)
	}
	return out
}

// redactPayload renders p for logging with document content elided.
func redactPayload(p *payload.Payload) string {
	cp := *p
	loaderCfg := make(map[string]any, len(p.Loader.Config))
	for k, v := range p.Loader.Config {
		if s, ok := v.(string); ok {
			v = fmt.Sprintf("<%d bytes>", len(s))
		}
		loaderCfg[k] = v
	}
	cp.Loader.Config = loaderCfg

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Sprintf("<unprintable: %v>", err)
	}
	return string(data)
}

func snippet(b []byte) string {
	const limit = 512
	if len(b) == 0 {
		return "<empty body>"
	}
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
