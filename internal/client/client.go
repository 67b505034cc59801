// Package client talks to a running studymate server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Rrens/studymate/internal/domain"
	"github.com/Rrens/studymate/internal/llm"
)

const clientIDHeader = "X-Client-ID"

// ErrTooManyRequests is returned when the server rate limits the caller
var ErrTooManyRequests = errors.New("too many requests")

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// Client calls the studymate HTTP API. It satisfies service.Gateway through Relay.
type Client struct {
	baseURL  string
	clientID string
	http     *http.Client
}

// New creates a client for the server at baseURL.
// clientID selects the study document; empty uses the default one.
func New(baseURL, clientID string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		http:     &http.Client{Timeout: 2 * time.Minute},
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// Relay posts message to /api/chat and returns the reply
func (c *Client) Relay(ctx context.Context, message string) (string, error) {
	var out struct {
		Reply string `json:"reply"`
		Error string `json:"error"`
	}

	status, err := c.do(ctx, http.MethodPost, "/api/chat", map[string]string{"message": message}, &out)
	if err != nil {
		return "", err
	}

	switch {
	case status == http.StatusTooManyRequests:
		return "", ErrTooManyRequests
	case status == http.StatusGatewayTimeout:
		return "", fmt.Errorf("%w: %s", llm.ErrTimeout, out.Error)
	case status < 200 || status > 299:
		return "", &APIError{StatusCode: status, Message: out.Error}
	}
	return out.Reply, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

// StudyItems returns the study document
func (c *Client) StudyItems(ctx context.Context) (domain.StudyData, error) {
	var data domain.StudyData
	if err := c.call(ctx, http.MethodGet, "/api/v1/study-items", nil, &data); err != nil {
		return domain.StudyData{}, err
	}
	return data.Normalize(), nil
}

// AddStudyItem creates an item of kind; an empty title uses the kind's default
func (c *Client) AddStudyItem(ctx context.Context, kind domain.StudyItemKind, content, title string) (domain.StudyItem, error) {
	var item domain.StudyItem
	body := map[string]string{"content": content, "title": title}
	if err := c.call(ctx, http.MethodPost, "/api/v1/study-items/"+string(kind), body, &item); err != nil {
		return domain.StudyItem{}, err
	}
	return item, nil
}

// DeleteStudyItem removes an item by id
func (c *Client) DeleteStudyItem(ctx context.Context, kind domain.StudyItemKind, id string) error {
	return c.call(ctx, http.MethodDelete, "/api/v1/study-items/"+string(kind)+"/"+id, nil, nil)
}

// Health reports whether the server answers its health check
func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/api/v1/health", nil, nil)
}

// call performs an enveloped v1 request and decodes data into out
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var env envelope
	status, err := c.do(ctx, method, path, body, &env)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		msg := strings.Trim(string(env.Error), `"`)
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &APIError{StatusCode: status, Message: msg}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.clientID != "" {
		req.Header.Set(clientIDHeader, c.clientID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, fmt.Errorf("%w: %v", llm.ErrTimeout, err)
		}
		return 0, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return resp.StatusCode, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
