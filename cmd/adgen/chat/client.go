package chatcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adgenius/adgen/api"
	"github.com/adgenius/adgen/pkg/compliance"
)

const requestTimeout = 90 * time.Second

// apiClient talks to a running adgen server.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(base string) *apiClient {
	return &apiClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: requestTimeout},
	}
}

// statusError is a non-2xx reply from the server.
type statusError struct {
	Status  int
	Message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (c *apiClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach adgen server at %s: %w", c.base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &statusError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *apiClient) createSession(ctx context.Context, req api.CreateSessionRequest) (*api.SessionResponse, error) {
	var out api.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/sessions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) getSession(ctx context.Context, id string) (*api.SessionResponse, error) {
	var out api.SessionResponse
	if err := c.do(ctx, http.MethodGet, "/sessions/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) chat(ctx context.Context, id string, req api.ChatRequest) (*api.ChatResponse, error) {
	var out api.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) history(ctx context.Context, id, step string) (*api.HistoryResponse, error) {
	var out api.HistoryResponse
	if err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/"+step, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) compliance(ctx context.Context, id, brand string) (*compliance.Result, error) {
	path := "/sessions/" + id + "/compliance"
	if brand != "" {
		path += "?brand=" + url.QueryEscape(brand)
	}

	var out compliance.Result
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
