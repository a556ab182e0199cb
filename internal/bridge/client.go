package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"filefield/internal/host"

	"github.com/google/uuid"
)

// Client implements host.Capabilities against a remote Server.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ host.Capabilities = (*Client)(nil)

// NewClient creates a client for the bridge at baseURL. A nil httpClient
// uses http.DefaultClient; per-call deadlines come from the context.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// FileExists asks the remote host.
func (c *Client) FileExists(ctx context.Context, path, fieldType string) (bool, error) {
	var resp existsResponse
	if err := c.post(ctx, pathFileExists, existsRequest{File: path, Type: fieldType}, &resp); err != nil {
		return false, err
	}
	return resp.Exists, nil
}

// PickFile asks the remote host to open its file dialog.
func (c *Client) PickFile(ctx context.Context) (string, error) {
	var resp pickResponse
	if err := c.post(ctx, pathGetFile, struct{}{}, &resp); err != nil {
		return "", err
	}
	if resp.Cancelled || resp.Path == "" {
		return "", host.ErrCancelled
	}
	return resp.Path, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("bridge: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("bridge: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerRequestID, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("bridge: %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("bridge: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return &RemoteError{Status: resp.StatusCode, Message: e.Error}
		}
		return &RemoteError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("bridge: decode response: %w", err)
	}
	return nil
}

// RemoteError is a failure reported by the remote host.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("bridge: remote host returned %d: %s", e.Status, e.Message)
}
