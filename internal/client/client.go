// Package client talks to the billtrack HTTP API and to presigned storage
// URLs on behalf of interactive tools.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"billtrack/internal/dto"
)

const defaultTimeout = 60 * time.Second

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API rooted at baseURL. A nil httpClient gets a
// client with a 60s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) RequestUploadURL(ctx context.Context, fileName, fileType string) (*dto.UploadURLResponse, error) {
	var out dto.UploadURLResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/upload", dto.UploadURLRequest{
		FileName: fileName,
		FileType: fileType,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PutObject uploads data directly to a presigned URL.
func (c *Client) PutObject(ctx context.Context, url, contentType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(b))}
	}
	return nil
}

func (c *Client) CreateBill(ctx context.Context, req *dto.CreateBillRequest) (*dto.CreateBillResponse, error) {
	var out dto.CreateBillResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/bills", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListBills(ctx context.Context) ([]dto.BillWithURLResponse, error) {
	var out dto.ListBillsResponse
	if err := c.sendJSON(ctx, http.MethodGet, "/bills", nil, &out); err != nil {
		return nil, err
	}
	return out.Bills, nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(bs)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr dto.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &StatusError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
