package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client talks to a running daemon over its HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the daemon bound at addr (host:port or URL).
func NewClient(addr string) (*Client, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		return nil, fmt.Errorf("daemon address is required")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse daemon address: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(parsed.String(), "/"),
		http:    &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

// Health checks daemon liveness.
func (c *Client) Health(ctx context.Context) error {
	var resp HealthResponse
	if err := c.get(ctx, "/healthz", &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("daemon unhealthy: %s", resp.Status)
	}
	return nil
}

// Jobs lists the active jobs.
func (c *Client) Jobs(ctx context.Context) ([]JobView, error) {
	var resp JobListResponse
	if err := c.get(ctx, "/api/jobs", &resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// Job fetches one active job.
func (c *Client) Job(ctx context.Context, id string) (*JobView, error) {
	var resp JobResponse
	if err := c.get(ctx, "/api/jobs/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	return &resp.Job, nil
}

// Upload streams a local file to the daemon and returns its upload token.
func (c *Client) Upload(ctx context.Context, path string) (*UploadResponse, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		part, err := writer.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/uploads", pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp UploadResponse
	if err := c.do(req, http.StatusCreated, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitJob enqueues a job for a claimed upload token.
func (c *Client) SubmitJob(ctx context.Context, reqBody SubmitJobRequest) (*JobView, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/jobs", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp JobResponse
	if err := c.do(req, http.StatusAccepted, &resp); err != nil {
		return nil, err
	}
	return &resp.Job, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, http.StatusOK, out)
}

func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var apiErr ErrorResponse
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("daemon returned %d", resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
