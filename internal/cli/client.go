package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"event-ingestion/internal/domain/model"
)

// ErrJobNotFound is returned when the service answers 404 for a job.
var ErrJobNotFound = errors.New("job not found")

// Client is a thin wrapper over the ingestion HTTP API.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

type UploadResult struct {
	Message string `json:"message"`
	JobID   int64  `json:"job_id"`
}

type apiError struct {
	Detail string `json:"detail"`
}

func (c *Client) Upload(ctx context.Context, fileName string, content []byte) (*UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/events/ingest", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResult
	if err := c.do(req, http.StatusAccepted, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Status(ctx context.Context, jobID int64) (*model.IngestionReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.base+"/api/events/ingestion-status/"+strconv.FormatInt(jobID, 10), nil)
	if err != nil {
		return nil, err
	}
	var out model.IngestionReport
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Wait polls Status every interval until the job is terminal or ctx ends.
func (c *Client) Wait(ctx context.Context, jobID int64, interval time.Duration) (*model.IngestionReport, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		r, err := c.Status(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if r.Status.IsTerminal() {
			return r, nil
		}
		select {
		case <-ctx.Done():
			return r, ctx.Err()
		case <-ticker.C:
		}
	}
}

type StaleJobs struct {
	OlderThan string       `json:"older_than"`
	Jobs      []*model.Job `json:"jobs"`
}

func (c *Client) Stale(ctx context.Context, olderThan time.Duration) (*StaleJobs, error) {
	u := c.base + "/api/events/ingestion-jobs/stale"
	if olderThan > 0 {
		u += "?" + url.Values{"older_than": {olderThan.String()}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var out StaleJobs
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, jobID int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.base+"/api/events/ingestion-jobs/"+strconv.FormatInt(jobID, 10), nil)
	if err != nil {
		return err
	}
	return c.do(req, http.StatusNoContent, nil)
}

func (c *Client) do(req *http.Request, want int, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var ae apiError
		_ = json.Unmarshal(b, &ae)
		if resp.StatusCode == http.StatusNotFound && strings.Contains(req.URL.Path, "ingestion-") {
			return ErrJobNotFound
		}
		if ae.Detail != "" {
			return fmt.Errorf("%s %s: %d %s", req.Method, req.URL.Path, resp.StatusCode, ae.Detail)
		}
		return fmt.Errorf("%s %s: unexpected status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
