// Package api is the client for the Autograder REST API, the backend that
// stores exams, answer sheet uploads, and grading results. The web app holds
// no copy of that data; every read goes through this client.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shiiviitiiwarii28/Autograder/internal/model"
)

// Client wraps the Autograder API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates an API client for the given base URL.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("api base URL is required")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base URL must be http or https, got %q", baseURL)
	}
	return &Client{
		baseURL: trimmed,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// Ping checks that the API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api health check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api health check: unexpected status %s", resp.Status)
	}
	return nil
}

// AvailableExams lists the exams visible to a student, with upload status
// and a has-results marker per exam.
func (c *Client) AvailableExams(ctx context.Context, studentID string) ([]model.ExamSummary, error) {
	var env struct {
		Exams []model.ExamSummary `json:"exams"`
	}
	path := "/results/student/" + url.PathEscape(studentID) + "/available-exams"
	if err := c.get(ctx, path, &env); err != nil {
		return nil, err
	}
	return env.Exams, nil
}

// Uploads lists a student's answer sheet uploads.
func (c *Client) Uploads(ctx context.Context, studentID string) ([]model.UploadRecord, error) {
	var env struct {
		Uploads []model.UploadRecord `json:"uploads"`
	}
	path := "/upload/student/" + url.PathEscape(studentID) + "/uploads"
	if err := c.get(ctx, path, &env); err != nil {
		return nil, err
	}
	return env.Uploads, nil
}

// StudentResult fetches a student's graded result for one exam. It returns
// (nil, nil) when the API has no results for that exam yet.
func (c *Client) StudentResult(ctx context.Context, studentID, examID string) (*model.ExamResult, error) {
	var env struct {
		Exams []model.ExamResult `json:"exams"`
	}
	path := "/results/student/" + url.PathEscape(studentID) + "?exam_id=" + url.QueryEscape(examID)
	if err := c.get(ctx, path, &env); err != nil {
		return nil, err
	}
	if len(env.Exams) == 0 {
		return nil, nil
	}
	return &env.Exams[0], nil
}

// ExamUploadStatus lists every upload for an exam with its processing state,
// for the teacher view.
func (c *Client) ExamUploadStatus(ctx context.Context, examID string) ([]model.ExamUpload, error) {
	var env struct {
		Uploads []model.ExamUpload `json:"uploads"`
	}
	path := "/upload/exam/" + url.PathEscape(examID) + "/status"
	if err := c.get(ctx, path, &env); err != nil {
		return nil, err
	}
	return env.Uploads, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	slog.Debug("api response", "path", path, "status", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}
