// Package client provides a typed HTTP client for the regdesk API, used by
// the dashboard session layer and by external consumers.
package client

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

	"github.com/finarth/regdesk/internal/dashboard/audit"
	domain "github.com/finarth/regdesk/internal/domain/circulars"
)

const defaultTimeout = 30 * time.Second

// Client calls the regdesk HTTP API at a configurable base URL.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New builds a client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
}

// NewWithHTTPClient lets callers supply their own http.Client, mainly for
// tests and custom transports.
func NewWithHTTPClient(baseURL string, httpc *http.Client) *Client {
	c := New(baseURL)
	if httpc != nil {
		c.httpc = httpc
	}
	return c
}

// Circulars lists RBI circulars.
func (c *Client) Circulars(ctx context.Context) ([]domain.Circular, error) {
	var out []domain.Circular
	if err := c.getJSON(ctx, "/circulars", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SEBICirculars lists SEBI circulars.
func (c *Client) SEBICirculars(ctx context.Context) ([]domain.Circular, error) {
	var out []domain.Circular
	if err := c.getJSON(ctx, "/sebi-circulars", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Summary fetches the generated summary for a circular.
func (c *Client) Summary(ctx context.Context, id domain.CircularID) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	path := fmt.Sprintf("/circulars/%d/summary-live", id)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// Clauses fetches the extracted clauses for a circular.
func (c *Client) Clauses(ctx context.Context, id domain.CircularID) ([]domain.Clause, error) {
	var out struct {
		Clauses []domain.Clause `json:"clauses"`
	}
	path := fmt.Sprintf("/circulars/%d/clauses-live", id)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Clauses, nil
}

// Insights fetches the impact assessment for a circular. A body with all
// fields empty decodes to a zero value, which callers treat as absent.
func (c *Client) Insights(ctx context.Context, id domain.CircularID) (*domain.Insights, error) {
	var out domain.Insights
	path := fmt.Sprintf("/circulars/%d/insights-live", id)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// References fetches the external/internal reference groups for a circular.
func (c *Client) References(ctx context.Context, id domain.CircularID) (domain.ReferenceGroups, error) {
	var out domain.ReferenceGroups
	path := fmt.Sprintf("/circulars/%d/references", id)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return domain.ReferenceGroups{}, err
	}
	return out, nil
}

// Reference fetches one reference with its extracted text.
func (c *Client) Reference(ctx context.Context, circularID domain.CircularID, refID int64) (domain.Reference, error) {
	var out domain.Reference
	path := fmt.Sprintf("/circulars/%d/references/%d", circularID, refID)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return domain.Reference{}, err
	}
	return out, nil
}

// ReferenceSummary fetches the generated summary for a reference.
func (c *Client) ReferenceSummary(ctx context.Context, circularID domain.CircularID, refID int64) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	path := fmt.Sprintf("/circulars/%d/references/%d/summary-live", circularID, refID)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// Chapters fetches the chapter list for a reference.
func (c *Client) Chapters(ctx context.Context, refID int64) ([]domain.Chapter, error) {
	var out struct {
		Chapters []domain.Chapter `json:"chapters"`
	}
	path := fmt.Sprintf("/references/%d/chapters-live", refID)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Chapters, nil
}

// ChapterSummary fetches a chapter-scoped summary, optionally passing the
// parent reference's summary as context.
func (c *Client) ChapterSummary(ctx context.Context, refID int64, title, parentSummary string) (string, error) {
	q := url.Values{}
	q.Set("title", title)
	if parentSummary != "" {
		q.Set("parent_summary", parentSummary)
	}
	var out struct {
		Summary string `json:"summary"`
	}
	path := fmt.Sprintf("/references/%d/chapter-summary?%s", refID, q.Encode())
	if err := c.getJSON(ctx, path, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// Actionables generates compliance actionables for a clause text.
func (c *Client) Actionables(ctx context.Context, clause string) ([]domain.Actionable, error) {
	var out struct {
		Actionables []domain.Actionable `json:"actionables"`
	}
	body := map[string]string{"clause": clause}
	if err := c.postJSON(ctx, "/generate-actionables", body, &out); err != nil {
		return nil, err
	}
	return out.Actionables, nil
}

// Chat sends one user message to the assistant.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var out struct {
		Reply string `json:"reply"`
	}
	body := map[string]string{"message": message}
	if err := c.postJSON(ctx, "/chat", body, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}

// Audits lists the audit register.
func (c *Client) Audits(ctx context.Context) ([]audit.Audit, error) {
	var out []audit.Audit
	if err := c.getJSON(ctx, "/audits", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Audit fetches one audit with its controls, findings and evidence.
func (c *Client) Audit(ctx context.Context, id string) (audit.Audit, error) {
	var out audit.Audit
	err := c.getJSON(ctx, "/audits/"+url.PathEscape(id), &out)
	return out, err
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: unexpected status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
