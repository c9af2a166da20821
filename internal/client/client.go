// Package client provides an HTTP client for the client-visits REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/evcraddock/client-visits/internal/auth"
	"github.com/evcraddock/client-visits/internal/visit"
)

// Client is an HTTP client for the client-visits API.
type Client struct {
	baseURL    string
	email      string
	password   string
	httpClient *http.Client
}

// New creates a new API client that authenticates as email.
func New(baseURL, email, password string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		email:      email,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string // per-field form errors, if any
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap maps the status code back to the store error it came from, so
// callers can use errors.Is the same way they would against a local store.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return visit.ErrNotFound
	case http.StatusConflict:
		return visit.ErrInvalidTransition
	case http.StatusBadRequest:
		if len(e.Fields) > 0 {
			return &visit.FormError{Fields: e.Fields}
		}
	}
	return nil
}

// MeResponse is the response from GET /api/me.
type MeResponse struct {
	User    auth.User `json:"user"`
	Scoping bool      `json:"scoping"`
}

// Me returns the user the credentials belong to.
func (c *Client) Me(ctx context.Context) (*MeResponse, error) {
	var resp MeResponse
	if err := c.get(ctx, "/api/me", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListOptions controls filtering for ListVisits, Summary and Export.
type ListOptions struct {
	Status string // all, draft, submitted (empty = all)
	All    bool   // every owner's visits, when the server is not scoping
}

func (o ListOptions) query(extra url.Values) string {
	params := url.Values{}
	if o.Status != "" {
		params.Set("status", o.Status)
	}
	if o.All {
		params.Set("all", "true")
	}
	for k, v := range extra {
		params[k] = v
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

// ListVisits returns visits, optionally filtered.
func (c *Client) ListVisits(ctx context.Context, opts ListOptions) ([]visit.ClientVisit, error) {
	var visits []visit.ClientVisit
	if err := c.get(ctx, "/api/visits"+opts.query(nil), &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// GetVisit returns one visit.
func (c *Client) GetVisit(ctx context.Context, id string) (*visit.ClientVisit, error) {
	var v visit.ClientVisit
	if err := c.get(ctx, "/api/visits/"+url.PathEscape(id), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateVisit records a new visit from form.
func (c *Client) CreateVisit(ctx context.Context, form visit.Form, status visit.Status) (*visit.ClientVisit, error) {
	body := struct {
		visit.Form
		Status visit.Status `json:"status,omitempty"`
	}{form, status}

	var v visit.ClientVisit
	if err := c.send(ctx, http.MethodPost, "/api/visits", body, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateVisit applies patch to a visit and returns the result.
func (c *Client) UpdateVisit(ctx context.Context, id string, patch visit.Patch) (*visit.ClientVisit, error) {
	var v visit.ClientVisit
	if err := c.send(ctx, http.MethodPatch, "/api/visits/"+url.PathEscape(id), patch, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// SubmitVisit marks a visit as submitted.
func (c *Client) SubmitVisit(ctx context.Context, id string) (*visit.ClientVisit, error) {
	var v visit.ClientVisit
	if err := c.send(ctx, http.MethodPost, "/api/visits/"+url.PathEscape(id)+"/submit", nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Summary returns the dashboard summary with up to recent newest visits.
func (c *Client) Summary(ctx context.Context, opts ListOptions, recent int) (*visit.Summary, error) {
	extra := url.Values{"recent": {strconv.Itoa(recent)}}
	var s visit.Summary
	if err := c.get(ctx, "/api/summary"+opts.query(extra), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Export downloads the .xlsx workbook and copies it to w.
func (c *Client) Export(ctx context.Context, opts ListOptions, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/export"+opts.query(nil), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.roundTrip(req)
	if err != nil {
		return err
	}
	defer closeBody(resp)

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("reading export: %w", err)
	}
	return nil
}

// get performs a GET request and decodes the response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result)
}

// send performs a request with an optional JSON body and decodes the response.
func (c *Client) send(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, result)
}

// do executes a request and decodes a JSON result.
func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.roundTrip(req)
	if err != nil {
		return err
	}
	defer closeBody(resp)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

// roundTrip sends req with credentials and turns error statuses into *APIError.
// On success the caller owns the response body.
func (c *Client) roundTrip(req *http.Request) (*http.Response, error) {
	if c.email != "" {
		req.SetBasicAuth(c.email, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 400 {
		return resp, nil
	}
	defer closeBody(resp)

	apiErr := &APIError{StatusCode: resp.StatusCode}
	respBody, _ := io.ReadAll(resp.Body)
	var errResp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
		apiErr.Message = errResp.Error
		apiErr.Fields = errResp.Fields
	} else {
		apiErr.Message = fmt.Sprintf("server error: %s", http.StatusText(resp.StatusCode))
	}
	return nil, apiErr
}

func closeBody(resp *http.Response) {
	if cerr := resp.Body.Close(); cerr != nil {
		slog.Warn("closing response body", "error", cerr)
	}
}
