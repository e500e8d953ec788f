// Package client provides a Go client for the deal memo API: request
// helpers, a serialized status poller, and a server-sent events consumer.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// ErrStillRunning is returned by StartGeneration when the server's wait
// window expired while the job kept running. The returned job snapshot can
// be polled for further progress.
var ErrStillRunning = errors.New("memo generation still running")

// Deal mirrors the API's deal representation.
type Deal struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Company     string    `json:"company"`
	Stage       string    `json:"stage"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DealList mirrors the API's deal listing.
type DealList struct {
	Deals []Deal `json:"deals"`
}

// Section mirrors the API's per-section status representation.
type Section struct {
	ID          uuid.UUID  `json:"id"`
	SectionType string     `json:"section_type"`
	Order       int        `json:"order"`
	Status      string     `json:"status"`
	Content     string     `json:"content,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// MemoJob mirrors the API's memo job representation.
type MemoJob struct {
	JobID             uuid.UUID         `json:"job_id"`
	DealID            uuid.UUID         `json:"deal_id"`
	Status            string            `json:"status"`
	Progress          float64           `json:"progress"`
	SectionsCompleted int               `json:"sections_completed"`
	TotalSections     int               `json:"total_sections"`
	Sections          []Section         `json:"sections"`
	Content           map[string]string `json:"content,omitempty"`
	Error             string            `json:"error,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// IsTerminal reports whether the job has finished, successfully or not.
func (j *MemoJob) IsTerminal() bool {
	return j.Status == "completed" || j.Status == "failed"
}

// CreateDealRequest is the payload for creating a deal.
type CreateDealRequest struct {
	Name        string `json:"name"`
	Company     string `json:"company"`
	Stage       string `json:"stage"`
	Description string `json:"description"`
}

// APIError describes a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	TraceID    string `json:"trace_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.TraceID != "" {
		return fmt.Sprintf("api error %d: %s (trace %s)", e.StatusCode, e.Message, e.TraceID)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client is a deal memo API client.
type Client struct {
	http *resty.Client
}

// New creates a Client for the given base URL. The token is sent as a bearer
// credential on every request; pass an empty token for unauthenticated use.
func New(baseURL, token string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(0)
	if token != "" {
		httpClient.SetAuthToken(token)
	}

	return &Client{http: httpClient}
}

// CreateDeal creates a new deal.
func (c *Client) CreateDeal(ctx context.Context, req CreateDealRequest) (*Deal, error) {
	var deal Deal
	var apiErr APIError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&deal).
		SetError(&apiErr).
		Post("/api/deals")
	if err != nil {
		return nil, fmt.Errorf("create deal request failed: %w", err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return nil, &apiErr
	}

	return &deal, nil
}

// GetDeal retrieves a deal by ID.
func (c *Client) GetDeal(ctx context.Context, dealID uuid.UUID) (*Deal, error) {
	var deal Deal
	var apiErr APIError

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&deal).
		SetError(&apiErr).
		Get("/api/deals/" + dealID.String())
	if err != nil {
		return nil, fmt.Errorf("get deal request failed: %w", err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return nil, &apiErr
	}

	return &deal, nil
}

// ListDeals retrieves a page of deals.
func (c *Client) ListDeals(ctx context.Context, limit, offset int) (*DealList, error) {
	var list DealList
	var apiErr APIError

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetQueryParam("offset", fmt.Sprintf("%d", offset)).
		SetResult(&list).
		SetError(&apiErr).
		Get("/api/deals")
	if err != nil {
		return nil, fmt.Errorf("list deals request failed: %w", err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return nil, &apiErr
	}

	return &list, nil
}

// StartGeneration launches memo generation for a deal and waits for the
// server's response. When the server's wait window expires it returns the
// running job snapshot together with ErrStillRunning; callers should then
// poll or stream the job status.
func (c *Client) StartGeneration(ctx context.Context, dealID uuid.UUID) (*MemoJob, error) {
	var job MemoJob
	var apiErr APIError

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&job).
		SetError(&apiErr).
		Post("/api/deals/" + dealID.String() + "/memo")
	if err != nil {
		return nil, fmt.Errorf("start generation request failed: %w", err)
	}

	if resp.StatusCode() == http.StatusGatewayTimeout {
		// The 504 body carries the job snapshot, not an error envelope.
		if unmarshalErr := json.Unmarshal(resp.Body(), &job); unmarshalErr != nil {
			return nil, fmt.Errorf("failed to decode running job snapshot: %w", unmarshalErr)
		}
		return &job, ErrStillRunning
	}

	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return nil, &apiErr
	}

	return &job, nil
}

// GetMemoStatus retrieves the current status of a memo job.
func (c *Client) GetMemoStatus(ctx context.Context, jobID uuid.UUID) (*MemoJob, error) {
	var job MemoJob
	var apiErr APIError

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&job).
		SetError(&apiErr).
		Get("/api/memos/" + jobID.String())
	if err != nil {
		return nil, fmt.Errorf("get memo status request failed: %w", err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return nil, &apiErr
	}

	return &job, nil
}
