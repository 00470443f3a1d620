package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// FlexID tolerates upstream ids arriving as either JSON strings or
// numbers.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// OrderRecord is one row of the upstream paged order feed.
type OrderRecord struct {
	LiveCommentID     FlexID   `json:"live_comment_id"`
	Username          string   `json:"username"`
	RawMessage        string   `json:"raw_message"`
	Amount            int      `json:"amount"`
	IsValidOrder      bool     `json:"is_valid_order"`
	LatestPrintStatus string   `json:"latest_print_status"`
	LatestError       string   `json:"latest_error"`
	PrintJobCount     int      `json:"print_job_count"`
	CreatedAt         string   `json:"created_at"`
	CommentTS         *float64 `json:"comment_ts"`
}

type PagedOrders struct {
	Items   []OrderRecord `json:"items"`
	Total   int           `json:"total"`
	HasPrev bool          `json:"has_prev"`
	HasNext bool          `json:"has_next"`
}

type PrintJob struct {
	ID        FlexID `json:"id"`
	Status    string `json:"status"`
	Attempts  int    `json:"attempts"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	LastError string `json:"last_error"`
}

// OrderPatch is a partial update. Soft delete sets IsValidOrder to
// false; records are never removed physically.
type OrderPatch struct {
	Amount       *int    `json:"amount,omitempty"`
	RawMessage   *string `json:"raw_message,omitempty"`
	IsValidOrder *bool   `json:"is_valid_order,omitempty"`
}

type Client struct {
	base string
	key  string
	http *resty.Client
}

func NewClient(base string, key string) (*Client, error) {
	if base == "" {
		return nil, ErrMissingBaseURL
	}
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	return &Client{base: base, key: key, http: resty.New()}, nil
}

// do issues one request with the API key and a cache-busting _ts
// param, surfacing the error taxonomy. The body is returned raw so
// callers decide how to decode.
func (c *Client) do(ctx context.Context, method string, path string, body interface{}) ([]byte, error) {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-API-Key", c.key).
		SetHeader("Cache-Control", "no-cache").
		SetQueryParam("_ts", strconv.FormatInt(time.Now().UnixMilli(), 10))
	if body != nil {
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(body)
	}

	resp, err := req.Execute(method, c.base+path)
	if err != nil {
		return nil, fmt.Errorf("%w", &NetworkError{Err: err})
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w", &HTTPError{Status: resp.StatusCode(), Body: string(resp.Body())})
	}
	return resp.Body(), nil
}

// GetPagedOrders requests one full page. Server-side validity
// filtering is pinned off (only_valid=0) so the client-side filter
// stays authoritative and can toggle without a round-trip.
func (c *Client) GetPagedOrders(ctx context.Context, page int, pageSize int) (*PagedOrders, error) {
	path := fmt.Sprintf("/orders/paged?page=%d&page_size=%d&only_valid=0", page, pageSize)

	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var paged PagedOrders
	if err := json.Unmarshal(body, &paged); err != nil {
		return nil, fmt.Errorf("%w", &DecodeError{Err: err})
	}
	return &paged, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*OrderRecord, error) {
	body, err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var record OrderRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("%w", &DecodeError{Err: err})
	}
	return &record, nil
}

func (c *Client) GetPrintJobs(ctx context.Context, id string) ([]PrintJob, error) {
	body, err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id)+"/print-jobs", nil)
	if err != nil {
		return nil, err
	}

	var jobs []PrintJob
	if err := json.Unmarshal(body, &jobs); err != nil {
		return nil, fmt.Errorf("%w", &DecodeError{Err: err})
	}
	return jobs, nil
}

func (c *Client) UpdateOrder(ctx context.Context, id string, patch OrderPatch) (*OrderRecord, error) {
	body, err := c.do(ctx, http.MethodPatch, "/orders/"+url.PathEscape(id), patch)
	if err != nil {
		return nil, err
	}

	var record OrderRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("%w", &DecodeError{Err: err})
	}
	return &record, nil
}

// Reprint enqueues a new print job upstream. No request body.
func (c *Client) Reprint(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(id)+"/reprint", nil)
	return err
}
