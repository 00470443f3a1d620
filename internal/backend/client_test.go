package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClientConfig(t *testing.T) {

	_, err := NewClient("", "key")
	assert.ErrorIs(t, err, ErrMissingBaseURL)

	_, err = NewClient("http://localhost:8000", "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	c, err := NewClient("http://localhost:8000", "key")
	assert.NoError(t, err)
	assert.NotNil(t, c)
}

func TestGetPagedOrders(t *testing.T) {

	testCases := []struct {
		name          string
		body          string
		code          int
		expectHTTP    bool
		expectDecode  bool
		expectedItems int
		expectedTotal int
	}{
		{name: "ok", code: http.StatusOK, expectedItems: 2, expectedTotal: 12,
			body: `{"items": [
				{"live_comment_id": "c1", "username": "A", "amount": 100, "is_valid_order": true, "print_job_count": 3, "comment_ts": 1704153600},
				{"live_comment_id": 42, "username": "B", "amount": 0, "is_valid_order": false, "created_at": "2024-01-01T10:00:00Z"}
			], "total": 12, "has_prev": false, "has_next": true}`},
		{name: "empty page", code: http.StatusOK, body: `{"items": [], "total": 0}`},
		{name: "server error", code: http.StatusInternalServerError, body: "boom", expectHTTP: true},
		{name: "unauthorized", code: http.StatusUnauthorized, body: "bad key", expectHTTP: true},
		{name: "broken body", code: http.StatusOK, body: "{", expectDecode: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var gotQuery map[string][]string
			var gotKey string

			svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query()
				gotKey = r.Header.Get("X-API-Key")
				w.WriteHeader(tc.code)
				fmt.Fprint(w, tc.body)
			}))
			defer svr.Close()

			c, err := NewClient(svr.URL, "secret-key")
			assert.NoError(t, err)

			paged, err := c.GetPagedOrders(context.Background(), 2, 300)

			assert.Equal(t, "secret-key", gotKey)
			assert.Equal(t, []string{"2"}, gotQuery["page"])
			assert.Equal(t, []string{"300"}, gotQuery["page_size"])
			assert.Equal(t, []string{"0"}, gotQuery["only_valid"])
			assert.NotEmpty(t, gotQuery["_ts"])

			if tc.expectHTTP {
				var httpErr *HTTPError
				assert.ErrorAs(t, err, &httpErr)
				assert.Equal(t, tc.code, httpErr.Status)
				assert.Equal(t, tc.body, httpErr.Body)
				assert.Nil(t, paged)
				return
			}
			if tc.expectDecode {
				var decodeErr *DecodeError
				assert.ErrorAs(t, err, &decodeErr)
				assert.Nil(t, paged)
				return
			}

			assert.NoError(t, err)
			assert.Len(t, paged.Items, tc.expectedItems)
			assert.Equal(t, tc.expectedTotal, paged.Total)
		})
	}
}

func TestGetPagedOrdersFlexibleID(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": [{"live_comment_id": 42}, {"live_comment_id": "abc"}], "total": 2}`)
	}))
	defer svr.Close()

	c, _ := NewClient(svr.URL, "key")
	paged, err := c.GetPagedOrders(context.Background(), 1, 300)

	assert.NoError(t, err)
	assert.Equal(t, FlexID("42"), paged.Items[0].LiveCommentID)
	assert.Equal(t, FlexID("abc"), paged.Items[1].LiveCommentID)
}

func TestNetworkError(t *testing.T) {
	// nothing listens here
	c, _ := NewClient("http://127.0.0.1:1", "key")

	_, err := c.GetPagedOrders(context.Background(), 1, 300)

	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestGetOrderAndPrintJobs(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/orders/c1":
			fmt.Fprint(w, `{"live_comment_id": "c1", "username": "A", "amount": 250, "raw_message": "250+2"}`)
		case "/orders/c1/print-jobs":
			fmt.Fprint(w, `[{"id": 1, "status": "printed", "attempts": 1, "created_at": "2024-01-01T10:00:00Z"}]`)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	defer svr.Close()

	c, _ := NewClient(svr.URL, "key")

	order, err := c.GetOrder(context.Background(), "c1")
	assert.NoError(t, err)
	assert.Equal(t, "A", order.Username)
	assert.Equal(t, 250, order.Amount)

	jobs, err := c.GetPrintJobs(context.Background(), "c1")
	assert.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, "printed", jobs[0].Status)

	_, err = c.GetOrder(context.Background(), "missing")
	var httpErr *HTTPError
	assert.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}

func TestUpdateOrderSendsPatch(t *testing.T) {
	var gotMethod string
	var gotBody []byte

	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotBody, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, `{"live_comment_id": "c1", "amount": 300}`)
	}))
	defer svr.Close()

	c, _ := NewClient(svr.URL, "key")

	amount := 300
	record, err := c.UpdateOrder(context.Background(), "c1", OrderPatch{Amount: &amount})

	assert.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.JSONEq(t, `{"amount": 300}`, string(gotBody))
	assert.Equal(t, 300, record.Amount)
}

func TestReprint(t *testing.T) {
	var gotPath string
	var gotMethod string

	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer svr.Close()

	c, _ := NewClient(svr.URL, "key")

	err := c.Reprint(context.Background(), "c1")

	assert.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/orders/c1/reprint", gotPath)
}
