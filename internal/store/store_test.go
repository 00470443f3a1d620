package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellywell/printdesk/internal/backend"
	"github.com/wellywell/printdesk/internal/types"
)

type fakeFetcher struct {
	paged *backend.PagedOrders
	err   error

	gotPage     int
	gotPageSize int
	calls       int
}

func (f *fakeFetcher) GetPagedOrders(ctx context.Context, page int, pageSize int) (*backend.PagedOrders, error) {
	f.calls++
	f.gotPage = page
	f.gotPageSize = pageSize
	if f.err != nil {
		return nil, f.err
	}
	return f.paged, nil
}

func ptr(v float64) *float64 {
	return &v
}

func TestMapRecord(t *testing.T) {

	testCases := []struct {
		name     string
		record   backend.OrderRecord
		expected types.Order
	}{
		{
			name: "full record",
			record: backend.OrderRecord{
				LiveCommentID:     "c1",
				Username:          "buyer_a",
				RawMessage:        "250+2",
				Amount:            500,
				IsValidOrder:      true,
				LatestPrintStatus: "failed",
				LatestError:       "paper jam",
				PrintJobCount:     3,
				CommentTS:         ptr(1704103200),
			},
			expected: types.Order{
				ID:           "c1",
				BuyerID:      "buyer_a",
				RawMessage:   "250+2",
				Amount:       500,
				IsValid:      true,
				Status:       types.FailedStatus,
				ErrorMessage: "paper jam",
				ReprintCount: 2,
				HasTimestamp: true,
			},
		},
		{
			name:   "empty status defaults to queued",
			record: backend.OrderRecord{LiveCommentID: "c2"},
			expected: types.Order{
				ID:     "c2",
				Status: types.QueuedStatus,
			},
		},
		{
			name:     "zero print jobs never goes negative",
			record:   backend.OrderRecord{LiveCommentID: "c3", PrintJobCount: 0},
			expected: types.Order{ID: "c3", Status: types.QueuedStatus},
		},
		{
			name:     "single print job means no reprints",
			record:   backend.OrderRecord{LiveCommentID: "c4", PrintJobCount: 1},
			expected: types.Order{ID: "c4", Status: types.QueuedStatus},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapRecord(tc.record)

			assert.Equal(t, tc.expected.ID, got.ID)
			assert.Equal(t, tc.expected.BuyerID, got.BuyerID)
			assert.Equal(t, tc.expected.Amount, got.Amount)
			assert.Equal(t, tc.expected.IsValid, got.IsValid)
			assert.Equal(t, tc.expected.Status, got.Status)
			assert.Equal(t, tc.expected.ErrorMessage, got.ErrorMessage)
			assert.Equal(t, tc.expected.ReprintCount, got.ReprintCount)
			assert.Equal(t, tc.expected.HasTimestamp, got.HasTimestamp)
		})
	}
}

func TestSortNewestFirst(t *testing.T) {
	fetcher := &fakeFetcher{
		paged: &backend.PagedOrders{
			Items: []backend.OrderRecord{
				{LiveCommentID: "old", CommentTS: ptr(1704013200)},
				{LiveCommentID: "no-ts"},
				{LiveCommentID: "new", CommentTS: ptr(1704153600)},
				{LiveCommentID: "mid", CreatedAt: "2024-01-01T12:00:00Z"},
			},
			Total: 4,
		},
	}
	s := NewStore(fetcher, 300)

	err := s.LoadPage(context.Background(), 1, 300)
	require.NoError(t, err)

	orders := s.Orders()
	require.Len(t, orders, 4)
	assert.Equal(t, "new", orders[0].ID)
	assert.Equal(t, "mid", orders[1].ID)
	assert.Equal(t, "old", orders[2].ID)
	// missing timestamps sink to the bottom
	assert.Equal(t, "no-ts", orders[3].ID)
}

func TestLoadPageReplacesStateAtomically(t *testing.T) {
	fetcher := &fakeFetcher{
		paged: &backend.PagedOrders{
			Items:   []backend.OrderRecord{{LiveCommentID: "c1"}, {LiveCommentID: "c2"}},
			Total:   42,
			HasPrev: true,
			HasNext: true,
		},
	}
	s := NewStore(fetcher, 300)

	err := s.LoadPage(context.Background(), 3, 300)
	require.NoError(t, err)

	assert.Equal(t, 3, fetcher.gotPage)
	assert.Equal(t, 300, fetcher.gotPageSize)

	pager := s.Pager()
	assert.Equal(t, 3, pager.Page)
	assert.Equal(t, 42, pager.Total)
	assert.True(t, pager.HasPrev)
	assert.True(t, pager.HasNext)
	assert.Len(t, s.Orders(), 2)
}

func TestLoadPageKeepsLastKnownGoodOnError(t *testing.T) {
	fetcher := &fakeFetcher{
		paged: &backend.PagedOrders{
			Items: []backend.OrderRecord{{LiveCommentID: "c1"}},
			Total: 1,
		},
	}
	s := NewStore(fetcher, 300)
	require.NoError(t, s.LoadPage(context.Background(), 1, 300))

	fetcher.err = errors.New("upstream down")

	err := s.LoadPage(context.Background(), 2, 300)
	assert.Error(t, err)

	// previous page survives a failed load untouched
	assert.Len(t, s.Orders(), 1)
	assert.Equal(t, "c1", s.Orders()[0].ID)
	assert.Equal(t, 1, s.Pager().Page)
	assert.Equal(t, 2, fetcher.calls)
}

func TestSetPageClamps(t *testing.T) {
	s := NewStore(&fakeFetcher{}, 300)

	s.SetPage(5)
	assert.Equal(t, 5, s.Pager().Page)

	s.SetPage(0)
	assert.Equal(t, 1, s.Pager().Page)

	s.SetPage(-3)
	assert.Equal(t, 1, s.Pager().Page)
}
