package store

import (
	"context"
	"sort"

	"github.com/wellywell/printdesk/internal/backend"
	"github.com/wellywell/printdesk/internal/ordertime"
	"github.com/wellywell/printdesk/internal/types"
)

// OrderFetcher is the slice of the upstream client the store needs.
type OrderFetcher interface {
	GetPagedOrders(ctx context.Context, page int, pageSize int) (*backend.PagedOrders, error)
}

// Store owns the current server page of orders plus pagination
// metadata. The order set is replaced wholesale on every successful
// load; on failure the previous page stays visible.
type Store struct {
	client OrderFetcher
	orders []types.Order
	pager  types.PagerState
}

func NewStore(client OrderFetcher, pageSize int) *Store {
	return &Store{
		client: client,
		pager:  types.PagerState{Page: 1, PageSize: pageSize},
	}
}

// LoadPage issues exactly one request for the given page, maps the
// records and replaces the stored set sorted newest-first. Orders
// without a resolvable timestamp sort as oldest. Nothing is mutated
// when the fetch or decode fails.
//
// The store itself is not synchronized. All mutation is expected to
// funnel through the owning engine, which serializes FetchPage results
// into ApplyPage under its own lock.
func (s *Store) LoadPage(ctx context.Context, page int, pageSize int) error {
	paged, err := s.FetchPage(ctx, page, pageSize)
	if err != nil {
		return err
	}
	s.ApplyPage(page, pageSize, paged)
	return nil
}

// FetchPage performs the network half of LoadPage without touching
// stored state.
func (s *Store) FetchPage(ctx context.Context, page int, pageSize int) (*backend.PagedOrders, error) {
	return s.client.GetPagedOrders(ctx, page, pageSize)
}

// ApplyPage replaces the stored set and pager from one fetched page.
func (s *Store) ApplyPage(page int, pageSize int, paged *backend.PagedOrders) {
	orders := make([]types.Order, 0, len(paged.Items))
	for _, record := range paged.Items {
		orders = append(orders, MapRecord(record))
	}
	SortNewestFirst(orders)

	s.orders = orders
	s.pager = types.PagerState{
		Page:     page,
		PageSize: pageSize,
		Total:    paged.Total,
		HasPrev:  paged.HasPrev,
		HasNext:  paged.HasNext,
	}
}

// MapRecord converts one upstream record into the client snapshot
// shape. A missing print status defaults to queued; the reprint count
// is the job count minus the initial print, never negative.
func MapRecord(record backend.OrderRecord) types.Order {
	status := types.Status(record.LatestPrintStatus)
	if status == "" {
		status = types.QueuedStatus
	}

	reprints := record.PrintJobCount - 1
	if reprints < 0 {
		reprints = 0
	}

	ts, ok := ordertime.Resolve(record.CommentTS, record.CreatedAt)

	return types.Order{
		ID:           string(record.LiveCommentID),
		BuyerID:      record.Username,
		RawMessage:   record.RawMessage,
		Amount:       record.Amount,
		IsValid:      record.IsValidOrder,
		Status:       status,
		ErrorMessage: record.LatestError,
		ReprintCount: reprints,
		Timestamp:    ts,
		HasTimestamp: ok,
	}
}

// SortNewestFirst sorts in place by resolved instant, newest first.
// Unresolvable timestamps count as instant zero.
func SortNewestFirst(orders []types.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return sortKey(orders[i]) > sortKey(orders[j])
	})
}

func sortKey(o types.Order) int64 {
	if !o.HasTimestamp {
		return 0
	}
	return o.Timestamp.UnixMilli()
}

// Orders returns the stored page. Callers must treat it as read-only.
func (s *Store) Orders() []types.Order {
	return s.orders
}

func (s *Store) Pager() types.PagerState {
	return s.pager
}

// SetPage moves the client-owned page pointer without fetching. Pages
// start at 1.
func (s *Store) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.pager.Page = page
}
