package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	logger "github.com/sirupsen/logrus"

	"github.com/wellywell/printdesk/internal/backend"
	"github.com/wellywell/printdesk/internal/db"
	"github.com/wellywell/printdesk/internal/export"
	"github.com/wellywell/printdesk/internal/filterview"
	"github.com/wellywell/printdesk/internal/refresh"
	"github.com/wellywell/printdesk/internal/store"
	"github.com/wellywell/printdesk/internal/types"
)

const (
	settingDateFilter = "list_date_filter"
	settingOnlyValid  = "list_only_valid"
	settingRangeDays  = "user_range_days"
)

var (
	ErrNegativeAmount = errors.New("amount must be a non-negative integer")
	ErrUnknownSurface = errors.New("unknown overlay surface")
)

var knownSurfaces = map[string]struct{}{
	refresh.SurfaceBuyerModal:   {},
	refresh.SurfaceListFilter:   {},
	refresh.SurfaceOrderDetail:  {},
	refresh.SurfaceEditOrder:    {},
	refresh.SurfaceDeleteOrder:  {},
	refresh.SurfaceReprintOrder: {},
}

// Settings is the key-value persistence the engine writes its filter
// state through. It never assumes more than get/save semantics.
type Settings interface {
	SaveSetting(ctx context.Context, key string, value string) error
	GetSetting(ctx context.Context, key string) (string, error)
}

// OrderAPI is the slice of the upstream client used for single-order
// operations.
type OrderAPI interface {
	GetOrder(ctx context.Context, id string) (*backend.OrderRecord, error)
	GetPrintJobs(ctx context.Context, id string) ([]backend.PrintJob, error)
	UpdateOrder(ctx context.Context, id string, patch backend.OrderPatch) (*backend.OrderRecord, error)
	Reprint(ctx context.Context, id string) error
}

// Engine owns the in-memory page and the derived view. One mutex
// covers store mutation and view recomputation, so "store updated" and
// "view recomputed" are a single step and no intermediate state is
// observable. Network calls run outside the lock; a manual refresh and
// a scheduled one may race, and the last load to land wins whole.
type Engine struct {
	mu        sync.Mutex
	store     *store.Store
	api       OrderAPI
	settings  Settings
	cfg       types.FilterConfig
	view      []types.Order
	rangeDays int

	sched *refresh.Scheduler
}

func NewEngine(s *store.Store, api OrderAPI, settings Settings) *Engine {
	return &Engine{
		store:     s,
		api:       api,
		settings:  settings,
		rangeDays: 7,
	}
}

// AttachScheduler wires the pause/busy gates. Must be called before
// serving traffic.
func (e *Engine) AttachScheduler(sched *refresh.Scheduler) {
	e.sched = sched
}

func (e *Engine) markActivity() {
	if e.sched != nil {
		e.sched.MarkActivity()
	}
}

// LoadSettings restores the persisted filter state. Missing keys keep
// defaults; a broken stored value is logged and ignored rather than
// blocking startup.
func (e *Engine) LoadSettings(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if raw, err := e.settings.GetSetting(ctx, settingDateFilter); err == nil {
		var dateRange types.DateRange
		if jsonErr := json.Unmarshal([]byte(raw), &dateRange); jsonErr == nil {
			e.cfg.DateRange = dateRange
		} else {
			logger.Errorf("stored date filter unreadable: %s", jsonErr.Error())
		}
	} else if !errors.Is(err, db.ErrSettingNotFound) {
		logger.Error(err.Error())
	}

	if raw, err := e.settings.GetSetting(ctx, settingOnlyValid); err == nil {
		e.cfg.OnlyValid = raw == "1"
	} else if !errors.Is(err, db.ErrSettingNotFound) {
		logger.Error(err.Error())
	}

	if raw, err := e.settings.GetSetting(ctx, settingRangeDays); err == nil {
		if raw == "30" {
			e.rangeDays = 30
		}
	} else if !errors.Is(err, db.ErrSettingNotFound) {
		logger.Error(err.Error())
	}
}

// refresh reloads the current page and recomputes the view. The fetch
// runs unlocked; apply and recompute are one critical section.
func (e *Engine) refresh(ctx context.Context) error {
	e.mu.Lock()
	pager := e.store.Pager()
	e.mu.Unlock()

	return e.loadPage(ctx, pager.Page, pager.PageSize)
}

func (e *Engine) loadPage(ctx context.Context, page int, pageSize int) error {
	paged, err := e.store.FetchPage(ctx, page, pageSize)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.ApplyPage(page, pageSize, paged)
	e.view = filterview.Apply(e.store.Orders(), e.cfg)
	return nil
}

// RefreshTick is the scheduler entry point. It must not count as user
// activity or the scheduler would starve itself.
func (e *Engine) RefreshTick(ctx context.Context) error {
	return e.refresh(ctx)
}

// ForceRefresh is the operator-initiated reload.
func (e *Engine) ForceRefresh(ctx context.Context) error {
	e.markActivity()
	return e.refresh(ctx)
}

// RequestPage moves to another server page. Pages below 1 clamp to 1.
func (e *Engine) RequestPage(ctx context.Context, page int) error {
	e.markActivity()
	if page < 1 {
		page = 1
	}

	e.mu.Lock()
	pageSize := e.store.Pager().PageSize
	e.mu.Unlock()

	return e.loadPage(ctx, page, pageSize)
}

// ViewSnapshot is what the UI renders: the filtered view plus pager
// and filter state.
type ViewSnapshot struct {
	Orders      []types.Order
	Pager       types.PagerState
	Filter      types.FilterConfig
	AutoRefresh bool
}

func (e *Engine) View() ViewSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	orders := make([]types.Order, len(e.view))
	copy(orders, e.view)

	snapshot := ViewSnapshot{
		Orders: orders,
		Pager:  e.store.Pager(),
		Filter: e.cfg,
	}
	if e.sched != nil {
		snapshot.AutoRefresh = e.sched.Enabled()
	}
	return snapshot
}

// SetFilter replaces the filter config, recomputes the view without a
// network call and persists the new state. An enabled date range with
// a missing bound is stored as-is and simply filters nothing.
func (e *Engine) SetFilter(ctx context.Context, cfg types.FilterConfig) error {
	e.markActivity()

	e.mu.Lock()
	e.cfg = cfg
	e.view = filterview.Apply(e.store.Orders(), e.cfg)
	e.mu.Unlock()

	raw, err := json.Marshal(cfg.DateRange)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	if err := e.settings.SaveSetting(ctx, settingDateFilter, string(raw)); err != nil {
		return err
	}

	onlyValid := "0"
	if cfg.OnlyValid {
		onlyValid = "1"
	}
	return e.settings.SaveSetting(ctx, settingOnlyValid, onlyValid)
}

func (e *Engine) Filter() types.FilterConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// SetRangeDays persists the buyer-modal quick range (7 or 30 days);
// anything else is ignored.
func (e *Engine) SetRangeDays(ctx context.Context, days int) error {
	e.markActivity()
	if days != 7 && days != 30 {
		return nil
	}

	e.mu.Lock()
	e.rangeDays = days
	e.mu.Unlock()

	return e.settings.SaveSetting(ctx, settingRangeDays, fmt.Sprintf("%d", days))
}

func (e *Engine) RangeDays() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rangeDays
}

// exportSource picks the currently filtered view when it has rows,
// else the whole stored page, so an export right after clearing
// results still produces something.
func (e *Engine) exportSource() []types.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	source := e.view
	if len(source) == 0 {
		source = e.store.Orders()
	}
	out := make([]types.Order, len(source))
	copy(out, source)
	return out
}

func (e *Engine) ExportText() string {
	e.markActivity()
	return export.Text(e.exportSource())
}

func (e *Engine) ExportCSV() string {
	e.markActivity()
	return export.CSV(e.exportSource())
}

// OrderDetail proxies the single-order view with its print-job
// history.
func (e *Engine) OrderDetail(ctx context.Context, id string) (*backend.OrderRecord, []backend.PrintJob, error) {
	e.markActivity()

	order, err := e.api.GetOrder(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	jobs, err := e.api.GetPrintJobs(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return order, jobs, nil
}

// EditOrder updates amount and message upstream, then reloads so the
// page reflects the saved record.
func (e *Engine) EditOrder(ctx context.Context, id string, amount int, message string) error {
	e.markActivity()
	if amount < 0 {
		return ErrNegativeAmount
	}

	patch := backend.OrderPatch{Amount: &amount, RawMessage: &message}
	if _, err := e.api.UpdateOrder(ctx, id, patch); err != nil {
		return err
	}
	return e.refresh(ctx)
}

// SoftDeleteOrder marks the order invalid upstream. History is kept;
// nothing is removed physically.
func (e *Engine) SoftDeleteOrder(ctx context.Context, id string) error {
	e.markActivity()

	invalid := false
	patch := backend.OrderPatch{IsValidOrder: &invalid}
	if _, err := e.api.UpdateOrder(ctx, id, patch); err != nil {
		return err
	}
	return e.refresh(ctx)
}

// ReprintOrder enqueues another print job upstream.
func (e *Engine) ReprintOrder(ctx context.Context, id string) error {
	e.markActivity()

	if err := e.api.Reprint(ctx, id); err != nil {
		return err
	}
	return e.refresh(ctx)
}

// OpenSurface registers an overlay as open so the scheduler holds off.
func (e *Engine) OpenSurface(id string) error {
	if _, ok := knownSurfaces[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSurface, id)
	}
	e.markActivity()
	if e.sched != nil {
		e.sched.SurfaceOpened(id)
	}
	return nil
}

func (e *Engine) CloseSurface(id string) error {
	if _, ok := knownSurfaces[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSurface, id)
	}
	e.markActivity()
	if e.sched != nil {
		e.sched.SurfaceClosed(id)
	}
	return nil
}

// SetAutoRefresh flips the operator toggle.
func (e *Engine) SetAutoRefresh(enabled bool) {
	e.markActivity()
	if e.sched != nil {
		e.sched.SetEnabled(enabled)
	}
}
