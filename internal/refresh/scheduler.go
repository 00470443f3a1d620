package refresh

import (
	"context"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
)

// Overlay surfaces the UI reports as open. Any open surface blocks the
// next tick from refreshing.
const (
	SurfaceBuyerModal   = "buyerModal"
	SurfaceListFilter   = "listDateFilter"
	SurfaceOrderDetail  = "orderDetail"
	SurfaceEditOrder    = "editOrder"
	SurfaceDeleteOrder  = "deleteOrder"
	SurfaceReprintOrder = "reprintOrder"
)

// ScrollKeeper is invoked around a scheduled reload so the UI can pin
// its viewport. Restore runs whether or not the load succeeds.
type ScrollKeeper interface {
	Save()
	Restore()
}

type noopScroll struct{}

func (noopScroll) Save()    {}
func (noopScroll) Restore() {}

// Scheduler triggers periodic page reloads under strict gates: the
// operator toggle, at most one in-flight refresh, no open overlay
// surface, and a pause deadline that every user action pushes forward.
// A refresh in flight always runs to completion; there is no
// cancellation mid-flight.
type Scheduler struct {
	mu         sync.Mutex
	enabled    bool
	inFlight   bool
	pauseUntil time.Time
	surfaces   map[string]struct{}

	interval    time.Duration
	pauseWindow time.Duration
	now         func() time.Time
	reload      func(ctx context.Context) error
	scroll      ScrollKeeper
}

func NewScheduler(interval time.Duration, pauseWindow time.Duration, reload func(ctx context.Context) error) *Scheduler {
	return &Scheduler{
		surfaces:    make(map[string]struct{}),
		interval:    interval,
		pauseWindow: pauseWindow,
		now:         time.Now,
		reload:      reload,
		scroll:      noopScroll{},
	}
}

// SetScrollKeeper replaces the no-op viewport hook.
func (s *Scheduler) SetScrollKeeper(keeper ScrollKeeper) {
	s.scroll = keeper
}

func (s *Scheduler) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// MarkActivity extends the pause deadline to now+window. The deadline
// never moves backwards.
func (s *Scheduler) MarkActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	until := s.now().Add(s.pauseWindow)
	if until.After(s.pauseUntil) {
		s.pauseUntil = until
	}
}

func (s *Scheduler) SurfaceOpened(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surfaces[id] = struct{}{}
}

func (s *Scheduler) SurfaceClosed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.surfaces, id)
}

// Busy reports whether any overlay surface is open.
func (s *Scheduler) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.surfaces) > 0
}

// tryBegin atomically checks all gates and claims the in-flight slot.
func (s *Scheduler) tryBegin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.inFlight || len(s.surfaces) > 0 {
		return false
	}
	if s.now().Before(s.pauseUntil) {
		return false
	}
	s.inFlight = true
	return true
}

func (s *Scheduler) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

// Tick attempts one Idle -> Refreshing transition. The in-flight flag
// is cleared on every path out, or the scheduler would deadlock in
// Refreshing forever.
func (s *Scheduler) Tick(ctx context.Context) {
	if !s.tryBegin() {
		return
	}
	defer s.end()

	s.scroll.Save()
	defer s.scroll.Restore()

	if err := s.reload(ctx); err != nil {
		logger.Errorf("scheduled refresh failed: %s", err.Error())
	}
}

// Run drives the tick loop until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Context cancel, stopping auto refresh")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}
