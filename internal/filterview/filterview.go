package filterview

import (
	"github.com/wellywell/printdesk/internal/ordertime"
	"github.com/wellywell/printdesk/internal/types"
)

// Apply derives the displayed view from the stored page. It is a pure
// order-preserving subset: the input is already sorted by the store
// and is never mutated, so it is safe to call on every toggle.
//
// The date-range step only takes effect when the flag is on AND both
// bounds are present; an enabled flag with a missing bound filters
// nothing.
func Apply(orders []types.Order, cfg types.FilterConfig) []types.Order {
	out := make([]types.Order, 0, len(orders))

	rangeActive := cfg.DateRange.Enabled && cfg.DateRange.Start != "" && cfg.DateRange.End != ""

	for _, o := range orders {
		if cfg.OnlyValid && !o.IsValid {
			continue
		}
		if rangeActive {
			ts, ok := o.Time()
			if !ok {
				continue
			}
			if !ordertime.InDayRange(ts, cfg.DateRange.Start, cfg.DateRange.End) {
				continue
			}
		}
		out = append(out, o)
	}
	return out
}
