package ordertime

import "time"

// Raw timestamps below this are seconds since epoch, above it millis.
// The upstream mixes both precisions depending on the comment source.
const millisThreshold = 2e12

var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Resolve normalizes the two upstream timestamp representations into
// one instant. A numeric comment timestamp wins; the textual creation
// timestamp is the fallback. Returns false when neither yields a valid
// instant. Never fails on any input shape.
func Resolve(commentTS *float64, createdAt string) (time.Time, bool) {
	if commentTS != nil {
		t := *commentTS
		if t > 0 {
			ms := int64(t)
			if t < millisThreshold {
				ms = int64(t * 1000)
			}
			return time.UnixMilli(ms), true
		}
	}
	if createdAt != "" {
		for _, layout := range createdAtLayouts {
			if d, err := time.ParseInLocation(layout, createdAt, time.Local); err == nil {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

// Day truncates an instant to its local calendar day, so same-day
// timestamps at different times of day compare equal.
func Day(t time.Time) time.Time {
	local := t.In(time.Local)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
}

// ParseDay parses a YYYY-MM-DD bound. Empty or malformed input yields
// false.
func ParseDay(ymd string) (time.Time, bool) {
	if ymd == "" {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation("2006-01-02", ymd, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// FormatDay renders an instant as its local YYYY-MM-DD day.
func FormatDay(t time.Time) string {
	return Day(t).Format("2006-01-02")
}

// InDayRange reports whether t falls inside [startYmd, endYmd],
// inclusive on both ends, comparing calendar days only. A missing or
// unparseable bound disables the check entirely.
func InDayRange(t time.Time, startYmd string, endYmd string) bool {
	start, okStart := ParseDay(startYmd)
	end, okEnd := ParseDay(endYmd)
	if !okStart || !okEnd {
		return true
	}
	day := Day(t)
	return !day.Before(Day(start)) && !day.After(Day(end))
}
