package types

import "time"

type Status string

const (
	QueuedStatus   Status = "queued"
	PrintingStatus Status = "printing"
	PrintedStatus  Status = "printed"
	FailedStatus   Status = "failed"
	CanceledStatus Status = "canceled"
)

var statusLabels = map[Status]string{
	QueuedStatus:   "排隊中",
	PrintingStatus: "列印中",
	PrintedStatus:  "已完成",
	FailedStatus:   "失敗",
	CanceledStatus: "已取消",
}

// Label returns the operator-facing label. Unknown statuses pass
// through unmapped.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Order is the client-side snapshot of one upstream order record. The
// whole set is replaced on every successful page load, so identity is
// only meaningful within one page.
type Order struct {
	ID           string
	BuyerID      string
	RawMessage   string
	Amount       int
	IsValid      bool
	Status       Status
	ErrorMessage string
	ReprintCount int
	Timestamp    time.Time
	HasTimestamp bool
}

// Time returns the resolved instant and whether one exists.
func (o Order) Time() (time.Time, bool) {
	return o.Timestamp, o.HasTimestamp
}
