package types

// DateRange bounds are YYYY-MM-DD strings, empty meaning unset. The
// enabled flag only takes effect when both bounds are present.
type DateRange struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

type FilterConfig struct {
	OnlyValid bool      `json:"only_valid"`
	DateRange DateRange `json:"date_range"`
}

// PagerState mirrors the upstream pagination contract. Page and
// PageSize are client-owned request parameters; Total, HasPrev and
// HasNext come back from the server with each page.
type PagerState struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Total    int  `json:"total"`
	HasPrev  bool `json:"has_prev"`
	HasNext  bool `json:"has_next"`
}

// BuyerGroup is a per-buyer aggregate, recomputed for each export and
// discarded afterwards.
type BuyerGroup struct {
	BuyerID     string
	Orders      []Order
	Count       int
	TotalAmount int
	DateStart   string
	DateEnd     string
}
