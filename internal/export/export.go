package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wellywell/printdesk/internal/ordertime"
	"github.com/wellywell/printdesk/internal/store"
	"github.com/wellywell/printdesk/internal/types"
)

// Excel needs the BOM to open non-ASCII buyer names correctly.
const csvBOM = ""

const txtSeparator = "\n\n--------------------\n\n"

const CSVHeader = "buyer_id,order_count,total_amount,date_start,date_end"

// GroupByBuyer partitions orders by buyer id. Orders with a blank
// buyer are dropped.
func GroupByBuyer(orders []types.Order) map[string][]types.Order {
	groups := make(map[string][]types.Order)
	for _, o := range orders {
		buyer := strings.TrimSpace(o.BuyerID)
		if buyer == "" {
			continue
		}
		groups[buyer] = append(groups[buyer], o)
	}
	return groups
}

// Summarize builds the per-buyer aggregate: orders sorted newest-first
// regardless of input order, integer amount total, and the calendar-day
// min/max over resolvable timestamps (empty when none resolve).
func Summarize(buyerID string, orders []types.Order) types.BuyerGroup {
	sorted := make([]types.Order, len(orders))
	copy(sorted, orders)
	store.SortNewestFirst(sorted)

	group := types.BuyerGroup{
		BuyerID: buyerID,
		Orders:  sorted,
		Count:   len(sorted),
	}

	var haveDays bool
	var minDay, maxDay string
	for _, o := range sorted {
		group.TotalAmount += o.Amount

		ts, ok := o.Time()
		if !ok {
			continue
		}
		day := ordertime.FormatDay(ts)
		if !haveDays {
			minDay, maxDay = day, day
			haveDays = true
			continue
		}
		if day < minDay {
			minDay = day
		}
		if day > maxDay {
			maxDay = day
		}
	}
	group.DateStart = minDay
	group.DateEnd = maxDay
	return group
}

// RenderText produces the fixed customer-service block. The format is
// load-bearing: operators paste it verbatim into chat.
func RenderText(group types.BuyerGroup) string {
	lines := []string{
		"親愛的客人您好，",
		"",
		fmt.Sprintf("買家 ID：%s", group.BuyerID),
		"訂單明細如下：",
	}

	for i, o := range group.Orders {
		day := "-"
		if ts, ok := o.Time(); ok {
			day = ordertime.FormatDay(ts)
		}
		lines = append(lines, fmt.Sprintf("%d. %s　$%d", i+1, day, o.Amount))
	}

	lines = append(lines,
		"",
		fmt.Sprintf("總共 %d 筆", group.Count),
		fmt.Sprintf("總金額：$%d", group.TotalAmount),
	)
	return strings.Join(lines, "\n")
}

// RenderCSVRow emits one summary row. The buyer id is quote-wrapped
// with doubled internal quotes only when it contains a comma, quote or
// newline, matching what spreadsheet tools expect.
func RenderCSVRow(group types.BuyerGroup) string {
	buyer := group.BuyerID
	if strings.ContainsAny(buyer, ",\"\n") {
		buyer = `"` + strings.ReplaceAll(buyer, `"`, `""`) + `"`
	}
	return fmt.Sprintf("%s,%d,%d,%s,%s", buyer, group.Count, group.TotalAmount, group.DateStart, group.DateEnd)
}

// buyersSorted returns buyer ids in lexicographic order so exports are
// deterministic across runs on the same input.
func buyersSorted(groups map[string][]types.Order) []string {
	buyers := make([]string, 0, len(groups))
	for buyer := range groups {
		buyers = append(buyers, buyer)
	}
	sort.Strings(buyers)
	return buyers
}

// Text renders one customer-service block per buyer, separated by a
// divider line.
func Text(orders []types.Order) string {
	groups := GroupByBuyer(orders)

	chunks := make([]string, 0, len(groups))
	for _, buyer := range buyersSorted(groups) {
		chunks = append(chunks, RenderText(Summarize(buyer, groups[buyer])))
	}
	return strings.Join(chunks, txtSeparator)
}

// CSV renders the whole-file export: BOM, header, one row per buyer.
func CSV(orders []types.Order) string {
	groups := GroupByBuyer(orders)

	rows := []string{CSVHeader}
	for _, buyer := range buyersSorted(groups) {
		rows = append(rows, RenderCSVRow(Summarize(buyer, groups[buyer])))
	}
	return csvBOM + strings.Join(rows, "\n")
}
