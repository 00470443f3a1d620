package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wellywell/printdesk/internal/types"
)

func orderFor(buyer string, amount int, day string) types.Order {
	o := types.Order{BuyerID: buyer, Amount: amount, IsValid: true}
	if day != "" {
		ts, _ := time.ParseInLocation("2006-01-02", day, time.Local)
		o.Timestamp = ts
		o.HasTimestamp = true
	}
	return o
}

func TestGroupByBuyerPartitions(t *testing.T) {
	orders := []types.Order{
		orderFor("A", 100, "2024-01-02"),
		orderFor("B", 0, "2024-01-01"),
		orderFor("A", 50, "2024-01-01"),
		orderFor("", 10, "2024-01-01"),
		orderFor("  ", 10, "2024-01-01"),
	}

	groups := GroupByBuyer(orders)

	assert.Len(t, groups, 2)
	assert.Len(t, groups["A"], 2)
	assert.Len(t, groups["B"], 1)

	total := 0
	for buyer, group := range groups {
		for _, o := range group {
			assert.Equal(t, buyer, strings.TrimSpace(o.BuyerID))
			total++
		}
	}
	assert.Equal(t, 3, total)
}

func TestSummarize(t *testing.T) {
	// deliberately oldest-first: Summarize must sort on its own
	orders := []types.Order{
		orderFor("A", 50, "2024-01-01"),
		orderFor("A", 100, "2024-01-02"),
	}

	group := Summarize("A", orders)

	assert.Equal(t, 2, group.Count)
	assert.Equal(t, 150, group.TotalAmount)
	assert.Equal(t, "2024-01-01", group.DateStart)
	assert.Equal(t, "2024-01-02", group.DateEnd)
	assert.Equal(t, 100, group.Orders[0].Amount)
	assert.Equal(t, 50, group.Orders[1].Amount)
}

func TestSummarizeNoTimestamps(t *testing.T) {
	group := Summarize("A", []types.Order{orderFor("A", 7, "")})

	assert.Equal(t, "", group.DateStart)
	assert.Equal(t, "", group.DateEnd)
	assert.Equal(t, 7, group.TotalAmount)
}

func TestRenderText(t *testing.T) {
	orders := []types.Order{
		orderFor("A", 50, "2024-01-01"),
		orderFor("A", 100, "2024-01-02"),
	}

	text := RenderText(Summarize("A", orders))

	expected := "親愛的客人您好，\n" +
		"\n" +
		"買家 ID：A\n" +
		"訂單明細如下：\n" +
		"1. 2024-01-02　$100\n" +
		"2. 2024-01-01　$50\n" +
		"\n" +
		"總共 2 筆\n" +
		"總金額：$150"

	assert.Equal(t, expected, text)
}

func TestRenderTextUnresolvableDate(t *testing.T) {
	text := RenderText(Summarize("A", []types.Order{orderFor("A", 5, "")}))

	assert.Contains(t, text, "1. -　$5")
}

func TestRenderCSVRow(t *testing.T) {

	testCases := []struct {
		name     string
		buyer    string
		expected string
	}{
		{"plain", "buyer1", "buyer1,1,10,2024-01-01,2024-01-01"},
		{"comma quoted", "a,b", `"a,b",1,10,2024-01-01,2024-01-01`},
		{"quote doubled", `a"b`, `"a""b",1,10,2024-01-01,2024-01-01`},
		{"newline quoted", "a\nb", "\"a\nb\",1,10,2024-01-01,2024-01-01"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			row := RenderCSVRow(Summarize(tc.buyer, []types.Order{orderFor(tc.buyer, 10, "2024-01-01")}))

			assert.Equal(t, tc.expected, row)
		})
	}
}

func TestCSVEndToEnd(t *testing.T) {
	orders := []types.Order{
		orderFor("A", 100, "2024-01-02"),
		orderFor("A", 50, "2024-01-01"),
		orderFor("B", 0, "2024-01-01"),
	}

	content := CSV(orders)

	assert.True(t, strings.HasPrefix(content, ""))

	lines := strings.Split(strings.TrimPrefix(content, ""), "\n")
	assert.Equal(t, []string{
		"buyer_id,order_count,total_amount,date_start,date_end",
		"A,2,150,2024-01-01,2024-01-02",
		"B,1,0,2024-01-01,2024-01-01",
	}, lines)
}

func TestTextEndToEnd(t *testing.T) {
	orders := []types.Order{
		orderFor("B", 0, "2024-01-01"),
		orderFor("A", 100, "2024-01-02"),
		orderFor("A", 50, "2024-01-01"),
	}

	content := Text(orders)

	chunks := strings.Split(content, "\n\n--------------------\n\n")
	assert.Len(t, chunks, 2)
	// buyers in lexicographic order
	assert.Contains(t, chunks[0], "買家 ID：A")
	assert.Contains(t, chunks[1], "買家 ID：B")
	assert.Contains(t, chunks[0], "總金額：$150")
	assert.Contains(t, chunks[1], "總共 1 筆")
}
