package domain

import (
	"strconv"
	"strings"
)

// Item is an inventory-bearing record as seen by one editing client.
//
// ConfirmedStock is the last value known to have been accepted by the remote
// stock service. It is only ever updated from a successful remote response or
// an explicit re-fetch, never from a local optimistic edit.
type Item struct {
	ID             string
	DisplayStock   int
	ConfirmedStock int
}

// NewItem returns an item whose display and confirmed values both start at
// the given count, as loaded from the remote service.
func NewItem(id string, stock int) Item {
	stock = ClampStock(stock)
	return Item{ID: id, DisplayStock: stock, ConfirmedStock: stock}
}

// ClampStock coerces a stock count to the non-negative range.
func ClampStock(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// ParseStock converts free-form numeric-field input into a stock count.
// Non-numeric input and negative values coerce to 0; fractional input is
// truncated toward zero. The tolerant policy matches the storefront's
// numeric fields, which never raise on bad input.
func ParseStock(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return ClampStock(n)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return ClampStock(int(f))
	}
	return 0
}
