package models

import "time"

// MaxQuantity is the per-line quantity ceiling. Deltas that would push a
// line past it are silently truncated.
const MaxQuantity = 999

type LineItem struct {
	ItemID   string  `json:"itemId"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

type Cart struct {
	LineItems []LineItem `json:"lineItems"`
	UpdatedAt int64      `json:"updatedAt"`
}

func NewCart() Cart {
	return Cart{LineItems: []LineItem{}, UpdatedAt: time.Now().UnixMilli()}
}

// TotalItems is derived on every read, never stored.
func (c Cart) TotalItems() int {
	total := 0
	for _, li := range c.LineItems {
		total += li.Quantity
	}
	return total
}

func (c Cart) Clone() Cart {
	items := make([]LineItem, len(c.LineItems))
	copy(items, c.LineItems)
	return Cart{LineItems: items, UpdatedAt: c.UpdatedAt}
}
