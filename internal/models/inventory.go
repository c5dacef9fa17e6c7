package models

import "time"

// InventoryItem is the running stock counter of one tracked product.
// Stock tracking is opt-in per event; products without an entry are sold
// without any counting.
//
// Current is deliberately unclamped: the till trusts its operator and
// lets the counter run negative rather than block a sale it had already
// begun.
type InventoryItem struct {
	Start   int `json:"start"`
	Current int `json:"current"`
}

// InventoryRefill is one logged restock during an active event.
type InventoryRefill struct {
	Timestamp time.Time      `json:"timestamp"`
	Items     map[string]int `json:"items"`
}
