package models

import "time"

// Tip is one recorded gratuity. Tips are append-only within an event.
type Tip struct {
	ID        string    `json:"id"`
	Amount    Cents     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
	EventName string    `json:"event_name"`
}
