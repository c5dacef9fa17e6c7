package models

import "time"

// Settings is the persisted till state: the active event with its runtime
// ledgers, the order number sequence, the Storno passcode and the archive
// sequence counter. It is the single long-lived mutable record; every
// change writes the whole object back to the store.
type Settings struct {
	NextOrderNumber           int                      `json:"next_order_number"`
	ActiveEvent               string                   `json:"active_event,omitempty"`
	ActiveEventStart          time.Time                `json:"active_event_start,omitzero"`
	ActiveEventInitialBalance Cents                    `json:"active_event_initial_balance"`
	Passcode                  string                   `json:"passcode"`
	EventSequence             int                      `json:"event_sequence"`
	ActiveInventory           map[string]InventoryItem `json:"active_inventory,omitempty"`
	ActiveRefills             []InventoryRefill        `json:"active_refills,omitempty"`
	ActiveTips                []Tip                    `json:"active_tips,omitempty"`
}

// DefaultSettings is the state of a till that has never run an event.
func DefaultSettings(passcode string) Settings {
	return Settings{
		NextOrderNumber: 1,
		Passcode:        passcode,
		EventSequence:   1,
	}
}

// EventActive reports whether an event is currently running. An empty
// event name is the sole discriminator the rest of the system uses.
func (s Settings) EventActive() bool {
	return s.ActiveEvent != ""
}

// Clone returns a copy that shares no mutable state with the receiver.
func (s Settings) Clone() Settings {
	out := s
	if s.ActiveInventory != nil {
		out.ActiveInventory = make(map[string]InventoryItem, len(s.ActiveInventory))
		for id, item := range s.ActiveInventory {
			out.ActiveInventory[id] = item
		}
	}
	if s.ActiveRefills != nil {
		out.ActiveRefills = make([]InventoryRefill, len(s.ActiveRefills))
		for i, refill := range s.ActiveRefills {
			items := make(map[string]int, len(refill.Items))
			for id, amount := range refill.Items {
				items[id] = amount
			}
			out.ActiveRefills[i] = InventoryRefill{Timestamp: refill.Timestamp, Items: items}
		}
	}
	if s.ActiveTips != nil {
		out.ActiveTips = append([]Tip(nil), s.ActiveTips...)
	}
	return out
}
