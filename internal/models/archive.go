package models

import "time"

// CashCount is the physically counted till content of a Kassensturz,
// per denomination.
type CashCount struct {
	Note100 int `json:"100_note"`
	Note50  int `json:"50_note"`
	Note20  int `json:"20_note"`
	Note10  int `json:"10_note"`
	Note5   int `json:"5_note"`
	Coin2   int `json:"2_coin"`
	Coin1   int `json:"1_coin"`
	Cent50  int `json:"50_cent"`
	Cent20  int `json:"20_cent"`
	Cent10  int `json:"10_cent"`
	Cent5   int `json:"5_cent"`
}

// Total is the counted cash value.
func (c CashCount) Total() Cents {
	return Cents(c.Note100)*10000 +
		Cents(c.Note50)*5000 +
		Cents(c.Note20)*2000 +
		Cents(c.Note10)*1000 +
		Cents(c.Note5)*500 +
		Cents(c.Coin2)*200 +
		Cents(c.Coin1)*100 +
		Cents(c.Cent50)*50 +
		Cents(c.Cent20)*20 +
		Cents(c.Cent10)*10 +
		Cents(c.Cent5)*5
}

// Denominations is the fixed note and coin set of the till, largest
// first. It drives both the change calculator and the cash count.
var Denominations = []Cents{10000, 5000, 2000, 1000, 500, 200, 100, 50, 20, 10, 5}

// ArchivedEvent is the immutable snapshot written when an event is
// closed. Its ID has the form "<year>-<4-digit sequence>".
type ArchivedEvent struct {
	ID             string                   `json:"id"`
	Name           string                   `json:"name"`
	StartDate      time.Time                `json:"start_date"`
	EndDate        time.Time                `json:"end_date"`
	ClosedAt       time.Time                `json:"closed_at"`
	InitialBalance Cents                    `json:"initial_balance"`
	TotalRevenue   Cents                    `json:"total_revenue"`
	Orders         []Order                  `json:"orders"`
	Tips           []Tip                    `json:"tips,omitempty"`
	Inventory      map[string]InventoryItem `json:"inventory,omitempty"`
	Refills        []InventoryRefill        `json:"refills,omitempty"`
}
