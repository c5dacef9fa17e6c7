package models

import "fmt"

// Cents is a euro amount in integer cents. All ledger arithmetic is
// integer-only so totals and the Kassensturz never drift.
type Cents int64

// Mul multiplies a unit price by a quantity.
func (c Cents) Mul(qty int) Cents {
	return c * Cents(qty)
}

// Euros returns the amount as a float, for display math only.
func (c Cents) Euros() float64 {
	return float64(c) / 100
}

// String renders the amount the way the till prints it, e.g. "12,50 €".
func (c Cents) String() string {
	sign := ""
	v := c
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d,%02d €", sign, v/100, v%100)
}
