package models

// CartLine is one position of the cart being built for the next order.
// A line with an overridden price is a separate position and is never
// merged with a regular line of the same product.
type CartLine struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	UnitPrice     Cents  `json:"unit_price"`
	Quantity      int    `json:"quantity"`
	OriginalPrice Cents  `json:"original_price,omitempty"`
	Overridden    bool   `json:"overridden,omitempty"`
}

// Subtotal is the line's contribution to the cart total.
func (l CartLine) Subtotal() Cents {
	return l.UnitPrice.Mul(l.Quantity)
}
