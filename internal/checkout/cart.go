package checkout

import (
	"errors"

	"kassensystem/internal/models"
)

var (
	ErrLineNotFound = errors.New("checkout: cart line not found")
	ErrBadQuantity  = errors.New("checkout: quantity must be at least 1")
	ErrBadPrice     = errors.New("checkout: price must not be negative")
)

// Line is one cart position with its engine-assigned handle. The handle
// stays stable across quantity edits and price overrides.
type Line struct {
	ID int `json:"id"`
	models.CartLine
}

// Cart collects the positions of the checkout in progress. Adding a
// product bumps the quantity of its plain line if one exists; overridden
// lines are distinct positions and never take part in merging. Total and
// ItemCount are folds over the current lines, recomputed on every call.
//
// Cart is not safe for concurrent use; the Service serializes access.
type Cart struct {
	nextID int
	lines  []Line
}

func (c *Cart) Add(p models.Product) {
	for i, line := range c.lines {
		if line.ProductID == p.ID && !line.Overridden {
			c.lines[i].Quantity++
			return
		}
	}
	c.nextID++
	c.lines = append(c.lines, Line{
		ID: c.nextID,
		CartLine: models.CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
			Quantity:  1,
		},
	})
}

func (c *Cart) SetQuantity(lineID, quantity int) error {
	if quantity < 1 {
		return ErrBadQuantity
	}
	for i, line := range c.lines {
		if line.ID == lineID {
			c.lines[i].Quantity = quantity
			return nil
		}
	}
	return ErrLineNotFound
}

func (c *Cart) Remove(lineID int) error {
	for i, line := range c.lines {
		if line.ID == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// Override replaces the line's unit price. The first override records
// the original price; later overrides keep it.
func (c *Cart) Override(lineID int, price models.Cents) error {
	if price < 0 {
		return ErrBadPrice
	}
	for i, line := range c.lines {
		if line.ID == lineID {
			if !line.Overridden {
				c.lines[i].OriginalPrice = line.UnitPrice
				c.lines[i].Overridden = true
			}
			c.lines[i].UnitPrice = price
			return nil
		}
	}
	return ErrLineNotFound
}

func (c *Cart) Total() models.Cents {
	var sum models.Cents
	for _, line := range c.lines {
		sum += line.Subtotal()
	}
	return sum
}

func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

// OrderLines strips the cart handles for the finalized order record.
func (c *Cart) OrderLines() []models.CartLine {
	lines := make([]models.CartLine, len(c.lines))
	for i, line := range c.lines {
		lines[i] = line.CartLine
	}
	return lines
}

func (c *Cart) Clear() {
	c.lines = nil
}
