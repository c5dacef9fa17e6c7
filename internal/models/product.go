package models

// Category groups products on the sales grid.
type Category string

const (
	CategoryFlammkuchen Category = "Flammkuchen"
	CategoryGetraenke   Category = "Getränke"
	CategoryEis         Category = "Eis"
)

// Product is one sellable item of the catalog. Products are read-only
// while an event is active.
type Product struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	UnitPrice Cents    `json:"unit_price"`
	Category  Category `json:"category"`
	Color     string   `json:"color"`
}
