package storage

import "kassensystem/internal/models"

// SeedCatalog is the product list a fresh till starts with. Returned by
// LoadProducts when the products key has never been written.
func SeedCatalog() []models.Product {
	return []models.Product{
		{ID: "s1", Name: "Elsässer", UnitPrice: 1000, Category: models.CategoryFlammkuchen, Color: "#fecaca"},
		{ID: "s2", Name: "Griechisch", UnitPrice: 1000, Category: models.CategoryFlammkuchen, Color: "#e5e7eb"},
		{ID: "s3", Name: "Lachs", UnitPrice: 1100, Category: models.CategoryFlammkuchen, Color: "#fef3c7"},
		{ID: "s4", Name: "Vegan", UnitPrice: 1200, Category: models.CategoryFlammkuchen, Color: "#d1fae5"},
		{ID: "s5", Name: "Süß", UnitPrice: 1000, Category: models.CategoryFlammkuchen, Color: "#fce7f3"},
	}
}
