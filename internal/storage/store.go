package storage

import "kassensystem/internal/models"

// Store is the persistence contract of the ledger engine: four logical
// keys, each holding one whole JSON-encoded collection. Every save is a
// read-modify-write of the entire collection; the store offers no
// transactions and no cross-instance isolation. Two till instances on the
// same store can clobber each other — that is an accepted single-device
// limitation, not something to fix here with locking.
type Store interface {
	LoadProducts() ([]models.Product, error)
	SaveProducts(products []models.Product) error

	LoadOrders() ([]models.Order, error)
	SaveOrders(orders []models.Order) error

	LoadSettings() (models.Settings, error)
	SaveSettings(settings models.Settings) error

	LoadArchive() ([]models.ArchivedEvent, error)
	SaveArchive(archive []models.ArchivedEvent) error
}

// Logical keys of the store.
const (
	KeyProducts = "products"
	KeyOrders   = "orders"
	KeySettings = "settings"
	KeyArchive  = "archive"
)
