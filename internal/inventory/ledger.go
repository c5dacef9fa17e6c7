// Package inventory keeps the per-product stock counters of the active
// event. Tracking is opt-in per event; untracked products sell without
// counting. Counters are deliberately unclamped (see models.InventoryItem).
package inventory

import (
	"errors"
	"fmt"
	"time"

	"kassensystem/internal/logger"
	"kassensystem/internal/models"
	"kassensystem/internal/session"
)

var (
	ErrNotTracked    = errors.New("inventory: product is not tracked")
	ErrEmptyRefill   = errors.New("inventory: refill must contain at least one item")
	ErrNegativeCount = errors.New("inventory: counts must not be negative")
)

// SoldOut reports whether a tracked product has no stock left. Untracked
// products are never sold out.
func SoldOut(inv map[string]models.InventoryItem, productID string) bool {
	item, tracked := inv[productID]
	return tracked && item.Current <= 0
}

// Sell decrements the counters for every tracked product in lines.
// No clamping: a sale that was allowed to start is always counted.
func Sell(inv map[string]models.InventoryItem, lines []models.CartLine) {
	for _, line := range lines {
		if item, tracked := inv[line.ProductID]; tracked {
			item.Current -= line.Quantity
			inv[line.ProductID] = item
		}
	}
}

// Restitute returns the quantities of a cancelled order's lines to stock.
func Restitute(inv map[string]models.InventoryItem, lines []models.CartLine) {
	for _, line := range lines {
		if item, tracked := inv[line.ProductID]; tracked {
			item.Current += line.Quantity
			inv[line.ProductID] = item
		}
	}
}

// Service exposes the stock operations of the active event.
type Service struct {
	Session *session.Session
	Logger  *logger.Logger
}

func NewService(s *session.Session, log *logger.Logger) *Service {
	return &Service{Session: s, Logger: log}
}

// Snapshot returns the tracked counters of the active event.
func (s *Service) Snapshot() map[string]models.InventoryItem {
	return s.Session.Settings().ActiveInventory
}

// Track puts a product under stock tracking with the given start count.
func (s *Service) Track(productID string, start int) error {
	if start < 0 {
		return ErrNegativeCount
	}
	return s.Session.Update(func(settings *models.Settings) error {
		if !settings.EventActive() {
			return session.ErrNoActiveEvent
		}
		if settings.ActiveInventory == nil {
			settings.ActiveInventory = map[string]models.InventoryItem{}
		}
		settings.ActiveInventory[productID] = models.InventoryItem{Start: start, Current: start}
		s.Logger.Info("INVENTORY", fmt.Sprintf("tracking %s with start count %d", productID, start))
		return nil
	})
}

// Refill restocks tracked products and logs the refill. Start and Current
// both grow so the intended bound start+refills moves with the restock.
func (s *Service) Refill(items map[string]int) error {
	if len(items) == 0 {
		return ErrEmptyRefill
	}
	for _, amount := range items {
		if amount < 0 {
			return ErrNegativeCount
		}
	}
	return s.Session.Update(func(settings *models.Settings) error {
		if !settings.EventActive() {
			return session.ErrNoActiveEvent
		}
		for productID, amount := range items {
			item, tracked := settings.ActiveInventory[productID]
			if !tracked {
				return fmt.Errorf("%w: %s", ErrNotTracked, productID)
			}
			item.Start += amount
			item.Current += amount
			settings.ActiveInventory[productID] = item
		}
		settings.ActiveRefills = append(settings.ActiveRefills, models.InventoryRefill{
			Timestamp: time.Now(),
			Items:     items,
		})
		s.Logger.Info("INVENTORY", fmt.Sprintf("refill logged for %d product(s)", len(items)))
		return nil
	})
}
