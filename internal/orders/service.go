// Package orders owns the finalized-order ledger of the active event:
// the audit list, the revenue aggregates and the Storno protocol.
package orders

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"kassensystem/internal/auth"
	"kassensystem/internal/inventory"
	"kassensystem/internal/logger"
	"kassensystem/internal/models"
	"kassensystem/internal/session"
)

var (
	ErrOrderNotFound    = errors.New("orders: order not found")
	ErrAlreadyCancelled = errors.New("orders: order is already cancelled")
	ErrBadReason        = errors.New("orders: unknown cancellation reason")
	ErrEmptyNote        = errors.New("orders: reason \"other\" requires a note")
	ErrNoteTooLong      = errors.New("orders: cancellation note exceeds 100 characters")
)

type Service struct {
	Session *session.Session
	Gate    *auth.Gate
	Logger  *logger.Logger
}

func NewService(s *session.Session, gate *auth.Gate, log *logger.Logger) *Service {
	return &Service{Session: s, Gate: gate, Logger: log}
}

// List returns the active event's orders, newest first, cancelled ones
// included — the audit list keeps everything.
func (s *Service) List() ([]models.Order, error) {
	orders, err := s.Session.Orders()
	if err != nil {
		return nil, err
	}
	out := make([]models.Order, len(orders))
	for i, o := range orders {
		out[len(orders)-1-i] = o
	}
	return out, nil
}

// Cancel stornos one finalized order: passcode, a reason code ("other"
// needs a note of at most 100 characters), then the soft delete. The
// order stays in the ledger with its Cancellation attached while its
// revenue and inventory effects are reversed. Cancelling twice is
// refused, so restitution can never double up. There is no un-cancel.
func (s *Service) Cancel(orderID, passcode string, reason models.CancelReason, note string) (models.Order, error) {
	if err := s.Gate.Verify(passcode, auth.ModeCancelOrder); err != nil {
		return models.Order{}, err
	}
	if err := validateReason(reason, note); err != nil {
		return models.Order{}, err
	}

	var cancelled models.Order
	err := s.Session.Mutate(func(m *session.Mutation) error {
		for i := range *m.Orders {
			order := &(*m.Orders)[i]
			if order.ID != orderID {
				continue
			}
			if order.Cancelled() {
				return ErrAlreadyCancelled
			}
			order.Cancellation = &models.Cancellation{
				Reason:    reason,
				Note:      note,
				Timestamp: time.Now(),
			}
			inventory.Restitute(m.Settings.ActiveInventory, order.Lines)
			cancelled = *order
			return nil
		}
		return ErrOrderNotFound
	})
	if err != nil {
		return models.Order{}, err
	}

	s.Logger.LogOrder("STORNO", cancelled.ID, fmt.Sprintf("#%d cancelled: %s", cancelled.Number, cancelled.Cancellation.ReasonText()))
	return cancelled, nil
}

// Reset hard-wipes the active event's order ledger after passcode
// verification. Unlike a Storno this keeps no audit trail and restitutes
// nothing — it exists to abandon bad test data, not to void real sales.
func (s *Service) Reset(passcode string) error {
	if err := s.Gate.Verify(passcode, auth.ModeResetOrders); err != nil {
		return err
	}
	err := s.Session.Mutate(func(m *session.Mutation) error {
		*m.Orders = []models.Order{}
		return nil
	})
	if err != nil {
		return err
	}
	s.Logger.Warn("ORDER", "order ledger reset")
	return nil
}

func validateReason(reason models.CancelReason, note string) error {
	known := false
	for _, r := range models.CancelReasons {
		if r == reason {
			known = true
			break
		}
	}
	if !known {
		return ErrBadReason
	}
	if reason == models.CancelOther && note == "" {
		return ErrEmptyNote
	}
	if len([]rune(note)) > 100 {
		return ErrNoteTooLong
	}
	return nil
}

// Stats are the report aggregates of one order list. Cancelled orders
// count nowhere; free-of-charge orders count only as given-away value.
type Stats struct {
	Revenue     models.Cents `json:"revenue"`
	CashRevenue models.Cents `json:"cash_revenue"`
	CardRevenue models.Cents `json:"card_revenue"`
	FreeValue   models.Cents `json:"free_value"`
	OrderCount  int          `json:"order_count"`
	Cancelled   int          `json:"cancelled_count"`
}

func Aggregate(orders []models.Order) Stats {
	var stats Stats
	for i := range orders {
		o := &orders[i]
		if o.Cancelled() {
			stats.Cancelled++
			continue
		}
		stats.OrderCount++
		switch o.PaymentMethod {
		case models.PaymentFree:
			stats.FreeValue += o.LineValue()
		case models.PaymentCash:
			stats.Revenue += o.Total
			stats.CashRevenue += o.Total
		case models.PaymentCard:
			stats.Revenue += o.Total
			stats.CardRevenue += o.Total
		}
	}
	return stats
}

// ProductVolume is the sold quantity of one product name.
type ProductVolume struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Volumes sums sold quantities per product, largest first, skipping
// cancelled orders.
func Volumes(orders []models.Order) []ProductVolume {
	byName := map[string]int{}
	var names []string
	for i := range orders {
		if orders[i].Cancelled() {
			continue
		}
		for _, line := range orders[i].Lines {
			if _, seen := byName[line.Name]; !seen {
				names = append(names, line.Name)
			}
			byName[line.Name] += line.Quantity
		}
	}
	volumes := make([]ProductVolume, 0, len(names))
	for _, name := range names {
		volumes = append(volumes, ProductVolume{Name: name, Quantity: byName[name]})
	}
	sort.SliceStable(volumes, func(i, j int) bool {
		return volumes[i].Quantity > volumes[j].Quantity
	})
	return volumes
}
