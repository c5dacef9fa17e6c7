// Package archive closes events into immutable archived records and
// computes the Kassensturz reconciliation.
package archive

import (
	"errors"
	"fmt"
	"time"

	"kassensystem/internal/logger"
	"kassensystem/internal/models"
	"kassensystem/internal/session"
)

var ErrEventNotFound = errors.New("archive: archived event not found")

type Service struct {
	Session *session.Session
	Logger  *logger.Logger

	// YearTag prefixes every archive ID, e.g. "2026" -> "2026-0001".
	YearTag string
}

func NewService(s *session.Session, log *logger.Logger, yearTag string) *Service {
	return &Service{Session: s, Logger: log, YearTag: yearTag}
}

// List returns the archive, newest first.
func (s *Service) List() ([]models.ArchivedEvent, error) {
	return s.Session.Archive()
}

// Get returns one archived event by ID.
func (s *Service) Get(id string) (models.ArchivedEvent, error) {
	events, err := s.Session.Archive()
	if err != nil {
		return models.ArchivedEvent{}, err
	}
	for _, ev := range events {
		if ev.ID == id {
			return ev, nil
		}
	}
	return models.ArchivedEvent{}, ErrEventNotFound
}

// Close ends the active event: it snapshots the order, tip, inventory and
// refill ledgers into a new ArchivedEvent at the front of the archive,
// clears the order ledger and resets the session to "no event". Total
// revenue is the sum of non-cancelled order totals at closing time.
//
// Everything happens in one store mutation, archive written before
// settings — if the archive write fails the event stays active instead
// of appearing closed with its data gone.
func (s *Service) Close() (models.ArchivedEvent, error) {
	var archived models.ArchivedEvent
	err := s.Session.Mutate(func(m *session.Mutation) error {
		if !m.Settings.EventActive() {
			return session.ErrNoActiveEvent
		}

		var revenue models.Cents
		for i := range *m.Orders {
			if !(*m.Orders)[i].Cancelled() {
				revenue += (*m.Orders)[i].Total
			}
		}

		now := time.Now()
		archived = models.ArchivedEvent{
			ID:             fmt.Sprintf("%s-%04d", s.YearTag, m.Settings.EventSequence),
			Name:           m.Settings.ActiveEvent,
			StartDate:      m.Settings.ActiveEventStart,
			EndDate:        now,
			ClosedAt:       now,
			InitialBalance: m.Settings.ActiveEventInitialBalance,
			TotalRevenue:   revenue,
			Orders:         *m.Orders,
			Tips:           m.Settings.ActiveTips,
			Inventory:      m.Settings.ActiveInventory,
			Refills:        m.Settings.ActiveRefills,
		}
		*m.Archive = append([]models.ArchivedEvent{archived}, *m.Archive...)
		*m.Orders = []models.Order{}

		m.Settings.ActiveEvent = ""
		m.Settings.ActiveEventStart = time.Time{}
		m.Settings.ActiveEventInitialBalance = 0
		m.Settings.NextOrderNumber = 1
		m.Settings.ActiveInventory = nil
		m.Settings.ActiveRefills = nil
		m.Settings.ActiveTips = nil
		m.Settings.EventSequence++
		return nil
	})
	if err != nil {
		return models.ArchivedEvent{}, err
	}

	s.Logger.LogSession("CLOSE", fmt.Sprintf("event %q archived as %s, revenue %s", archived.Name, archived.ID, archived.TotalRevenue))
	return archived, nil
}

// Kassensturz is the till-count reconciliation of one archived or active
// event state: expected cash against physically counted cash.
type Kassensturz struct {
	Expected   models.Cents     `json:"expected"`
	Actual     models.Cents     `json:"actual"`
	Difference models.Cents     `json:"difference"`
	Counts     models.CashCount `json:"counts"`
}

// ComputeKassensturz compares the counted till content against the cash
// the ledger says should be there: the initial balance plus every
// non-cancelled cash order total. A pure report; nothing is written.
func ComputeKassensturz(initialBalance models.Cents, orders []models.Order, counts models.CashCount) Kassensturz {
	expected := initialBalance
	for i := range orders {
		if orders[i].Cancelled() {
			continue
		}
		if orders[i].PaymentMethod == models.PaymentCash {
			expected += orders[i].Total
		}
	}
	actual := counts.Total()
	return Kassensturz{
		Expected:   expected,
		Actual:     actual,
		Difference: actual - expected,
		Counts:     counts,
	}
}

// CountActive runs the Kassensturz against the active event's ledger.
func (s *Service) CountActive(counts models.CashCount) (Kassensturz, error) {
	settings := s.Session.Settings()
	if !settings.EventActive() {
		return Kassensturz{}, session.ErrNoActiveEvent
	}
	orders, err := s.Session.Orders()
	if err != nil {
		return Kassensturz{}, err
	}
	return ComputeKassensturz(settings.ActiveEventInitialBalance, orders, counts), nil
}

// Count runs the Kassensturz against an archived event.
func (s *Service) Count(eventID string, counts models.CashCount) (Kassensturz, error) {
	ev, err := s.Get(eventID)
	if err != nil {
		return Kassensturz{}, err
	}
	return ComputeKassensturz(ev.InitialBalance, ev.Orders, counts), nil
}
