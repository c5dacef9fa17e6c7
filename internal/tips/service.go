// Package tips records gratuities handed over during the active event.
// Tips live next to the order ledger but never inside it: they are not
// revenue and stay out of every order aggregate.
package tips

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kassensystem/internal/logger"
	"kassensystem/internal/models"
	"kassensystem/internal/session"
)

var ErrBadAmount = errors.New("tips: amount is not a quick-pick value")

// quickPicks are the only recordable tip amounts. Free-text tips were
// deliberately left out; the picker keeps entry to one tap.
var quickPicks = []models.Cents{50, 100, 200, 500}

type Service struct {
	Session *session.Session
	Logger  *logger.Logger
}

func NewService(s *session.Session, log *logger.Logger) *Service {
	return &Service{Session: s, Logger: log}
}

// QuickPicks returns the selectable tip amounts.
func (s *Service) QuickPicks() []models.Cents {
	return append([]models.Cents(nil), quickPicks...)
}

// List returns the active event's tips, newest first.
func (s *Service) List() []models.Tip {
	tips := s.Session.Settings().ActiveTips
	out := make([]models.Tip, len(tips))
	for i, t := range tips {
		out[len(tips)-1-i] = t
	}
	return out
}

// Total sums the active event's tips.
func (s *Service) Total() models.Cents {
	var total models.Cents
	for _, t := range s.Session.Settings().ActiveTips {
		total += t.Amount
	}
	return total
}

// Record appends one tip of a quick-pick amount to the active event.
func (s *Service) Record(amount models.Cents) (models.Tip, error) {
	valid := false
	for _, pick := range quickPicks {
		if amount == pick {
			valid = true
			break
		}
	}
	if !valid {
		return models.Tip{}, ErrBadAmount
	}

	var tip models.Tip
	err := s.Session.Update(func(settings *models.Settings) error {
		if !settings.EventActive() {
			return session.ErrNoActiveEvent
		}
		tip = models.Tip{
			ID:        uuid.NewString(),
			Amount:    amount,
			Timestamp: time.Now(),
			EventName: settings.ActiveEvent,
		}
		settings.ActiveTips = append(settings.ActiveTips, tip)
		return nil
	})
	if err != nil {
		return models.Tip{}, err
	}

	s.Logger.Info("TIP", fmt.Sprintf("recorded %s for %q", tip.Amount, tip.EventName))
	return tip, nil
}
