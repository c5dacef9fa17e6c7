package session

import (
	"fmt"
	"strings"
	"time"

	"kassensystem/internal/models"
)

// SetupStep is the state of the event setup flow. While an event is
// active the flow is locked in StepActive; everything else only exists
// between "no event" and the moment StartEvent commits.
type SetupStep string

const (
	StepNoEvent        SetupStep = "no_event"
	StepSettingName    SetupStep = "setting_name"
	StepSettingBalance SetupStep = "setting_balance"
	StepActive         SetupStep = "active"
)

// SetupState returns the current step of the setup state machine.
func (s *Session) SetupState() SetupStep {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.setupStepLocked()
}

func (s *Session) setupStepLocked() SetupStep {
	if s.settings.EventActive() {
		return StepActive
	}
	if s.setupStep == "" {
		return StepNoEvent
	}
	return s.setupStep
}

// PendingName returns the event name collected so far during setup.
func (s *Session) PendingName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pendingName
}

// BeginSetup starts the setup flow. Only valid while no event is active.
func (s *Session) BeginSetup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.setupStepLocked() {
	case StepActive:
		return ErrEventActive
	case StepNoEvent:
		s.setupStep = StepSettingName
		return nil
	default:
		return ErrBadTransition
	}
}

// SubmitName records the event name and advances to the balance step.
// An empty (or whitespace-only) name is refused and the flow stays put.
func (s *Session) SubmitName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setupStepLocked() != StepSettingName {
		return ErrBadTransition
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	s.pendingName = name
	s.setupStep = StepSettingBalance
	return nil
}

// Back returns from the balance step to the name step.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setupStepLocked() != StepSettingBalance {
		return ErrBadTransition
	}
	s.setupStep = StepSettingName
	return nil
}

// Abandon drops a half-finished setup flow.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setupStepLocked() != StepActive {
		s.setupStep = StepNoEvent
		s.pendingName = ""
	}
}

// SubmitBalance finishes setup: it starts the event with the collected
// name and the given starting cash float, resets the order number
// sequence to 1 and clears the runtime ledgers.
func (s *Session) SubmitBalance(balance models.Cents) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setupStepLocked() != StepSettingBalance {
		return ErrBadTransition
	}
	if balance < 0 {
		return ErrNegativeFloat
	}

	name := s.pendingName
	err := s.updateLocked(func(settings *models.Settings) error {
		settings.ActiveEvent = name
		settings.ActiveEventStart = time.Now()
		settings.ActiveEventInitialBalance = balance
		settings.NextOrderNumber = 1
		settings.ActiveInventory = nil
		settings.ActiveRefills = nil
		settings.ActiveTips = nil
		return nil
	})
	if err != nil {
		return err
	}

	s.setupStep = StepNoEvent
	s.pendingName = ""
	s.log.LogSession("START", fmt.Sprintf("event %q started with float %s", name, balance))
	return nil
}
