package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"kassensystem/internal/logger"
	"kassensystem/internal/models"
	"kassensystem/internal/storage"
)

var (
	ErrNoActiveEvent = errors.New("session: no active event")
	ErrEventActive   = errors.New("session: an event is already active")
	ErrEmptyName     = errors.New("session: event name must not be empty")
	ErrBadTransition = errors.New("session: operation not allowed in current setup step")
	ErrNegativeFloat = errors.New("session: starting balance must not be negative")
)

// Session owns the persisted till settings and fans out every change to
// its subscribers, so independently rendered views stay consistent
// without polling. All ledger mutations go through Update or Mutate,
// which serialize on one mutex — the engine's stand-in for the single
// thread of control the till is designed around. Two instances on the
// same store can still race each other; that is accepted (see storage).
type Session struct {
	store storage.Store
	log   *logger.Logger

	mu          sync.RWMutex
	settings    models.Settings
	setupStep   SetupStep
	pendingName string

	subMu sync.RWMutex
	subs  []chan models.Settings
}

// Mutation is the state handed to a Mutate callback: the settings plus
// the order ledger and the archive, loaded fresh from the store. Whatever
// the callback leaves behind is written back wholesale.
type Mutation struct {
	Settings *models.Settings
	Orders   *[]models.Order
	Archive  *[]models.ArchivedEvent
}

func New(store storage.Store, log *logger.Logger) (*Session, error) {
	settings, err := store.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	s := &Session{store: store, log: log, settings: settings}
	if settings.EventActive() {
		log.LogSession("RESUME", fmt.Sprintf("active event %q, next order #%d", settings.ActiveEvent, settings.NextOrderNumber))
	}
	return s, nil
}

// Settings returns a snapshot of the current settings.
func (s *Session) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

func (s *Session) Products() ([]models.Product, error) {
	return s.store.LoadProducts()
}

func (s *Session) Orders() ([]models.Order, error) {
	return s.store.LoadOrders()
}

func (s *Session) Archive() ([]models.ArchivedEvent, error) {
	return s.store.LoadArchive()
}

// Update applies a settings-only mutation: read-modify-write of the whole
// settings object, then notify.
func (s *Session) Update(fn func(*models.Settings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(fn)
}

func (s *Session) updateLocked(fn func(*models.Settings) error) error {
	next := s.settings.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.store.SaveSettings(next); err != nil {
		return s.resyncLocked(err)
	}
	s.settings = next
	s.notify(next)
	return nil
}

// Mutate applies a mutation that spans the order ledger and the archive
// in addition to the settings. The collections are persisted archive
// first, then orders, then settings; only after all writes succeed does
// the in-memory state advance and the change get broadcast. On a write
// error the session re-reads the store so memory never silently diverges
// from disk.
func (s *Session) Mutate(fn func(m *Mutation) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.store.LoadOrders()
	if err != nil {
		return err
	}
	archive, err := s.store.LoadArchive()
	if err != nil {
		return err
	}
	next := s.settings.Clone()

	if err := fn(&Mutation{Settings: &next, Orders: &orders, Archive: &archive}); err != nil {
		return err
	}

	if err := s.store.SaveArchive(archive); err != nil {
		return s.resyncLocked(err)
	}
	if err := s.store.SaveOrders(orders); err != nil {
		return s.resyncLocked(err)
	}
	if err := s.store.SaveSettings(next); err != nil {
		return s.resyncLocked(err)
	}

	s.settings = next
	s.notify(next)
	return nil
}

// resyncLocked reloads the settings after a failed write so the cached
// state matches whatever actually landed in the store.
func (s *Session) resyncLocked(cause error) error {
	settings, err := s.store.LoadSettings()
	if err != nil {
		s.log.Error("SESSION", fmt.Sprintf("resync after failed write also failed: %v", err))
		return cause
	}
	s.settings = settings
	return cause
}

// UpdatePasscode changes the shared Storno passcode. It is stored in
// plaintext; the till is a deliberately low-assurance, single-device
// mechanism.
func (s *Session) UpdatePasscode(code string) error {
	err := s.Update(func(settings *models.Settings) error {
		settings.Passcode = code
		return nil
	})
	if err == nil {
		s.log.LogSession("PASSCODE", "passcode updated")
	}
	return err
}

// Subscribe registers a settings listener. The channel receives every
// settings value written after the call and is closed when ctx ends.
// Slow listeners miss updates rather than block the till.
func (s *Session) Subscribe(ctx context.Context) <-chan models.Settings {
	ch := make(chan models.Settings, 10)

	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()

	go func() {
		<-ctx.Done()
		s.removeSubscriber(ch)
	}()

	return ch
}

func (s *Session) notify(settings models.Settings) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- settings.Clone():
		default:
		}
	}
}

func (s *Session) removeSubscriber(ch chan models.Settings) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for i, sub := range s.subs {
		if sub == ch {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			close(ch)
			return
		}
	}
}
