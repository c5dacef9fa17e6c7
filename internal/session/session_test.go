package session_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"kassensystem/internal/logger"
	"kassensystem/internal/models"
	"kassensystem/internal/session"
	"kassensystem/internal/storage"
)

func newTestSession(t *testing.T) (*session.Session, *storage.KV) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	if err := storage.Migrate(bunDB); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	store := storage.NewKV(bunDB, "1234", logger.Discard())

	sess, err := session.New(store, logger.Discard())
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return sess, store
}

// startEvent walks the full setup flow.
func startEvent(t *testing.T, sess *session.Session, name string, balance models.Cents) {
	t.Helper()
	assert.NoError(t, sess.BeginSetup())
	assert.NoError(t, sess.SubmitName(name))
	assert.NoError(t, sess.SubmitBalance(balance))
}

func TestFreshSessionHasNoEvent(t *testing.T) {
	sess, _ := newTestSession(t)

	assert.Equal(t, session.StepNoEvent, sess.SetupState())
	assert.False(t, sess.Settings().EventActive())
	assert.Equal(t, "1234", sess.Settings().Passcode)
}

func TestUpdatePersistsSettings(t *testing.T) {
	sess, store := newTestSession(t)

	err := sess.Update(func(settings *models.Settings) error {
		settings.Passcode = "9999"
		return nil
	})
	assert.NoError(t, err)

	stored, err := store.LoadSettings()
	assert.NoError(t, err)
	assert.Equal(t, "9999", stored.Passcode)
}

func TestUpdateErrorLeavesStateUntouched(t *testing.T) {
	sess, store := newTestSession(t)

	sentinel := assert.AnError
	err := sess.Update(func(settings *models.Settings) error {
		settings.Passcode = "0000"
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	assert.Equal(t, "1234", sess.Settings().Passcode)
	stored, err := store.LoadSettings()
	assert.NoError(t, err)
	assert.Equal(t, "1234", stored.Passcode)
}

func TestMutatePersistsAllCollections(t *testing.T) {
	sess, store := newTestSession(t)
	startEvent(t, sess, "Sommerfest", 5000)

	err := sess.Mutate(func(m *session.Mutation) error {
		*m.Orders = append(*m.Orders, models.Order{ID: "o1", Number: 1, Total: 1000, PaymentMethod: models.PaymentCash, TaxType: models.TaxOnsite})
		m.Settings.NextOrderNumber = 2
		return nil
	})
	assert.NoError(t, err)

	orders, err := store.LoadOrders()
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 2, sess.Settings().NextOrderNumber)
}

func TestMutateErrorWritesNothing(t *testing.T) {
	sess, store := newTestSession(t)
	startEvent(t, sess, "Sommerfest", 5000)

	err := sess.Mutate(func(m *session.Mutation) error {
		*m.Orders = append(*m.Orders, models.Order{ID: "o1"})
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	orders, err := store.LoadOrders()
	assert.NoError(t, err)
	assert.Empty(t, orders)
}

func TestSubscribeReceivesSettingsChanges(t *testing.T) {
	sess, _ := newTestSession(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := sess.Subscribe(ctx)

	assert.NoError(t, sess.UpdatePasscode("4321"))

	select {
	case settings := <-updates:
		assert.Equal(t, "4321", settings.Passcode)
	case <-time.After(time.Second):
		t.Fatal("expected a settings update")
	}
}

func TestSubscribeChannelClosesOnContextCancel(t *testing.T) {
	sess, _ := newTestSession(t)

	ctx, cancel := context.WithCancel(context.Background())
	updates := sess.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-updates:
		assert.False(t, ok, "channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("expected channel to close")
	}
}

func TestSessionResumesActiveEventAfterRestart(t *testing.T) {
	sess, store := newTestSession(t)
	startEvent(t, sess, "Sommerfest", 5000)

	resumed, err := session.New(store, logger.Discard())
	assert.NoError(t, err)
	assert.Equal(t, session.StepActive, resumed.SetupState())
	assert.Equal(t, "Sommerfest", resumed.Settings().ActiveEvent)
}
