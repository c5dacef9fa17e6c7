package checkout_test

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"kassensystem/internal/auth"
	"kassensystem/internal/checkout"
	"kassensystem/internal/inventory"
	"kassensystem/internal/logger"
	"kassensystem/internal/models"
	"kassensystem/internal/session"
	"kassensystem/internal/storage"
)

func newTestCheckout(t *testing.T) (*checkout.Service, *session.Session, *inventory.Service) {
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
	gate := auth.NewGate(sess, logger.Discard())
	return checkout.NewService(sess, gate, logger.Discard()), sess, inventory.NewService(sess, logger.Discard())
}

func startEvent(t *testing.T, sess *session.Session, balance models.Cents) {
	t.Helper()
	assert.NoError(t, sess.BeginSetup())
	assert.NoError(t, sess.SubmitName("Sommerfest"))
	assert.NoError(t, sess.SubmitBalance(balance))
}

func TestAddProductRequiresActiveEvent(t *testing.T) {
	svc, _, _ := newTestCheckout(t)

	_, err := svc.AddProduct("s1")
	assert.ErrorIs(t, err, session.ErrNoActiveEvent)
}

func TestAddProductUnknownID(t *testing.T) {
	svc, sess, _ := newTestCheckout(t)
	startEvent(t, sess, 5000)

	_, err := svc.AddProduct("nope")
	assert.ErrorIs(t, err, checkout.ErrProductNotFound)
}

func TestAddProductRefusedWhenSoldOut(t *testing.T) {
	svc, sess, inv := newTestCheckout(t)
	startEvent(t, sess, 5000)
	assert.NoError(t, inv.Track("s1", 1))

	// Sell the last unit through a full checkout.
	_, err := svc.AddProduct("s1")
	assert.NoError(t, err)
	_, err = svc.SelectTaxType(models.TaxOnsite)
	assert.NoError(t, err)
	_, err = svc.Finalize(models.PaymentCard, "")
	assert.NoError(t, err)

	_, err = svc.AddProduct("s1")
	assert.ErrorIs(t, err, checkout.ErrSoldOut)

	// Untracked products keep selling.
	_, err = svc.AddProduct("s2")
	assert.NoError(t, err)
}

func TestCashCheckoutWithChange(t *testing.T) {
	svc, sess, _ := newTestCheckout(t)
	startEvent(t, sess, 5000)

	// Two Elsässer at 10,00 €.
	_, err := svc.AddProduct("s1")
	assert.NoError(t, err)
	_, err = svc.AddProduct("s1")
	assert.NoError(t, err)

	state, err := svc.SelectTaxType(models.TaxOnsite)
	assert.NoError(t, err)
	assert.Equal(t, models.Cents(2000), state.Total)

	// Tender 25,00 € as one 20 note and one 5 note.
	_, err = svc.AddTender(2000)
	assert.NoError(t, err)
	state, err = svc.AddTender(500)
	assert.NoError(t, err)
	assert.Equal(t, models.Cents(2500), state.Tendered)
	assert.Equal(t, models.Cents(500), state.Change)

	order, err := svc.Finalize(models.PaymentCash, "")
	assert.NoError(t, err)
	assert.Equal(t, models.Cents(2000), order.Total)
	assert.Equal(t, 1, order.Number)
	assert.Equal(t, "Sommerfest", order.EventName)
	assert.Equal(t, models.TaxOnsite, order.TaxType)
	assert.Equal(t, 19, order.TaxType.Rate())

	// The checkout is reset for the next customer.
	state = svc.State()
	assert.Empty(t, state.Lines)
	assert.Equal(t, models.Cents(0), state.Tendered)
	assert.Equal(t, 2, state.NextOrderNumber)
}

func TestCashCheckoutInsufficientTender(t *testing.T) {
	svc, sess, _ := newTestCheckout(t)
	startEvent(t, sess, 5000)

	_, err := svc.AddProduct("s1")
	assert.NoError(t, err)
	_, err = svc.SelectTaxType(models.TaxTakeaway)
	assert.NoError(t, err)
	_, err = svc.AddTender(500)
	assert.NoError(t, err)

	_, err = svc.Finalize(models.PaymentCash, "")
	assert.ErrorIs(t, err, checkout.ErrInsufficientTender)

	// Refusal leaves the checkout untouched.
	state := svc.State()
	assert.Len(t, state.Lines, 1)
	assert.Equal(t, models.Cents(500), state.Tendered)

	orders, err := sess.Orders()
	assert.NoError(t, err)
	assert.Empty(t, orders)
}

func TestTenderAcceptsOnlyDenominations(t *testing.T) {
	svc, sess, _ := newTestCheckout(t)
	startEvent(t, sess, 5000)

	_, err := svc.AddTender(1234)
	assert.ErrorIs(t, err, checkout.ErrBadDenomination)

	_, err = svc.AddTender(5)
	assert.NoError(t, err)
	state := svc.ResetTender()
	assert.Equal(t, models.Cents(0), state.Tendered)
}

func TestFreeCheckoutRequiresPasscode(t *testing.T) {
	svc, sess, _ := newTestCheckout(t)
	startEvent(t, sess, 5000)

	_, err := svc.AddProduct("s1")
	assert.NoError(t, err)
	_, err = svc.SelectTaxType(models.TaxOnsite)
	assert.NoError(t, err)

	_, err = svc.Finalize(models.PaymentFree, "0000")
	assert.ErrorIs(t, err, auth.ErrPasscodeRejected)

	order, err := svc.Finalize(models.PaymentFree, "1234")
	assert.NoError(t, err)
	assert.Equal(t, models.Cents(0), order.Total)
	assert.Equal(t, models.Cents(1000), order.LineValue())
}

func TestFinalizeRequiresTaxType(t *testing.T) {
	svc, sess, _ := newTestCheckout(t)
	startEvent(t, sess, 5000)

	_, err := svc.AddProduct("s1")
	assert.NoError(t, err)

	_, err = svc.Finalize(models.PaymentCard, "")
	assert.ErrorIs(t, err, checkout.ErrNoTaxType)
}

func TestFinalizeEmptyCart(t *testing.T) {
	svc, sess, _ := newTestCheckout(t)
	startEvent(t, sess, 5000)

	_, err := svc.Finalize(models.PaymentCard, "")
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
}

func TestFinalizeDecrementsInventory(t *testing.T) {
	svc, sess, inv := newTestCheckout(t)
	startEvent(t, sess, 5000)
	assert.NoError(t, inv.Track("s1", 40))

	_, err := svc.AddProduct("s1")
	assert.NoError(t, err)
	_, err = svc.AddProduct("s1")
	assert.NoError(t, err)
	_, err = svc.SelectTaxType(models.TaxOnsite)
	assert.NoError(t, err)
	_, err = svc.Finalize(models.PaymentCard, "")
	assert.NoError(t, err)

	assert.Equal(t, 38, inv.Snapshot()["s1"].Current)
}

func TestOrderNumbersIncrementPerOrder(t *testing.T) {
	svc, sess, _ := newTestCheckout(t)
	startEvent(t, sess, 5000)

	for want := 1; want <= 3; want++ {
		_, err := svc.AddProduct("s1")
		assert.NoError(t, err)
		_, err = svc.SelectTaxType(models.TaxOnsite)
		assert.NoError(t, err)
		order, err := svc.Finalize(models.PaymentCard, "")
		assert.NoError(t, err)
		assert.Equal(t, want, order.Number)
	}
}

func TestOverridePriceThroughService(t *testing.T) {
	svc, sess, _ := newTestCheckout(t)
	startEvent(t, sess, 5000)

	state, err := svc.AddProduct("s1")
	assert.NoError(t, err)
	lineID := state.Lines[0].ID

	_, err = svc.OverridePrice(lineID, 500, "0000")
	assert.ErrorIs(t, err, auth.ErrPasscodeRejected)

	state, err = svc.OverridePrice(lineID, 500, "1234")
	assert.NoError(t, err)
	assert.Equal(t, models.Cents(500), state.Total)
	assert.True(t, state.Lines[0].Overridden)
}

func TestSelectTaxTypeValidation(t *testing.T) {
	svc, _, _ := newTestCheckout(t)

	_, err := svc.SelectTaxType("delivery")
	assert.ErrorIs(t, err, checkout.ErrBadTaxType)
}
