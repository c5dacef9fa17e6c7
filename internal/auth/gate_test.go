package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kassensystem/internal/auth"
	"kassensystem/internal/logger"
	"kassensystem/internal/models"
)

type staticSettings struct {
	passcode string
}

func (s staticSettings) Settings() models.Settings {
	return models.Settings{Passcode: s.passcode}
}

func TestVerifyAcceptsMatchingPasscode(t *testing.T) {
	gate := auth.NewGate(staticSettings{passcode: "1234"}, logger.Discard())

	assert.NoError(t, gate.Verify("1234", auth.ModePriceOverride))
	assert.NoError(t, gate.Verify("1234", auth.ModeCancelOrder))
}

func TestVerifyRejectsWrongPasscode(t *testing.T) {
	gate := auth.NewGate(staticSettings{passcode: "1234"}, logger.Discard())

	assert.ErrorIs(t, gate.Verify("0000", auth.ModeFreeCheckout), auth.ErrPasscodeRejected)
	assert.ErrorIs(t, gate.Verify("", auth.ModeResetOrders), auth.ErrPasscodeRejected)
	assert.ErrorIs(t, gate.Verify("12345", auth.ModePriceOverride), auth.ErrPasscodeRejected)
}

func TestVerifyRetriesAfterRejection(t *testing.T) {
	gate := auth.NewGate(staticSettings{passcode: "1234"}, logger.Discard())

	// No lockout: a wrong attempt never blocks the next one.
	assert.ErrorIs(t, gate.Verify("1111", auth.ModeCancelOrder), auth.ErrPasscodeRejected)
	assert.NoError(t, gate.Verify("1234", auth.ModeCancelOrder))
}
