package auth

import (
	"errors"

	"kassensystem/internal/logger"
	"kassensystem/internal/models"
)

// ErrPasscodeRejected is returned for any wrong passcode. There is no
// lockout and no attempt counter; the operator simply retries.
var ErrPasscodeRejected = errors.New("auth: passcode rejected")

// Mode tags what a successful verification unlocks. Verification itself
// is mode-agnostic; the tag exists for logging and handler dispatch.
type Mode string

const (
	ModePriceOverride  Mode = "price_override"
	ModeFreeCheckout   Mode = "free_checkout"
	ModeCancelOrder    Mode = "cancel_order"
	ModeResetOrders    Mode = "reset_orders"
	ModeChangePasscode Mode = "change_passcode"
)

// SettingsSource provides the current till settings.
type SettingsSource interface {
	Settings() models.Settings
}

// Gate verifies the shared Storno passcode before privileged mutations.
// The passcode is an exact plaintext match — a deliberately low-assurance
// convenience mechanism for a single offline device, not something to
// harden with hashing or per-user identity.
type Gate struct {
	Session SettingsSource
	Logger  *logger.Logger
}

func NewGate(session SettingsSource, log *logger.Logger) *Gate {
	return &Gate{Session: session, Logger: log}
}

// Verify checks input against the stored passcode. A mismatch returns
// ErrPasscodeRejected without revealing which positions matched.
func (g *Gate) Verify(input string, mode Mode) error {
	if input != g.Session.Settings().Passcode {
		g.Logger.LogAuth(string(mode), "passcode rejected")
		return ErrPasscodeRejected
	}
	g.Logger.Info("AUTH", "passcode accepted for "+string(mode))
	return nil
}
