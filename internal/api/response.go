package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"kassensystem/internal/archive"
	"kassensystem/internal/auth"
	"kassensystem/internal/checkout"
	"kassensystem/internal/inventory"
	"kassensystem/internal/orders"
	"kassensystem/internal/session"
	"kassensystem/internal/tips"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(message, errText string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     errText,
		Timestamp: time.Now(),
	}
}

func writeJSON(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps engine errors to HTTP status codes: validation 400,
// rejected passcode 401, missing resources 404, business-rule refusals
// 409, everything else (store failures) 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrPasscodeRejected):
		return http.StatusUnauthorized

	case errors.Is(err, checkout.ErrProductNotFound),
		errors.Is(err, checkout.ErrLineNotFound),
		errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, archive.ErrEventNotFound):
		return http.StatusNotFound

	case errors.Is(err, checkout.ErrSoldOut),
		errors.Is(err, checkout.ErrInsufficientTender),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, orders.ErrAlreadyCancelled),
		errors.Is(err, session.ErrNoActiveEvent),
		errors.Is(err, session.ErrEventActive),
		errors.Is(err, session.ErrBadTransition):
		return http.StatusConflict

	case errors.Is(err, session.ErrEmptyName),
		errors.Is(err, session.ErrNegativeFloat),
		errors.Is(err, checkout.ErrBadQuantity),
		errors.Is(err, checkout.ErrBadPrice),
		errors.Is(err, checkout.ErrNoTaxType),
		errors.Is(err, checkout.ErrBadTaxType),
		errors.Is(err, checkout.ErrBadPaymentMethod),
		errors.Is(err, checkout.ErrBadDenomination),
		errors.Is(err, orders.ErrBadReason),
		errors.Is(err, orders.ErrEmptyNote),
		errors.Is(err, orders.ErrNoteTooLong),
		errors.Is(err, tips.ErrBadAmount),
		errors.Is(err, inventory.ErrNotTracked),
		errors.Is(err, inventory.ErrEmptyRefill),
		errors.Is(err, inventory.ErrNegativeCount):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, message string, err error) {
	writeJSON(w, statusFor(err), ErrorResponse(message, err.Error()))
}
