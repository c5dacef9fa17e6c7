package checkout

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"kassensystem/internal/auth"
	"kassensystem/internal/inventory"
	"kassensystem/internal/logger"
	"kassensystem/internal/models"
	"kassensystem/internal/session"
)

var (
	ErrEmptyCart          = errors.New("checkout: cart is empty")
	ErrProductNotFound    = errors.New("checkout: unknown product")
	ErrSoldOut            = errors.New("checkout: product is sold out")
	ErrNoTaxType          = errors.New("checkout: tax type not selected")
	ErrBadTaxType         = errors.New("checkout: unknown tax type")
	ErrBadPaymentMethod   = errors.New("checkout: unknown payment method")
	ErrBadDenomination    = errors.New("checkout: not a valid note or coin")
	ErrInsufficientTender = errors.New("checkout: tendered amount below total")
)

// Service drives a checkout from the first product tap to the finalized
// order: cart edits, the tax-type step, the cash change calculator and
// the atomic commit into the order ledger.
type Service struct {
	Session *session.Session
	Gate    *auth.Gate
	Logger  *logger.Logger

	mu       sync.Mutex
	cart     Cart
	taxType  models.TaxType
	tendered models.Cents
}

// State is the transient checkout view handed to the presentation layer.
type State struct {
	Lines           []Line         `json:"lines"`
	Total           models.Cents   `json:"total"`
	ItemCount       int            `json:"item_count"`
	TaxType         models.TaxType `json:"tax_type,omitempty"`
	Tendered        models.Cents   `json:"tendered"`
	Change          models.Cents   `json:"change"`
	NextOrderNumber int            `json:"next_order_number"`
}

func NewService(s *session.Session, gate *auth.Gate, log *logger.Logger) *Service {
	return &Service{Session: s, Gate: gate, Logger: log}
}

func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Service) stateLocked() State {
	total := s.cart.Total()
	change := s.tendered - total
	if change < 0 {
		change = 0
	}
	return State{
		Lines:           s.cart.Lines(),
		Total:           total,
		ItemCount:       s.cart.ItemCount(),
		TaxType:         s.taxType,
		Tendered:        s.tendered,
		Change:          change,
		NextOrderNumber: s.Session.Settings().NextOrderNumber,
	}
}

// AddProduct puts one unit of the product into the cart. A tracked
// product with no stock left is refused and the cart stays unchanged;
// stock itself is only decremented at finalization.
func (s *Service) AddProduct(productID string) (State, error) {
	settings := s.Session.Settings()
	if !settings.EventActive() {
		return State{}, session.ErrNoActiveEvent
	}

	products, err := s.Session.Products()
	if err != nil {
		return State{}, err
	}
	var product *models.Product
	for i := range products {
		if products[i].ID == productID {
			product = &products[i]
			break
		}
	}
	if product == nil {
		return State{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}

	if inventory.SoldOut(settings.ActiveInventory, productID) {
		s.Logger.Warn("CHECKOUT", fmt.Sprintf("refused sold-out product %s", productID))
		return State{}, ErrSoldOut
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Add(*product)
	return s.stateLocked(), nil
}

func (s *Service) SetQuantity(lineID, quantity int) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.SetQuantity(lineID, quantity); err != nil {
		return State{}, err
	}
	return s.stateLocked(), nil
}

func (s *Service) RemoveLine(lineID int) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.Remove(lineID); err != nil {
		return State{}, err
	}
	return s.stateLocked(), nil
}

// OverridePrice changes a line's unit price after passcode verification.
func (s *Service) OverridePrice(lineID int, price models.Cents, passcode string) (State, error) {
	if err := s.Gate.Verify(passcode, auth.ModePriceOverride); err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.Override(lineID, price); err != nil {
		return State{}, err
	}
	s.Logger.Info("CHECKOUT", fmt.Sprintf("price override on line %d: %s", lineID, price))
	return s.stateLocked(), nil
}

// SelectTaxType records the onsite/takeaway classification. Informational
// only; the displayed total never changes.
func (s *Service) SelectTaxType(taxType models.TaxType) (State, error) {
	if taxType != models.TaxOnsite && taxType != models.TaxTakeaway {
		return State{}, ErrBadTaxType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taxType = taxType
	return s.stateLocked(), nil
}

// AddTender adds one tapped note or coin to the amount given. Only the
// fixed denomination set is accepted.
func (s *Service) AddTender(denomination models.Cents) (State, error) {
	valid := false
	for _, d := range models.Denominations {
		if d == denomination {
			valid = true
			break
		}
	}
	if !valid {
		return State{}, ErrBadDenomination
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tendered += denomination
	return s.stateLocked(), nil
}

// ResetTender clears the change calculator.
func (s *Service) ResetTender() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tendered = 0
	return s.stateLocked()
}

// Clear abandons the checkout: cart, tax-type step and tender all reset.
func (s *Service) Clear() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	s.taxType = ""
	s.tendered = 0
	return s.stateLocked()
}

// Finalize commits the checkout: it builds the order, decrements tracked
// stock for every line, appends the order to the ledger and advances the
// order number — all in one store mutation, so no observer can see an
// order without its inventory effect. On success the cart and all step
// state are cleared.
//
// Cash requires the tendered amount to cover the total; free-of-charge
// requires passcode authorization and records a zero total.
func (s *Service) Finalize(method models.PaymentMethod, passcode string) (models.Order, error) {
	if method != models.PaymentCash && method != models.PaymentCard && method != models.PaymentFree {
		return models.Order{}, ErrBadPaymentMethod
	}
	if method == models.PaymentFree {
		if err := s.Gate.Verify(passcode, auth.ModeFreeCheckout); err != nil {
			return models.Order{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart.Empty() {
		return models.Order{}, ErrEmptyCart
	}
	if s.taxType == "" {
		return models.Order{}, ErrNoTaxType
	}

	total := s.cart.Total()
	if method == models.PaymentCash && s.tendered < total {
		return models.Order{}, ErrInsufficientTender
	}
	if method == models.PaymentFree {
		total = 0
	}

	order := models.Order{
		ID:            uuid.NewString(),
		Timestamp:     time.Now(),
		Lines:         s.cart.OrderLines(),
		Total:         total,
		PaymentMethod: method,
		TaxType:       s.taxType,
	}

	err := s.Session.Mutate(func(m *session.Mutation) error {
		if !m.Settings.EventActive() {
			return session.ErrNoActiveEvent
		}
		order.Number = m.Settings.NextOrderNumber
		order.EventName = m.Settings.ActiveEvent
		*m.Orders = append(*m.Orders, order)
		inventory.Sell(m.Settings.ActiveInventory, order.Lines)
		m.Settings.NextOrderNumber++
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	s.cart.Clear()
	s.taxType = ""
	s.tendered = 0

	s.Logger.LogOrder("FINALIZE", order.ID, fmt.Sprintf("#%d %s via %s", order.Number, order.Total, method))
	return order, nil
}
