package models

import "time"

// PaymentMethod is how an order was settled.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentFree PaymentMethod = "free"
)

// TaxType classifies an order for VAT reporting. It is informational and
// never changes the charged total.
type TaxType string

const (
	TaxOnsite   TaxType = "onsite"   // 19%
	TaxTakeaway TaxType = "takeaway" // 7%
)

// Rate returns the VAT percentage attributed to the tax type.
func (t TaxType) Rate() int {
	if t == TaxTakeaway {
		return 7
	}
	return 19
}

// CancelReason is the fixed reason code of a Storno.
type CancelReason string

const (
	CancelMisbooking CancelReason = "misbooking"
	CancelComplaint  CancelReason = "complaint"
	CancelReturn     CancelReason = "return"
	CancelBreakage   CancelReason = "breakage"
	CancelOther      CancelReason = "other"
)

// CancelReasons lists the selectable Storno reasons.
var CancelReasons = []CancelReason{
	CancelMisbooking, CancelComplaint, CancelReturn, CancelBreakage, CancelOther,
}

// Cancellation carries the Storno metadata of a cancelled order. Its
// presence on an Order is what marks the order cancelled, so a cancelled
// order always has a reason.
type Cancellation struct {
	Reason    CancelReason `json:"reason"`
	Note      string       `json:"note,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// ReasonText is the reason shown in the audit list: the free-text note for
// "other", the code itself for everything else.
func (c Cancellation) ReasonText() string {
	if c.Reason == CancelOther {
		return c.Note
	}
	return string(c.Reason)
}

// Order is one finalized checkout. Orders are immutable once created
// except for the soft Storno, which attaches a Cancellation and reverses
// the revenue and inventory effects while keeping the order in the ledger.
type Order struct {
	ID            string        `json:"id"`
	Number        int           `json:"order_number"`
	Timestamp     time.Time     `json:"timestamp"`
	Lines         []CartLine    `json:"lines"`
	Total         Cents         `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	EventName     string        `json:"event_name"`
	TaxType       TaxType       `json:"tax_type"`
	Cancellation  *Cancellation `json:"cancellation,omitempty"`
}

// Cancelled reports whether the order was stornoed.
func (o *Order) Cancelled() bool {
	return o.Cancellation != nil
}

// LineValue is the gross value of the order's lines regardless of the
// payment method. For free-of-charge orders this is the given-away value
// even though Total is zero.
func (o *Order) LineValue() Cents {
	var sum Cents
	for _, l := range o.Lines {
		sum += l.Subtotal()
	}
	return sum
}
