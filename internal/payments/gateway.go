package payments

import (
	"context"

	"github.com/google/uuid"
)

// SessionPaymentStatus is the gateway's view of whether a session was paid.
type SessionPaymentStatus string

const (
	SessionPaymentStatusPaid   SessionPaymentStatus = "paid"
	SessionPaymentStatusUnpaid SessionPaymentStatus = "unpaid"
)

// SessionLineItem is one purchasable line sent to the gateway.
type SessionLineItem struct {
	Name            string
	UnitAmountCents int64
	Quantity        int64
}

// CreateSessionInput carries everything needed to open a hosted checkout.
type CreateSessionInput struct {
	OrderID    uuid.UUID
	BuyerEmail string
	Currency   string
	SuccessURL string
	CancelURL  string
	LineItems  []SessionLineItem
}

// CheckoutSession is the gateway-neutral session view the order core consumes.
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentStatus   SessionPaymentStatus
	PaymentIntentID string
	OrderID         string
}

// Paid reports whether the gateway settled the session.
func (s *CheckoutSession) Paid() bool {
	return s != nil && s.PaymentStatus == SessionPaymentStatusPaid
}

// CheckoutGateway is the narrow payment surface the order service depends on.
// The production implementation talks to Stripe Checkout; tests stub it.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}
