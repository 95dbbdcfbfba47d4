package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"

	pkgerrors "github.com/marketloop/marketloop-backend/pkg/errors"
	pkgstripe "github.com/marketloop/marketloop-backend/pkg/stripe"
)

const metadataOrderIDKey = "order_id"

type stripeGateway struct{}

// NewStripeGateway wraps the initialized Stripe client as a CheckoutGateway.
func NewStripeGateway(api *pkgstripe.Client) (CheckoutGateway, error) {
	if api == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	return &stripeGateway{}, nil
}

func (g *stripeGateway) CreateSession(ctx context.Context, input CreateSessionInput) (*CheckoutSession, error) {
	if len(input.LineItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session requires line items")
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(input.LineItems))
	for _, item := range input.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(item.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(input.Currency),
				UnitAmount: stripe.Int64(item.UnitAmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(input.SuccessURL),
		CancelURL:         stripe.String(input.CancelURL),
		ClientReferenceID: stripe.String(input.OrderID.String()),
		LineItems:         lineItems,
	}
	params.Context = ctx
	if input.BuyerEmail != "" {
		params.CustomerEmail = stripe.String(input.BuyerEmail)
	}
	params.AddMetadata(metadataOrderIDKey, input.OrderID.String())

	sess, err := session.New(params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "create checkout session")
	}
	return fromStripeSession(sess), nil
}

func (g *stripeGateway) RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := session.Get(sessionID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "retrieve checkout session")
	}
	return fromStripeSession(sess), nil
}

func fromStripeSession(sess *stripe.CheckoutSession) *CheckoutSession {
	if sess == nil {
		return nil
	}
	out := &CheckoutSession{
		ID:      sess.ID,
		URL:     sess.URL,
		OrderID: sess.ClientReferenceID,
	}
	if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid ||
		sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired {
		out.PaymentStatus = SessionPaymentStatusPaid
	} else {
		out.PaymentStatus = SessionPaymentStatusUnpaid
	}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	return out
}
