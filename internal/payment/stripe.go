package payment

import (
	"context" // Request-scoped cancellation
	"errors"  // Error matching
	"fmt"     // Error wrapping
	"strings" // Currency normalization

	"github.com/stripe/stripe-go/v76"        // Stripe types
	"github.com/stripe/stripe-go/v76/client" // Stripe API client

	"storefront/internal/domain" // Domain errors
)

// Stripe is a Gateway backed by the Stripe charges API
type Stripe struct {
	api *client.API
}

// NewStripe returns a Stripe gateway using the given secret key
func NewStripe(secretKey string) *Stripe {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Stripe{api: api}
}

func (s *Stripe) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	params := &stripe.ChargeParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(strings.ToLower(req.Currency)),
	}
	params.Context = ctx
	if err := params.SetSource(req.Source); err != nil {
		return nil, domain.Validation("Invalid payment source")
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	ch, err := s.api.Charges.New(params)
	if err != nil {
		return nil, classify(err)
	}
	return &Charge{ID: ch.ID, Amount: ch.Amount}, nil
}

func (s *Stripe) Refund(ctx context.Context, chargeID string) error {
	params := &stripe.RefundParams{Charge: stripe.String(chargeID)}
	params.Context = ctx
	if _, err := s.api.Refunds.New(params); err != nil {
		return fmt.Errorf("stripe refund %s: %w", chargeID, err)
	}
	return nil
}

// classify maps card rejections to PaymentDeclined and a rejected source to Validation.
// Authentication, API and idempotency failures stay internal.
func classify(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return fmt.Errorf("stripe charge: %w", err)
	}
	switch {
	case se.Type == stripe.ErrorTypeCard, se.Type == stripe.ErrorTypeInvalidRequest && se.DeclineCode != "":
		msg := se.Msg
		if msg == "" {
			msg = "Your payment was declined"
		}
		return domain.PaymentDeclined(msg, err)
	case se.Type == stripe.ErrorTypeInvalidRequest && se.Param == "source":
		return &domain.Error{Kind: domain.KindValidation, Msg: "Invalid payment source", Err: err}
	}
	return fmt.Errorf("stripe charge (%s): %w", se.Type, err)
}
