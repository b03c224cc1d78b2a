package payment

import (
	"context" // Request-scoped cancellation
	"errors"  // Sentinel errors
	"fmt"     // Error wrapping
	"sync"    // Guards recorded calls

	"github.com/google/uuid" // Charge ids

	"storefront/internal/domain" // Domain errors
)

// DeclinedToken is the source token the fake gateway always declines
const DeclinedToken = "tok_chargeDeclined"

// ErrIdempotencyMismatch is returned when a key is reused with a different request
var ErrIdempotencyMismatch = errors.New("idempotency key reused with different parameters")

// Fake is an in-process Gateway for development and tests. It records every call and
// replays results per idempotency key the way the processor does.
type Fake struct {
	mu       sync.Mutex
	charges  []ChargeRequest
	refunds  []string
	byKey    map[string]fakeResult
	ChargeFn func(req ChargeRequest) (*Charge, error) // Optional override of the charge result
	RefundFn func(chargeID string) error              // Optional override of the refund result
}

type fakeResult struct {
	req    ChargeRequest
	charge *Charge
	err    error
}

// NewFake returns an empty fake gateway
func NewFake() *Fake {
	return &Fake{byKey: map[string]fakeResult{}}
}

func (f *Fake) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.charges = append(f.charges, req)
	if req.IdempotencyKey != "" {
		if prev, ok := f.byKey[req.IdempotencyKey]; ok {
			if prev.req != req {
				return nil, fmt.Errorf("%w: %s", ErrIdempotencyMismatch, req.IdempotencyKey)
			}
			return prev.charge, prev.err // Replayed key, same result as the first call
		}
	}
	ch, err := f.charge(req)
	// Successes and declines are stored under the key, transport failures are not
	if req.IdempotencyKey != "" && (err == nil || domain.KindOf(err) == domain.KindPaymentDeclined) {
		f.byKey[req.IdempotencyKey] = fakeResult{req: req, charge: ch, err: err}
	}
	return ch, err
}

func (f *Fake) charge(req ChargeRequest) (*Charge, error) {
	if f.ChargeFn != nil {
		return f.ChargeFn(req)
	}
	if req.Source == DeclinedToken {
		return nil, domain.PaymentDeclined("Your card was declined.", errors.New("card_declined"))
	}
	return &Charge{ID: "ch_" + uuid.NewString(), Amount: req.Amount}, nil
}

func (f *Fake) Refund(_ context.Context, chargeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refunds = append(f.refunds, chargeID)
	if f.RefundFn != nil {
		return f.RefundFn(chargeID)
	}
	return nil
}

// Charges returns a copy of every charge request seen
func (f *Fake) Charges() []ChargeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ChargeRequest(nil), f.charges...)
}

// Refunds returns a copy of every refunded charge id
func (f *Fake) Refunds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.refunds...)
}
