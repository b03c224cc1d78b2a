// Package payment charges payment sources through an external processor.
package payment

import "context"

// Currency is fixed for every charge
const Currency = "USD"

// ChargeRequest describes one charge attempt
type ChargeRequest struct {
	Amount         int64  // Minor currency units
	Currency       string // ISO currency code
	Source         string // Client-supplied payment source token
	IdempotencyKey string // Forwarded to the processor so retries never double charge
}

// Charge is the processor's record of a successful charge
type Charge struct {
	ID     string // Processor charge reference
	Amount int64  // Amount actually charged
}

// Gateway is the processor's charge API
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
	Refund(ctx context.Context, chargeID string) error
}
