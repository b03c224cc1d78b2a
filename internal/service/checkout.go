package service

import (
	"context"       // Request-scoped cancellation
	"crypto/sha256" // Cart fingerprint
	"encoding/hex"  // Fingerprint encoding
	"errors"        // Error matching
	"fmt"           // Fingerprint input and error wrapping
	"sort"          // Stable fingerprint order
	"strconv"       // Lock keys
	"strings"       // Source trimming
	"time"          // Lock lifetime

	"github.com/sirupsen/logrus" // Structured logging

	"storefront/internal/domain"  // Domain models
	"storefront/internal/metrics" // Checkout counters
	"storefront/internal/payment" // Payment gateway
	"storefront/internal/utils"   // Per-user lock
)

// Checkout turns a user's cart into a paid order
type Checkout struct {
	carts   CartStore
	orders  OrderStore
	gateway payment.Gateway
	locker  utils.Locker
	lockTTL time.Duration
	metrics *metrics.Metrics
	log     *logrus.Entry
}

func NewCheckout(carts CartStore, orders OrderStore, gateway payment.Gateway, locker utils.Locker, lockTTL time.Duration, m *metrics.Metrics, log *logrus.Entry) *Checkout {
	return &Checkout{carts: carts, orders: orders, gateway: gateway, locker: locker, lockTTL: lockTTL, metrics: m, log: log}
}

// CartTotal sums price times quantity over the rows
func CartTotal(cart []domain.CartItem) int64 {
	var total int64
	for _, ci := range cart {
		total += ci.LineTotal()
	}
	return total
}

// Fingerprint identifies a cart state: the user plus every row id and quantity
func Fingerprint(userID uint, cart []domain.CartItem) string {
	parts := make([]string, len(cart))
	for i, ci := range cart {
		parts[i] = fmt.Sprintf("%d:%d", ci.ID, ci.Quantity)
	}
	sort.Strings(parts)
	sum := sha256.Sum256([]byte(strconv.FormatUint(uint64(userID), 10) + "|" + strings.Join(parts, ",")))
	return hex.EncodeToString(sum[:])
}

// ChargeKey derives the processor idempotency key of one charge attempt. Source and amount
// are part of it so a different card never hits a stored result of another.
func ChargeKey(base, source string, amount, attempt int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%d", base, source, amount, attempt)))
	return hex.EncodeToString(sum[:])
}

// Checkout charges the server-computed cart total and materializes the order.
// The amount never comes from the client, only sourceToken does.
func (s *Checkout) Checkout(ctx context.Context, userID uint, sourceToken, idempotencyKey string) (*domain.Order, error) {
	if userID == 0 {
		return nil, domain.ErrNotSignedIn
	}
	sourceToken = strings.TrimSpace(sourceToken)
	if sourceToken == "" {
		return nil, domain.Validation("A payment token is required")
	}
	logger := s.log.WithField("user_id", userID)

	// Serialize checkouts of the same user
	release, err := s.locker.Acquire(ctx, "checkout:lock:user:"+strconv.FormatUint(uint64(userID), 10), s.lockTTL)
	if errors.Is(err, utils.ErrLockHeld) {
		s.metrics.CheckoutOutcome("busy")
		return nil, domain.ErrCheckoutInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("acquire checkout lock: %w", err)
	}
	defer release()

	// Load the authoritative cart and price it
	cart, err := s.carts.CartByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart) == 0 {
		s.metrics.CheckoutOutcome("empty")
		return nil, domain.ErrEmptyCart
	}
	total := CartTotal(cart)
	fingerprint := Fingerprint(userID, cart)
	cartItemIDs := make([]uint, len(cart))
	for i, ci := range cart {
		cartItemIDs[i] = ci.ID
	}

	// Same cart state already paid for: the earlier cleanup failed, finish it instead of charging again
	existing, err := s.orders.OrderByFingerprint(ctx, userID, fingerprint)
	if err == nil {
		if _, cerr := s.carts.DeleteCartItems(ctx, userID, cartItemIDs); cerr != nil {
			logger.WithError(cerr).WithField("order_id", existing.ID).Warn("Cart cleanup retry failed")
		}
		logger.WithField("order_id", existing.ID).Info("Checkout replayed, returning existing order")
		s.metrics.CheckoutOutcome("replayed")
		return existing, nil
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, err
	}

	// Every refund of this cart state burns the key it was charged under
	attempt, err := s.orders.CountRefunds(ctx, userID, fingerprint)
	if err != nil {
		return nil, err
	}
	base := idempotencyKey
	if base == "" {
		base = fingerprint
	}
	charge, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		Amount:         total,
		Currency:       payment.Currency,
		Source:         sourceToken,
		IdempotencyKey: ChargeKey(base, sourceToken, total, attempt),
	})
	if err != nil {
		outcome := "failed"
		if domain.KindOf(err) == domain.KindPaymentDeclined {
			outcome = "declined"
		}
		s.metrics.CheckoutOutcome(outcome)
		logger.WithError(err).WithField("amount", total).Warn("Charge failed")
		return nil, err
	}

	// Past this point money moved: finish the writes even if the caller goes away
	persistCtx := context.WithoutCancel(ctx)
	logger = logger.WithFields(logrus.Fields{"charge_id": charge.ID, "amount": charge.Amount})

	if charge.Amount != total {
		s.refund(persistCtx, logger, userID, fingerprint, charge.ID)
		s.metrics.CheckoutOutcome("failed")
		return nil, fmt.Errorf("charged %d but cart total is %d", charge.Amount, total)
	}

	items := make([]domain.OrderItem, len(cart))
	for i, ci := range cart {
		items[i] = domain.SnapshotOf(ci)
	}
	order := &domain.Order{
		UserID:      userID,
		Total:       charge.Amount,
		Charge:      charge.ID,
		Fingerprint: fingerprint,
		Items:       items,
	}

	err = s.orders.PlaceOrder(persistCtx, order, cartItemIDs)
	switch {
	case errors.Is(err, domain.ErrCartCleanup):
		logger.WithError(err).WithField("order_id", order.ID).Warn("Order placed but cart cleanup failed")
	case err != nil:
		logger.WithError(err).Error("Order persistence failed after charge")
		s.refund(persistCtx, logger, userID, fingerprint, charge.ID)
		s.metrics.CheckoutOutcome("failed")
		return nil, err
	}

	s.metrics.CheckoutOutcome("success")
	s.metrics.Charged(charge.Amount)
	logger.WithFields(logrus.Fields{
		"order_id":  order.ID,
		"items":     len(order.Items),
		"timestamp": time.Now().Format(time.RFC3339),
	}).Info("Checkout completed")
	return order, nil
}

// refund returns the charge and records it, so the next attempt on the same cart charges anew.
// A failed refund is not recorded: the charge stands and a retry replays it into an order.
func (s *Checkout) refund(ctx context.Context, logger *logrus.Entry, userID uint, fingerprint, chargeID string) {
	if err := s.gateway.Refund(ctx, chargeID); err != nil {
		logger.WithError(err).Error("Refund failed, manual reconciliation required")
		return
	}
	logger.Warn("Charge refunded")
	if err := s.orders.RecordRefund(ctx, &domain.Refund{UserID: userID, Fingerprint: fingerprint, Charge: chargeID}); err != nil {
		logger.WithError(err).Error("Refund not recorded, retries may replay the refunded charge")
	}
}
