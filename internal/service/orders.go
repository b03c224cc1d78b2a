package service

import (
	"context" // Request-scoped cancellation
	"errors"  // Error matching

	"storefront/internal/domain" // Domain models
)

// Orders answers order queries
type Orders struct {
	orders OrderStore
	guard  *Guard
}

func NewOrders(orders OrderStore, guard *Guard) *Orders {
	return &Orders{orders: orders, guard: guard}
}

// Order returns one order to its owner or an ADMIN
func (s *Orders) Order(ctx context.Context, userID, orderID uint) (*domain.Order, error) {
	user, err := s.guard.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.OrderByID(ctx, orderID)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, domain.NotFound("No order found!")
	}
	if err != nil {
		return nil, err
	}
	if order.UserID != user.ID && !user.Permissions.Has(domain.PermAdmin) {
		return nil, domain.Forbidden("You can't see this order")
	}
	return order, nil
}

// List returns the caller's orders, newest first
func (s *Orders) List(ctx context.Context, userID uint) ([]domain.Order, error) {
	if userID == 0 {
		return nil, domain.ErrNotSignedIn
	}
	return s.orders.OrdersByUser(ctx, userID)
}
