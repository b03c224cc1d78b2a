// Package service holds the business rules: authentication, authorization, carts and checkout.
//
// A user id of 0 means the caller is anonymous.
package service

import (
	"context" // Request-scoped cancellation

	"storefront/internal/domain" // Domain models
)

// UserStore reads and writes users
type UserStore interface {
	UserByID(ctx context.Context, id uint) (*domain.User, error)
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
	UserByResetToken(ctx context.Context, tokenHash string, notBefore int64) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
	UpdateUser(ctx context.Context, id uint, cols map[string]any) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// ItemStore reads and writes catalog items
type ItemStore interface {
	CreateItem(ctx context.Context, item *domain.Item) error
	ItemByID(ctx context.Context, id uint) (*domain.Item, error)
	UpdateItem(ctx context.Context, id uint, cols map[string]any) (*domain.Item, error)
	DeleteItem(ctx context.Context, id uint) error
	ListItems(ctx context.Context, offset, limit int) ([]domain.Item, int64, error)
}

// CartStore reads and writes cart rows
type CartStore interface {
	CartItemByID(ctx context.Context, id uint) (*domain.CartItem, error)
	CartItemFor(ctx context.Context, userID, itemID uint) (*domain.CartItem, error)
	CreateCartItem(ctx context.Context, ci *domain.CartItem) error
	IncrementCartItem(ctx context.Context, id uint) (*domain.CartItem, error)
	DeleteCartItem(ctx context.Context, id uint) error
	DeleteCartItems(ctx context.Context, userID uint, ids []uint) (int64, error)
	CartByUser(ctx context.Context, userID uint) ([]domain.CartItem, error)
}

// OrderStore persists and reads orders
type OrderStore interface {
	PlaceOrder(ctx context.Context, order *domain.Order, cartItemIDs []uint) error
	OrderByID(ctx context.Context, id uint) (*domain.Order, error)
	OrderByFingerprint(ctx context.Context, userID uint, fingerprint string) (*domain.Order, error)
	OrdersByUser(ctx context.Context, userID uint) ([]domain.Order, error)
	RecordRefund(ctx context.Context, refund *domain.Refund) error
	CountRefunds(ctx context.Context, userID uint, fingerprint string) (int64, error)
}

// Store is everything the services need from persistence
type Store interface {
	UserStore
	ItemStore
	CartStore
	OrderStore
}
