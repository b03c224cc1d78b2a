package service

import (
	"context" // Request-scoped cancellation
	"errors"  // Error matching

	"github.com/sirupsen/logrus" // Structured logging

	"storefront/internal/domain" // Domain models
)

// CartStoreWithItems is what the cart needs: its rows plus item lookups
type CartStoreWithItems interface {
	CartStore
	ItemByID(ctx context.Context, id uint) (*domain.Item, error)
}

// Cart mutates a user's cart
type Cart struct {
	store CartStoreWithItems
	log   *logrus.Entry
}

func NewCart(store CartStoreWithItems, log *logrus.Entry) *Cart {
	return &Cart{store: store, log: log}
}

// AddToCart increments the existing (user, item) row by one or creates it with quantity 1
func (s *Cart) AddToCart(ctx context.Context, userID, itemID uint) (*domain.CartItem, error) {
	if userID == 0 {
		return nil, domain.ErrNotSignedIn
	}
	if _, err := s.store.ItemByID(ctx, itemID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.NotFound("No item found!")
		}
		return nil, err
	}
	// Two passes: a concurrent add can win the insert, then we take the increment path
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := s.store.CartItemFor(ctx, userID, itemID)
		if err == nil {
			return s.store.IncrementCartItem(ctx, existing.ID)
		}
		if !errors.Is(err, domain.ErrRecordNotFound) {
			return nil, err
		}
		ci := &domain.CartItem{UserID: userID, ItemID: itemID, Quantity: 1}
		err = s.store.CreateCartItem(ctx, ci)
		if err == nil {
			s.log.WithFields(logrus.Fields{"user_id": userID, "item_id": itemID}).Info("Cart item created")
			return s.store.CartItemByID(ctx, ci.ID)
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
	}
	return nil, domain.Conflict("Your cart changed, please try again")
}

// RemoveFromCart deletes a whole row owned by the caller
func (s *Cart) RemoveFromCart(ctx context.Context, userID, cartItemID uint) (*domain.CartItem, error) {
	if userID == 0 {
		return nil, domain.ErrNotSignedIn
	}
	ci, err := s.store.CartItemByID(ctx, cartItemID)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, domain.NotFound("No cart item found!")
	}
	if err != nil {
		return nil, err
	}
	if ci.UserID != userID {
		s.log.WithFields(logrus.Fields{"user_id": userID, "cart_item_id": cartItemID}).Warn("Removal of foreign cart item refused")
		return nil, domain.Forbidden("That cart item is not yours!")
	}
	if err := s.store.DeleteCartItem(ctx, cartItemID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.NotFound("No cart item found!")
		}
		return nil, err
	}
	return ci, nil
}

// Items returns the caller's cart rows with their items
func (s *Cart) Items(ctx context.Context, userID uint) ([]domain.CartItem, error) {
	if userID == 0 {
		return nil, domain.ErrNotSignedIn
	}
	return s.store.CartByUser(ctx, userID)
}
