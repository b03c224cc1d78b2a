package store

import (
	"context" // Request-scoped cancellation
	"fmt"     // Error wrapping

	"gorm.io/gorm" // GORM ORM library

	"storefront/internal/domain" // Domain models
)

const cleanupSavepoint = "cart_cleanup"

// PlaceOrder inserts the order with its snapshot rows and deletes the paid cart rows in one
// transaction. A failed cart delete rolls back to a savepoint taken after the order insert,
// so the order still commits and the error wraps domain.ErrCartCleanup.
func (s *Store) PlaceOrder(ctx context.Context, order *domain.Order, cartItemIDs []uint) error {
	var cleanupErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Insert order and its items
		if err := tx.Create(order).Error; err != nil {
			return err // Return error to rollback
		}
		if len(cartItemIDs) == 0 {
			return nil
		}
		if err := tx.SavePoint(cleanupSavepoint).Error; err != nil {
			cleanupErr = fmt.Errorf("%w: savepoint: %v", domain.ErrCartCleanup, err)
			return nil // Keep the order, skip cleanup
		}
		res := tx.Where("id IN ? AND user_id = ?", cartItemIDs, order.UserID).Delete(&domain.CartItem{})
		if res.Error != nil {
			tx.RollbackTo(cleanupSavepoint) // Undo the partial delete only
			cleanupErr = fmt.Errorf("%w: %v", domain.ErrCartCleanup, res.Error)
		}
		return nil // Commit transaction
	})
	if err != nil {
		return translate(err)
	}
	return cleanupErr
}

// OrderByID loads an order with its items
func (s *Store) OrderByID(ctx context.Context, id uint) (*domain.Order, error) {
	var order domain.Order
	if err := s.db.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// OrderByFingerprint finds an earlier order placed from the same cart state
func (s *Store) OrderByFingerprint(ctx context.Context, userID uint, fingerprint string) (*domain.Order, error) {
	var order domain.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("user_id = ? AND fingerprint = ?", userID, fingerprint).
		First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// OrdersByUser returns the user's orders, newest first
func (s *Store) OrdersByUser(ctx context.Context, userID uint) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&orders).Error
	if err != nil {
		return nil, translate(err)
	}
	return orders, nil
}

// RecordRefund appends a refunded charge to the ledger
func (s *Store) RecordRefund(ctx context.Context, refund *domain.Refund) error {
	if err := s.db.WithContext(ctx).Create(refund).Error; err != nil {
		return translate(err)
	}
	return nil
}

// CountRefunds returns how many charges of this cart state were refunded
func (s *Store) CountRefunds(ctx context.Context, userID uint, fingerprint string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&domain.Refund{}).
		Where("user_id = ? AND fingerprint = ?", userID, fingerprint).
		Count(&n).Error
	if err != nil {
		return 0, translate(err)
	}
	return n, nil
}
