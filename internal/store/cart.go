package store

import (
	"context" // Request-scoped cancellation

	"gorm.io/gorm" // GORM ORM library

	"storefront/internal/domain" // Domain models
)

// CartItemByID loads a cart row with its item
func (s *Store) CartItemByID(ctx context.Context, id uint) (*domain.CartItem, error) {
	var ci domain.CartItem
	if err := s.db.WithContext(ctx).Preload("Item").First(&ci, id).Error; err != nil {
		return nil, translate(err)
	}
	return &ci, nil
}

// CartItemFor loads the single row for (userID, itemID)
func (s *Store) CartItemFor(ctx context.Context, userID, itemID uint) (*domain.CartItem, error) {
	var ci domain.CartItem
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		First(&ci).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ci, nil
}

// CreateCartItem inserts a row, ErrDuplicate if (user, item) already exists
func (s *Store) CreateCartItem(ctx context.Context, ci *domain.CartItem) error {
	return translate(s.db.WithContext(ctx).Omit("Item").Create(ci).Error)
}

// IncrementCartItem bumps quantity by one in a single statement
func (s *Store) IncrementCartItem(ctx context.Context, id uint) (*domain.CartItem, error) {
	res := s.db.WithContext(ctx).Model(&domain.CartItem{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", 1))
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrRecordNotFound
	}
	return s.CartItemByID(ctx, id)
}

// DeleteCartItem removes one cart row
func (s *Store) DeleteCartItem(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&domain.CartItem{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// CartByUser returns the user's cart rows joined with their items
func (s *Store) CartByUser(ctx context.Context, userID uint) ([]domain.CartItem, error) {
	var rows []domain.CartItem
	err := s.db.WithContext(ctx).
		Preload("Item").
		Where("user_id = ?", userID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

// DeleteCartItems removes the listed rows owned by userID and reports how many went
func (s *Store) DeleteCartItems(ctx context.Context, userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("id IN ? AND user_id = ?", ids, userID).
		Delete(&domain.CartItem{})
	return res.RowsAffected, translate(res.Error)
}
