package store

import (
	"context" // Request-scoped cancellation

	"storefront/internal/domain" // Domain models
)

// CreateItem inserts a catalog item
func (s *Store) CreateItem(ctx context.Context, item *domain.Item) error {
	return translate(s.db.WithContext(ctx).Create(item).Error)
}

// ItemByID loads an item by primary key
func (s *Store) ItemByID(ctx context.Context, id uint) (*domain.Item, error) {
	var item domain.Item
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// UpdateItem applies allow-listed columns and returns the fresh row
func (s *Store) UpdateItem(ctx context.Context, id uint, cols map[string]any) (*domain.Item, error) {
	if len(cols) > 0 {
		if err := s.db.WithContext(ctx).Model(&domain.Item{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return nil, translate(err)
		}
	}
	return s.ItemByID(ctx, id)
}

// DeleteItem removes an item; cart rows referencing it cascade
func (s *Store) DeleteItem(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&domain.Item{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// ListItems returns one page of items, newest first, plus the total count
func (s *Store) ListItems(ctx context.Context, offset, limit int) ([]domain.Item, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.Item{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var items []domain.Item
	if err := s.db.WithContext(ctx).Order("id desc").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, translate(err)
	}
	return items, total, nil
}
