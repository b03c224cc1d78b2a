package store

import (
	"context" // Request-scoped cancellation

	"storefront/internal/domain" // Domain models
)

// UserByID loads a user by primary key
func (s *Store) UserByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// UserByEmail loads a user by (lowercased) email
func (s *Store) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// UserByResetToken finds the user holding tokenHash whose expiry is at or after notBefore (unix millis)
func (s *Store) UserByResetToken(ctx context.Context, tokenHash string, notBefore int64) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).
		Where("reset_token = ? AND reset_token_expiry >= ?", tokenHash, notBefore).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// CreateUser inserts a new user, ErrDuplicate when the email is taken
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

// UpdateUser applies the given columns and returns the fresh row
func (s *Store) UpdateUser(ctx context.Context, id uint, cols map[string]any) (*domain.User, error) {
	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return s.UserByID(ctx, id)
}

// ListUsers returns every user ordered by id
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	return users, nil
}
