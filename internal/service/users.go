package service

import (
	"context" // Request-scoped cancellation
	"errors"  // Error matching

	"github.com/sirupsen/logrus" // Structured logging

	"storefront/internal/domain" // Domain models
)

// Users answers account queries and permission changes
type Users struct {
	users UserStore
	guard *Guard
	log   *logrus.Entry
}

func NewUsers(users UserStore, guard *Guard, log *logrus.Entry) *Users {
	return &Users{users: users, guard: guard, log: log}
}

// Me returns the signed-in user or nil for anonymous callers
func (s *Users) Me(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.guard.CurrentUser(ctx, userID)
	if errors.Is(err, domain.ErrNotSignedIn) {
		return nil, nil
	}
	return user, err
}

// List returns every user to ADMIN or PERMISSIONUPDATE holders
func (s *Users) List(ctx context.Context, userID uint) ([]domain.User, error) {
	if _, err := s.guard.Authorize(ctx, userID, domain.PermAdmin, domain.PermPermissionUpdate); err != nil {
		return nil, err
	}
	return s.users.ListUsers(ctx)
}

// UpdatePermissions replaces the target's permission set; USER is always kept
func (s *Users) UpdatePermissions(ctx context.Context, userID, targetID uint, perms domain.Permissions) (*domain.User, error) {
	actor, err := s.guard.Authorize(ctx, userID, domain.PermAdmin, domain.PermPermissionUpdate)
	if err != nil {
		return nil, err
	}
	normalized, err := perms.Normalize()
	if err != nil {
		return nil, err
	}
	value, err := normalized.Value()
	if err != nil {
		return nil, err
	}
	updated, err := s.users.UpdateUser(ctx, targetID, map[string]any{"permissions": value})
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, domain.NotFound("No such user found!")
	}
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"actor_id":    actor.ID,
		"user_id":     targetID,
		"permissions": normalized,
	}).Info("Permissions updated")
	return updated, nil
}
