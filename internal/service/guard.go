package service

import (
	"context" // Request-scoped cancellation
	"errors"  // Error matching
	"fmt"     // Message formatting
	"strings" // Joining permission names

	"storefront/internal/domain" // Domain models
)

// Guard evaluates permissions against the user's current row. Nothing is cached.
type Guard struct {
	users UserStore
}

func NewGuard(users UserStore) *Guard {
	return &Guard{users: users}
}

// CurrentUser re-reads the signed-in user. A token pointing at a missing user is treated as signed out.
func (g *Guard) CurrentUser(ctx context.Context, userID uint) (*domain.User, error) {
	if userID == 0 {
		return nil, domain.ErrNotSignedIn
	}
	user, err := g.users.UserByID(ctx, userID)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, domain.ErrNotSignedIn
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authorize passes when the user holds any of requiredAny
func (g *Guard) Authorize(ctx context.Context, userID uint, requiredAny ...domain.Permission) (*domain.User, error) {
	user, err := g.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Permissions.HasAny(requiredAny...) {
		names := make([]string, len(requiredAny))
		for i, p := range requiredAny {
			names[i] = string(p)
		}
		return nil, domain.Forbidden(fmt.Sprintf("You do not have sufficient permissions: need one of %s", strings.Join(names, ", ")))
	}
	return user, nil
}
