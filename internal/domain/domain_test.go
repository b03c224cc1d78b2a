package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionsNormalize(t *testing.T) {
	got, err := Permissions{"admin", " ITEMCREATE ", PermAdmin}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, Permissions{PermAdmin, PermItemCreate, PermUser}, got)

	got, err = Permissions{}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, Permissions{PermUser}, got)

	_, err = Permissions{"ROOT"}.Normalize()
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestPermissionsColumn(t *testing.T) {
	v, err := Permissions{PermUser, PermItemDelete}.Value()
	require.NoError(t, err)
	assert.Equal(t, "USER,ITEMDELETE", v)

	var ps Permissions
	require.NoError(t, ps.Scan([]byte("USER, ADMIN,")))
	assert.Equal(t, Permissions{PermUser, PermAdmin}, ps)
	assert.True(t, ps.Has(PermAdmin))
	assert.True(t, ps.HasAny(PermItemUpdate, PermAdmin))
	assert.False(t, ps.HasAny(PermItemUpdate, PermItemDelete))
	assert.False(t, ps.HasAny())

	require.NoError(t, ps.Scan(nil))
	assert.Nil(t, ps)
	assert.Error(t, ps.Scan(42))
}

func TestErrorKinds(t *testing.T) {
	wrapped := fmt.Errorf("checkout: %w", ErrEmptyCart)
	assert.ErrorIs(t, wrapped, ErrEmptyCart)
	assert.Equal(t, KindValidation, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))

	// Same kind, different message
	assert.NotErrorIs(t, ErrInvalidCredentials, ErrNotSignedIn)
	assert.ErrorIs(t, ErrInvalidCredentials, &Error{Kind: KindNotAuthenticated})

	cause := errors.New("card_declined")
	declined := PaymentDeclined("Your card was declined.", cause)
	assert.ErrorIs(t, declined, cause)
	assert.Equal(t, "Your card was declined.: card_declined", declined.Error())
}

func TestOrderSnapshot(t *testing.T) {
	ci := CartItem{ID: 1, Quantity: 3, Item: Item{Title: "cup", Description: "blue", Price: 250, Image: "i", LargeImage: "l"}}
	assert.Equal(t, int64(750), ci.LineTotal())

	oi := SnapshotOf(ci)
	assert.Equal(t, OrderItem{Title: "cup", Description: "blue", Price: 250, Image: "i", LargeImage: "l", Quantity: 3}, oi)

	order := Order{Items: []OrderItem{oi, {Price: 100, Quantity: 2}}}
	assert.Equal(t, int64(950), order.ItemsTotal())
}
