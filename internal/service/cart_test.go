package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/store/storetest"
)

func TestAddToCart_IncrementsExistingRow(t *testing.T) {
	st := storetest.NewMemory()
	buyer := st.AddUser("buyer@shop.test")
	item := st.AddItem(buyer.ID, "mug", 1200)
	cart := NewCart(st, quietLog())

	first, err := cart.AddToCart(context.Background(), buyer.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)
	assert.Equal(t, "mug", first.Item.Title)

	second, err := cart.AddToCart(context.Background(), buyer.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Quantity)
	assert.Equal(t, 1, st.CartRows(buyer.ID))
}

func TestAddToCart_LostInsertRace(t *testing.T) {
	st := storetest.NewMemory()
	buyer := st.AddUser("buyer@shop.test")
	item := st.AddItem(buyer.ID, "mug", 1200)
	// A concurrent add inserts the row between our lookup and insert
	st.RaceCreate = true
	cart := NewCart(st, quietLog())

	ci, err := cart.AddToCart(context.Background(), buyer.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, ci.Quantity)
	assert.Equal(t, 1, st.CartRows(buyer.ID))
}

func TestAddToCart_Errors(t *testing.T) {
	st := storetest.NewMemory()
	buyer := st.AddUser("buyer@shop.test")
	cart := NewCart(st, quietLog())

	_, err := cart.AddToCart(context.Background(), 0, 1)
	assert.ErrorIs(t, err, domain.ErrNotSignedIn)

	_, err = cart.AddToCart(context.Background(), buyer.ID, 999)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.Equal(t, "No item found!", err.Error())
}

func TestRemoveFromCart(t *testing.T) {
	st := storetest.NewMemory()
	owner := st.AddUser("owner@shop.test")
	other := st.AddUser("other@shop.test", domain.PermAdmin)
	item := st.AddItem(owner.ID, "lamp", 4000)
	row := st.AddCartRow(owner.ID, item.ID, 3)
	cart := NewCart(st, quietLog())

	_, err := cart.RemoveFromCart(context.Background(), other.ID, row.ID)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	assert.Equal(t, "That cart item is not yours!", err.Error())
	assert.Equal(t, 1, st.CartRows(owner.ID))

	removed, err := cart.RemoveFromCart(context.Background(), owner.ID, row.ID)
	require.NoError(t, err)
	assert.Equal(t, row.ID, removed.ID)
	assert.Equal(t, 3, removed.Quantity)
	assert.Zero(t, st.CartRows(owner.ID))

	_, err = cart.RemoveFromCart(context.Background(), owner.ID, row.ID)
	assert.Equal(t, "No cart item found!", err.Error())

	_, err = cart.RemoveFromCart(context.Background(), 0, row.ID)
	assert.ErrorIs(t, err, domain.ErrNotSignedIn)
}

func TestCartItems(t *testing.T) {
	st := storetest.NewMemory()
	buyer := st.AddUser("buyer@shop.test")
	other := st.AddUser("other@shop.test")
	item := st.AddItem(buyer.ID, "pen", 150)
	st.AddCartRow(buyer.ID, item.ID, 4)
	st.AddCartRow(other.ID, item.ID, 1)
	cart := NewCart(st, quietLog())

	rows, err := cart.Items(context.Background(), buyer.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(600), rows[0].LineTotal())

	_, err = cart.Items(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrNotSignedIn)
}
