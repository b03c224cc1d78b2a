// Package storetest provides an in-memory store for tests of code built on the store.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
)

// Memory is an in-memory store with failure hooks. It mirrors the MySQL store's
// error contract: misses are domain.ErrRecordNotFound, unique violations domain.ErrDuplicate.
type Memory struct {
	mu      sync.Mutex
	nextID  uint
	users   map[uint]*domain.User
	items   map[uint]*domain.Item
	carts   map[uint]*domain.CartItem
	orders  map[uint]*domain.Order
	refunds []domain.Refund
	// Writes counts successful mutating calls
	Writes int
	// Cleanup fails cart row deletion, inside PlaceOrder and in DeleteCartItems
	Cleanup error
	// PlaceOrderErr fails PlaceOrder before anything is stored
	PlaceOrderErr error
	// RaceCreate makes the next CreateCartItem lose to a concurrent insert of the same row
	RaceCreate bool
}

func NewMemory() *Memory {
	return &Memory{
		users:  map[uint]*domain.User{},
		items:  map[uint]*domain.Item{},
		carts:  map[uint]*domain.CartItem{},
		orders: map[uint]*domain.Order{},
	}
}

func (m *Memory) id() uint {
	m.nextID++
	return m.nextID
}

// Seeding and inspection helpers. Seeded users have the password "password".

func (m *Memory) AddUser(email string, perms ...domain.Permission) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	u := &domain.User{ID: m.id(), Name: "user", Email: email, Password: string(hash), Permissions: append(domain.Permissions{domain.PermUser}, perms...)}
	m.users[u.ID] = u
	return u
}

func (m *Memory) AddItem(owner uint, title string, price int64) *domain.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	it := &domain.Item{ID: m.id(), Title: title, Description: title + " desc", Price: price, Image: title + ".jpg", LargeImage: title + "-lg.jpg", UserID: owner}
	m.items[it.ID] = it
	return it
}

func (m *Memory) AddCartRow(userID, itemID uint, qty int) *domain.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	ci := &domain.CartItem{ID: m.id(), UserID: userID, ItemID: itemID, Quantity: qty}
	m.carts[ci.ID] = ci
	return ci
}

func (m *Memory) CartRows(userID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ci := range m.carts {
		if ci.UserID == userID {
			n++
		}
	}
	return n
}

func (m *Memory) OrderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// --- UserStore ---

func (m *Memory) UserByID(_ context.Context, id uint) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (m *Memory) UserByResetToken(_ context.Context, hash string, notBefore int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ResetToken != nil && *u.ResetToken == hash && u.ResetTokenExpiry != nil && *u.ResetTokenExpiry >= notBefore {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (m *Memory) CreateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrDuplicate
		}
	}
	user.ID = m.id()
	cp := *user
	m.users[user.ID] = &cp
	m.Writes++
	return nil
}

func (m *Memory) UpdateUser(_ context.Context, id uint, cols map[string]any) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	for k, v := range cols {
		switch k {
		case "password":
			u.Password = v.(string)
		case "reset_token":
			if v == nil {
				u.ResetToken = nil
			} else {
				s := v.(string)
				u.ResetToken = &s
			}
		case "reset_token_expiry":
			if v == nil {
				u.ResetTokenExpiry = nil
			} else {
				n := v.(int64)
				u.ResetTokenExpiry = &n
			}
		case "permissions":
			var ps domain.Permissions
			if err := ps.Scan(v); err != nil {
				return nil, err
			}
			u.Permissions = ps
		default:
			return nil, fmt.Errorf("unexpected column %q", k)
		}
	}
	m.Writes++
	cp := *u
	return &cp, nil
}

func (m *Memory) ListUsers(context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- ItemStore ---

func (m *Memory) CreateItem(_ context.Context, item *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = m.id()
	cp := *item
	m.items[item.ID] = &cp
	m.Writes++
	return nil
}

func (m *Memory) ItemByID(_ context.Context, id uint) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *Memory) UpdateItem(_ context.Context, id uint, cols map[string]any) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	for k, v := range cols {
		switch k {
		case "title":
			it.Title = v.(string)
		case "description":
			it.Description = v.(string)
		case "price":
			it.Price = v.(int64)
		case "image":
			it.Image = v.(string)
		case "large_image":
			it.LargeImage = v.(string)
		default:
			return nil, fmt.Errorf("unexpected column %q", k)
		}
	}
	m.Writes++
	cp := *it
	return &cp, nil
}

func (m *Memory) DeleteItem(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrRecordNotFound
	}
	delete(m.items, id)
	for cid, ci := range m.carts {
		if ci.ItemID == id {
			delete(m.carts, cid)
		}
	}
	m.Writes++
	return nil
}

func (m *Memory) ListItems(_ context.Context, offset, limit int) ([]domain.Item, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]domain.Item, 0, len(m.items))
	for _, it := range m.items {
		all = append(all, *it)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return []domain.Item{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// --- CartStore ---

func (m *Memory) withItem(ci *domain.CartItem) *domain.CartItem {
	cp := *ci
	if it, ok := m.items[ci.ItemID]; ok {
		cp.Item = *it
	}
	return &cp
}

func (m *Memory) CartItemByID(_ context.Context, id uint) (*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ci, ok := m.carts[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return m.withItem(ci), nil
}

func (m *Memory) CartItemFor(_ context.Context, userID, itemID uint) (*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ci := range m.carts {
		if ci.UserID == userID && ci.ItemID == itemID {
			return m.withItem(ci), nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (m *Memory) CreateCartItem(_ context.Context, ci *domain.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RaceCreate {
		m.RaceCreate = false
		winner := &domain.CartItem{ID: m.id(), UserID: ci.UserID, ItemID: ci.ItemID, Quantity: 1}
		m.carts[winner.ID] = winner
		return domain.ErrDuplicate
	}
	for _, have := range m.carts {
		if have.UserID == ci.UserID && have.ItemID == ci.ItemID {
			return domain.ErrDuplicate
		}
	}
	ci.ID = m.id()
	cp := *ci
	m.carts[ci.ID] = &cp
	m.Writes++
	return nil
}

func (m *Memory) IncrementCartItem(_ context.Context, id uint) (*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ci, ok := m.carts[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	ci.Quantity++
	m.Writes++
	return m.withItem(ci), nil
}

func (m *Memory) DeleteCartItem(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.carts[id]; !ok {
		return domain.ErrRecordNotFound
	}
	delete(m.carts, id)
	m.Writes++
	return nil
}

func (m *Memory) DeleteCartItems(_ context.Context, userID uint, ids []uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Cleanup != nil {
		return 0, m.Cleanup
	}
	var n int64
	for _, id := range ids {
		if ci, ok := m.carts[id]; ok && ci.UserID == userID {
			delete(m.carts, id)
			n++
		}
	}
	return n, nil
}

func (m *Memory) CartByUser(_ context.Context, userID uint) ([]domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CartItem
	for _, ci := range m.carts {
		if ci.UserID == userID {
			out = append(out, *m.withItem(ci))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- OrderStore ---

func (m *Memory) PlaceOrder(_ context.Context, order *domain.Order, ids []uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PlaceOrderErr != nil {
		return m.PlaceOrderErr
	}
	for _, o := range m.orders {
		if o.UserID == order.UserID && o.Fingerprint == order.Fingerprint {
			return domain.ErrDuplicate
		}
	}
	order.ID = m.id()
	for i := range order.Items {
		order.Items[i].ID = m.id()
		order.Items[i].OrderID = order.ID
	}
	cp := *order
	cp.Items = append([]domain.OrderItem(nil), order.Items...)
	m.orders[order.ID] = &cp
	m.Writes++
	if m.Cleanup != nil {
		return fmt.Errorf("%w: %v", domain.ErrCartCleanup, m.Cleanup)
	}
	for _, id := range ids {
		delete(m.carts, id)
	}
	return nil
}

func (m *Memory) OrderByID(_ context.Context, id uint) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *Memory) OrderByFingerprint(_ context.Context, userID uint, fp string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.UserID == userID && o.Fingerprint == fp {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (m *Memory) OrdersByUser(_ context.Context, userID uint) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *Memory) RecordRefund(_ context.Context, refund *domain.Refund) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	refund.ID = m.id()
	m.refunds = append(m.refunds, *refund)
	m.Writes++
	return nil
}

func (m *Memory) CountRefunds(_ context.Context, userID uint, fp string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.refunds {
		if r.UserID == userID && r.Fingerprint == fp {
			n++
		}
	}
	return n, nil
}
