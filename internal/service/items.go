package service

import (
	"context" // Request-scoped cancellation
	"errors"  // Error matching
	"fmt"     // Cache keys
	"strings" // Input trimming

	"github.com/sirupsen/logrus" // Structured logging

	"storefront/internal/domain" // Domain models
	"storefront/internal/utils"  // Listing cache
)

const (
	itemsCachePrefix = "items:"
	defaultPageSize  = 20
	maxPageSize      = 100
)

// ItemInput is a new catalog item
type ItemInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"gte=0"`
	Image       string `json:"image"`
	LargeImage  string `json:"large_image"`
}

// ItemPage is one page of the catalog
type ItemPage struct {
	Items      []domain.Item `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
	Cached     bool          `json:"cached"`
}

// Catalog manages items. Ownership and permission are separate gates on update and delete.
type Catalog struct {
	items        ItemStore
	guard        *Guard
	cache        utils.Cache
	legacyDelete bool
	log          *logrus.Entry
}

// NewCatalog builds the catalog service. legacyDelete reproduces the inherited delete gate
// which refuses deletion only to non-owners that hold ADMIN or ITEMDELETE.
func NewCatalog(items ItemStore, guard *Guard, cache utils.Cache, legacyDelete bool, log *logrus.Entry) *Catalog {
	if cache == nil {
		cache = utils.NopCache{}
	}
	return &Catalog{items: items, guard: guard, cache: cache, legacyDelete: legacyDelete, log: log}
}

// CreateItem adds an item owned by the signed-in user
func (s *Catalog) CreateItem(ctx context.Context, userID uint, in ItemInput) (*domain.Item, error) {
	user, err := s.guard.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, domain.Validation("An item needs a title.")
	}
	if in.Price < 0 {
		return nil, domain.Validation("Price cannot be negative.")
	}
	item := &domain.Item{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Image:       in.Image,
		LargeImage:  in.LargeImage,
		UserID:      user.ID,
	}
	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "item_id": item.ID}).Info("Item created")
	return item, nil
}

// UpdateItem applies an allow-listed update; owners, ADMIN and ITEMUPDATE may update
func (s *Catalog) UpdateItem(ctx context.Context, userID, itemID uint, upd domain.ItemUpdate) (*domain.Item, error) {
	user, err := s.guard.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, err := s.Item(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != user.ID && !user.Permissions.HasAny(domain.PermAdmin, domain.PermItemUpdate) {
		return nil, domain.Forbidden("You aren't allowed!")
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, domain.Validation("An item needs a title.")
	}
	if upd.Price != nil && *upd.Price < 0 {
		return nil, domain.Validation("Price cannot be negative.")
	}
	cols := upd.Columns()
	if len(cols) == 0 {
		return item, nil
	}
	updated, err := s.items.UpdateItem(ctx, itemID, cols)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "item_id": itemID}).Info("Item updated")
	return updated, nil
}

// DeleteItem removes an item when the delete gate allows it
func (s *Catalog) DeleteItem(ctx context.Context, userID, itemID uint) (*domain.Item, error) {
	user, err := s.guard.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, err := s.Item(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !s.mayDelete(user, item) {
		return nil, domain.Forbidden("You aren't allowed!")
	}
	if err := s.items.DeleteItem(ctx, itemID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.NotFound("No item found!")
		}
		return nil, err
	}
	s.invalidate(ctx)
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "item_id": itemID}).Info("Item deleted")
	return item, nil
}

func (s *Catalog) mayDelete(user *domain.User, item *domain.Item) bool {
	owns := item.UserID == user.ID
	elevated := user.Permissions.HasAny(domain.PermAdmin, domain.PermItemDelete)
	if s.legacyDelete {
		return !(!owns && elevated)
	}
	return owns || elevated
}

// Item loads one item
func (s *Catalog) Item(ctx context.Context, itemID uint) (*domain.Item, error) {
	item, err := s.items.ItemByID(ctx, itemID)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, domain.NotFound("No item found!")
	}
	return item, err
}

// Items returns one page of the catalog, served from cache when possible
func (s *Catalog) Items(ctx context.Context, page, pageSize int) (*ItemPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	key := fmt.Sprintf("%spage=%d:size=%d", itemsCachePrefix, page, pageSize)
	var cached ItemPage
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		cached.Cached = true
		return &cached, nil
	}
	items, total, err := s.items.ListItems(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	out := &ItemPage{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (int(total) + pageSize - 1) / pageSize,
	}
	_ = s.cache.Set(ctx, key, out) // Cache the response for future requests
	return out, nil
}

func (s *Catalog) invalidate(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, itemsCachePrefix); err != nil {
		s.log.WithError(err).Warn("Item cache invalidation failed")
	}
}
