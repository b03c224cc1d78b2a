// Package store persists users, items, carts and orders with GORM.
package store

import (
	"errors" // Error matching

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library

	"storefront/internal/domain" // Domain models
)

// Store is the GORM-backed data store
type Store struct {
	db *gorm.DB
}

// New wraps an open GORM handle
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to MySQL. TranslateError makes duplicate keys surface as gorm.ErrDuplicatedKey.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
}

// DB exposes the underlying handle for migrations and health checks
func (s *Store) DB() *gorm.DB { return s.db }

// translate maps GORM errors onto the domain's store-level errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrDuplicate
	}
	return err
}
