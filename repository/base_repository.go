package repository

import (
	"gorm.io/gorm"
)

// BaseRepository provides transaction management capabilities for database operations.
type BaseRepository interface {
	// Transaction runs fn in one transaction; fn's tx is passed to the other repository methods.
	Transaction(fn func(tx *gorm.DB) error) error
}

type baseRepository struct {
	db *gorm.DB
}

func (r *baseRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// conn returns tx when the caller is inside a transaction, otherwise the repository's own handle.
func (r *baseRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
