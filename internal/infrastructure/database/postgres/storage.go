// internal/infrastructure/database/postgres/storage.go
package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/optommarket/backend/internal/pkg/apperror"
	"github.com/optommarket/backend/internal/storage"
)

var _ storage.Storage = (*Storage)(nil)

// Storage implements storage.Storage on PostgreSQL through gorm
type Storage struct {
	conn *DB
	db   *gorm.DB
}

// NewStorage wraps an open connection
func NewStorage(conn *DB) *Storage {
	return &Storage{conn: conn, db: conn.GetDB()}
}

func (s *Storage) Ping(ctx context.Context) error { return s.conn.Health(ctx) }

func (s *Storage) Close() error { return s.conn.Close() }

// translate maps gorm errors onto the apperror vocabulary shared with the
// memory backend
func translate(err error, conflictCode, conflictMessage string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Conflict(conflictCode, conflictMessage)
	default:
		return err
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.ErrNotFound
	}
	return err
}

// affected returns ErrNotFound when an update touched no rows
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}
