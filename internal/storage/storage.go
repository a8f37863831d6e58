// Package storage defines the persistence capability set shared by the
// in-memory and PostgreSQL backends.
package storage

import (
	"context"

	"github.com/optommarket/backend/internal/domain/activity"
	"github.com/optommarket/backend/internal/domain/blog"
	"github.com/optommarket/backend/internal/domain/cart"
	"github.com/optommarket/backend/internal/domain/chat"
	"github.com/optommarket/backend/internal/domain/discount"
	"github.com/optommarket/backend/internal/domain/favorite"
	"github.com/optommarket/backend/internal/domain/order"
	"github.com/optommarket/backend/internal/domain/product"
	"github.com/optommarket/backend/internal/domain/user"
)

// Storage is implemented by memory.Storage and postgres.Storage
type Storage interface {
	user.Repository
	product.Repository
	cart.Repository
	discount.Repository
	order.Repository
	favorite.Repository
	blog.Repository
	chat.Repository
	activity.Repository

	Ping(ctx context.Context) error
	Close() error
}
