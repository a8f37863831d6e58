// Package memory is a mutex-guarded, map-backed implementation of
// storage.Storage used in development mode and as the test double.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/optommarket/backend/internal/domain/activity"
	"github.com/optommarket/backend/internal/domain/blog"
	"github.com/optommarket/backend/internal/domain/cart"
	"github.com/optommarket/backend/internal/domain/chat"
	"github.com/optommarket/backend/internal/domain/discount"
	"github.com/optommarket/backend/internal/domain/favorite"
	"github.com/optommarket/backend/internal/domain/order"
	"github.com/optommarket/backend/internal/domain/product"
	"github.com/optommarket/backend/internal/domain/user"
	"github.com/optommarket/backend/internal/storage"
)

var _ storage.Storage = (*Storage)(nil)

// Storage keeps every table in memory. All methods are safe for concurrent use.
type Storage struct {
	mu  sync.RWMutex
	now func() time.Time
	seq map[string]uint

	users      map[uint]*user.User
	categories map[uint]*product.Category
	products   map[uint]*product.Product
	cartItems  map[uint]*cart.CartItem
	discounts  map[uint]*discount.Discount
	orders     map[uint]*order.Order
	favorites  map[uint]*favorite.Favorite
	posts      map[uint]*blog.Post
	messages   []chat.Message
	activities []activity.Activity
}

// New creates an empty store
func New() *Storage {
	return &Storage{
		now:        time.Now,
		seq:        make(map[string]uint),
		users:      make(map[uint]*user.User),
		categories: make(map[uint]*product.Category),
		products:   make(map[uint]*product.Product),
		cartItems:  make(map[uint]*cart.CartItem),
		discounts:  make(map[uint]*discount.Discount),
		orders:     make(map[uint]*order.Order),
		favorites:  make(map[uint]*favorite.Favorite),
		posts:      make(map[uint]*blog.Post),
	}
}

// WithClock replaces the timestamp source, for tests
func (s *Storage) WithClock(now func() time.Time) *Storage {
	s.now = now
	return s
}

// nextID must be called with the write lock held
func (s *Storage) nextID(table string) uint {
	s.seq[table]++
	return s.seq[table]
}

func (s *Storage) stamp(t *time.Time) time.Time {
	if t.IsZero() {
		*t = s.now().UTC()
	}
	return *t
}

func (s *Storage) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Storage) Close() error { return nil }
