package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/optommarket/backend/internal/domain/product"
	"github.com/optommarket/backend/internal/domain/user"
	"github.com/optommarket/backend/internal/pkg/apperror"
)

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Normalize()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return apperror.Conflict("USERNAME_TAKEN", "username is already taken")
		}
		if existing.Email == u.Email {
			return apperror.Conflict("EMAIL_TAKEN", "email is already registered")
		}
	}

	u.ID = s.nextID("users")
	s.stamp(&u.CreatedAt)
	u.UpdatedAt = u.CreatedAt
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id uint) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.findUser(func(u *user.User) bool { return u.Username == username })
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	email = strings.ToLower(email)
	return s.findUser(func(u *user.User) bool { return u.Email == email })
}

func (s *Storage) findUser(match func(*user.User) bool) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (s *Storage) ListUsers(ctx context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Storage) UpdateUserRole(ctx context.Context, id uint, role user.Role) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = s.now().UTC()
	cp := *u
	return &cp, nil
}

func (s *Storage) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *Storage) ListCategories(ctx context.Context, includeInactive bool) ([]product.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]product.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if c.IsActive || includeInactive {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Storage) GetCategoryByID(ctx context.Context, id uint) (*product.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Storage) GetCategoryBySlug(ctx context.Context, slug string) (*product.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (s *Storage) CreateCategory(ctx context.Context, c *product.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.Slug == c.Slug {
			return apperror.Conflict("SLUG_TAKEN", "category slug already exists")
		}
	}
	c.ID = s.nextID("categories")
	s.stamp(&c.CreatedAt)
	c.UpdatedAt = c.CreatedAt
	cp := *c
	cp.Children = nil
	s.categories[c.ID] = &cp
	return nil
}

func (s *Storage) UpdateCategory(ctx context.Context, c *product.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[c.ID]; !ok {
		return apperror.ErrNotFound
	}
	c.UpdatedAt = s.now().UTC()
	cp := *c
	cp.Children = nil
	s.categories[c.ID] = &cp
	return nil
}

func (s *Storage) DeleteCategory(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return apperror.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *Storage) CountProductsInCategory(ctx context.Context, categoryID uint) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, p := range s.products {
		if p.CategoryID == categoryID && !p.DeletedAt.Valid {
			n++
		}
	}
	return n, nil
}

func (s *Storage) ListProducts(ctx context.Context, f product.Filter) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var categories map[uint]bool
	if len(f.CategoryIDs) > 0 {
		categories = make(map[uint]bool, len(f.CategoryIDs))
		for _, id := range f.CategoryIDs {
			categories[id] = true
		}
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]product.Product, 0)
	for _, p := range s.products {
		if p.DeletedAt.Valid {
			continue
		}
		if !p.IsActive && !f.IncludeInactive {
			continue
		}
		if categories != nil && !categories[p.CategoryID] {
			continue
		}
		if f.Featured != nil && p.IsFeatured != *f.Featured {
			continue
		}
		if f.SellerID != nil && (p.SellerID == nil || *p.SellerID != *f.SellerID) {
			continue
		}
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		out = append(out, copyProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func matchesSearch(p *product.Product, q string) bool {
	for _, field := range []string{p.NameUz, p.NameRu, p.DescriptionUz, p.DescriptionRu} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func copyProduct(p *product.Product) product.Product {
	cp := *p
	cp.Images = append([]string(nil), p.Images...)
	if p.Specifications != nil {
		cp.Specifications = make(product.Specifications, len(p.Specifications))
		for k, v := range p.Specifications {
			cp.Specifications[k] = v
		}
	}
	return cp
}

func (s *Storage) GetProductByID(ctx context.Context, id uint) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok || p.DeletedAt.Valid {
		return nil, apperror.ErrNotFound
	}
	cp := copyProduct(p)
	return &cp, nil
}

func (s *Storage) GetProductBySlug(ctx context.Context, slug string) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.Slug == slug && !p.DeletedAt.Valid {
			cp := copyProduct(p)
			return &cp, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (s *Storage) GetProductsByIDs(ctx context.Context, ids []uint) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[uint]bool, len(ids))
	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := s.products[id]; ok && !p.DeletedAt.Valid {
			out = append(out, copyProduct(p))
		}
	}
	return out, nil
}

func (s *Storage) CreateProduct(ctx context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.products {
		if existing.Slug == p.Slug && !existing.DeletedAt.Valid {
			return apperror.Conflict("SLUG_TAKEN", "product slug already exists")
		}
	}
	p.ID = s.nextID("products")
	s.stamp(&p.CreatedAt)
	p.UpdatedAt = p.CreatedAt
	cp := copyProduct(p)
	s.products[p.ID] = &cp
	return nil
}

func (s *Storage) UpdateProduct(ctx context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[p.ID]
	if !ok || existing.DeletedAt.Valid {
		return apperror.ErrNotFound
	}
	p.UpdatedAt = s.now().UTC()
	cp := copyProduct(p)
	s.products[p.ID] = &cp
	return nil
}

func (s *Storage) DeleteProduct(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok || p.DeletedAt.Valid {
		return apperror.ErrNotFound
	}
	p.DeletedAt.Time = s.now().UTC()
	p.DeletedAt.Valid = true
	return nil
}

func (s *Storage) CountProducts(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, p := range s.products {
		if !p.DeletedAt.Valid {
			n++
		}
	}
	return n, nil
}
