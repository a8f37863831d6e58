// internal/infrastructure/database/postgres/catalog.go
package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/optommarket/backend/internal/domain/product"
	"github.com/optommarket/backend/internal/domain/user"
	"github.com/optommarket/backend/internal/pkg/apperror"
)

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	err := s.db.WithContext(ctx).Create(u).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	if _, lookup := s.GetUserByUsername(ctx, u.Username); lookup == nil {
		return apperror.Conflict("USERNAME_TAKEN", "username is already taken")
	}
	return apperror.Conflict("EMAIL_TAKEN", "email is already registered")
}

func (s *Storage) GetUserByID(ctx context.Context, id uint) (*user.User, error) {
	var u user.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	var u user.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	if err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]user.User, error) {
	users := make([]user.User, 0)
	err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	return users, err
}

func (s *Storage) UpdateUserRole(ctx context.Context, id uint, role user.Role) (*user.User, error) {
	res := s.db.WithContext(ctx).Model(&user.User{}).Where("id = ?", id).Update("role", role)
	if err := affected(res); err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, id)
}

func (s *Storage) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&user.User{}).Count(&n).Error
	return n, err
}

func (s *Storage) ListCategories(ctx context.Context, includeInactive bool) ([]product.Category, error) {
	categories := make([]product.Category, 0)
	q := s.db.WithContext(ctx).Order("id ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&categories).Error
	return categories, err
}

func (s *Storage) GetCategoryByID(ctx context.Context, id uint) (*product.Category, error) {
	var c product.Category
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *Storage) GetCategoryBySlug(ctx context.Context, slug string) (*product.Category, error) {
	var c product.Category
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *Storage) CreateCategory(ctx context.Context, c *product.Category) error {
	return translate(s.db.WithContext(ctx).Create(c).Error, "SLUG_TAKEN", "category slug already exists")
}

func (s *Storage) UpdateCategory(ctx context.Context, c *product.Category) error {
	res := s.db.WithContext(ctx).Model(c).Select("*").Omit("created_at").Updates(c)
	if res.Error != nil {
		return translate(res.Error, "SLUG_TAKEN", "category slug already exists")
	}
	return affected(res)
}

func (s *Storage) DeleteCategory(ctx context.Context, id uint) error {
	return affected(s.db.WithContext(ctx).Delete(&product.Category{}, id))
}

func (s *Storage) CountProductsInCategory(ctx context.Context, categoryID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&product.Product{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, err
}

func (s *Storage) ListProducts(ctx context.Context, f product.Filter) ([]product.Product, error) {
	q := s.db.WithContext(ctx).Model(&product.Product{})
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if len(f.CategoryIDs) > 0 {
		q = q.Where("category_id IN ?", f.CategoryIDs)
	}
	if f.Featured != nil {
		q = q.Where("is_featured = ?", *f.Featured)
	}
	if f.SellerID != nil {
		q = q.Where("seller_id = ?", *f.SellerID)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + escapeLike(search) + "%"
		q = q.Where("name_uz ILIKE ? OR name_ru ILIKE ? OR description_uz ILIKE ? OR description_ru ILIKE ?",
			like, like, like, like)
	}

	products := make([]product.Product, 0)
	err := q.Order("id DESC").Find(&products).Error
	return products, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *Storage) GetProductByID(ctx context.Context, id uint) (*product.Product, error) {
	var p product.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Storage) GetProductBySlug(ctx context.Context, slug string) (*product.Product, error) {
	var p product.Product
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Storage) GetProductsByIDs(ctx context.Context, ids []uint) ([]product.Product, error) {
	products := make([]product.Product, 0, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (s *Storage) CreateProduct(ctx context.Context, p *product.Product) error {
	return translate(s.db.WithContext(ctx).Create(p).Error, "SLUG_TAKEN", "product slug already exists")
}

func (s *Storage) UpdateProduct(ctx context.Context, p *product.Product) error {
	res := s.db.WithContext(ctx).Model(p).Select("*").Omit("created_at", "deleted_at").Updates(p)
	if res.Error != nil {
		return translate(res.Error, "SLUG_TAKEN", "product slug already exists")
	}
	return affected(res)
}

// DeleteProduct soft-deletes; order items keep their snapshot
func (s *Storage) DeleteProduct(ctx context.Context, id uint) error {
	return affected(s.db.WithContext(ctx).Delete(&product.Product{}, id))
}

func (s *Storage) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&product.Product{}).Count(&n).Error
	return n, err
}
