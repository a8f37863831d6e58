// internal/domain/product/service.go
package product

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/domain/activity"
	"github.com/optommarket/backend/internal/pkg/apperror"
	"github.com/optommarket/backend/internal/pkg/slugutil"
)

const defaultUnit = "dona"

// Service handles catalog business logic
type Service struct {
	repo       Repository
	cache      TreeCache
	activities *activity.Recorder
	log        *logrus.Logger
}

// NewService creates a new catalog service. cache may be nil.
func NewService(repo Repository, cache TreeCache, activities *activity.Recorder, log *logrus.Logger) *Service {
	return &Service{
		repo:       repo,
		cache:      cache,
		activities: activities,
		log:        log,
	}
}

// ListQuery is the public product list query
type ListQuery struct {
	CategoryID *uint  `form:"categoryId"`
	Featured   *bool  `form:"featured"`
	Search     string `form:"search"`
}

// ProductRequest is the admin create/update body
type ProductRequest struct {
	NameUz         string            `json:"nameUz" binding:"required,max=255"`
	NameRu         string            `json:"nameRu" binding:"required,max=255"`
	DescriptionUz  string            `json:"descriptionUz"`
	DescriptionRu  string            `json:"descriptionRu"`
	CategoryID     uint              `json:"categoryId" binding:"required"`
	SellerID       *uint             `json:"sellerId"`
	Price          decimal.Decimal   `json:"price" binding:"required,gt=0"`
	WholesalePrice decimal.Decimal   `json:"wholesalePrice" binding:"required,gt=0"`
	MinQuantity    int               `json:"minQuantity" binding:"omitempty,min=1"`
	StockQuantity  int               `json:"stockQuantity" binding:"min=0"`
	Unit           string            `json:"unit" binding:"omitempty,max=32"`
	Specifications map[string]string `json:"specifications"`
	Images         []string          `json:"images" binding:"omitempty,dive,max=500"`
	VideoURL       *string           `json:"videoUrl" binding:"omitempty,max=500"`
	Slug           string            `json:"slug" binding:"omitempty,max=255"`
	IsActive       *bool             `json:"isActive"`
	IsFeatured     bool              `json:"isFeatured"`
}

// ListProducts returns active products matching the query. A category
// filter includes the products of its subcategories.
func (s *Service) ListProducts(ctx context.Context, q ListQuery, actor activity.Actor) ([]Product, error) {
	f := Filter{
		Featured: q.Featured,
		Search:   strings.TrimSpace(q.Search),
	}

	if q.CategoryID != nil {
		ids, err := s.descendantIDs(ctx, *q.CategoryID)
		if err != nil {
			return nil, err
		}
		f.CategoryIDs = ids
	}

	products, err := s.repo.ListProducts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if f.Search != "" {
		s.activities.RecordSearch(ctx, actor.UserID, actor.SessionID, f.Search, len(products))
	}
	return products, nil
}

// ListAllProducts returns every product including inactive ones, for the admin panel
func (s *Service) ListAllProducts(ctx context.Context, search string) ([]Product, error) {
	return s.repo.ListProducts(ctx, Filter{Search: strings.TrimSpace(search), IncludeInactive: true})
}

// GetProduct looks a product up by slug, then by numeric id
func (s *Service) GetProduct(ctx context.Context, slugOrID string, actor activity.Actor) (*Product, error) {
	p, err := s.findProduct(ctx, slugOrID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, apperror.NotFound("product not found")
	}

	s.activities.Record(ctx, activity.Entry{
		UserID:     actor.UserID,
		SessionID:  actor.SessionID,
		Type:       activity.TypeProductView,
		TargetID:   &p.ID,
		TargetType: "product",
	})
	return p, nil
}

// GetProductByID returns a product regardless of its active flag
func (s *Service) GetProductByID(ctx context.Context, id uint) (*Product, error) {
	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NotFound("product not found")
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) findProduct(ctx context.Context, slugOrID string) (*Product, error) {
	p, err := s.repo.GetProductBySlug(ctx, slugOrID)
	if err == nil {
		return p, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	if id, convErr := strconv.ParseUint(slugOrID, 10, 64); convErr == nil {
		return s.GetProductByID(ctx, uint(id))
	}
	return nil, apperror.NotFound("product not found")
}

// CreateProduct creates a product
func (s *Service) CreateProduct(ctx context.Context, req *ProductRequest) (*Product, error) {
	if err := s.validateProduct(ctx, req); err != nil {
		return nil, err
	}

	slug, err := s.productSlug(ctx, req, 0)
	if err != nil {
		return nil, err
	}

	p := &Product{Slug: slug}
	applyProductRequest(p, req)
	p.IsActive = req.IsActive == nil || *req.IsActive

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.log.WithFields(logrus.Fields{"product_id": p.ID, "slug": p.Slug}).Info("product created")
	return p, nil
}

// UpdateProduct replaces a product's editable fields
func (s *Service) UpdateProduct(ctx context.Context, id uint, req *ProductRequest) (*Product, error) {
	p, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateProduct(ctx, req); err != nil {
		return nil, err
	}

	if req.Slug != "" || req.NameRu != p.NameRu || req.NameUz != p.NameUz {
		slug, err := s.productSlug(ctx, req, id)
		if err != nil {
			return nil, err
		}
		p.Slug = slug
	}

	applyProductRequest(p, req)
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

// DeleteProduct soft-deletes a product. Past order items keep their snapshot.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	if _, err := s.GetProductByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.log.WithField("product_id", id).Info("product deleted")
	return nil
}

func (s *Service) validateProduct(ctx context.Context, req *ProductRequest) error {
	if !req.Price.IsPositive() || !req.WholesalePrice.IsPositive() {
		return apperror.Validation("price and wholesale price must be positive")
	}
	if req.Price.Round(2).GreaterThanOrEqual(MaxAmount) || req.WholesalePrice.Round(2).GreaterThanOrEqual(MaxAmount) {
		return apperror.Validation("price is too large")
	}
	if req.MinQuantity < 0 || req.StockQuantity < 0 {
		return apperror.Validation("quantities must not be negative")
	}
	if _, err := s.repo.GetCategoryByID(ctx, req.CategoryID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.Validation("category not found")
		}
		return err
	}
	return nil
}

func applyProductRequest(p *Product, req *ProductRequest) {
	p.NameUz = req.NameUz
	p.NameRu = req.NameRu
	p.DescriptionUz = req.DescriptionUz
	p.DescriptionRu = req.DescriptionRu
	p.CategoryID = req.CategoryID
	p.SellerID = req.SellerID
	p.Price = req.Price.Round(2)
	p.WholesalePrice = req.WholesalePrice.Round(2)
	p.MinQuantity = req.MinQuantity
	if p.MinQuantity == 0 {
		p.MinQuantity = 1
	}
	p.StockQuantity = req.StockQuantity
	p.Unit = strings.TrimSpace(req.Unit)
	if p.Unit == "" {
		p.Unit = defaultUnit
	}
	p.Specifications = req.Specifications
	if p.Specifications == nil {
		p.Specifications = Specifications{}
	}
	p.Images = req.Images
	if p.Images == nil {
		p.Images = []string{}
	}
	p.VideoURL = req.VideoURL
	p.IsFeatured = req.IsFeatured
}

func (s *Service) productSlug(ctx context.Context, req *ProductRequest, selfID uint) (string, error) {
	exists := func(ctx context.Context, candidate string) (bool, error) {
		p, err := s.repo.GetProductBySlug(ctx, candidate)
		if err != nil {
			if apperror.IsNotFound(err) {
				return false, nil
			}
			return false, err
		}
		return p.ID != selfID, nil
	}

	slug, err := slugutil.Unique(ctx, exists, req.Slug, req.NameRu, req.NameUz)
	if err != nil {
		return "", apperror.Validation(err.Error())
	}
	return slug, nil
}
