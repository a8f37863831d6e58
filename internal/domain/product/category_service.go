// internal/domain/product/category_service.go
package product

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/pkg/apperror"
	"github.com/optommarket/backend/internal/pkg/slugutil"
)

var (
	ErrCategoryNotEmpty = apperror.Conflict("CATEGORY_NOT_EMPTY", "category still has products or subcategories")
	ErrCategoryCycle    = apperror.Validation("category cannot be moved under itself")
)

// CategoryRequest is the admin create/update body
type CategoryRequest struct {
	NameUz        string  `json:"nameUz" binding:"required,max=255"`
	NameRu        string  `json:"nameRu" binding:"required,max=255"`
	DescriptionUz *string `json:"descriptionUz"`
	DescriptionRu *string `json:"descriptionRu"`
	Image         *string `json:"image" binding:"omitempty,max=500"`
	Slug          string  `json:"slug" binding:"omitempty,max=255"`
	ParentID      *uint   `json:"parentId"`
	SortOrder     int     `json:"sortOrder"`
	IsActive      *bool   `json:"isActive"`
}

// BuildCategoryTree groups a flat list into roots with nested children.
// Nodes whose parent is absent from the list are dropped.
func BuildCategoryTree(categories []Category) []Category {
	byParent := make(map[uint][]Category)
	present := make(map[uint]bool, len(categories))
	var roots []Category

	for _, c := range categories {
		present[c.ID] = true
	}
	for _, c := range categories {
		c.Children = nil
		switch {
		case c.ParentID == nil:
			roots = append(roots, c)
		case present[*c.ParentID]:
			byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
		}
	}

	var attach func(nodes []Category, depth int) []Category
	attach = func(nodes []Category, depth int) []Category {
		sortCategories(nodes)
		if depth > len(categories) {
			return nodes
		}
		for i := range nodes {
			if kids, ok := byParent[nodes[i].ID]; ok {
				nodes[i].Children = attach(kids, depth+1)
			}
		}
		return nodes
	}

	if roots == nil {
		return []Category{}
	}
	return attach(roots, 0)
}

func sortCategories(nodes []Category) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].NameUz < nodes[j].NameUz
	})
}

// GetCategoryTree returns active categories as a tree
func (s *Service) GetCategoryTree(ctx context.Context) ([]Category, error) {
	if s.cache != nil {
		if tree, ok := s.cache.GetCategoryTree(ctx); ok {
			return tree, nil
		}
	}

	categories, err := s.repo.ListCategories(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	tree := BuildCategoryTree(categories)

	if s.cache != nil {
		s.cache.SetCategoryTree(ctx, tree)
	}
	return tree, nil
}

// ListCategories returns the flat list, for the admin panel
func (s *Service) ListCategories(ctx context.Context, includeInactive bool) ([]Category, error) {
	categories, err := s.repo.ListCategories(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	sortCategories(categories)
	return categories, nil
}

// GetCategory looks a category up by slug, then by numeric id
func (s *Service) GetCategory(ctx context.Context, slugOrID string) (*Category, error) {
	c, err := s.repo.GetCategoryBySlug(ctx, slugOrID)
	if err == nil {
		return c, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	if id, convErr := strconv.ParseUint(slugOrID, 10, 64); convErr == nil {
		c, err = s.repo.GetCategoryByID(ctx, uint(id))
		if err == nil {
			return c, nil
		}
		if !apperror.IsNotFound(err) {
			return nil, err
		}
	}
	return nil, apperror.NotFound("category not found")
}

// CreateCategory creates a category
func (s *Service) CreateCategory(ctx context.Context, req *CategoryRequest) (*Category, error) {
	if req.ParentID != nil {
		if _, err := s.repo.GetCategoryByID(ctx, *req.ParentID); err != nil {
			if apperror.IsNotFound(err) {
				return nil, apperror.Validation("parent category not found")
			}
			return nil, err
		}
	}

	slug, err := s.categorySlug(ctx, req, 0)
	if err != nil {
		return nil, err
	}

	c := &Category{
		NameUz:        req.NameUz,
		NameRu:        req.NameRu,
		DescriptionUz: req.DescriptionUz,
		DescriptionRu: req.DescriptionRu,
		Image:         req.Image,
		Slug:          slug,
		ParentID:      req.ParentID,
		SortOrder:     req.SortOrder,
		IsActive:      req.IsActive == nil || *req.IsActive,
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateTree(ctx)
	s.log.WithFields(logrus.Fields{"category_id": c.ID, "slug": c.Slug}).Info("category created")
	return c, nil
}

// UpdateCategory replaces a category's editable fields
func (s *Service) UpdateCategory(ctx context.Context, id uint, req *CategoryRequest) (*Category, error) {
	c, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NotFound("category not found")
		}
		return nil, err
	}

	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, ErrCategoryCycle
		}
		cycle, err := s.isDescendant(ctx, *req.ParentID, id)
		if err != nil {
			return nil, err
		}
		if cycle {
			return nil, ErrCategoryCycle
		}
	}

	if req.Slug != "" || req.NameRu != c.NameRu || req.NameUz != c.NameUz {
		slug, err := s.categorySlug(ctx, req, id)
		if err != nil {
			return nil, err
		}
		c.Slug = slug
	}

	c.NameUz = req.NameUz
	c.NameRu = req.NameRu
	c.DescriptionUz = req.DescriptionUz
	c.DescriptionRu = req.DescriptionRu
	c.Image = req.Image
	c.ParentID = req.ParentID
	c.SortOrder = req.SortOrder
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	s.invalidateTree(ctx)
	return c, nil
}

// DeleteCategory removes an empty category
func (s *Service) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.repo.GetCategoryByID(ctx, id); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NotFound("category not found")
		}
		return err
	}

	count, err := s.repo.CountProductsInCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryNotEmpty
	}

	all, err := s.repo.ListCategories(ctx, true)
	if err != nil {
		return err
	}
	for _, c := range all {
		if c.ParentID != nil && *c.ParentID == id {
			return ErrCategoryNotEmpty
		}
	}

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	s.invalidateTree(ctx)
	s.log.WithField("category_id", id).Info("category deleted")
	return nil
}

// descendantIDs returns id plus the ids of all categories below it
func (s *Service) descendantIDs(ctx context.Context, id uint) ([]uint, error) {
	all, err := s.repo.ListCategories(ctx, false)
	if err != nil {
		return nil, err
	}

	children := make(map[uint][]uint)
	for _, c := range all {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	ids := []uint{id}
	seen := map[uint]bool{id: true}
	for i := 0; i < len(ids); i++ {
		for _, child := range children[ids[i]] {
			if !seen[child] {
				seen[child] = true
				ids = append(ids, child)
			}
		}
	}
	return ids, nil
}

// isDescendant reports whether candidate sits below ancestor
func (s *Service) isDescendant(ctx context.Context, candidate, ancestor uint) (bool, error) {
	all, err := s.repo.ListCategories(ctx, true)
	if err != nil {
		return false, err
	}
	parents := make(map[uint]*uint, len(all))
	for _, c := range all {
		parents[c.ID] = c.ParentID
	}

	current := &candidate
	for steps := 0; current != nil && steps <= len(all); steps++ {
		if *current == ancestor {
			return true, nil
		}
		current = parents[*current]
	}
	return false, nil
}

func (s *Service) categorySlug(ctx context.Context, req *CategoryRequest, selfID uint) (string, error) {
	exists := func(ctx context.Context, candidate string) (bool, error) {
		c, err := s.repo.GetCategoryBySlug(ctx, candidate)
		if err != nil {
			if apperror.IsNotFound(err) {
				return false, nil
			}
			return false, err
		}
		return c.ID != selfID, nil
	}

	slug, err := slugutil.Unique(ctx, exists, req.Slug, req.NameRu, req.NameUz)
	if err != nil {
		return "", apperror.Validation(err.Error())
	}
	return slug, nil
}

func (s *Service) invalidateTree(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateCategoryTree(ctx)
	}
}
