// internal/domain/blog/service.go
package blog

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/pkg/apperror"
	"github.com/optommarket/backend/internal/pkg/slugutil"
)

// Service handles blog business logic
type Service struct {
	repo Repository
	log  *logrus.Logger
	now  func() time.Time
}

// NewService creates a new blog service
func NewService(repo Repository, log *logrus.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// PostRequest is the admin create/update body
type PostRequest struct {
	TitleUz     string  `json:"titleUz" binding:"required,max=255"`
	TitleRu     string  `json:"titleRu" binding:"required,max=255"`
	ContentUz   string  `json:"contentUz" binding:"required"`
	ContentRu   string  `json:"contentRu" binding:"required"`
	Excerpt     *string `json:"excerpt"`
	Image       *string `json:"image" binding:"omitempty,max=500"`
	Slug        string  `json:"slug" binding:"omitempty,max=255"`
	IsPublished bool    `json:"isPublished"`
}

// ListPublished returns published posts, newest first
func (s *Service) ListPublished(ctx context.Context) ([]Post, error) {
	return s.repo.ListPosts(ctx, true)
}

// ListAll returns drafts and published posts, for the admin panel
func (s *Service) ListAll(ctx context.Context) ([]Post, error) {
	return s.repo.ListPosts(ctx, false)
}

// GetPublished returns a published post by slug
func (s *Service) GetPublished(ctx context.Context, slug string) (*Post, error) {
	p, err := s.repo.GetPostBySlug(ctx, slug)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NotFound("post not found")
		}
		return nil, err
	}
	if !p.IsPublished {
		return nil, apperror.NotFound("post not found")
	}
	return p, nil
}

// CreatePost creates a post
func (s *Service) CreatePost(ctx context.Context, req *PostRequest, authorID *uint) (*Post, error) {
	slug, err := s.postSlug(ctx, req, 0)
	if err != nil {
		return nil, err
	}

	p := &Post{Slug: slug, AuthorID: authorID}
	s.apply(p, req)

	if err := s.repo.CreatePost(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	s.log.WithFields(logrus.Fields{"post_id": p.ID, "slug": p.Slug}).Info("blog post created")
	return p, nil
}

// UpdatePost replaces a post's content
func (s *Service) UpdatePost(ctx context.Context, id uint, req *PostRequest) (*Post, error) {
	p, err := s.repo.GetPostByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NotFound("post not found")
		}
		return nil, err
	}

	if req.Slug != "" || req.TitleRu != p.TitleRu || req.TitleUz != p.TitleUz {
		slug, err := s.postSlug(ctx, req, id)
		if err != nil {
			return nil, err
		}
		p.Slug = slug
	}
	s.apply(p, req)

	if err := s.repo.UpdatePost(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return p, nil
}

// DeletePost removes a post
func (s *Service) DeletePost(ctx context.Context, id uint) error {
	if err := s.repo.DeletePost(ctx, id); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NotFound("post not found")
		}
		return err
	}
	return nil
}

// apply copies request fields. PublishedAt is set on the first publish only.
func (s *Service) apply(p *Post, req *PostRequest) {
	p.TitleUz = req.TitleUz
	p.TitleRu = req.TitleRu
	p.ContentUz = req.ContentUz
	p.ContentRu = req.ContentRu
	p.Excerpt = req.Excerpt
	p.Image = req.Image
	p.IsPublished = req.IsPublished
	if p.IsPublished && p.PublishedAt == nil {
		now := s.now().UTC()
		p.PublishedAt = &now
	}
}

func (s *Service) postSlug(ctx context.Context, req *PostRequest, selfID uint) (string, error) {
	exists := func(ctx context.Context, candidate string) (bool, error) {
		p, err := s.repo.GetPostBySlug(ctx, candidate)
		if err != nil {
			if apperror.IsNotFound(err) {
				return false, nil
			}
			return false, err
		}
		return p.ID != selfID, nil
	}

	slug, err := slugutil.Unique(ctx, exists, req.Slug, req.TitleRu, req.TitleUz)
	if err != nil {
		return "", apperror.Validation(err.Error())
	}
	return slug, nil
}
