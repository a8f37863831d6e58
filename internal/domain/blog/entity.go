// internal/domain/blog/entity.go
package blog

import (
	"context"
	"time"
)

// Post is a bilingual blog article
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	TitleUz     string     `gorm:"size:255;not null" json:"titleUz"`
	TitleRu     string     `gorm:"size:255;not null" json:"titleRu"`
	ContentUz   string     `gorm:"type:text;not null" json:"contentUz"`
	ContentRu   string     `gorm:"type:text;not null" json:"contentRu"`
	Excerpt     *string    `gorm:"type:text" json:"excerpt,omitempty"`
	Image       *string    `gorm:"size:500" json:"image,omitempty"`
	Slug        string     `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	AuthorID    *uint      `gorm:"index" json:"authorId,omitempty"`
	IsPublished bool       `gorm:"not null;index" json:"isPublished"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TableName overrides the table name
func (Post) TableName() string {
	return "blog_posts"
}

// Repository persists blog posts
type Repository interface {
	ListPosts(ctx context.Context, publishedOnly bool) ([]Post, error)
	GetPostByID(ctx context.Context, id uint) (*Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*Post, error)
	CreatePost(ctx context.Context, p *Post) error
	UpdatePost(ctx context.Context, p *Post) error
	DeletePost(ctx context.Context, id uint) error
}
