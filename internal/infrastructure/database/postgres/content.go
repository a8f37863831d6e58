// internal/infrastructure/database/postgres/content.go
package postgres

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/optommarket/backend/internal/domain/activity"
	"github.com/optommarket/backend/internal/domain/blog"
	"github.com/optommarket/backend/internal/domain/chat"
	"github.com/optommarket/backend/internal/domain/favorite"
)

func (s *Storage) AddFavorite(ctx context.Context, userID, productID uint) (*favorite.Favorite, error) {
	db := s.db.WithContext(ctx)
	f := favorite.Favorite{UserID: userID, ProductID: productID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&f).Error; err != nil {
		return nil, err
	}

	var stored favorite.Favorite
	if err := db.Where("user_id = ? AND product_id = ?", userID, productID).First(&stored).Error; err != nil {
		return nil, notFound(err)
	}
	return &stored, nil
}

func (s *Storage) RemoveFavorite(ctx context.Context, userID, productID uint) (bool, error) {
	res := s.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&favorite.Favorite{})
	return res.RowsAffected > 0, res.Error
}

func (s *Storage) ListFavorites(ctx context.Context, userID uint) ([]favorite.Favorite, error) {
	favorites := make([]favorite.Favorite, 0)
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&favorites).Error
	return favorites, err
}

func (s *Storage) ListPosts(ctx context.Context, publishedOnly bool) ([]blog.Post, error) {
	q := s.db.WithContext(ctx).Order("id DESC")
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	posts := make([]blog.Post, 0)
	err := q.Find(&posts).Error
	return posts, err
}

func (s *Storage) GetPostByID(ctx context.Context, id uint) (*blog.Post, error) {
	var p blog.Post
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Storage) GetPostBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	var p blog.Post
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Storage) CreatePost(ctx context.Context, p *blog.Post) error {
	return translate(s.db.WithContext(ctx).Create(p).Error, "SLUG_TAKEN", "slug already exists")
}

func (s *Storage) UpdatePost(ctx context.Context, p *blog.Post) error {
	res := s.db.WithContext(ctx).Model(p).Select("*").Omit("created_at").Updates(p)
	if res.Error != nil {
		return translate(res.Error, "SLUG_TAKEN", "slug already exists")
	}
	return affected(res)
}

func (s *Storage) DeletePost(ctx context.Context, id uint) error {
	return affected(s.db.WithContext(ctx).Delete(&blog.Post{}, id))
}

func (s *Storage) CreateMessage(ctx context.Context, m *chat.Message) error {
	return s.db.WithContext(ctx).Create(m).Error
}

func (s *Storage) ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error) {
	q := s.db.WithContext(ctx).Order("created_at ASC, id ASC")
	if sessionID != "" {
		q = q.Where("session_id = ?", sessionID)
	}
	messages := make([]chat.Message, 0)
	err := q.Find(&messages).Error
	return messages, err
}

func (s *Storage) MarkMessagesRead(ctx context.Context, sessionID string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&chat.Message{}).
		Where("session_id = ? AND is_from_admin = ? AND is_read = ?", sessionID, false, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (s *Storage) CreateActivity(ctx context.Context, a *activity.Activity) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *Storage) ListActivities(ctx context.Context, since time.Time, types ...activity.Type) ([]activity.Activity, error) {
	q := s.db.WithContext(ctx).Where("created_at >= ?", since)
	if len(types) > 0 {
		q = q.Where("activity_type IN ?", types)
	}
	activities := make([]activity.Activity, 0)
	err := q.Order("created_at ASC, id ASC").Find(&activities).Error
	return activities, err
}
