package memory

import (
	"context"
	"sort"
	"time"

	"github.com/optommarket/backend/internal/domain/activity"
	"github.com/optommarket/backend/internal/domain/blog"
	"github.com/optommarket/backend/internal/domain/chat"
	"github.com/optommarket/backend/internal/domain/favorite"
	"github.com/optommarket/backend/internal/pkg/apperror"
)

func (s *Storage) AddFavorite(ctx context.Context, userID, productID uint) (*favorite.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.favorites {
		if f.UserID == userID && f.ProductID == productID {
			cp := *f
			return &cp, nil
		}
	}
	f := &favorite.Favorite{
		ID:        s.nextID("favorites"),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: s.now().UTC(),
	}
	s.favorites[f.ID] = f
	cp := *f
	return &cp, nil
}

func (s *Storage) RemoveFavorite(ctx context.Context, userID, productID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, f := range s.favorites {
		if f.UserID == userID && f.ProductID == productID {
			delete(s.favorites, id)
			return true, nil
		}
	}
	return false, nil
}

func (s *Storage) ListFavorites(ctx context.Context, userID uint) ([]favorite.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]favorite.Favorite, 0)
	for _, f := range s.favorites {
		if f.UserID == userID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Storage) ListPosts(ctx context.Context, publishedOnly bool) ([]blog.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]blog.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if publishedOnly && !p.IsPublished {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Storage) GetPostByID(ctx context.Context, id uint) (*blog.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Storage) GetPostBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.posts {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (s *Storage) CreatePost(ctx context.Context, p *blog.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.posts {
		if existing.Slug == p.Slug {
			return apperror.Conflict("SLUG_TAKEN", "slug already exists")
		}
	}
	p.ID = s.nextID("blog_posts")
	s.stamp(&p.CreatedAt)
	p.UpdatedAt = p.CreatedAt
	cp := *p
	s.posts[p.ID] = &cp
	return nil
}

func (s *Storage) UpdatePost(ctx context.Context, p *blog.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[p.ID]; !ok {
		return apperror.ErrNotFound
	}
	for _, existing := range s.posts {
		if existing.Slug == p.Slug && existing.ID != p.ID {
			return apperror.Conflict("SLUG_TAKEN", "slug already exists")
		}
	}
	p.UpdatedAt = s.now().UTC()
	cp := *p
	s.posts[p.ID] = &cp
	return nil
}

func (s *Storage) DeletePost(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return apperror.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *Storage) CreateMessage(ctx context.Context, m *chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = s.nextID("chat_messages")
	s.stamp(&m.CreatedAt)
	s.messages = append(s.messages, *m)
	return nil
}

func (s *Storage) ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]chat.Message, 0)
	for _, m := range s.messages {
		if sessionID == "" || m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

// MarkMessagesRead flags customer messages of a session as read
func (s *Storage) MarkMessagesRead(ctx context.Context, sessionID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for i := range s.messages {
		m := &s.messages[i]
		if m.SessionID == sessionID && !m.IsFromAdmin && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (s *Storage) CreateActivity(ctx context.Context, a *activity.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.nextID("user_activities")
	s.stamp(&a.CreatedAt)
	s.activities = append(s.activities, *a)
	return nil
}

func (s *Storage) ListActivities(ctx context.Context, since time.Time, types ...activity.Type) ([]activity.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[activity.Type]bool, len(types))
	for _, t := range types {
		want[t] = true
	}

	out := make([]activity.Activity, 0)
	for _, a := range s.activities {
		if a.CreatedAt.Before(since) {
			continue
		}
		if len(want) > 0 && !want[a.ActivityType] {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
