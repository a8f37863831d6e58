// internal/domain/chat/service.go
package chat

import (
	"context"
	"strings"

	"github.com/optommarket/backend/internal/domain/activity"
	"github.com/optommarket/backend/internal/pkg/apperror"
)

var ErrMissingSession = apperror.Validation("chat session id is required")

// Service handles chat business logic
type Service struct {
	repo Repository
}

// NewService creates a new chat service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SendRequest is a visitor message
type SendRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=255"`
	Phone   *string `json:"phone" binding:"omitempty,max=32"`
	Message string  `json:"message" binding:"required,max=4000"`
}

// ReplyRequest is an admin reply
type ReplyRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Message   string `json:"message" binding:"required,max=4000"`
}

// Send stores a visitor message
func (s *Service) Send(ctx context.Context, actor activity.Actor, req *SendRequest) (*Message, error) {
	if actor.SessionID == "" {
		return nil, ErrMissingSession
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, apperror.Validation("message is empty")
	}

	m := &Message{
		SessionID: actor.SessionID,
		UserID:    actor.UserID,
		Name:      req.Name,
		Phone:     req.Phone,
		Message:   text,
	}
	if err := s.repo.CreateMessage(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Reply stores an admin message in a visitor's conversation
func (s *Service) Reply(ctx context.Context, adminID uint, req *ReplyRequest) (*Message, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, apperror.Validation("message is empty")
	}

	m := &Message{
		SessionID:   req.SessionID,
		UserID:      &adminID,
		Message:     text,
		IsFromAdmin: true,
		IsRead:      true,
	}
	if err := s.repo.CreateMessage(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Conversation returns one session's messages
func (s *Service) Conversation(ctx context.Context, sessionID string) ([]Message, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}
	return s.repo.ListMessages(ctx, sessionID)
}

// All returns every message, for the admin inbox
func (s *Service) All(ctx context.Context) ([]Message, error) {
	return s.repo.ListMessages(ctx, "")
}

// MarkRead marks a session's messages as read
func (s *Service) MarkRead(ctx context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, ErrMissingSession
	}
	return s.repo.MarkMessagesRead(ctx, sessionID)
}
