// internal/domain/chat/entity.go
package chat

import (
	"context"
	"time"
)

// Message is one line of a support conversation keyed by cart session
type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   string    `gorm:"size:100;not null;index" json:"sessionId"`
	UserID      *uint     `gorm:"index" json:"userId,omitempty"`
	Name        *string   `gorm:"size:255" json:"name,omitempty"`
	Phone       *string   `gorm:"size:32" json:"phone,omitempty"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	IsFromAdmin bool      `gorm:"not null" json:"isFromAdmin"`
	IsRead      bool      `gorm:"not null;index" json:"isRead"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName overrides the table name
func (Message) TableName() string {
	return "chat_messages"
}

// Repository persists chat messages
type Repository interface {
	CreateMessage(ctx context.Context, m *Message) error
	// ListMessages returns messages oldest first. An empty sessionID lists all.
	ListMessages(ctx context.Context, sessionID string) ([]Message, error)
	MarkMessagesRead(ctx context.Context, sessionID string) (int64, error)
}
