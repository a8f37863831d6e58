// internal/domain/activity/entity.go
package activity

import (
	"context"
	"time"
)

// Type is the kind of tracked user event
type Type string

const (
	TypeVisit       Type = "visit"
	TypeRegister    Type = "register"
	TypeLogin       Type = "login"
	TypeProductView Type = "product_view"
	TypeAddToCart   Type = "add_to_cart"
	TypeSearch      Type = "search"
	TypeOrder       Type = "order"
)

// Metadata keys written by the server-side trackers.
const (
	MetaQuery   = "query"
	MetaResults = "results"
	MetaPath    = "path"
)

// Metadata holds free-form event attributes
type Metadata map[string]string

// Activity is one row of the append-only user event log
type Activity struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       *uint     `gorm:"index" json:"userId,omitempty"`
	SessionID    *string   `gorm:"size:100;index" json:"sessionId,omitempty"`
	ActivityType Type      `gorm:"type:varchar(32);not null;index" json:"activityType"`
	TargetID     *uint     `json:"targetId,omitempty"`
	TargetType   *string   `gorm:"size:32" json:"targetType,omitempty"`
	Metadata     Metadata  `gorm:"type:jsonb;serializer:json" json:"metadata,omitempty"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
}

// TableName sets the table name
func (Activity) TableName() string {
	return "user_activities"
}

// Repository persists and scans activities
type Repository interface {
	CreateActivity(ctx context.Context, a *Activity) error
	// ListActivities returns events created at or after since, oldest first.
	// An empty types list means every type.
	ListActivities(ctx context.Context, since time.Time, types ...Type) ([]Activity, error)
}

// IsValidClientType reports whether a type may be submitted by clients.
func IsValidClientType(t Type) bool {
	switch t {
	case TypeVisit, TypeProductView, TypeSearch:
		return true
	}
	return false
}

// Actor identifies who triggered a request: an optional signed-in user and
// the cart session.
type Actor struct {
	UserID    *uint
	SessionID string
}
