// internal/domain/user/entity.go
package user

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role gates access to seller and admin routes
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// User represents a storefront account
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null;size:100" json:"username"`
	Password  string    `gorm:"not null;size:255" json:"-"`
	Email     string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Phone     *string   `gorm:"size:20" json:"phone,omitempty"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook normalizes identity fields
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Normalize()
	return nil
}

// Normalize lower-cases the email and trims the username
func (u *User) Normalize() {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Username = strings.TrimSpace(u.Username)
	if u.Role == "" {
		u.Role = RoleCustomer
	}
}

// IsAdmin reports whether the user may use admin routes
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Repository persists users
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUserRole(ctx context.Context, id uint, role Role) (*User, error)
	CountUsers(ctx context.Context) (int64, error)
}
