package models

import (
	"time"
)

// User roles. Moderators and admins may edit content they do not own.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    *int64    `gorm:"uniqueIndex" json:"chat_id,omitempty"` // Telegram identity, nil for web-only users
	Username  string    `gorm:"size:100;not null" json:"username"`
	Email     *string   `gorm:"uniqueIndex;size:100" json:"email,omitempty"` // Web identity, nil for bot-only users
	Password  string    `gorm:"size:100" json:"-"`                           // bcrypt hash
	Role      string    `gorm:"size:20;default:'user';not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Posts []Post `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// IsElevated reports whether the user may act on posts they do not own.
func (u *User) IsElevated() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}
