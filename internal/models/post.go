package models

import (
	"time"
)

// PostStatus is the lifecycle stage of a post. Transitions are only
// partially checked: ownership gates edits and deletion, moderation
// may set any status.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusChecking  PostStatus = "checking"
	StatusPublished PostStatus = "published"
)

// Valid reports whether s is one of the known statuses.
func (s PostStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusChecking, StatusPublished:
		return true
	}
	return false
}

// Post is one user-submitted fail story.
//
// Rating is denormalized from the votes table and is only ever written
// by the voting ledger, never by a content edit.
type Post struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	User      User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Name      string     `gorm:"size:100;not null" json:"name"`
	Content   string     `gorm:"size:1000" json:"content"`
	Rating    int        `gorm:"default:0" json:"rating"`
	Status    PostStatus `gorm:"size:20;default:'draft';index" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Tags  []Tag  `gorm:"many2many:post_tags;" json:"tags"`
	Votes []Vote `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Content length limits, enforced at the API edge and in the bot
// conversation before a post reaches the service layer.
const (
	MaxNameLen    = 100
	MaxContentLen = 1000
)
