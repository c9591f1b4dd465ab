package models

import (
	"time"
)

// Vote is one user's single rating contribution to one post.
//
// The composite unique index is what actually enforces
// one-vote-per-user: two concurrent votes both pass the application
// pre-check, but the second insert fails on the index.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_votes_post_user" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_votes_post_user" json:"post_id"`
	Value     int       `gorm:"not null" json:"value"` // +1 or -1
	CreatedAt time.Time `json:"created_at"`
}
