package storage

import (
	"context"
	"errors"

	"failboard/internal/models"
)

// Sentinel errors returned by Storage implementations. Callers check
// them with errors.Is; the service layer translates them into the
// boolean/nil outcomes the front-ends expect.
var (
	ErrNotFound     = errors.New("record not found")
	ErrAlreadyVoted = errors.New("user already voted for this post")
)

// PostFilter narrows ListPosts. Zero values mean "no filter".
type PostFilter struct {
	Search string
	Status models.PostStatus
	Tags   []string
	UserID uint
	Page   int
	Size   int
}

// UserRating is one leaderboard row: a user and the summed rating of
// their published posts.
type UserRating struct {
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	TotalRating int    `json:"total_rating"`
}

// Storage defines the persistence operations the services need.
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByChatID(ctx context.Context, chatID int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error

	// Post operations
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	SavePost(ctx context.Context, post *models.Post) error
	// DeletePost removes the post and cascades its votes and tag links.
	DeletePost(ctx context.Context, id uint) error
	ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, int64, error)
	PostsByUser(ctx context.Context, userID uint, status models.PostStatus) ([]models.Post, error)
	RandomPublished(ctx context.Context, limit int) ([]models.Post, error)

	// Vote operations
	GetVote(ctx context.Context, postID, userID uint) (*models.Vote, error)
	// InsertVote atomically records the vote and adds its value to the
	// post's rating. Returns ErrAlreadyVoted if a vote for the same
	// (post, user) pair exists and ErrNotFound if the post is gone; in
	// both cases nothing is persisted.
	InsertVote(ctx context.Context, vote *models.Vote) error

	// TopUsers ranks users by the summed rating of their published
	// posts, descending, ties broken by user id ascending.
	TopUsers(ctx context.Context, limit int) ([]UserRating, error)

	// EnsureTags returns the tags with the given names, creating any
	// that do not exist yet.
	EnsureTags(ctx context.Context, names []string) ([]models.Tag, error)

	Close() error
}
