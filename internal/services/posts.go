package services

import (
	"context"
	"errors"
	"fmt"

	"failboard/internal/models"
	"failboard/internal/storage"
)

// PostService owns the content lifecycle: creation, ownership-gated
// edits, status transitions and deletion.
//
// The state machine is deliberately loose: ownership and role are
// checked, status adjacency is not. SetStatus may move a post between
// any two statuses; that is how moderation works.
type PostService struct {
	store storage.Storage
}

func NewPostService(store storage.Storage) *PostService {
	return &PostService{store: store}
}

// Create stores a new post for ownerID. The initial status is the
// caller's choice: the web API submits for review (checking), the bot
// starts with a draft. Name and content lengths are validated by the
// callers before they reach this point.
func (s *PostService) Create(ctx context.Context, ownerID uint, name, content string, status models.PostStatus, tagNames []string) (*models.Post, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid initial status %q", status)
	}

	var tags []models.Tag
	if len(tagNames) > 0 {
		var err error
		tags, err = s.store.EnsureTags(ctx, tagNames)
		if err != nil {
			return nil, err
		}
	}

	post := &models.Post{
		UserID:  ownerID,
		Name:    name,
		Content: content,
		Rating:  0,
		Status:  status,
		Tags:    tags,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdateContent replaces a post's name and content. Only the owner may
// edit, unless the requester is a moderator or admin. Status and
// rating are never touched by an edit.
func (s *PostService) UpdateContent(ctx context.Context, postID uint, name, content string, requester *models.User) (*models.Post, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !requester.IsElevated() && post.UserID != requester.ID {
		return nil, fmt.Errorf("%w: user %d cannot edit post %d", ErrPermissionDenied, requester.ID, postID)
	}

	post.Name = name
	post.Content = content
	if err := s.store.SavePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// SetStatus overwrites the post's status unconditionally (moderation
// path). Returns (nil, nil) when the post does not exist; the HTTP
// layer maps that to a 404.
func (s *PostService) SetStatus(ctx context.Context, postID uint, status models.PostStatus) (*models.Post, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	post.Status = status
	if err := s.store.SavePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// ToDraft forces the post back to draft regardless of its current
// status. Returns false if the post does not exist.
func (s *PostService) ToDraft(ctx context.Context, postID uint) (bool, error) {
	post, err := s.SetStatus(ctx, postID, models.StatusDraft)
	if err != nil {
		return false, err
	}
	return post != nil, nil
}

// PublishDraft publishes a draft owned by userID. Returns false when
// the post is missing, owned by someone else or not a draft.
func (s *PostService) PublishDraft(ctx context.Context, postID, userID uint) (bool, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if post.UserID != userID || post.Status != models.StatusDraft {
		return false, nil
	}
	post.Status = models.StatusPublished
	if err := s.store.SavePost(ctx, post); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a post and its votes, but only for the owner. A
// missing post and a post owned by someone else both come back as
// false: callers cannot tell whether the post exists at all.
func (s *PostService) Delete(ctx context.Context, postID, userID uint) (bool, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if post.UserID != userID {
		return false, nil
	}
	if err := s.store.DeletePost(ctx, postID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Get returns the post or (nil, nil) when it does not exist.
func (s *PostService) Get(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return post, nil
}

// List returns a filtered page of posts plus the total match count.
func (s *PostService) List(ctx context.Context, filter storage.PostFilter) ([]models.Post, int64, error) {
	return s.store.ListPosts(ctx, filter)
}

// Drafts returns the user's drafts, newest first.
func (s *PostService) Drafts(ctx context.Context, userID uint) ([]models.Post, error) {
	return s.store.PostsByUser(ctx, userID, models.StatusDraft)
}

// PublishedByUser returns the user's published posts, newest first.
func (s *PostService) PublishedByUser(ctx context.Context, userID uint) ([]models.Post, error) {
	return s.store.PostsByUser(ctx, userID, models.StatusPublished)
}

// RandomForVoting picks up to limit random published posts for the
// bot's /vote flow.
func (s *PostService) RandomForVoting(ctx context.Context, limit int) ([]models.Post, error) {
	return s.store.RandomPublished(ctx, limit)
}
