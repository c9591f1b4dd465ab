package services

import (
	"context"
	"errors"

	"failboard/internal/models"
	"failboard/internal/storage"
)

// UserService resolves identities for the two front-ends: Telegram
// chat ids for the bot, profile reads/updates for the web API.
type UserService struct {
	store storage.Storage
}

func NewUserService(store storage.Storage) *UserService {
	return &UserService{store: store}
}

// GetOrCreateByChat maps a Telegram chat id to an internal user,
// registering the user on first contact. The stored username follows
// the Telegram one.
func (s *UserService) GetOrCreateByChat(ctx context.Context, chatID int64, username string) (*models.User, error) {
	user, err := s.store.GetUserByChatID(ctx, chatID)
	if err == nil {
		if username != "" && user.Username != username {
			user.Username = username
			if err := s.store.SaveUser(ctx, user); err != nil {
				return nil, err
			}
		}
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	user = &models.User{
		ChatID:   &chatID,
		Username: username,
		Role:     models.RoleUser,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID returns the user or (nil, nil) when absent.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// UpdateUsername changes the display name on the user's profile.
func (s *UserService) UpdateUsername(ctx context.Context, user *models.User, username string) (*models.User, error) {
	user.Username = username
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
