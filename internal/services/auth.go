package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"failboard/internal/models"
	"failboard/internal/storage"
)

// ErrInvalidCredentials covers both unknown email and wrong password,
// so login failures do not reveal which one it was.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService issues and validates the JWT tokens the web API uses.
// The bot never sees tokens; it trusts the Telegram chat id instead.
type AuthService struct {
	store    storage.Storage
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(store storage.Storage, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		store:    store,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// Register creates a web user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if existing, err := s.store.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("user with email %s already exists", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    &email,
		Password: string(hash),
		Role:     models.RoleUser,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// UserFromToken validates the token and loads the user it names.
func (s *AuthService) UserFromToken(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	rawID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, errors.New("token missing user_id")
	}

	user, err := s.store.GetUserByID(ctx, uint(rawID))
	if err != nil {
		return nil, fmt.Errorf("load token user: %w", err)
	}
	return user, nil
}
