// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/avatarly/avatarly/internal/auth"
	"github.com/avatarly/avatarly/internal/metrics"
	"github.com/avatarly/avatarly/internal/model"
	"github.com/avatarly/avatarly/internal/repository"
)

// Service errors.
var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("wrong email or password")
)

// UserStore is the persistent users collection.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
}

// UserCache is an optional lookup cache in front of UserStore.
type UserCache interface {
	GetUser(ctx context.Context, email string) (*model.User, error)
	SetUser(ctx context.Context, user *model.User) error
}

// AvatarStore persists uploaded avatar files.
type AvatarStore interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
	Remove(ctx context.Context, path string) error
}

// AccountService handles registration and login.
type AccountService struct {
	store   UserStore
	cache   UserCache
	avatars AvatarStore
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(store UserStore, avatars AvatarStore, recorder metrics.Recorder, logger *slog.Logger) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		store:   store,
		avatars: avatars,
		metrics: recorder,
		logger:  logger,
		now:     time.Now,
	}
}

// WithCache enables the user lookup cache.
func (s *AccountService) WithCache(c UserCache) *AccountService {
	s.cache = c
	return s
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Name     string
	Email    string
	Age      string
	Password string
	Avatar   *multipart.FileHeader // optional
}

// Register creates a new user account.
// Returns ErrEmailExists if the email is already taken.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	existing, err := s.findUser(ctx, input.Email)
	switch {
	case err == nil && existing != nil:
		s.metrics.IncRegistrationConflict()
		return nil, ErrEmailExists
	case err != nil && !errors.Is(err, repository.ErrUserNotFound):
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	start := time.Now()
	hash, err := auth.HashPassword(input.Password)
	s.metrics.ObservePasswordHash(time.Since(start))
	if err != nil {
		return nil, err
	}

	var avatar *string
	if input.Avatar != nil {
		path, err := s.avatars.Save(ctx, input.Avatar)
		if err != nil {
			return nil, err
		}
		s.metrics.IncAvatarStored()
		avatar = &path
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         input.Name,
		Email:        input.Email,
		Age:          input.Age,
		Avatar:       avatar,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		s.discardAvatar(ctx, avatar)
		if errors.Is(err, repository.ErrEmailExists) {
			// Lost a race with a concurrent registration.
			s.metrics.IncRegistrationConflict()
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncRegistered()
	s.cacheUser(ctx, user)

	return user, nil
}

// Login verifies credentials.
// Returns ErrInvalidCredentials for an unknown email or a wrong password.
func (s *AccountService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.findUser(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			auth.BurnVerify(password)
			s.metrics.IncLogin(metrics.LoginFailed)
			return nil, ErrInvalidCredentials
		}
		s.metrics.IncLogin(metrics.LoginError)
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := auth.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.metrics.IncLogin(metrics.LoginFailed)
			return nil, ErrInvalidCredentials
		}
		s.metrics.IncLogin(metrics.LoginError)
		return nil, err
	}

	s.metrics.IncLogin(metrics.LoginSuccess)
	return user, nil
}

// findUser checks the cache first, then the store. Cache failures fall
// through to the store.
func (s *AccountService) findUser(ctx context.Context, email string) (*model.User, error) {
	if s.cache != nil {
		user, err := s.cache.GetUser(ctx, email)
		if err == nil && user != nil {
			return user, nil
		}
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	s.cacheUser(ctx, user)
	return user, nil
}

func (s *AccountService) cacheUser(ctx context.Context, user *model.User) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetUser(ctx, user); err != nil {
		s.logger.Warn("failed to cache user", "user_id", user.ID, "error", err)
	}
}

func (s *AccountService) discardAvatar(ctx context.Context, avatar *string) {
	if avatar == nil {
		return
	}
	if err := s.avatars.Remove(ctx, *avatar); err != nil {
		s.logger.Warn("failed to remove orphaned avatar", "path", *avatar, "error", err)
	}
}
