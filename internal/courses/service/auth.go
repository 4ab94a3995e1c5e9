package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/courses/internal/courses/domain"
	"github.com/aussiebroadwan/courses/internal/courses/store"
	"github.com/aussiebroadwan/courses/pkg/cryptox"
	"github.com/aussiebroadwan/courses/pkg/slogx"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type AuthService struct {
	Store  store.Store
	Hasher cryptox.Hasher
}

// Register creates an account with a hashed password. Usernames are
// compared exactly, so "Alice" and "alice" are distinct accounts.
func (s *AuthService) Register(ctx context.Context, username, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	_, err := s.Store.Users().GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		l.Info("registration rejected: username taken", slog.String("username", username))
		return domain.User{}, ErrUsernameTaken
	case !errors.Is(err, store.ErrNotFound):
		l.Error("failed to look up username", slog.Any("error", err))
		return domain.User{}, err
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		l.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	user, err := s.Store.Users().CreateUser(ctx, domain.User{
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		// Lost a race with a concurrent registration of the same name.
		if errors.Is(err, store.ErrAlreadyExists) {
			l.Info("registration rejected: username taken", slog.String("username", username))
			return domain.User{}, ErrUsernameTaken
		}
		l.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, err
	}

	l.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Authenticate checks a username/password pair. Unknown usernames and wrong
// passwords both return ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("login failed", slog.String("username", username))
			return domain.User{}, ErrInvalidCredentials
		}
		l.Error("failed to fetch user", slog.Any("error", err))
		return domain.User{}, err
	}

	if err := s.Hasher.Verify(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			l.Info("login failed", slog.String("username", username))
			return domain.User{}, ErrInvalidCredentials
		}
		// Unreadable stored hash: the user cannot log in with it either way.
		l.Error("failed to verify password",
			slog.Int64("user_id", user.ID),
			slog.Any("error", err),
		)
		return domain.User{}, ErrInvalidCredentials
	}

	l.Info("user logged in", slog.Int64("user_id", user.ID))
	return user, nil
}

// GetUserByID fetches a user by id.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}
