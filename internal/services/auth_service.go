// Package services – AuthService
//
// This file implements the AuthService, which verifies login credentials and
// issues signed bearer tokens. Unknown usernames and wrong passwords are
// deliberately collapsed into one ErrInvalidCredentials so the login endpoint
// cannot be used to probe which accounts exist.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mediashare/go-media-backend/internal/auth"
	"github.com/mediashare/go-media-backend/internal/authz"
	"github.com/mediashare/go-media-backend/internal/domain"
	"github.com/mediashare/go-media-backend/internal/repo"
)

// AuthService implements login and identity lookup.
type AuthService struct {
	// DB is the database handle used for credential lookups.
	DB *gorm.DB
	// Tokens signs and verifies bearer tokens.
	Tokens *auth.TokenManager
}

// Login verifies username/password and returns the account together with a
// freshly signed token. Both an unknown username and a wrong password yield
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	u, err := repo.GetUserByUsername(ctx, s.DB, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !auth.CheckPassword(u.Password, password) {
		return nil, "", ErrInvalidCredentials
	}

	tok, err := s.Tokens.Issue(authz.Identity{UserID: u.ID, Level: u.UserLevelID})
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// Me re-fetches the account behind a verified identity. ErrUserNotFound is
// returned when the account was deleted after the token was issued.
func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}
