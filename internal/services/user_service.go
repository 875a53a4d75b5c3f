// Package services – UserService
//
// This file implements the UserService, which manages account registration
// and the self-or-admin mutation rules for user records. Registration hashes
// the supplied secret with bcrypt before anything touches the database; the
// raw secret is never persisted and the hash never leaves the service layer
// (the model's json tag hides it from every read response).
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mediashare/go-media-backend/internal/auth"
	"github.com/mediashare/go-media-backend/internal/authz"
	"github.com/mediashare/go-media-backend/internal/domain"
	"github.com/mediashare/go-media-backend/internal/repo"
)

// RegisterInput carries a validated registration payload.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UpdateUserInput carries a validated account update. Password is optional;
// when empty the stored hash is left untouched.
type UpdateUserInput struct {
	Username string
	Email    string
	Password string
}

// UserService implements the use-cases around user accounts.
type UserService struct {
	// DB is the database handle used for all user operations.
	DB *gorm.DB
}

// Register creates a new standard-level account. The privilege level is
// always UserLevelStandard regardless of the payload; promoting an account
// is an administrative database operation, not an API one. Collisions with
// an existing username or email surface as ErrDuplicateUser.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u, err := repo.CreateUser(ctx, s.DB, &domain.User{
		Username:    in.Username,
		Email:       in.Email,
		Password:    hash,
		UserLevelID: domain.UserLevelStandard,
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrDuplicateUser
	}
	return u, err
}

// List returns a page of users and the total count.
func (s *UserService) List(ctx context.Context, page, pageSize int) ([]domain.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	total, err := repo.CountUsers(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.User{}, 0, nil
	}

	items, err := repo.ListUsers(ctx, s.DB, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Get returns a single user by id, or ErrUserNotFound.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// Update modifies the account identified by id on behalf of identity.
//
// Semantics:
//   - The account must exist; otherwise ErrUserNotFound (checked strictly
//     before ownership).
//   - identity must be the account itself or an admin; otherwise ErrForbidden.
//   - If the new username or email belongs to a different existing account,
//     ErrUserConflict is returned before the update is attempted; a race past
//     that check is still caught by the unique indexes.
//   - A non-empty Password is re-hashed; an empty one leaves the hash alone.
func (s *UserService) Update(ctx context.Context, identity authz.Identity, id int64, in UpdateUserInput) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := repo.GetUser(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if d := authz.Authorize(identity, u.ID, "account"); !d.Permit() {
			return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
		}

		taken, err := repo.UsernameOrEmailTaken(ctx, tx, in.Username, in.Email, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrUserConflict
		}

		updates := map[string]any{
			"username": in.Username,
			"email":    in.Email,
		}
		if in.Password != "" {
			hash, err := auth.HashPassword(in.Password)
			if err != nil {
				return err
			}
			updates["password"] = hash
		}

		err = repo.UpdateUser(ctx, tx, id, updates)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return ErrUserNotFound
		case errors.Is(err, repo.ErrDuplicate):
			return ErrUserConflict
		}
		return err
	})
}

// Delete removes the account identified by id on behalf of identity. Same
// existence/ownership sequence as Update; a second delete of the same id
// yields ErrUserNotFound.
func (s *UserService) Delete(ctx context.Context, identity authz.Identity, id int64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := repo.GetUser(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if d := authz.Authorize(identity, u.ID, "account"); !d.Permit() {
			return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
		}

		err = repo.DeleteUser(ctx, tx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	})
}
