// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a user is not found, functions return ErrNotFound.
//   - Unique violations on username/email surface as ErrDuplicate.
//   - Other DB errors are propagated raw.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mediashare/go-media-backend/internal/domain"
)

// CreateUser inserts a new user row and returns it with the generated id.
// The Password field is expected to hold a bcrypt hash already; hashing is
// the service layer's job. Returns ErrDuplicate when the username or email
// is already taken.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) (*domain.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.UserLevelID == 0 {
		u.UserLevelID = domain.UserLevelStandard
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return u, nil
}

// ListUsers returns users ordered by id, paginated via offset/limit.
// A limit <= 0 disables paging and returns everything.
func ListUsers(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.User, error) {
	var out []domain.User
	tx := db.WithContext(ctx).Order("user_id asc")
	if limit > 0 {
		tx = tx.Offset(offset).Limit(limit)
	}
	err := tx.Find(&out).Error
	return out, err
}

// CountUsers returns the total number of user rows.
func CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error
	return total, err
}

// GetUser fetches a single user by id, or ErrNotFound if missing.
func GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "user_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername fetches a single user by username, or ErrNotFound.
// Unlike GetUser the returned row includes the password hash; it exists for
// login verification only.
func GetUserByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UsernameOrEmailTaken reports whether username or email belongs to an
// account other than excludeID. Used for the pre-update collision check.
func UsernameOrEmailTaken(ctx context.Context, db *gorm.DB, username, email string, excludeID int64) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("(username = ? OR email = ?) AND user_id <> ?", username, email, excludeID).
		Count(&count).Error
	return count > 0, err
}

// UpdateUser applies the given column updates to the user identified by id.
// If no rows are affected (user missing), it returns ErrNotFound. Unique
// violations surface as ErrDuplicate.
func UpdateUser(ctx context.Context, db *gorm.DB, id int64, updates map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_id = ?", id).
		Updates(updates)
	if res.Error != nil {
		if IsDuplicate(res.Error) {
			return ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes the user identified by id. If no rows are affected,
// it returns ErrNotFound.
func DeleteUser(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Delete(&domain.User{}, "user_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
