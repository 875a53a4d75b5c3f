// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Rating
// model.
//
// Error semantics:
//   - When a rating is not found, functions return ErrNotFound.
//   - A second rating for the same (media, user) pair violates the composite
//     unique index and surfaces as ErrDuplicate.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mediashare/go-media-backend/internal/domain"
)

// CreateRating inserts a new rating row and returns it with the generated id.
// Returns ErrDuplicate when the (media, user) pair is already rated.
func CreateRating(ctx context.Context, db *gorm.DB, r *domain.Rating) (*domain.Rating, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return r, nil
}

// ListRatings returns all ratings ordered by creation time descending.
func ListRatings(ctx context.Context, db *gorm.DB) ([]domain.Rating, error) {
	var out []domain.Rating
	err := db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

// GetRating fetches a single rating by id, or ErrNotFound if missing.
func GetRating(ctx context.Context, db *gorm.DB, id int64) (*domain.Rating, error) {
	var r domain.Rating
	if err := db.WithContext(ctx).First(&r, "rating_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRatingsByUser returns all ratings left by the given user, newest first.
// An empty result is returned as an empty slice; the service layer decides
// whether that is an error.
func ListRatingsByUser(ctx context.Context, db *gorm.DB, userID int64) ([]domain.Rating, error) {
	var out []domain.Rating
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListRatingsByMedia returns all ratings on the given media item, newest first.
func ListRatingsByMedia(ctx context.Context, db *gorm.DB, mediaID int64) ([]domain.Rating, error) {
	var out []domain.Rating
	err := db.WithContext(ctx).
		Where("media_id = ?", mediaID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// UpdateRatingValue updates the rating_value of the rating identified by id.
// If no rows are affected, it returns ErrNotFound.
func UpdateRatingValue(ctx context.Context, db *gorm.DB, id int64, value int) error {
	res := db.WithContext(ctx).
		Model(&domain.Rating{}).
		Where("rating_id = ?", id).
		Update("rating_value", value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRating removes the rating identified by id. If no rows are affected,
// it returns ErrNotFound.
func DeleteRating(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Delete(&domain.Rating{}, "rating_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
