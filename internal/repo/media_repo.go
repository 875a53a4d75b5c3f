// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the MediaItem
// model.
//
// Error semantics:
//   - When an item is not found, functions return ErrNotFound.
//   - Mutations report ErrNotFound when zero rows are affected, which also
//     covers the race where a concurrent delete removed the row between the
//     caller's ownership fetch and the mutation.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mediashare/go-media-backend/internal/domain"
)

// CreateMedia inserts a new media item row and returns it with the generated
// id. CreatedAt is set to UTC when unset.
func CreateMedia(ctx context.Context, db *gorm.DB, m *domain.MediaItem) (*domain.MediaItem, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ListMedia returns media items ordered by creation time descending,
// paginated via offset/limit. A limit <= 0 disables paging.
func ListMedia(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.MediaItem, error) {
	var out []domain.MediaItem
	tx := db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		tx = tx.Offset(offset).Limit(limit)
	}
	err := tx.Find(&out).Error
	return out, err
}

// CountMedia returns the total number of media rows.
func CountMedia(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.MediaItem{}).Count(&total).Error
	return total, err
}

// GetMedia fetches a single media item by id, or ErrNotFound if missing.
// Services call this immediately before authorizing a mutation so the
// ownership decision always sees the current owner id.
func GetMedia(ctx context.Context, db *gorm.DB, id int64) (*domain.MediaItem, error) {
	var m domain.MediaItem
	if err := db.WithContext(ctx).First(&m, "media_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMedia applies the given column updates to the media item identified
// by id. If no rows are affected, it returns ErrNotFound.
func UpdateMedia(ctx context.Context, db *gorm.DB, id int64, updates map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.MediaItem{}).
		Where("media_id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMedia removes the media item identified by id. If no rows are
// affected, it returns ErrNotFound. Ratings on the item cascade.
func DeleteMedia(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Delete(&domain.MediaItem{}, "media_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
