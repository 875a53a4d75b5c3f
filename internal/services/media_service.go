// Package services – MediaService
//
// This file implements the MediaService, which governs the lifecycle of
// uploaded media items. Reads are public; every mutation follows the same
// sequence: fetch the current row, run the ownership policy against the
// fresh owner id, then mutate and interpret the affected-row count. A zero
// affected-row count after a permit (the row vanished under a concurrent
// delete) collapses to ErrMediaNotFound.
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mediashare/go-media-backend/internal/authz"
	"github.com/mediashare/go-media-backend/internal/domain"
	"github.com/mediashare/go-media-backend/internal/repo"
)

// CreateMediaInput carries the validated metadata for a new media item.
// File fields come from the upload layer, never from the JSON payload.
type CreateMediaInput struct {
	Title       string
	Description string
	Filename    string
	Filesize    int64
	MediaType   string
}

// UpdateMediaInput carries the mutable metadata of a media item. The owner
// id and file fields are immutable through this path.
type UpdateMediaInput struct {
	Title       string
	Description string
}

// MediaService implements the use-cases around media items. It is context-
// aware and safe for concurrent use; mutating calls run inside a transaction
// so the ownership check and the mutation see a consistent row.
type MediaService struct {
	// DB is the database handle used for all media operations.
	DB *gorm.DB
}

// Create persists a new media item owned by ownerID.
func (s *MediaService) Create(ctx context.Context, ownerID int64, in CreateMediaInput) (*domain.MediaItem, error) {
	return repo.CreateMedia(ctx, s.DB, &domain.MediaItem{
		UserID:      ownerID,
		Title:       in.Title,
		Description: in.Description,
		Filename:    in.Filename,
		Filesize:    in.Filesize,
		MediaType:   in.MediaType,
	})
}

// List returns a page of media items and the total count. Invalid paging
// values fall back to defaults.
func (s *MediaService) List(ctx context.Context, page, pageSize int) ([]domain.MediaItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	total, err := repo.CountMedia(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.MediaItem{}, 0, nil
	}

	items, err := repo.ListMedia(ctx, s.DB, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Get returns a single media item by id, or ErrMediaNotFound.
func (s *MediaService) Get(ctx context.Context, id int64) (*domain.MediaItem, error) {
	m, err := repo.GetMedia(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrMediaNotFound
	}
	return m, err
}

// Update modifies the title/description of the item identified by id on
// behalf of identity.
//
// Semantics:
//   - The item must exist; otherwise ErrMediaNotFound. Existence is checked
//     strictly before ownership, so a non-owner probing a missing id learns
//     nothing beyond "not found".
//   - identity must own the item or hold the admin level; otherwise
//     ErrForbidden (wrapped with the policy reason).
//   - Zero affected rows after a permit collapse to ErrMediaNotFound.
func (s *MediaService) Update(ctx context.Context, identity authz.Identity, id int64, in UpdateMediaInput) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := repo.GetMedia(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrMediaNotFound
			}
			return err
		}

		if d := authz.Authorize(identity, m.UserID, "media item"); !d.Permit() {
			return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
		}

		err = repo.UpdateMedia(ctx, tx, id, map[string]any{
			"title":       in.Title,
			"description": in.Description,
		})
		if errors.Is(err, repo.ErrNotFound) {
			return ErrMediaNotFound
		}
		return err
	})
}

// Delete removes the item identified by id on behalf of identity. Same
// existence/ownership sequence as Update; deleting an already-deleted item
// yields ErrMediaNotFound, never a second success.
func (s *MediaService) Delete(ctx context.Context, identity authz.Identity, id int64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := repo.GetMedia(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrMediaNotFound
			}
			return err
		}

		if d := authz.Authorize(identity, m.UserID, "media item"); !d.Permit() {
			return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
		}

		err = repo.DeleteMedia(ctx, tx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrMediaNotFound
		}
		return err
	})
}
