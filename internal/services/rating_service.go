// Package services – RatingService
//
// This file implements the RatingService, which governs 1–5 star ratings on
// media items. Creation verifies both referenced rows exist before inserting
// and lets the composite unique index reject duplicate (user, media) pairs,
// so concurrent duplicate inserts cannot both succeed. Mutations follow the
// shared fetch → authorize → mutate sequence.
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

// CreateRatingInput carries a validated new rating.
type CreateRatingInput struct {
	RatingValue int
	MediaID     int64
	UserID      int64
}

// RatingService implements the use-cases around ratings. It is context-aware
// and safe for concurrent use.
type RatingService struct {
	// DB is the database handle used for all rating operations.
	DB *gorm.DB
}

// Create persists a new rating.
//
// Semantics:
//   - The referenced media item must exist; otherwise ErrInvalidMediaRef.
//   - The referenced user must exist; otherwise ErrInvalidUserRef.
//   - At most one rating per (user, media) pair; a second insert surfaces the
//     uniqueness violation as ErrDuplicateRating.
//
// The reference checks and the insert run inside a transaction so they see a
// consistent snapshot.
func (s *RatingService) Create(ctx context.Context, in CreateRatingInput) (*domain.Rating, error) {
	var created *domain.Rating
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetMedia(ctx, tx, in.MediaID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrInvalidMediaRef
			}
			return err
		}
		if _, err := repo.GetUser(ctx, tx, in.UserID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrInvalidUserRef
			}
			return err
		}

		r, err := repo.CreateRating(ctx, tx, &domain.Rating{
			MediaID:     in.MediaID,
			UserID:      in.UserID,
			RatingValue: in.RatingValue,
		})
		if err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrDuplicateRating
			}
			return err
		}
		created = r
		return nil
	})
	return created, err
}

// List returns all ratings, newest first.
func (s *RatingService) List(ctx context.Context) ([]domain.Rating, error) {
	return repo.ListRatings(ctx, s.DB)
}

// Get returns a single rating by id, or ErrRatingNotFound.
func (s *RatingService) Get(ctx context.Context, id int64) (*domain.Rating, error) {
	r, err := repo.GetRating(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrRatingNotFound
	}
	return r, err
}

// ListByUser returns all ratings left by userID. Zero matching rows is
// reported as ErrRatingNotFound, not an empty list.
func (s *RatingService) ListByUser(ctx context.Context, userID int64) ([]domain.Rating, error) {
	out, err := repo.ListRatingsByUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrRatingNotFound
	}
	return out, nil
}

// ListByMedia returns all ratings on mediaID. Zero matching rows is reported
// as ErrRatingNotFound, not an empty list.
func (s *RatingService) ListByMedia(ctx context.Context, mediaID int64) ([]domain.Rating, error) {
	out, err := repo.ListRatingsByMedia(ctx, s.DB, mediaID)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrRatingNotFound
	}
	return out, nil
}

// Update changes the value of the rating identified by id on behalf of
// identity. Existence is checked strictly before ownership; zero affected
// rows after a permit collapse to ErrRatingNotFound.
func (s *RatingService) Update(ctx context.Context, identity authz.Identity, id int64, value int) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.GetRating(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrRatingNotFound
			}
			return err
		}

		if d := authz.Authorize(identity, r.UserID, "rating"); !d.Permit() {
			return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
		}

		err = repo.UpdateRatingValue(ctx, tx, id, value)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrRatingNotFound
		}
		return err
	})
}

// Delete removes the rating identified by id on behalf of identity. Deleting
// an already-deleted rating yields ErrRatingNotFound, never a second success.
func (s *RatingService) Delete(ctx context.Context, identity authz.Identity, id int64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.GetRating(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrRatingNotFound
			}
			return err
		}

		if d := authz.Authorize(identity, r.UserID, "rating"); !d.Permit() {
			return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
		}

		err = repo.DeleteRating(ctx, tx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrRatingNotFound
		}
		return err
	})
}
