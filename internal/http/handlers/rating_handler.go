// Rating HTTP handlers.
//
// This file exposes REST endpoints for ratings:
//   - GET    /ratings            (list all, public)
//   - GET    /ratings/:id        (fetch one, public)
//   - GET    /ratings/user/:id   (ratings left by a user; 404 when none)
//   - GET    /ratings/media/:id  (ratings on a media item; 404 when none)
//   - POST   /ratings            (create, authenticated)
//   - PUT    /ratings/:id        (update value, rater or admin)
//   - DELETE /ratings/:id        (delete, rater or admin)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. Rating values are constrained to
// the 1..5 range at the transport layer via binding tags.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mediashare/go-media-backend/internal/authz"
	"github.com/mediashare/go-media-backend/internal/domain"
	"github.com/mediashare/go-media-backend/internal/services"
)

// RatingService defines rating operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type RatingService interface {
	// Create inserts a rating after checking both referenced rows exist.
	Create(ctx context.Context, in services.CreateRatingInput) (*domain.Rating, error)
	// List returns every rating.
	List(ctx context.Context) ([]domain.Rating, error)
	// Get fetches one rating by id.
	Get(ctx context.Context, id int64) (*domain.Rating, error)
	// ListByUser returns the ratings left by a user; none is a not-found.
	ListByUser(ctx context.Context, userID int64) ([]domain.Rating, error)
	// ListByMedia returns the ratings on a media item; none is a not-found.
	ListByMedia(ctx context.Context, mediaID int64) ([]domain.Rating, error)
	// Update rewrites the value of a rating the identity may modify.
	Update(ctx context.Context, identity authz.Identity, id int64, value int) error
	// Delete removes a rating the identity may modify.
	Delete(ctx context.Context, identity authz.Identity, id int64) error
}

//
// DTOs
//

// CreateRatingRequest is the JSON payload for creating a rating.
type CreateRatingRequest struct {
	// RatingValue is the star value, 1 through 5.
	RatingValue int `json:"rating_value" binding:"required,oneof=1 2 3 4 5" example:"5"`
	// MediaID references the rated media item.
	MediaID int64 `json:"media_id" binding:"required" example:"1"`
	// UserID references the rating user.
	UserID int64 `json:"user_id" binding:"required" example:"1"`
}

// UpdateRatingRequest is the JSON payload for changing a rating's value.
type UpdateRatingRequest struct {
	RatingValue int `json:"rating_value" binding:"required,oneof=1 2 3 4 5" example:"3"`
}

//
// Handlers
//

// ListRatings godoc
// @ID          listRatings
// @Summary     List all ratings
// @Tags        Ratings
// @Produce     json
//
// @Success     200  {array}  domain.Rating
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /ratings [get]
func (h *Handlers) ListRatings(c *gin.Context) {
	ratings, err := h.ratingSvc.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ratings)
}

// GetRating godoc
// @ID          getRating
// @Summary     Fetch a rating
// @Tags        Ratings
// @Produce     json
//
// @Param       id  path  int  true  "Rating ID"  example(3)
//
// @Success     200  {object} domain.Rating
// @Failure     404  {object} handlers.ErrorResponse "Rating not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /ratings/{id} [get]
func (h *Handlers) GetRating(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	r, err := h.ratingSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrRatingNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "rating not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, r)
}

// ListRatingsByUser godoc
// @ID          listRatingsByUser
// @Summary     List ratings left by a user
// @Description Returns the ratings a user has left. An empty result answers 404.
// @Tags        Ratings
// @Produce     json
//
// @Param       id  path  int  true  "User ID"  example(7)
//
// @Success     200  {array}  domain.Rating
// @Failure     404  {object} handlers.ErrorResponse "No ratings for this user"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /ratings/user/{id} [get]
func (h *Handlers) ListRatingsByUser(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	ratings, err := h.ratingSvc.ListByUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrRatingNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no ratings found for this user")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ratings)
}

// ListRatingsByMedia godoc
// @ID          listRatingsByMedia
// @Summary     List ratings on a media item
// @Description Returns the ratings left on a media item. An empty result answers 404.
// @Tags        Ratings
// @Produce     json
//
// @Param       id  path  int  true  "Media item ID"  example(42)
//
// @Success     200  {array}  domain.Rating
// @Failure     404  {object} handlers.ErrorResponse "No ratings for this item"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /ratings/media/{id} [get]
func (h *Handlers) ListRatingsByMedia(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	ratings, err := h.ratingSvc.ListByMedia(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrRatingNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no ratings found for this media item")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ratings)
}

// CreateRating godoc
// @ID          createRating
// @Summary     Rate a media item
// @Description Inserts a rating after verifying both the media item and the user exist. A second rating for the same (user, media) pair answers 400.
// @Tags        Ratings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.CreateRatingRequest  true  "Rating payload"
//
// @Success     201  {object} handlers.MessageResponse
// @Failure     400  {object} handlers.ErrorResponse "Validation failure, invalid reference, or duplicate rating"
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /ratings [post]
func (h *Handlers) CreateRating(c *gin.Context) {
	var req CreateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	r, err := h.ratingSvc.Create(c.Request.Context(), services.CreateRatingInput{
		RatingValue: req.RatingValue,
		MediaID:     req.MediaID,
		UserID:      req.UserID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidMediaRef):
			fail(c, http.StatusBadRequest, ErrCodeInvalidReference, "Rating not added: Invalid media_id")
		case errors.Is(err, services.ErrInvalidUserRef):
			fail(c, http.StatusBadRequest, ErrCodeInvalidReference, "Rating not added: Invalid user_id")
		case errors.Is(err, services.ErrDuplicateRating):
			fail(c, http.StatusBadRequest, ErrCodeDuplicateRating, "Rating not added: Rating already exists.")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusCreated, gin.H{"message": "Rating added", "ratingId": r.ID})
}

// UpdateRating godoc
// @ID          updateRating
// @Summary     Change a rating's value
// @Description Rewrites the star value. Only the rating user or an admin may modify it.
// @Tags        Ratings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  int                           true  "Rating ID"
// @Param       body  body  handlers.UpdateRatingRequest  true  "New value"
//
// @Success     200  {object} handlers.MessageResponse
// @Failure     400  {object} handlers.ErrorResponse "Validation failure"
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure     403  {object} handlers.ErrorResponse "Not the rating user"
// @Failure     404  {object} handlers.ErrorResponse "Rating not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /ratings/{id} [put]
func (h *Handlers) UpdateRating(c *gin.Context) {
	ident, authed := identity(c)
	if !authed {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	id, valid := pathID(c)
	if !valid {
		return
	}

	var req UpdateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	if err := h.ratingSvc.Update(c.Request.Context(), ident, id, req.RatingValue); err != nil {
		switch {
		case errors.Is(err, services.ErrRatingNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "rating not found")
		case errors.Is(err, services.ErrForbidden):
			fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, gin.H{"message": "Rating modified", "id": id})
}

// DeleteRating godoc
// @ID          deleteRating
// @Summary     Delete a rating
// @Description Removes a rating. Only the rating user or an admin may delete it.
// @Tags        Ratings
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  int  true  "Rating ID"
//
// @Success     200  {object} handlers.MessageResponse
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure     403  {object} handlers.ErrorResponse "Not the rating user"
// @Failure     404  {object} handlers.ErrorResponse "Rating not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /ratings/{id} [delete]
func (h *Handlers) DeleteRating(c *gin.Context) {
	ident, authed := identity(c)
	if !authed {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	id, valid := pathID(c)
	if !valid {
		return
	}

	if err := h.ratingSvc.Delete(c.Request.Context(), ident, id); err != nil {
		switch {
		case errors.Is(err, services.ErrRatingNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "rating not found")
		case errors.Is(err, services.ErrForbidden):
			fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, gin.H{"message": "Rating deleted", "id": id})
}
