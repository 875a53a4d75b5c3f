// Media HTTP handlers.
//
// This file exposes REST endpoints for media items:
//   - GET    /media          (list, paginated, public)
//   - GET    /media/:id      (fetch one, public)
//   - POST   /media          (create with multipart upload, authenticated)
//   - PUT    /media/:id      (update metadata, owner or admin)
//   - DELETE /media/:id      (delete, owner or admin)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. It also hosts the Handlers
// struct, its constructor, and the request helpers shared by the other
// handler files in this package.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mediashare/go-media-backend/internal/authz"
	"github.com/mediashare/go-media-backend/internal/domain"
	"github.com/mediashare/go-media-backend/internal/http/middleware"
	"github.com/mediashare/go-media-backend/internal/services"
	"github.com/mediashare/go-media-backend/internal/upload"
	"github.com/mediashare/go-media-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// MediaService defines media item operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type MediaService interface {
	// Create stores a new media item owned by ownerID.
	Create(ctx context.Context, ownerID int64, in services.CreateMediaInput) (*domain.MediaItem, error)
	// List returns a page of media items and the total count.
	List(ctx context.Context, page, pageSize int) ([]domain.MediaItem, int64, error)
	// Get fetches one media item by id.
	Get(ctx context.Context, id int64) (*domain.MediaItem, error)
	// Update rewrites the mutable metadata of an item the identity may modify.
	Update(ctx context.Context, identity authz.Identity, id int64, in services.UpdateMediaInput) error
	// Delete removes an item the identity may modify.
	Delete(ctx context.Context, identity authz.Identity, id int64) error
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for auth, users, media items, and ratings.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	authSvc   AuthService
	userSvc   UserService
	mediaSvc  MediaService
	ratingSvc RatingService

	uploadDir string
	maxUpload int64
}

// New constructs and returns a Handlers instance bound to the given services.
// uploadDir is where multipart files land; maxUpload caps their size in bytes
// (<= 0 disables the cap).
func New(authSvc AuthService, userSvc UserService, mediaSvc MediaService, ratingSvc RatingService, uploadDir string, maxUpload int64) *Handlers {
	return &Handlers{
		authSvc:   authSvc,
		userSvc:   userSvc,
		mediaSvc:  mediaSvc,
		ratingSvc: ratingSvc,
		uploadDir: uploadDir,
		maxUpload: maxUpload,
	}
}

//
// Helpers
//

// identity extracts the verified identity placed in the context by the auth
// middleware. ok is false on routes that skipped the gate.
func identity(c *gin.Context) (authz.Identity, bool) {
	return middleware.IdentityFrom(c)
}

// pathID parses the :id route parameter. A non-numeric or non-positive value
// behaves like a missing resource: the row it names cannot exist.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "resource not found")
		return 0, false
	}
	return id, true
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// DTOs
//

// UpdateMediaRequest is the JSON payload for updating a media item's metadata.
type UpdateMediaRequest struct {
	// Title is the display name of the item (3-50 chars).
	Title string `json:"title" binding:"required,min=3,max=50" example:"Sunset over the bay"`
	// Description is optional free text (up to 255 chars).
	Description string `json:"description" binding:"max=255" example:"Taken from the pier"`
}

func (r *UpdateMediaRequest) trim() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListMediaResponse wraps a page of media items and pagination information.
type ListMediaResponse struct {
	Items      []domain.MediaItem `json:"items"`
	Pagination Pagination         `json:"pagination"`
}

//
// Handlers
//

// ListMedia godoc
// @ID          listMedia
// @Summary     List media items (paginated)
// @Description Returns a page of media items, newest first. Public endpoint.
// @Tags        Media
// @Produce     json
//
// @Param       page       query  int  false "Page number"    minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page" minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListMediaResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /media [get]
func (h *Handlers) ListMedia(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.mediaSvc.List(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListMediaResponse{
		Items: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetMedia godoc
// @ID          getMedia
// @Summary     Fetch a media item
// @Description Returns one media item by id. Public endpoint.
// @Tags        Media
// @Produce     json
//
// @Param       id  path  int  true  "Media item ID"  example(42)
//
// @Success     200  {object} domain.MediaItem
// @Failure     404  {object} handlers.ErrorResponse "Media item not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /media/{id} [get]
func (h *Handlers) GetMedia(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	m, err := h.mediaSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrMediaNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "media item not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, m)
}

// CreateMedia godoc
// @ID          createMedia
// @Summary     Upload a new media item
// @Description Stores the multipart file and creates a media item owned by the caller. Only image and video files are accepted.
// @Tags        Media
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
//
// @Param       file         formData  file    true  "Image or video file"
// @Param       title        formData  string  true  "Title (3-50 chars)"
// @Param       description  formData  string  false "Description (up to 255 chars)"
//
// @Success     201  {object} handlers.MessageResponse
// @Failure     400  {object} handlers.ErrorResponse "Validation or file-type failure"
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /media [post]
func (h *Handlers) CreateMedia(c *gin.Context) {
	ident, authed := identity(c)
	if !authed {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	description := strings.TrimSpace(c.PostForm("description"))
	var fields []FieldError
	if n := len(title); n < 3 || n > 50 {
		fields = append(fields, FieldError{Field: "title", Message: "title must be between 3 and 50 characters"})
	}
	if len(description) > 255 {
		fields = append(fields, FieldError{Field: "description", Message: "description must be at most 255 characters"})
	}
	if len(fields) > 0 {
		failFields(c, http.StatusBadRequest, ErrCodeValidationFailed, "Validation failed", fields)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "a media file is required")
		return
	}

	meta, err := upload.SaveFile(fh, h.uploadDir, h.maxUpload)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrUnsupportedType):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, upload.ErrUnsupportedType.Error())
		case errors.Is(err, upload.ErrTooLarge):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, upload.ErrTooLarge.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	m, err := h.mediaSvc.Create(c.Request.Context(), ident.UserID, services.CreateMediaInput{
		Title:       title,
		Description: description,
		Filename:    meta.Filename,
		Filesize:    meta.Size,
		MediaType:   meta.MediaType,
	})
	if err != nil {
		// The row never landed; don't leave the file behind.
		_ = upload.Remove(h.uploadDir, meta.Filename)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusCreated, gin.H{"message": "Item added", "id": m.ID})
}

// UpdateMedia godoc
// @ID          updateMedia
// @Summary     Update a media item
// @Description Rewrites title and description. Only the owner or an admin may modify an item.
// @Tags        Media
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  int                          true  "Media item ID"
// @Param       body  body  handlers.UpdateMediaRequest  true  "Updated metadata"
//
// @Success     200  {object} handlers.MessageResponse
// @Failure     400  {object} handlers.ErrorResponse "Validation failure"
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure     403  {object} handlers.ErrorResponse "Not the owner"
// @Failure     404  {object} handlers.ErrorResponse "Media item not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /media/{id} [put]
func (h *Handlers) UpdateMedia(c *gin.Context) {
	ident, authed := identity(c)
	if !authed {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	id, valid := pathID(c)
	if !valid {
		return
	}

	var req UpdateMediaRequest
	if !bindTrimmed(c, &req) {
		return
	}

	err := h.mediaSvc.Update(c.Request.Context(), ident, id, services.UpdateMediaInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMediaNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "media item not found")
		case errors.Is(err, services.ErrForbidden):
			fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, gin.H{"message": "Item modified", "id": id})
}

// DeleteMedia godoc
// @ID          deleteMedia
// @Summary     Delete a media item
// @Description Removes an item. Only the owner or an admin may delete it.
// @Tags        Media
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  int  true  "Media item ID"
//
// @Success     200  {object} handlers.MessageResponse
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure     403  {object} handlers.ErrorResponse "Not the owner"
// @Failure     404  {object} handlers.ErrorResponse "Media item not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /media/{id} [delete]
func (h *Handlers) DeleteMedia(c *gin.Context) {
	ident, authed := identity(c)
	if !authed {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	id, valid := pathID(c)
	if !valid {
		return
	}

	if err := h.mediaSvc.Delete(c.Request.Context(), ident, id); err != nil {
		switch {
		case errors.Is(err, services.ErrMediaNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "media item not found")
		case errors.Is(err, services.ErrForbidden):
			fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, gin.H{"message": "Item deleted", "id": id})
}
