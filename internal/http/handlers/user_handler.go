// User HTTP handlers.
//
// This file exposes REST endpoints for user accounts:
//   - GET    /users       (list, paginated, public)
//   - GET    /users/:id   (fetch one, public)
//   - POST   /users       (register; also mounted as POST /auth/register)
//   - PUT    /users/:id   (update, self or admin; 409 on username/email collision)
//   - DELETE /users/:id   (delete, self or admin)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. Password hashes never leave the
// service layer serialized; the domain model excludes them from JSON.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mediashare/go-media-backend/internal/authz"
	"github.com/mediashare/go-media-backend/internal/domain"
	"github.com/mediashare/go-media-backend/internal/services"
)

// UserService defines user account operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type UserService interface {
	// Register creates a standard-level account with a hashed password.
	Register(ctx context.Context, in services.RegisterInput) (*domain.User, error)
	// List returns a page of accounts and the total count.
	List(ctx context.Context, page, pageSize int) ([]domain.User, int64, error)
	// Get fetches one account by id.
	Get(ctx context.Context, id int64) (*domain.User, error)
	// Update rewrites an account the identity may modify.
	Update(ctx context.Context, identity authz.Identity, id int64, in services.UpdateUserInput) error
	// Delete removes an account the identity may modify.
	Delete(ctx context.Context, identity authz.Identity, id int64) error
}

//
// DTOs
//

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	// Username is 3-20 letters and digits.
	Username string `json:"username" binding:"required,alphanum,min=3,max=20" example:"alice"`
	// Password is at least 8 characters; it is stored only as a bcrypt hash.
	Password string `json:"password" binding:"required,min=8" example:"correct horse battery"`
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
}

func (r *RegisterRequest) trim() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
}

// UpdateUserRequest is the JSON payload for updating an account. Password is
// optional; when present it replaces the stored hash.
type UpdateUserRequest struct {
	Username string `json:"username" binding:"required,alphanum,min=3,max=20" example:"alice"`
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"omitempty,min=8" example:"new secret phrase"`
}

func (r *UpdateUserRequest) trim() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
}

// ListUsersResponse wraps a page of accounts and pagination information.
type ListUsersResponse struct {
	Users      []domain.User `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

//
// Handlers
//

// RegisterUser godoc
// @ID          registerUser
// @Summary     Register an account
// @Description Creates a standard-level account. The password is bcrypt-hashed before storage and never serialized.
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true  "Account payload"
//
// @Success     201  {object} handlers.MessageResponse
// @Failure     400  {object} handlers.ErrorResponse "Validation failure or duplicate username/email"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users [post]
func (h *Handlers) RegisterUser(c *gin.Context) {
	var req RegisterRequest
	if !bindTrimmed(c, &req) {
		return
	}

	u, err := h.userSvc.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicateUser) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "User not added: User already exists.")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusCreated, gin.H{"message": "User added", "id": u.ID})
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List accounts (paginated)
// @Description Returns a page of accounts. Password hashes are never included.
// @Tags        Users
// @Produce     json
//
// @Param       page       query  int  false "Page number"    minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page" minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListUsersResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	page, pageSize := clampPagination(c)

	users, total, err := h.userSvc.List(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListUsersResponse{
		Users: users,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetUser godoc
// @ID          getUser
// @Summary     Fetch an account
// @Description Returns one account by id. The password hash is never included.
// @Tags        Users
// @Produce     json
//
// @Param       id  path  int  true  "User ID"  example(7)
//
// @Success     200  {object} domain.User
// @Failure     404  {object} handlers.ErrorResponse "User not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/{id} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}

	u, err := h.userSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, u)
}

// UpdateUser godoc
// @ID          updateUser
// @Summary     Update an account
// @Description Rewrites username, email, and optionally the password. Only the account owner or an admin may modify it. A username or email already held by another account answers 409.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  int                         true  "User ID"
// @Param       body  body  handlers.UpdateUserRequest  true  "Updated account payload"
//
// @Success     200  {object} handlers.MessageResponse
// @Failure     400  {object} handlers.ErrorResponse "Validation failure"
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure     403  {object} handlers.ErrorResponse "Not the account owner"
// @Failure     404  {object} handlers.ErrorResponse "User not found"
// @Failure     409  {object} handlers.ErrorResponse "Username or email already taken"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/{id} [put]
func (h *Handlers) UpdateUser(c *gin.Context) {
	ident, authed := identity(c)
	if !authed {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	id, valid := pathID(c)
	if !valid {
		return
	}

	var req UpdateUserRequest
	if !bindTrimmed(c, &req) {
		return
	}

	err := h.userSvc.Update(c.Request.Context(), ident, id, services.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		case errors.Is(err, services.ErrForbidden):
			fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
		case errors.Is(err, services.ErrUserConflict):
			fail(c, http.StatusConflict, ErrCodeConflict, "username or email already taken")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, gin.H{"message": "User modified", "id": id})
}

// DeleteUser godoc
// @ID          deleteUser
// @Summary     Delete an account
// @Description Removes an account. Only the account owner or an admin may delete it.
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  int  true  "User ID"
//
// @Success     200  {object} handlers.MessageResponse
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure     403  {object} handlers.ErrorResponse "Not the account owner"
// @Failure     404  {object} handlers.ErrorResponse "User not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/{id} [delete]
func (h *Handlers) DeleteUser(c *gin.Context) {
	ident, authed := identity(c)
	if !authed {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	id, valid := pathID(c)
	if !valid {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), ident, id); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		case errors.Is(err, services.ErrForbidden):
			fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, gin.H{"message": "User deleted", "id": id})
}
