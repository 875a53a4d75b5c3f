// Auth HTTP handlers.
//
// This file exposes the authentication endpoints:
//   - POST /auth/login  (exchange credentials for a bearer token)
//   - GET  /auth/me     (return the account behind the presented token)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mediashare/go-media-backend/internal/domain"
	"github.com/mediashare/go-media-backend/internal/services"
)

// AuthService defines authentication operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AuthService interface {
	// Login verifies credentials and returns the account with a signed token.
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
	// Me re-fetches the account behind a verified identity.
	Me(ctx context.Context, userID int64) (*domain.User, error)
}

// LoginRequest is the JSON payload for exchanging credentials for a token.
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"correct horse battery"`
}

// LoginResponse carries the authenticated account and its bearer token.
type LoginResponse struct {
	UserID      int64     `json:"user_id" example:"7"`
	Username    string    `json:"username" example:"alice"`
	Email       string    `json:"email" example:"alice@example.com"`
	UserLevelID int       `json:"user_level_id" example:"1"`
	CreatedAt   time.Time `json:"created_at"`
	Token       string    `json:"token"`
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies username and password and returns the account together with a signed bearer token.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
//
// @Success     200  {object} handlers.LoginResponse
// @Failure     400  {object} handlers.ErrorResponse "Missing fields"
// @Failure     401  {object} handlers.ErrorResponse "Bad credentials"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	u, token, err := h.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid username or password")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, LoginResponse{
		UserID:      u.ID,
		Username:    u.Username,
		Email:       u.Email,
		UserLevelID: u.UserLevelID,
		CreatedAt:   u.CreatedAt,
		Token:       token,
	})
}

// Me godoc
// @ID          me
// @Summary     Current account
// @Description Returns the account behind the presented bearer token.
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object} domain.User
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid token, or the account is gone"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /auth/me [get]
func (h *Handlers) Me(c *gin.Context) {
	ident, authed := identity(c)
	if !authed {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	u, err := h.authSvc.Me(c.Request.Context(), ident.UserID)
	if err != nil {
		// A token whose account was deleted is no longer a valid credential.
		if errors.Is(err, services.ErrUserNotFound) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "account no longer exists")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, u)
}
