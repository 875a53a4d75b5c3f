// Package auth provides credential primitives for the API: signed bearer
// tokens (JWT, HMAC-SHA256) carrying the caller's id and privilege level, and
// bcrypt password hashing. Token verification fails closed: any parse,
// signature, or expiry problem yields ErrInvalidToken.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mediashare/go-media-backend/internal/authz"
)

// ErrInvalidToken is returned when a presented credential is malformed,
// carries a bad signature, or is expired.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload issued at login. UserID and UserLevelID are the
// only fields the authorization layer reads; everything else is standard
// registered metadata (expiry, issued-at).
type Claims struct {
	UserID      int64 `json:"user_id"`
	UserLevelID int   `json:"user_level_id"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies bearer tokens with a server-held secret.
// It is immutable after construction and safe for concurrent use.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager constructs a TokenManager. TTL values <= 0 default to 24h.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given identity with the configured expiry.
func (m *TokenManager) Issue(identity authz.Identity) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:      identity.UserID,
		UserLevelID: identity.Level,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses and validates a token string and returns the embedded
// identity. Only HMAC-SHA256 signatures are accepted; anything else, or a
// token that fails signature/expiry validation, returns ErrInvalidToken.
func (m *TokenManager) Verify(tokenString string) (authz.Identity, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !tok.Valid {
		return authz.Identity{}, ErrInvalidToken
	}
	return authz.Identity{UserID: claims.UserID, Level: claims.UserLevelID}, nil
}
