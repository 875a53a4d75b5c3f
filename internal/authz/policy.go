// Package authz implements the access-control policy shared by the media,
// rating, and user resources: the owner of a resource may mutate it, an
// administrator may mutate any resource, everyone else is denied.
//
// The policy is a pure function over an Identity and a resource owner id.
// Callers must pass the owner id fetched fresh from the database immediately
// before deciding, never a cached or client-supplied value, so a requester
// cannot spoof ownership through the payload.
package authz

import (
	"fmt"

	"github.com/mediashare/go-media-backend/internal/domain"
)

// Identity is the authenticated caller for the duration of one request,
// decoded from a verified bearer token by the auth middleware. It is never
// persisted.
type Identity struct {
	UserID int64
	Level  int
}

// IsAdmin reports whether the identity holds the admin privilege level.
func (id Identity) IsAdmin() bool { return id.Level == domain.UserLevelAdmin }

// Decision is the result of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Permit reports whether the decision allows the mutation.
func (d Decision) Permit() bool { return d.Allowed }

// Authorize decides whether identity may modify or delete a resource owned by
// ownerID. Admins are always permitted; owners are permitted on their own
// resources; everyone else is denied with a reason naming the resource kind
// (e.g. "media item", "rating", "account").
//
// The function is pure and safe for concurrent use.
func Authorize(identity Identity, ownerID int64, resource string) Decision {
	if identity.IsAdmin() {
		return Decision{Allowed: true}
	}
	if identity.UserID == ownerID {
		return Decision{Allowed: true}
	}
	return Decision{
		Allowed: false,
		Reason:  fmt.Sprintf("you can only modify or delete your own %s", resource),
	}
}
