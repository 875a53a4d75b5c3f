// Package services defines the business logic for users, media items, and
// ratings. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages and HTTP status codes is performed at the handler
// layer, exactly once per request.
package services

import "errors"

var (
	// ErrInvalidCredentials is returned by login when the username is unknown
	// or the password does not match. The two cases are deliberately not
	// distinguished for the caller.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUserNotFound indicates that the requested user account does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrMediaNotFound indicates that the requested media item does not exist,
	// or disappeared between the ownership check and the mutation.
	ErrMediaNotFound = errors.New("media item not found")

	// ErrRatingNotFound indicates that the requested rating does not exist, or
	// that a by-user/by-media listing matched zero rows.
	ErrRatingNotFound = errors.New("rating not found")

	// ErrForbidden is returned when the access-control policy denies a
	// mutation. It is wrapped with the policy's reason, so callers should
	// match it with errors.Is.
	ErrForbidden = errors.New("forbidden")

	// ErrDuplicateUser is returned when registration collides with an existing
	// username or email.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrUserConflict is returned when a user update would take a username or
	// email that belongs to a different existing account.
	ErrUserConflict = errors.New("username or email is already taken")

	// ErrDuplicateRating is returned when the (user, media) pair has already
	// been rated; it surfaces from the database uniqueness constraint.
	ErrDuplicateRating = errors.New("rating already exists")

	// ErrInvalidMediaRef is returned when a rating references a media item
	// that does not exist.
	ErrInvalidMediaRef = errors.New("invalid media_id")

	// ErrInvalidUserRef is returned when a rating references a user that does
	// not exist.
	ErrInvalidUserRef = errors.New("invalid user_id")
)
