package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mediashare/go-media-backend/internal/auth"
	"github.com/mediashare/go-media-backend/internal/domain"
)

func TestAuthService_Login(t *testing.T) {
	db := newServiceDB(t)
	users := &UserService{DB: db}
	svc := &AuthService{DB: db, Tokens: auth.NewTokenManager("test-secret", time.Hour)}

	if _, err := users.Register(context.Background(), RegisterInput{Username: "alice", Email: "alice@example.com", Password: "s3cretpass"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	u, tok, err := svc.Login(context.Background(), "alice", "s3cretpass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Username != "alice" || tok == "" {
		t.Fatalf("unexpected login result: user=%+v token=%q", u, tok)
	}

	// The token round-trips back to the same identity.
	id, err := svc.Tokens.Verify(tok)
	if err != nil || id.UserID != u.ID || id.Level != domain.UserLevelStandard {
		t.Fatalf("Verify = %+v, %v", id, err)
	}

	// Unknown account and wrong password collapse into one error so the
	// response cannot be used to probe for usernames.
	if _, _, err := svc.Login(context.Background(), "alice", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password = %v; want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody", "s3cretpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user = %v; want ErrInvalidCredentials", err)
	}
}

func TestAuthService_Me(t *testing.T) {
	db := newServiceDB(t)
	svc := &AuthService{DB: db, Tokens: auth.NewTokenManager("test-secret", time.Hour)}
	u := mustUser(t, db, "alice", domain.UserLevelStandard)

	got, err := svc.Me(context.Background(), u.ID)
	if err != nil || got.Username != "alice" {
		t.Fatalf("Me = %+v, %v", got, err)
	}
	if _, err := svc.Me(context.Background(), 999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Me(999) = %v; want ErrUserNotFound", err)
	}
}
