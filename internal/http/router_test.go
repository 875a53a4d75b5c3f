package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mediashare/go-media-backend/internal/auth"
	"github.com/mediashare/go-media-backend/internal/config"
	"github.com/mediashare/go-media-backend/internal/repo"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := filepath.Join(t.TempDir(), "router_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	cfg := config.Config{
		APIBasePath:    "/api/v1",
		JWTSecret:      "router-test-secret",
		JWTExpiry:      time.Hour,
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 1 << 20,
		RateRPS:        1000,
		RateBurst:      1000,
	}
	cfg.OTEL.ServiceName = "router-test"

	r := gin.New()
	RegisterRoutes(r, db, auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry), cfg)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(b)
	} else {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
	return out
}

// registerAndLogin creates an account through the public API and returns
// (userID, token).
func registerAndLogin(t *testing.T, r *gin.Engine, username string) (int64, string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/users", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "s3cretpass",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", username, w.Code, w.Body.String())
	}
	id := int64(decode(t, w)["id"].(float64))

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": username,
		"password": "s3cretpass",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, w.Code, w.Body.String())
	}
	tok, _ := decode(t, w)["token"].(string)
	if tok == "" {
		t.Fatalf("login %s: empty token", username)
	}
	return id, tok
}

// uploadMedia posts a multipart item and returns its id.
func uploadMedia(t *testing.T, r *gin.Engine, token, title string) int64 {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", title)
	_ = mw.WriteField("description", "uploaded in a test")
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="pic.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write([]byte("png-bytes"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: status %d body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["message"] != "Item added" {
		t.Fatalf("unexpected upload body: %v", body)
	}
	return int64(body["id"].(float64))
}

func TestRouter_HealthAndFallbacks(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/no/such/route", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("no route: %d", w.Code)
	}
	if body := decode(t, w); body["code"] != "not_found" {
		t.Fatalf("no route body: %v", body)
	}

	w = doJSON(t, r, http.MethodDelete, "/health", "", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("no method: %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: %d", w.Code)
	}
}

func TestRouter_RequestIDPropagation(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/health", "", nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a generated X-Request-ID header")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-keep-me")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "req-keep-me" {
		t.Fatalf("expected caller request id echoed, got %q", got)
	}
}

func TestRouter_RegisterValidationAndMe(t *testing.T) {
	r := newTestServer(t)

	// Two invalid fields produce exactly two field errors.
	w := doJSON(t, r, http.MethodPost, "/api/v1/users", "", gin.H{
		"username": "ab",
		"email":    "not-an-email",
		"password": "s3cretpass",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid register: %d body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["code"] != "validation_failed" {
		t.Fatalf("expected validation_failed, got %v", body)
	}
	inner, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("missing nested error object: %v", body)
	}
	if inner["status"] != float64(http.StatusBadRequest) {
		t.Fatalf("nested status wrong: %v", inner)
	}
	if fields, _ := inner["errors"].([]any); len(fields) != 2 {
		t.Fatalf("expected 2 field errors, got %v", inner["errors"])
	}

	id, tok := registerAndLogin(t, r, "alice")

	// Me round-trips the account and never leaks the password hash.
	w = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d body %s", w.Code, w.Body.String())
	}
	me := decode(t, w)
	if int64(me["user_id"].(float64)) != id || me["username"] != "alice" {
		t.Fatalf("unexpected me: %v", me)
	}
	if strings.Contains(strings.ToLower(w.Body.String()), "password") {
		t.Fatalf("password field leaked: %s", w.Body.String())
	}

	// Fetching by id through the public route must not leak it either.
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", id), "", nil)
	if w.Code != http.StatusOK || strings.Contains(strings.ToLower(w.Body.String()), "password") {
		t.Fatalf("public user fetch: %d %s", w.Code, w.Body.String())
	}

	// Without a token the gate answers a bare 401.
	w = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me without token: %d", w.Code)
	}

	// Registering the same username again is rejected up front.
	w = doJSON(t, r, http.MethodPost, "/api/v1/users", "", gin.H{
		"username": "alice",
		"email":    "other@example.com",
		"password": "s3cretpass",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: %d body %s", w.Code, w.Body.String())
	}
}

func TestRouter_MeWithTokenOfDeletedAccount(t *testing.T) {
	r := newTestServer(t)

	id, tok := registerAndLogin(t, r, "ephemeral")

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", id), tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("self delete: %d body %s", w.Code, w.Body.String())
	}

	// The token is still cryptographically valid, but the account behind it
	// is gone, so it no longer authenticates.
	w = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", tok, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me after delete: %d body %s", w.Code, w.Body.String())
	}
	if body := decode(t, w); body["code"] != "unauthorized" {
		t.Fatalf("me after delete body: %v", body)
	}
}

func TestRouter_MediaOwnershipFlow(t *testing.T) {
	r := newTestServer(t)
	_, ownerTok := registerAndLogin(t, r, "owner")
	_, strangerTok := registerAndLogin(t, r, "stranger")

	mediaID := uploadMedia(t, r, ownerTok, "Sunset")

	// Public read works without a token.
	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/media/%d", mediaID), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get media: %d", w.Code)
	}

	// A malformed id names a row that cannot exist.
	if w := doJSON(t, r, http.MethodGet, "/api/v1/media/abc", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("get media with bad id: %d", w.Code)
	}

	path := fmt.Sprintf("/api/v1/media/%d", mediaID)
	update := gin.H{"title": "Sunrise", "description": "changed"}

	// A stranger may not modify someone else's item.
	if w := doJSON(t, r, http.MethodPut, path, strangerTok, update); w.Code != http.StatusForbidden {
		t.Fatalf("stranger update: %d body %s", w.Code, w.Body.String())
	}
	// The owner may.
	w = doJSON(t, r, http.MethodPut, path, ownerTok, update)
	if w.Code != http.StatusOK {
		t.Fatalf("owner update: %d body %s", w.Code, w.Body.String())
	}
	if body := decode(t, w); body["message"] != "Item modified" {
		t.Fatalf("unexpected update body: %v", body)
	}

	// A missing id answers 404 even to a non-owner.
	if w := doJSON(t, r, http.MethodPut, "/api/v1/media/99999", strangerTok, update); w.Code != http.StatusNotFound {
		t.Fatalf("update missing: %d", w.Code)
	}

	// Delete is once-only.
	if w := doJSON(t, r, http.MethodDelete, path, strangerTok, nil); w.Code != http.StatusForbidden {
		t.Fatalf("stranger delete: %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, path, ownerTok, nil); w.Code != http.StatusOK {
		t.Fatalf("owner delete: %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, path, ownerTok, nil); w.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d", w.Code)
	}
}

func TestRouter_MediaUploadRejectsNonMediaFile(t *testing.T) {
	r := newTestServer(t)
	_, tok := registerAndLogin(t, r, "owner")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "A script")
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="run.sh"`)
	h.Set("Content-Type", "application/x-sh")
	part, _ := mw.CreatePart(h)
	_, _ = part.Write([]byte("#!/bin/sh"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-media upload, got %d body %s", w.Code, w.Body.String())
	}
}

func TestRouter_RatingScenario(t *testing.T) {
	r := newTestServer(t)
	ownerID, ownerTok := registerAndLogin(t, r, "owner")
	raterID, raterTok := registerAndLogin(t, r, "rater")
	mediaID := uploadMedia(t, r, ownerTok, "Sunset")

	payload := gin.H{"rating_value": 5, "media_id": mediaID, "user_id": raterID}

	w := doJSON(t, r, http.MethodPost, "/api/v1/ratings", raterTok, payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("create rating: %d body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["message"] != "Rating added" || body["ratingId"] == nil {
		t.Fatalf("unexpected rating body: %v", body)
	}

	// The identical call again trips the unique pair index.
	if w := doJSON(t, r, http.MethodPost, "/api/v1/ratings", raterTok, payload); w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate rating: %d body %s", w.Code, w.Body.String())
	}

	// A dangling media reference is a 400, not a 500.
	bad := gin.H{"rating_value": 3, "media_id": 99999, "user_id": raterID}
	w = doJSON(t, r, http.MethodPost, "/api/v1/ratings", raterTok, bad)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid media ref: %d", w.Code)
	}
	if b := decode(t, w); b["code"] != "invalid_reference" {
		t.Fatalf("invalid ref body: %v", b)
	}

	// Out-of-range value is a validation failure.
	if w := doJSON(t, r, http.MethodPost, "/api/v1/ratings", raterTok, gin.H{"rating_value": 6, "media_id": mediaID, "user_id": raterID}); w.Code != http.StatusBadRequest {
		t.Fatalf("value 6: %d", w.Code)
	}

	// Unauthenticated writes are turned away at the gate.
	if w := doJSON(t, r, http.MethodPost, "/api/v1/ratings", "", payload); w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated rating: %d", w.Code)
	}

	// Scoped reads: the media has ratings, the owner has left none.
	if w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/ratings/media/%d", mediaID), "", nil); w.Code != http.StatusOK {
		t.Fatalf("ratings by media: %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/ratings/user/%d", ownerID), "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("ratings by user with none: %d", w.Code)
	}
}

func TestRouter_UserUpdateConflict(t *testing.T) {
	r := newTestServer(t)
	aliceID, aliceTok := registerAndLogin(t, r, "alice")
	_, _ = registerAndLogin(t, r, "bob")

	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/users/%d", aliceID), aliceTok, gin.H{
		"username": "bob",
		"email":    "alice@example.com",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on username collision, got %d body %s", w.Code, w.Body.String())
	}
	if body := decode(t, w); body["code"] != "conflict" {
		t.Fatalf("conflict body: %v", body)
	}

	// Renaming to something free succeeds.
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/users/%d", aliceID), aliceTok, gin.H{
		"username": "alicia",
		"email":    "alicia@example.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("rename: %d body %s", w.Code, w.Body.String())
	}
	if body := decode(t, w); body["message"] != "User modified" {
		t.Fatalf("unexpected rename body: %v", body)
	}
}

func TestRouter_StaticUploadsServed(t *testing.T) {
	r := newTestServer(t)
	_, tok := registerAndLogin(t, r, "owner")
	mediaID := uploadMedia(t, r, tok, "Sunset")

	// Look up the stored filename through the public read.
	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/media/%d", mediaID), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get media: %d", w.Code)
	}
	filename, _ := decode(t, w)["filename"].(string)
	if filename == "" {
		t.Fatalf("media has no filename: %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/uploads/"+filename, "", nil)
	if w.Code != http.StatusOK || w.Body.String() != "png-bytes" {
		t.Fatalf("static file: %d %q", w.Code, w.Body.String())
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	g := groupWithPrefix(r, "")
	g.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("empty prefix group: %d", w.Code)
	}
}
