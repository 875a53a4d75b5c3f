package upload

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fileHeader builds a real *multipart.FileHeader by round-tripping a request
// through the stdlib parser, so the header carries the declared content type.
func fileHeader(t *testing.T, name, contentType string, body []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="image"; filename="` + name + `"`}
	h["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(body); err != nil {
		t.Fatalf("write part: %v", err)
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/items", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse form: %v", err)
	}
	return req.MultipartForm.File["image"][0]
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()
	fh := fileHeader(t, "cat.JPG", "image/jpeg", []byte("not-really-a-jpeg"))

	meta, err := SaveFile(fh, dir, 1<<20)
	if err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if meta.MediaType != "image/jpeg" || meta.Size != int64(len("not-really-a-jpeg")) {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	if !strings.HasSuffix(meta.Filename, ".jpg") {
		t.Fatalf("extension not preserved lowercase: %q", meta.Filename)
	}
	if meta.Filename == "cat.JPG" {
		t.Fatal("stored name must not be the client-supplied name")
	}

	b, err := os.ReadFile(filepath.Join(dir, meta.Filename))
	if err != nil || string(b) != "not-really-a-jpeg" {
		t.Fatalf("stored content mismatch: %q, %v", b, err)
	}
}

func TestSaveFile_RejectsUnsupportedType(t *testing.T) {
	fh := fileHeader(t, "run.sh", "application/x-sh", []byte("#!/bin/sh"))
	if _, err := SaveFile(fh, t.TempDir(), 0); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("SaveFile = %v; want ErrUnsupportedType", err)
	}
}

func TestSaveFile_RejectsOversized(t *testing.T) {
	fh := fileHeader(t, "clip.mp4", "video/mp4", bytes.Repeat([]byte("x"), 64))
	if _, err := SaveFile(fh, t.TempDir(), 16); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("SaveFile = %v; want ErrTooLarge", err)
	}
}

func TestAllowed(t *testing.T) {
	cases := map[string]bool{
		"image/png":        true,
		"image/jpeg":       true,
		"video/mp4":        true,
		"application/pdf":  false,
		"text/html":        false,
		"":                 false,
		"imagery/whatever": false,
	}
	for ct, want := range cases {
		if got := Allowed(ct); got != want {
			t.Errorf("Allowed(%q) = %v; want %v", ct, got, want)
		}
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Remove(dir, "a.png"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	// Missing files and empty names are fine.
	if err := Remove(dir, "a.png"); err != nil {
		t.Fatalf("Remove missing: %v", err)
	}
	if err := Remove(dir, ""); err != nil {
		t.Fatalf("Remove empty: %v", err)
	}
	// Path components in the name must not escape the directory.
	if err := Remove(dir, "../escape.png"); err != nil {
		t.Fatalf("Remove traversal: %v", err)
	}
}
