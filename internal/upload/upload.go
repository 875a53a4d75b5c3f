// Package upload stores multipart file uploads on local disk. Only image and
// video content is accepted; stored filenames are random so a client-supplied
// name can never escape the upload directory or clobber another file.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrUnsupportedType is returned for anything that is not an image or a
	// video, mirroring the content filter of the public API contract.
	ErrUnsupportedType = errors.New("only image and video files are allowed")

	// ErrTooLarge is returned when the upload exceeds the configured cap.
	ErrTooLarge = errors.New("file exceeds the maximum allowed size")
)

// FileMeta describes a stored upload as persisted alongside a media item.
type FileMeta struct {
	Filename  string
	Size      int64
	MediaType string
}

// Allowed reports whether contentType passes the image/video filter.
func Allowed(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "video/")
}

// SaveFile writes the uploaded file into dir under a fresh random name,
// preserving the original extension. It enforces the content-type filter and
// the size cap before touching the disk; maxBytes <= 0 disables the cap.
func SaveFile(fh *multipart.FileHeader, dir string, maxBytes int64) (FileMeta, error) {
	contentType := fh.Header.Get("Content-Type")
	if !Allowed(contentType) {
		return FileMeta{}, ErrUnsupportedType
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return FileMeta{}, ErrTooLarge
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return FileMeta{}, fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + sanitizeExt(fh.Filename)
	dst := filepath.Join(dir, name)

	src, err := fh.Open()
	if err != nil {
		return FileMeta{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return FileMeta{}, fmt.Errorf("create upload file: %w", err)
	}

	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return FileMeta{}, fmt.Errorf("write upload: %w", err)
	}

	return FileMeta{Filename: name, Size: n, MediaType: contentType}, nil
}

// Remove deletes a previously stored file. A missing file is not an error so
// cleanup after a failed create stays idempotent.
func Remove(dir, filename string) error {
	if filename == "" {
		return nil
	}
	err := os.Remove(filepath.Join(dir, filepath.Base(filename)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// sanitizeExt returns the lowercase extension of the original name, or empty
// when there is none or it looks suspicious.
func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}
