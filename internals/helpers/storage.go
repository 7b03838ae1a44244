package helper

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

// SanitizeFilename keeps letters, digits, dot, dash, underscore.
func SanitizeFilename(filename string) string {
	return unsafeFilenameChars.ReplaceAllString(filename, "_")
}

// GenerateUniqueFilename builds <date>-<uuid>-<safe original name>.
func GenerateUniqueFilename(originalFilename string) string {
	timestamp := time.Now().Format("20060102")
	return fmt.Sprintf("%s-%s-%s", timestamp, uuid.New().String(), SanitizeFilename(originalFilename))
}

// EnsureDir creates dir (and parents) when missing.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// SaveUploadedFile writes a multipart upload under root/subdir with a unique
// name and returns the path relative to root (the form stored in the DB).
func SaveUploadedFile(fh *multipart.FileHeader, root, subdir string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(root, subdir)
	if err := EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := GenerateUniqueFilename(fh.Filename)
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}

	if subdir == "" {
		return name, nil
	}
	return filepath.ToSlash(filepath.Join(subdir, name)), nil
}
