package pdf

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Resolver turns a stored, historically inconsistent image reference into a
// filesystem path. Stored data carries at least three conventions: bare
// filename, "./uploads/...", and "/uploads/subfolder/...". Resolution is
// best-effort: when nothing exists the most likely candidate is returned so
// the caller can skip the element via an existence check instead of failing
// the render.
type Resolver struct {
	// BaseDir is the application root legacy absolute-ish refs are joined to.
	BaseDir string
	// UploadsDir is the storage root new refs are relative to.
	UploadsDir string
}

// Resolve applies the ordered conventions, first match wins. Resolving an
// already-correct absolute path returns it unchanged.
func (r Resolver) Resolve(ref string) string {
	if ref == "" {
		return ""
	}

	// 1. Drop any query string.
	stripped := ref
	if i := strings.IndexByte(stripped, '?'); i >= 0 {
		stripped = stripped[:i]
	}

	// 2. Absolute and present.
	if filepath.IsAbs(stripped) && FileExists(stripped) {
		return stripped
	}

	clean := strings.TrimPrefix(stripped, "./")
	clean = strings.TrimLeft(clean, "/\\")

	// 3. Relative to the app root (covers stored "uploads/..." refs).
	base := filepath.Join(r.BaseDir, clean)
	if FileExists(base) {
		return base
	}

	// 4. Relative to the uploads root (covers bare filenames and
	//    "signatures/x.png" style refs).
	if r.UploadsDir != "" {
		if withUploads := filepath.Join(r.UploadsDir, clean); FileExists(withUploads) {
			return withUploads
		}
	}

	log.Printf("[WARN] could not resolve stored path %q (tried %s)", ref, base)
	return base
}

func FileExists(p string) bool {
	if p == "" {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
