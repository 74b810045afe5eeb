package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/imageio"
)

// FileLimits defines configurable bounds for input image files.
type FileLimits struct {
	MinBytes    int64
	MaxBytes    int64
	MinWidth    int
	MinHeight   int
	AllowedExts map[string]bool
}

// DefaultFileLimits returns the default input bounds.
func DefaultFileLimits() FileLimits {
	return FileLimits{
		MinBytes:  1024,
		MaxBytes:  50 * 1000 * 1000,
		MinWidth:  50,
		MinHeight: 50,
		AllowedExts: map[string]bool{
			".jpg":  true,
			".jpeg": true,
			".png":  true,
			".webp": true,
		},
	}
}

// FileValidator rejects structurally invalid images before any expensive
// processing happens. Checks run in a fixed order and the first failure
// short-circuits with a human-readable reason.
type FileValidator struct {
	limits FileLimits
}

// NewFileValidator creates a validator with default limits.
func NewFileValidator() *FileValidator {
	return &FileValidator{limits: DefaultFileLimits()}
}

// NewFileValidatorWithLimits creates a validator with custom limits.
func NewFileValidatorWithLimits(limits FileLimits) *FileValidator {
	return &FileValidator{limits: limits}
}

// Validate checks the file at path. It is a pure check: the decode it
// performs is discarded.
func (v *FileValidator) Validate(path string) (bool, string) {
	info, err := os.Stat(path)
	if err != nil {
		return false, "Missing"
	}
	if !info.Mode().IsRegular() {
		return false, "Not a file"
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !v.limits.AllowedExts[ext] {
		return false, fmt.Sprintf("Unsupported format: %s", ext)
	}

	if info.Size() < v.limits.MinBytes {
		return false, "File too small"
	}
	if info.Size() > v.limits.MaxBytes {
		return false, "File too large (>50MB)"
	}

	if hasTraversal(path) {
		return false, "Unsafe path (traversal)"
	}

	img, err := imageio.Load(path)
	if err != nil {
		return false, "Unreadable / corrupted image"
	}

	bounds := img.Bounds()
	if bounds.Dx() < v.limits.MinWidth || bounds.Dy() < v.limits.MinHeight {
		return false, "Image too small (<50px)"
	}

	return true, "OK"
}

// hasTraversal reports whether the path contains parent-directory segments.
// Absolute paths are allowed; only ".." segments are blocked.
func hasTraversal(path string) bool {
	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}
