package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ImageFileName builds a unique stored filename for an uploaded image,
// preserving the original extension.
func ImageFileName(original string) string {
	ext := filepath.Ext(original)
	return fmt.Sprintf("%s%s", uuid.NewString(), ext)
}

// RemoveImageFiles deletes stored image assets from disk. Missing files are
// ignored; the database rows are the source of truth for what should exist.
func RemoveImageFiles(uploadDir string, paths []string) error {
	for _, p := range paths {
		full := filepath.Join(uploadDir, filepath.Base(p))
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove image %s: %w", p, err)
		}
	}
	return nil
}
