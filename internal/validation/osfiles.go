package validation

import (
	"crypto/sha256"
	"fmt"
	"os"
)

// OSFileMetadata implements FileMetadata against the real filesystem.
type OSFileMetadata struct{}

func (OSFileMetadata) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileMetadata) ContentHash(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return fmt.Sprintf("%x", sum), nil
}
