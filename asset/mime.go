package asset

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

func acceptPrefix(prefix string) func(string) bool {
	return func(mt string) bool { return strings.HasPrefix(mt, prefix) }
}

func acceptExact(want string) func(string) bool {
	return func(mt string) bool { return mt == want }
}

// detectLocalMime sniffs a local file and rejects it when the detected type
// is not accepted for the project input type.
func detectLocalMime(path string, accept func(string) bool) (string, error) {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect mime type of %s: %w", path, err)
	}
	mt := m.String()
	if !accept(mt) {
		return "", fmt.Errorf("%w: %s detected as %s", ErrMimeType, path, mt)
	}
	return mt, nil
}
