package images

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FSStorage stores image bytes on the local filesystem under
// dir/<gameID>/<slot>.png and serves them under urlPrefix. Writing the same
// slot twice overwrites the previous bytes.
type FSStorage struct {
	dir       string
	urlPrefix string
}

// NewFSStorage creates a filesystem storage rooted at dir. urlPrefix is the
// public path prefix the HTTP layer serves dir under (e.g. "/images").
func NewFSStorage(dir, urlPrefix string) *FSStorage {
	return &FSStorage{dir: dir, urlPrefix: urlPrefix}
}

// Store writes the bytes and returns the serving URL.
func (s *FSStorage) Store(_ context.Context, data []byte, gameID, slot string) (string, error) {
	gameDir := filepath.Join(s.dir, gameID)
	if err := os.MkdirAll(gameDir, 0o755); err != nil {
		return "", fmt.Errorf("creating image dir: %w", err)
	}

	name := slot + ".png"
	if err := os.WriteFile(filepath.Join(gameDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}

	return s.urlPrefix + "/" + gameID + "/" + name, nil
}
