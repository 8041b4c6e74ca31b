// Package staging holds uploaded report bytes on local disk between the
// multipart request and the remote upload. Staged files are short-lived and
// removed once the processing action completes.
package staging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Stager writes incoming files into a staging directory.
type Stager struct {
	dir string
}

// NewStager creates the staging directory if needed.
func NewStager(dir string) (*Stager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging dir: %w", err)
	}
	return &Stager{dir: dir}, nil
}

// Save copies r into a uniquely named file and returns its absolute path.
func (s *Stager) Save(r io.Reader, ext string) (string, error) {
	name := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create staged file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(path) // cleanup on error
		return "", fmt.Errorf("failed to write staged file: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// Remove deletes a staged file. Missing files are not an error.
func (s *Stager) Remove(path string) {
	os.Remove(path)
}
