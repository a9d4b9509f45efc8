package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"surgical-records/internal/domain/records"
)

var (
	ErrEmptyPath = errors.New("file slot: empty path")
)

// Slot persiste el blob en un único archivo. Write reemplaza el archivo
// completo vía archivo temporal + rename, así un corte nunca deja medio blob.
type Slot struct {
	path string
}

func NewSlot(path string) (*Slot, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("file slot: create dir: %w", err)
	}
	return &Slot{path: path}, nil
}

var _ records.Medium = (*Slot)(nil)

func (s *Slot) Path() string { return s.path }

func (s *Slot) Read(ctx context.Context) ([]byte, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file slot: read: %w", err)
	}
	return b, nil
}

func (s *Slot) Write(ctx context.Context, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("file slot: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// si el rename ya ocurrió esto falla en silencio
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(blob); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file slot: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file slot: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file slot: close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("file slot: chmod: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("file slot: rename: %w", err)
	}
	return nil
}
