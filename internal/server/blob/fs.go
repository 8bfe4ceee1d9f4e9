package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/namaniisc/CloudDrop/internal/common"
)

// FSStore stores payloads on the local filesystem under a root directory,
// partitioned by upload date.
type FSStore struct {
	root string
}

// NewFSStore creates the root directory if needed and returns a store.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob root init error: %w", err)
	}
	return &FSStore{root: root}, nil
}

// Save streams the payload to a new file and returns its storage location.
// The partially written file is removed on error.
func (s *FSStore) Save(ctx context.Context, originalName string, r io.Reader) (*SavedObject, error) {
	name := storageFilename(originalName)
	rel := filepath.Join(filepath.FromSlash(datePrefix(time.Now())), name)
	full := filepath.Join(s.root, rel)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("blob dir error: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return nil, fmt.Errorf("blob create error: %w", err)
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(full)
		return nil, fmt.Errorf("blob write error: %w", err)
	}

	return &SavedObject{Filename: name, Path: filepath.ToSlash(rel), Size: n}, nil
}

// Open returns a reader over the stored payload.
func (s *FSStore) Open(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	// storage paths are server-generated, but never follow one outside root
	clean := filepath.Clean(filepath.FromSlash(storagePath))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, common.ErrorNotFound
	}

	f, err := os.Open(filepath.Join(s.root, clean))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("blob open error: %w", err)
	}
	return f, nil
}
