// Package blob abstracts the binary payload storage backing CloudDrop.
// A backend stores bytes under an opaque storage path; the transfer record
// only keeps that path plus the server-assigned filename and size.
package blob

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SavedObject describes a stored payload.
type SavedObject struct {
	// Filename is the server-assigned, collision-resistant storage filename.
	Filename string
	// Path is the backend-specific location of the bytes.
	Path string
	// Size is the payload length in bytes.
	Size int64
}

// Store is the ingestion/retrieval collaborator. Save consumes the payload
// stream and reports where the bytes ended up; Open streams them back.
// Open returns common.ErrorNotFound when nothing is stored under the path.
type Store interface {
	Save(ctx context.Context, originalName string, r io.Reader) (*SavedObject, error)
	Open(ctx context.Context, storagePath string) (io.ReadCloser, error)
}

// storageFilename derives a collision-resistant filename for a payload,
// keeping the original extension so downloads open with the right handler.
func storageFilename(originalName string) string {
	ext := strings.ToLower(path.Ext(originalName))
	return uuid.NewString() + ext
}

// datePrefix partitions storage paths by upload date, e.g. "2026/09/01".
func datePrefix(now time.Time) string {
	return now.Format("2006/01/02")
}
