// Package models defines server-side data models persisted in the database.
package models

import "time"

// Transfer describes one uploaded file and its share status. The binary
// payload itself lives in blob storage under StoragePath; the record only
// carries metadata.
type Transfer struct {
	// ID is the opaque public identifier (UUIDv4), assigned once at creation.
	ID string
	// Filename is the server-assigned, collision-resistant storage filename.
	Filename string
	// StoragePath locates the payload bytes in the blob backend.
	StoragePath string
	// Size is the payload length in bytes.
	Size int64
	// Sender and Receiver are attached exactly once, when the record is
	// shared. Empty means "not set yet".
	Sender   string
	Receiver string
	// CreatedAt is the record creation time.
	CreatedAt time.Time
}

// Shared reports whether the transfer has already been shared. The state is
// derived from sender presence; there is no separate status column.
func (t *Transfer) Shared() bool {
	return t.Sender != ""
}
