// Package persist saves session snapshots behind a debounce so
// keystroke-rate mutations collapse into one write. Critical mutations
// (new results, retry payloads, phase resets) skip the delay. When the
// backend refuses a write the snapshot shrinks in fixed steps before
// giving up.
package persist

import (
	"context"
	"errors"
)

// ErrNotFound reports a missing snapshot.
var ErrNotFound = errors.New("persist: snapshot not found")

// ErrQuotaExceeded reports that the backend refused the blob for size or
// quota reasons. The coordinator reacts by shrinking the snapshot.
var ErrQuotaExceeded = errors.New("persist: storage quota exceeded")

// SnapshotStore is the storage backend contract.
type SnapshotStore interface {
	Save(ctx context.Context, sessionID string, data []byte) error
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Delete(ctx context.Context, sessionID string) error
}
