// Package remote defines the port for the single-file remote object store
// the ledger is mirrored to, together with the error taxonomy the sync
// engine dispatches on. Implementations live in the subpackages.
package remote

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// FileHandle identifies the one remote ledger file of an account. At most
// one such file exists per account; the id is opaque and cached for the
// session once discovered.
type FileHandle struct {
	ID       string
	Modified time.Time
}

// ObjectStore is the outbound port to the remote store.
type ObjectStore interface {
	// Find looks the ledger file up by its fixed name. It returns nil
	// without error when no file exists, is idempotent and side-effect
	// free.
	Find(ctx context.Context) (*FileHandle, error)

	// Upload writes the payload. With a handle it replaces the content in
	// place, preserving the id; with nil it creates the file. The returned
	// handle carries the (possibly new) id and the remote modification
	// time.
	Upload(ctx context.Context, handle *FileHandle, payload []byte) (*FileHandle, error)

	// Download fetches the full content. A nil handle fails fast with
	// ErrNoRemoteFile.
	Download(ctx context.Context, handle *FileHandle) ([]byte, error)
}

var (
	// ErrUnauthenticated marks a precondition violation: no bearer
	// credential is available. Callers short-circuit instead of treating
	// this as a retryable failure.
	ErrUnauthenticated = errors.New("no authenticated session")

	// ErrNoRemoteFile is returned by Download when no handle is known.
	ErrNoRemoteFile = errors.New("no remote file")

	// ErrUnavailable wraps network-level failures (DNS, timeout, offline).
	ErrUnavailable = errors.New("remote store unreachable")
)

// StatusError reports a non-success HTTP status from the remote store.
// Retrying is the sync engine's decision, never this layer's.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote store returned status %d", e.Status)
}
