// Package memory implements the remote object store in process memory. It
// is the backend when no cloud credentials are configured and the test
// double for the sync engine.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"zakat/internal/remote"
)

type Store struct {
	mu       sync.Mutex
	id       string
	modified time.Time
	data     []byte

	// now is swappable for tests.
	now func() time.Time
}

var _ remote.ObjectStore = (*Store)(nil)

func New() *Store {
	return &Store{now: time.Now}
}

// SetClock replaces the modification-time source. Test hook.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Seed installs remote content directly, as if another device had uploaded
// at the given time.
func (s *Store) Seed(data []byte, modified time.Time) *remote.FileHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.data = append([]byte(nil), data...)
	s.modified = modified
	return &remote.FileHandle{ID: s.id, Modified: s.modified}
}

func (s *Store) Find(ctx context.Context) (*remote.FileHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" {
		return nil, nil
	}
	return &remote.FileHandle{ID: s.id, Modified: s.modified}, nil
}

func (s *Store) Upload(ctx context.Context, handle *remote.FileHandle, payload []byte) (*remote.FileHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if handle != nil && handle.ID != s.id {
		return nil, &remote.StatusError{Status: 404}
	}
	if handle == nil {
		s.id = uuid.NewString()
	}
	s.data = append([]byte(nil), payload...)
	s.modified = s.now().UTC()
	return &remote.FileHandle{ID: s.id, Modified: s.modified}, nil
}

func (s *Store) Download(ctx context.Context, handle *remote.FileHandle) ([]byte, error) {
	if handle == nil {
		return nil, remote.ErrNoRemoteFile
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" || handle.ID != s.id {
		return nil, &remote.StatusError{Status: 404}
	}
	return append([]byte(nil), s.data...), nil
}
