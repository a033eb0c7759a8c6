package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"zakat/internal/remote"
)

func TestFindBeforeAnyUpload(t *testing.T) {
	s := New()
	handle, err := s.Find(context.Background())
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if handle != nil {
		t.Fatalf("handle = %+v, want nil on empty store", handle)
	}
}

func TestCreateThenUpdatePreservesID(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.Upload(ctx, nil, []byte(`one`))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("create must assign an id")
	}

	updated, err := s.Upload(ctx, created, []byte(`two`))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("update changed id %q -> %q", created.ID, updated.ID)
	}

	data, err := s.Download(ctx, updated)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(data) != "two" {
		t.Fatalf("content = %q, want two", data)
	}
}

func TestDownloadWithoutHandleFailsFast(t *testing.T) {
	s := New()
	if _, err := s.Download(context.Background(), nil); !errors.Is(err, remote.ErrNoRemoteFile) {
		t.Fatalf("err = %v, want ErrNoRemoteFile", err)
	}
}

func TestStaleHandleIsStatusError(t *testing.T) {
	s := New()
	stale := &remote.FileHandle{ID: "gone"}

	var statusErr *remote.StatusError
	if _, err := s.Download(context.Background(), stale); !errors.As(err, &statusErr) || statusErr.Status != 404 {
		t.Fatalf("download err = %v, want 404 StatusError", err)
	}
	if _, err := s.Upload(context.Background(), stale, []byte(`x`)); !errors.As(err, &statusErr) || statusErr.Status != 404 {
		t.Fatalf("upload err = %v, want 404 StatusError", err)
	}
}

func TestSeedIsVisibleToFind(t *testing.T) {
	s := New()
	modified := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	seeded := s.Seed([]byte(`{"version":1}`), modified)

	found, err := s.Find(context.Background())
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found == nil || found.ID != seeded.ID || !found.Modified.Equal(modified) {
		t.Fatalf("found = %+v, want %+v", found, seeded)
	}
}
