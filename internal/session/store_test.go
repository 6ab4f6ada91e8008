package session

import (
	"context"
	"epsg-map-service/internal/adapters/transform"
	"errors"
	"testing"
	"time"
)

func TestStoreLifecycle(t *testing.T) {
	s := NewStore(testOptions(transform.NewMockTransformProvider(nil)))
	defer s.Close()

	p, err := s.Create(PageParams{SRS: "5514"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID() == "" {
		t.Fatalf("expected an id")
	}

	got, err := s.Get(p.ID())
	if err != nil || got != p {
		t.Fatalf("get = %v, %v", got, err)
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}

	if err := s.Delete(p.ID()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Get(p.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(p.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStoreSweepsIdlePages(t *testing.T) {
	opts := testOptions(transform.NewMockTransformProvider(nil))
	opts.SessionTTL = 10 * time.Minute
	s := NewStore(opts)
	defer s.Close()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	idle, err := s.Create(PageParams{SRS: "5514"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	busy, err := s.Create(PageParams{SRS: "5514"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = now.Add(8 * time.Minute)
	if _, err := s.Get(busy.ID()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = now.Add(5 * time.Minute)
	if n := s.Sweep(); n != 1 {
		t.Fatalf("swept %d pages, want 1", n)
	}
	if _, err := s.Get(idle.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected idle page to be gone, got %v", err)
	}
	if _, err := s.Get(busy.ID()); err != nil {
		t.Fatalf("expected recently used page to survive, got %v", err)
	}
	if _, err := idle.Snapshot(context.Background()); err == nil {
		t.Fatalf("expected the swept page to be closed")
	}
}

func TestStoreCapsSessions(t *testing.T) {
	opts := testOptions(transform.NewMockTransformProvider(nil))
	opts.MaxSessions = 2
	opts.SessionTTL = time.Hour
	s := NewStore(opts)
	defer s.Close()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if _, err := s.Create(PageParams{SRS: "5514"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := s.Create(PageParams{SRS: "5514"}); !errors.Is(err, ErrTooManySessions) {
		t.Fatalf("expected ErrTooManySessions, got %v", err)
	}

	// Once the existing pages have expired, creating sweeps them to make room.
	now = now.Add(2 * time.Hour)
	if _, err := s.Create(PageParams{SRS: "5514"}); err != nil {
		t.Fatalf("expected create after expiry to succeed, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
}
