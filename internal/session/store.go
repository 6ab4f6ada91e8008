package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// Store keeps the running pages by id and closes the ones left idle.
type Store struct {
	opts Options
	now  func() time.Time

	mu    sync.RWMutex
	pages map[string]*Page
}

func NewStore(opts Options) *Store {
	return &Store{opts: opts, now: time.Now, pages: make(map[string]*Page)}
}

// Create starts a page under a new id. Idle pages are swept first when the
// store is full.
func (s *Store) Create(params PageParams) (*Page, error) {
	if s.full() {
		s.Sweep()
		if s.full() {
			return nil, fmt.Errorf("create session: %w (max %d)", ErrTooManySessions, s.opts.MaxSessions)
		}
	}

	id := uuid.NewString()
	p, err := NewPage(id, params, s.opts)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	p.touch(s.now())

	s.mu.Lock()
	if s.opts.MaxSessions > 0 && len(s.pages) >= s.opts.MaxSessions {
		s.mu.Unlock()
		p.Close()
		return nil, fmt.Errorf("create session: %w (max %d)", ErrTooManySessions, s.opts.MaxSessions)
	}
	s.pages[id] = p
	s.mu.Unlock()
	return p, nil
}

// Get returns the page and marks it as used.
func (s *Store) Get(id string) (*Page, error) {
	s.mu.RLock()
	p, ok := s.pages[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("get session %q: %w", id, ErrNotFound)
	}
	p.touch(s.now())
	return p, nil
}

// Delete closes the page and forgets it.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	p, ok := s.pages[id]
	delete(s.pages, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("delete session %q: %w", id, ErrNotFound)
	}
	p.Close()
	log.Printf("session=%s closed", id)
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages)
}

// Sweep closes pages idle for longer than the TTL and returns how many it closed.
func (s *Store) Sweep() int {
	if s.opts.SessionTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.opts.SessionTTL)

	s.mu.Lock()
	var expired []*Page
	for id, p := range s.pages {
		if p.idleSince().Before(cutoff) {
			expired = append(expired, p)
			delete(s.pages, id)
		}
	}
	s.mu.Unlock()

	for _, p := range expired {
		p.Close()
		log.Printf("session=%s expired idle_since=%s", p.ID(), p.idleSince().Format(time.RFC3339))
	}
	return len(expired)
}

// Run sweeps idle pages every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if s.opts.SessionTTL <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Close stops every page.
func (s *Store) Close() {
	s.mu.Lock()
	pages := s.pages
	s.pages = make(map[string]*Page)
	s.mu.Unlock()

	for _, p := range pages {
		p.Close()
	}
}

func (s *Store) full() bool {
	if s.opts.MaxSessions <= 0 {
		return false
	}
	return s.Len() >= s.opts.MaxSessions
}
