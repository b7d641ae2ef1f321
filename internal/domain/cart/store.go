package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// entry pairs a cart with the time it was last touched, for TTL eviction.
type entry struct {
	cart     *Cart
	lastSeen time.Time
}

// Store is an in-memory registry of session carts. Carts are private,
// per-session state with no cross-session sharing, so a mutex-guarded map
// with background eviction of idle sessions is all the coordination needed.
type Store struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]*entry
}

// NewStore creates a Store that evicts carts idle for longer than ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		entries: make(map[string]*entry),
	}
}

// NewStoreWithCleanup is like NewStore but additionally starts a background
// goroutine that evicts expired sessions every ttl. The goroutine stops when
// ctx is cancelled.
func NewStoreWithCleanup(ctx context.Context, ttl time.Duration) *Store {
	s := NewStore(ttl)
	s.startCleanup(ctx)
	return s
}

// NewSession creates an empty cart under a fresh session ID.
func (s *Store) NewSession() (string, *Cart) {
	id := uuid.New().String()
	c := New()

	s.mu.Lock()
	s.entries[id] = &entry{cart: c, lastSeen: time.Now()}
	s.mu.Unlock()

	return id, c
}

// Get returns the cart for the session, creating an empty one when the
// session is unknown or was evicted. Every access refreshes the TTL.
func (s *Store) Get(sessionID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		e = &entry{cart: New()}
		s.entries[sessionID] = e
	}
	e.lastSeen = time.Now()
	return e.cart
}

// Mutate runs fn against the session's cart while holding the store lock,
// serializing concurrent requests for the same session.
func (s *Store) Mutate(sessionID string, fn func(*Cart)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		e = &entry{cart: New()}
		s.entries[sessionID] = e
	}
	e.lastSeen = time.Now()
	fn(e.cart)
}

// Drop removes the session and its cart. Unknown sessions are a no-op.
func (s *Store) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// cleanup removes sessions idle beyond the TTL.
func (s *Store) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.entries {
		if now.Sub(e.lastSeen) >= s.ttl {
			delete(s.entries, id)
		}
	}
}

// startCleanup launches a background goroutine that periodically evicts
// idle sessions. It stops when ctx is cancelled.
func (s *Store) startCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.ttl)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.cleanup(now)
			}
		}
	}()
}
