// Package session keeps each browser session's uploaded file between interactions.
package session

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
)

// Upload is the file a session is currently looking at. Only the bytes are kept;
// every view is recomputed from them.
type Upload struct {
	Name     string
	Data     []byte
	Uploaded time.Time
}

type entry struct {
	upload *Upload
	seen   time.Time
}

// Options bounds the store.
type Options struct {
	Capacity int
	// TTL expires sessions idle for longer; 0 disables expiry.
	TTL    time.Duration
	Logger *slog.Logger
}

// Store is a bounded, idle-expiring map from session ID to upload. Safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	cache *lru.Cache
	ttl   time.Duration
	log   *slog.Logger
	now   func() time.Time
}

// New creates a store holding at most opt.Capacity sessions; the least recently used is evicted first.
func New(opt Options) (*Store, error) {
	if opt.Capacity <= 0 {
		return nil, fmt.Errorf("session capacity must be positive, got %d", opt.Capacity)
	}
	s := &Store{ttl: opt.TTL, log: opt.Logger, now: time.Now}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cache, err := lru.NewWithEvict(opt.Capacity, func(key, _ interface{}) {
		s.log.Debug("session dropped", "session", key)
	})
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

// NewID returns a fresh session identifier.
func NewID() string { return uuid.NewString() }

// ValidID reports whether id looks like an identifier issued by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Put replaces the session's upload.
func (s *Store) Put(id string, u *Upload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(id, &entry{upload: u, seen: s.now()})
}

// Get returns the session's upload and refreshes its idle timer.
func (s *Store) Get(id string) (*Upload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	e := v.(*entry)
	now := s.now()
	if s.expired(e, now) {
		s.cache.Remove(id)
		s.log.Debug("session expired", "session", id)
		return nil, false
	}
	e.seen = now
	return e.upload, true
}

// Has reports whether id is a live session in the store, without refreshing it.
func (s *Store) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache.Peek(id)
	return ok && !s.expired(v.(*entry), s.now())
}

// Delete forgets the session's upload.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(id)
}

// Len returns the number of sessions held, expired ones included until swept.
func (s *Store) Len() int { return s.cache.Len() }

// Sweep removes expired sessions and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for _, k := range s.cache.Keys() {
		v, ok := s.cache.Peek(k)
		if ok && s.expired(v.(*entry), now) {
			s.cache.Remove(k)
			n++
		}
	}
	return n
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.seen) > s.ttl
}
