package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newStore(t *testing.T, capacity int, ttl time.Duration) (*Store, *clock) {
	t.Helper()
	s, err := New(Options{Capacity: capacity, TTL: ttl})
	require.NoError(t, err)
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s.now = c.now
	return s, c
}

func TestPutGetDelete(t *testing.T) {
	s, _ := newStore(t, 4, 0)
	id := NewID()
	require.True(t, ValidID(id))

	s.Put(id, &Upload{Name: "a.csv", Data: []byte("v\n1\n")})
	u, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "a.csv", u.Name)

	s.Put(id, &Upload{Name: "b.csv"})
	u, _ = s.Get(id)
	assert.Equal(t, "b.csv", u.Name, "upload replaced")

	s.Delete(id)
	_, ok = s.Get(id)
	assert.False(t, ok)
}

func TestHasOnlyLiveSessions(t *testing.T) {
	s, clk := newStore(t, 4, time.Minute)
	id := NewID()
	assert.False(t, s.Has(id), "never issued")

	s.Put(id, &Upload{Name: "a.csv"})
	assert.True(t, s.Has(id))

	clk.advance(2 * time.Minute)
	assert.False(t, s.Has(id), "expired")
}

func TestSessionsAreIsolated(t *testing.T) {
	s, _ := newStore(t, 4, 0)
	a, b := NewID(), NewID()
	s.Put(a, &Upload{Name: "a.csv"})
	_, ok := s.Get(b)
	assert.False(t, ok)
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	s, _ := newStore(t, 2, 0)
	s.Put("one", &Upload{Name: "1"})
	s.Put("two", &Upload{Name: "2"})
	_, _ = s.Get("one")
	s.Put("three", &Upload{Name: "3"})

	_, ok := s.Get("two")
	assert.False(t, ok, "least recently used session should be evicted")
	_, ok = s.Get("one")
	assert.True(t, ok)
	assert.Equal(t, 2, s.Len())
}

func TestIdleExpiry(t *testing.T) {
	s, c := newStore(t, 4, time.Minute)
	s.Put("a", &Upload{})
	s.Put("b", &Upload{})

	c.advance(40 * time.Second)
	_, ok := s.Get("a")
	require.True(t, ok, "access refreshes the idle timer")

	c.advance(40 * time.Second)
	_, ok = s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, s.Sweep(), "b idle for 80s")

	c.advance(2 * time.Minute)
	_, ok = s.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestInvalidOptions(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
	assert.False(t, ValidID("not-a-session"))
}

func TestConcurrentAccess(t *testing.T) {
	s, err := New(Options{Capacity: 16, TTL: time.Hour})
	require.NoError(t, err)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			for j := 0; j < 100; j++ {
				s.Put(id, &Upload{Name: id})
				if u, ok := s.Get(id); ok {
					assert.Equal(t, id, u.Name)
				}
				s.Sweep()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 8, s.Len())
}
