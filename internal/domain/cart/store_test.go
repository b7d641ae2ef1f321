package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_NewSession(t *testing.T) {
	s := NewStore(time.Minute)

	id, c := s.NewSession()
	require.NotEmpty(t, id)
	assert.True(t, c.Empty())
	assert.Equal(t, 1, s.Len())

	// The same session ID resolves to the same cart.
	c.Add(testProduct(1, "a", "10.00"), 1)
	assert.Equal(t, 1, s.Get(id).ItemCount())
}

func TestStore_GetCreatesUnknownSession(t *testing.T) {
	s := NewStore(time.Minute)

	c := s.Get("never-seen")
	assert.True(t, c.Empty())
	assert.Equal(t, 1, s.Len())
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	s := NewStore(time.Minute)

	a, _ := s.NewSession()
	b, _ := s.NewSession()
	require.NotEqual(t, a, b)

	s.Mutate(a, func(c *Cart) {
		c.Add(testProduct(1, "a", "10.00"), 3)
	})

	assert.Equal(t, 3, s.Get(a).ItemCount())
	assert.True(t, s.Get(b).Empty())
}

func TestStore_Drop(t *testing.T) {
	s := NewStore(time.Minute)
	id, c := s.NewSession()
	c.Add(testProduct(1, "a", "10.00"), 1)

	s.Drop(id)
	s.Drop(id) // idempotent

	// A dropped session resolves to a fresh, empty cart.
	assert.True(t, s.Get(id).Empty())
}

func TestStore_CleanupEvictsIdleSessions(t *testing.T) {
	s := NewStore(50 * time.Millisecond)

	idle, _ := s.NewSession()
	active, _ := s.NewSession()
	require.Equal(t, 2, s.Len())

	time.Sleep(60 * time.Millisecond)
	s.Get(active) // refreshes lastSeen

	s.cleanup(time.Now())

	assert.Equal(t, 1, s.Len())

	// Idle session was evicted and comes back as a fresh cart on access.
	assert.True(t, s.Get(idle).Empty())
	assert.Equal(t, 2, s.Len())
}
