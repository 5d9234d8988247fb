package governor

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_LockoutStateMachine(t *testing.T) {
	s := NewStore()
	const threshold = 3

	// open, counting up
	assert.False(t, s.IsLockedOut("sess-1", threshold))
	assert.Equal(t, 1, s.RecordFailure("sess-1"))
	assert.Equal(t, 2, s.RecordFailure("sess-1"))
	assert.False(t, s.IsLockedOut("sess-1", threshold))

	// third failure reaches the threshold -> locked
	assert.Equal(t, 3, s.RecordFailure("sess-1"))
	assert.True(t, s.IsLockedOut("sess-1", threshold))

	// locked stays locked on further attempts
	s.RecordFailure("sess-1")
	assert.True(t, s.IsLockedOut("sess-1", threshold))

	// explicit unlock -> open, counter at zero
	s.Reset("sess-1")
	assert.False(t, s.IsLockedOut("sess-1", threshold))
	assert.Equal(t, 1, s.RecordFailure("sess-1"))
}

func TestStore_SessionScoped(t *testing.T) {
	s := NewStore()
	const threshold = 3

	for i := 0; i < threshold; i++ {
		s.RecordFailure("sess-a")
	}

	assert.True(t, s.IsLockedOut("sess-a", threshold))
	assert.False(t, s.IsLockedOut("sess-b", threshold), "a different session gets a fresh counter")
}

func TestStore_ReadsAndResetsDoNotAccumulateState(t *testing.T) {
	s := NewStore()
	const threshold = 3

	// a flood of never-failing sessions leaves the store empty
	for i := 0; i < 100; i++ {
		s.IsLockedOut(fmt.Sprintf("sess-%d", i), threshold)
	}
	assert.Empty(t, s.sessions)

	// only sessions with failures occupy the map, and unlock frees them
	s.RecordFailure("sess-a")
	s.RecordFailure("sess-b")
	assert.Len(t, s.sessions, 2)

	s.Reset("sess-a")
	assert.Len(t, s.sessions, 1)

	// resetting an unknown session is a no-op
	s.Reset("sess-never-seen")
	assert.Len(t, s.sessions, 1)
}

func TestStore_ConcurrentFailures(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RecordFailure("sess-x")
		}()
	}
	wg.Wait()

	assert.True(t, s.IsLockedOut("sess-x", 50))
	assert.False(t, s.IsLockedOut("sess-x", 51))
}
