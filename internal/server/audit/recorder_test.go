package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	rec, err := NewRecorder(filepath.Join(t.TempDir(), "security.log"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })
	return rec
}

func TestEvent_LineFormat(t *testing.T) {
	rec := newTestRecorder(t)
	rec.now = func() time.Time { return time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC) }

	require.NoError(t, rec.Event("login failure", "email", "a@example.com", "ip", "203.0.113.5"))

	data, err := os.ReadFile(rec.path)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01 12:30:45 : login failure email=a@example.com ip=203.0.113.5\n", string(data))
}

func TestRecentEvents_NewestFirst(t *testing.T) {
	rec := newTestRecorder(t)

	for i := 1; i <= 5; i++ {
		require.NoError(t, rec.Event(fmt.Sprintf("event %d", i)))
	}

	events, err := rec.RecentEvents(3)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Contains(t, events[0], "event 5")
	assert.Contains(t, events[1], "event 4")
	assert.Contains(t, events[2], "event 3")
}

func TestRecentEvents_FewerLinesThanRequested(t *testing.T) {
	rec := newTestRecorder(t)

	require.NoError(t, rec.Event("only one"))

	events, err := rec.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Contains(t, events[0], "only one")
}

func TestRecentEvents_EmptyAndMissing(t *testing.T) {
	rec := newTestRecorder(t)

	events, err := rec.RecentEvents(5)
	require.NoError(t, err)
	assert.Empty(t, events)

	rec.path = filepath.Join(t.TempDir(), "does-not-exist.log")
	events, err = rec.RecentEvents(5)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRecentEvents_SpansChunkBoundaries(t *testing.T) {
	rec := newTestRecorder(t)

	// make the file several chunks large so the backward scan has to stitch
	// lines across chunk boundaries
	pad := strings.Repeat("x", 200)
	const total = 100
	for i := 0; i < total; i++ {
		require.NoError(t, rec.Event(fmt.Sprintf("entry %03d %s", i, pad)))
	}

	events, err := rec.RecentEvents(total)
	require.NoError(t, err)
	require.Len(t, events, total)

	for i, line := range events {
		assert.Contains(t, line, fmt.Sprintf("entry %03d", total-1-i))
	}
}

func TestEvent_ConcurrentAppends(t *testing.T) {
	rec := newTestRecorder(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = rec.Event(fmt.Sprintf("concurrent %d", i))
		}(i)
	}
	wg.Wait()

	events, err := rec.RecentEvents(100)
	require.NoError(t, err)
	require.Len(t, events, 50)

	for _, line := range events {
		assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} : concurrent \d+$`, line)
	}
}
