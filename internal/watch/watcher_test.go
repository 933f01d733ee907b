package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcherCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "lecturas.csv")
	require.NoError(t, os.WriteFile(p, []byte("v\n1\n"), 0o644))

	fw, err := NewFileWatcher(p, 50*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(p, []byte("v\n1\n2\n"), 0o644))
	}

	select {
	case ev := <-fw.Events():
		assert.Equal(t, fw.Path(), ev.Path)
		assert.NotEmpty(t, ev.Operation)
	case <-time.After(3 * time.Second):
		t.Fatal("no event after writing the watched file")
	}
}

func TestFileWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "lecturas.csv")
	require.NoError(t, os.WriteFile(p, []byte("v\n1\n"), 0o644))

	fw, err := NewFileWatcher(p, 20*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "otro.csv"), []byte("x"), 0o644))
	select {
	case ev := <-fw.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFileWatcherCloseEndsEvents(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.csv")
	require.NoError(t, os.WriteFile(p, nil, 0o644))
	fw, err := NewFileWatcher(p, time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, fw.Close())

	select {
	case _, ok := <-fw.Events():
		assert.False(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("events channel not closed")
	}
}

func TestNewFileWatcherMissingDir(t *testing.T) {
	_, err := NewFileWatcher(filepath.Join(t.TempDir(), "missing", "a.csv"), time.Millisecond, nil)
	assert.Error(t, err)
}
