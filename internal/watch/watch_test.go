package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, paths ...string) *Watcher {
	t.Helper()
	w, err := New(paths, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(w.Stop)
	return w
}

func waitChange(t *testing.T, w *Watcher) Change {
	t.Helper()
	select {
	case c := <-w.Changes:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}

func TestWatcher_ReportsWrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	w := startWatcher(t, path)
	require.NoError(t, os.WriteFile(path, []byte(`[{"type":"port"}]`), 0o644))

	c := waitChange(t, w)
	assert.Equal(t, path, c.Path)
	assert.False(t, c.Removed)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	w := startWatcher(t, path)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("[]"), 0o644))

	select {
	case c := <-w.Changes:
		t.Fatalf("unexpected change %+v", c)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_Debounces(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	w, err := New([]string{path}, WithDebounce(150*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(w.Stop)

	for range 5 {
		require.NoError(t, os.WriteFile(path, []byte("[ ]"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}
	waitChange(t, w)

	select {
	case c := <-w.Changes:
		t.Fatalf("burst produced a second change %+v", c)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	w := startWatcher(t, path)
	require.NoError(t, os.Remove(path))

	c := waitChange(t, w)
	assert.True(t, c.Removed)
}

func TestStart_MissingDirectory(t *testing.T) {
	t.Parallel()
	w, err := New([]string{filepath.Join(t.TempDir(), "nope", "x.json")})
	require.NoError(t, err)
	require.Error(t, w.Start())

	// The failed start already released everything: Stop must not wait for
	// a loop that never ran.
	stopped := make(chan struct{})
	go func() {
		w.Stop()
		w.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop blocked after a failed Start")
	}
	_, open := <-w.Changes
	assert.False(t, open, "Changes must be closed")
}

func TestStop_WithoutStart(t *testing.T) {
	t.Parallel()
	w, err := New([]string{filepath.Join(t.TempDir(), "x.json")})
	require.NoError(t, err)

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop blocked on a watcher that never started")
	}
}
