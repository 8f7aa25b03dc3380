package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startWatch runs Run in the background and returns a trigger counter plus
// the cancel func and done channel.
func startWatch(t *testing.T, paths []string, debounce time.Duration) (*atomic.Int32, context.CancelFunc, chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var triggers atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, paths, debounce, func(context.Context) {
			triggers.Add(1)
		})
	}()

	// Give the watcher a moment to register before touching files.
	time.Sleep(100 * time.Millisecond)
	return &triggers, cancel, done
}

func waitForTriggers(t *testing.T, triggers *atomic.Int32, want int32, msg string) {
	t.Helper()
	assert.Eventually(t, func() bool {
		return triggers.Load() >= want
	}, 3*time.Second, 25*time.Millisecond, msg)
}

func TestRun_TriggersOnChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "run_app.py")
	require.NoError(t, os.WriteFile(source, []byte("v1"), 0o600))

	triggers, cancel, done := startWatch(t, []string{source}, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(source, []byte("v2"), 0o600))
	waitForTriggers(t, triggers, 1, "change never triggered a rebuild")

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

// TestRun_SurvivesAtomicSave covers the editor save pattern: write a temp
// file, rename it over the source. A file-level watch dies at the rename;
// the watch must keep reacting to later changes.
func TestRun_SurvivesAtomicSave(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "run_app.py")
	require.NoError(t, os.WriteFile(source, []byte("v1"), 0o600))

	triggers, _, _ := startWatch(t, []string{source}, 20*time.Millisecond)

	// Atomic save: temp file renamed over the original.
	tmp := filepath.Join(dir, ".run_app.py.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("v2"), 0o600))
	require.NoError(t, os.Rename(tmp, source))
	waitForTriggers(t, triggers, 1, "atomic save never triggered a rebuild")

	// A plain write afterwards must still be seen.
	require.NoError(t, os.WriteFile(source, []byte("v3"), 0o600))
	waitForTriggers(t, triggers, 2, "watch went dead after atomic save")
}

func TestRun_IgnoresUnrelatedFilesInSameDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "run_app.py")
	require.NoError(t, os.WriteFile(source, []byte("v1"), 0o600))

	triggers, _, _ := startWatch(t, []string{source}, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	time.Sleep(300 * time.Millisecond)
	assert.EqualValues(t, 0, triggers.Load(), "a sibling file must not trigger rebuilds")

	require.NoError(t, os.WriteFile(source, []byte("v2"), 0o600))
	waitForTriggers(t, triggers, 1, "watched source change was filtered out")
}

func TestRun_DebouncesBursts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "run_app.py")
	require.NoError(t, os.WriteFile(source, []byte("v1"), 0o600))

	triggers, _, _ := startWatch(t, []string{source}, 150*time.Millisecond)

	// A burst of writes within the debounce window collapses to one rebuild.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(source, []byte("burst"), 0o600))
		time.Sleep(10 * time.Millisecond)
	}

	waitForTriggers(t, triggers, 1, "burst never triggered")
	assert.EqualValues(t, 1, triggers.Load(), "burst of writes should debounce into one trigger")
}

func TestRun_NoWatchablePaths(t *testing.T) {
	t.Parallel()

	// The parent directory itself is missing, so nothing can be watched.
	ghost := filepath.Join(t.TempDir(), "ghost-dir", "ghost.py")
	err := Run(context.Background(), []string{ghost}, 0, func(context.Context) {})
	assert.ErrorContains(t, err, "could be watched")
}
