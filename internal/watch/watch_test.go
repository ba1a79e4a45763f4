package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "project.yaml")
	require.NoError(t, os.WriteFile(source, []byte("a"), 0o644))

	w, err := New([]string{source}, time.Millisecond, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.relevant(fsnotify.Event{Name: source, Op: fsnotify.Write}))
	assert.False(t, w.relevant(fsnotify.Event{Name: source, Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "out.shader"), Op: fsnotify.Write}))

}

func TestBatchQuietPeriod(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "project.yaml")
	require.NoError(t, os.WriteFile(source, []byte("a"), 0o644))

	w, err := New([]string{source}, time.Second, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer w.Close()

	now := time.Unix(1000, 0)
	w.now = func() time.Time { return now }

	event := fsnotify.Event{Name: source, Op: fsnotify.Write}

	w.StartBatch()
	w.StartBatch()
	assert.False(t, w.relevant(event))

	w.StopBatch()
	assert.False(t, w.relevant(event))

	w.StopBatch()
	w.StopBatch()
	assert.False(t, w.relevant(event), "events queued during the batch arrive after it")

	now = now.Add(500 * time.Millisecond)
	assert.False(t, w.relevant(event))

	now = now.Add(time.Second)
	assert.True(t, w.relevant(event))
}

func TestRunIgnoresOwnWrites(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "project.yaml")
	require.NoError(t, os.WriteFile(source, []byte("a"), 0o644))

	w, err := New([]string{source}, 200*time.Millisecond, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			w.StartBatch()
			defer w.StopBatch()

			runs <- struct{}{}
			return os.WriteFile(source, []byte("generated"), 0o644)
		})
	}()

	require.NoError(t, os.WriteFile(source, []byte("b"), 0o644))

	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case <-runs:
		t.Fatal("own write triggered another run")
	case <-time.After(time.Second):
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "project.yaml")
	require.NoError(t, os.WriteFile(source, []byte("a"), 0o644))

	w, err := New([]string{source}, 20*time.Millisecond, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			changes <- struct{}{}
			return nil
		})
	}()

	require.NoError(t, os.WriteFile(source, []byte("b"), 0o644))

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing", "p.yaml")}, 0, nil)
	assert.Error(t, err)
}
