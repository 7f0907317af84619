package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsChangedBank(t *testing.T) {
	c := newTestCatalog(t, 3)
	changed := make(chan int, 8)

	w := NewWatcher(c, 200*time.Millisecond, func(b int) { changed <- b })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	touch(t, filepath.Join(c.Dir(2), "a.mp4"))
	touch(t, filepath.Join(c.Dir(2), "b.mp4"))

	select {
	case b := <-changed:
		assert.Equal(t, 2, b)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	// Both writes fall inside one debounce window
	select {
	case b := <-changed:
		t.Fatalf("unexpected second report for bank %d", b)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcher_StopAfterCancel(t *testing.T) {
	c := newTestCatalog(t, 1)
	w := NewWatcher(c, 10*time.Millisecond, func(int) {})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	assert.NoError(t, w.Stop())
}
