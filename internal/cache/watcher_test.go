package cache

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingInvalidator struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingInvalidator) Invalidate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recordingInvalidator) seen(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.paths {
		if p == path {
			return true
		}
	}
	return false
}

func TestWatcher_InvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "charts.csv")
	other := filepath.Join(dir, "other.csv")
	require.NoError(t, os.WriteFile(watched, []byte(chartCSV), 0o644))

	inv := &recordingInvalidator{}
	w, err := NewWatcher(slog.New(slog.NewTextHandler(io.Discard, nil)), inv)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Add(watched))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(watched, []byte(chartCSV+"2021-01-23,1,B,Y,,1,1\n"), 0o644))

	require.Eventually(t, func() bool { return inv.seen(watched) }, 5*time.Second, 20*time.Millisecond)
	require.False(t, inv.seen(other))

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
