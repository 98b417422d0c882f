// SPDX-License-Identifier: Apache-2.0

package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/watch"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) handle(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) seen(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.paths {
		if p == path {
			return true
		}
	}
	return false
}

func start(t *testing.T, w *watch.Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	// Give the watcher time to register the tree.
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_ReportsMatchingWrites(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	start(t, &watch.Watcher{
		Root:     root,
		Debounce: 20 * time.Millisecond,
		Match:    func(p string) bool { return strings.HasSuffix(p, ".md") },
		Handle:   rec.handle,
	})

	doc := filepath.Join(root, "note.md")
	ignored := filepath.Join(root, "note.tmp")
	require.NoError(t, os.WriteFile(doc, []byte("⟡"), 0o644))
	require.NoError(t, os.WriteFile(ignored, []byte("x"), 0o644))

	assert.Eventually(t, func() bool { return rec.seen(doc) }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, rec.seen(ignored))
}

func TestWatcher_FollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	start(t, &watch.Watcher{Root: root, Debounce: 20 * time.Millisecond, Handle: rec.handle, Recursive: true})

	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	time.Sleep(100 * time.Millisecond)

	doc := filepath.Join(sub, "deep.md")
	require.NoError(t, os.WriteFile(doc, []byte("x"), 0o644))
	assert.Eventually(t, func() bool { return rec.seen(doc) }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_NonRecursiveIgnoresSubdirectories(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	rec := &recorder{}
	start(t, &watch.Watcher{Root: root, Debounce: 20 * time.Millisecond, Handle: rec.handle})

	deep := filepath.Join(sub, "deep.md")
	require.NoError(t, os.WriteFile(deep, []byte("x"), 0o644))
	top := filepath.Join(root, "top.md")
	require.NoError(t, os.WriteFile(top, []byte("x"), 0o644))

	assert.Eventually(t, func() bool { return rec.seen(top) }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, rec.seen(deep))
}

func TestWatcher_RequiresHandler(t *testing.T) {
	err := (&watch.Watcher{Root: t.TempDir()}).Run(context.Background())
	assert.Error(t, err)
}
