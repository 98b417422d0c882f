// SPDX-License-Identifier: Apache-2.0

// Package watch re-runs validation when artifacts or sidecars change on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/logging"
)

// DefaultDebounce is the quiet period after the last event before a flush.
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches a directory tree and hands changed files to a handler.
type Watcher struct {
	Root     string
	Debounce time.Duration
	// Match filters events by path; nil accepts every file.
	Match func(path string) bool
	// Handle receives each changed path once per flush, in sorted order.
	Handle func(path string)
	// Recursive watches every subdirectory of Root; otherwise only Root itself.
	Recursive bool
	Logger    *logging.Logger
}

// Run blocks until ctx is cancelled. In recursive mode directories created while
// running are watched too; hidden directories are always skipped.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Handle == nil {
		return fmt.Errorf("watch: no handler")
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := w.addTree(watcher, w.Root); err != nil {
		return err
	}
	w.Logger.Infof("Watching %s", w.Root)

	ready := make(map[string]bool)
	flush := func() {
		batch := make([]string, 0, len(ready))
		for p := range ready {
			batch = append(batch, p)
		}
		ready = make(map[string]bool)
		sort.Strings(batch)
		for _, p := range batch {
			if ctx.Err() != nil {
				return
			}
			w.Handle(p)
		}
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-timer.C:
			flush()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if added, _ := w.addIfDir(watcher, event.Name); added {
					continue
				}
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if w.Match != nil && !w.Match(event.Name) {
				continue
			}
			w.Logger.Debugf("Change detected: %s", event.Name)
			ready[event.Name] = true

			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warnf("watch error: %v", err)
		}
	}
}

func (w *Watcher) addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (!w.Recursive || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) addIfDir(watcher *fsnotify.Watcher, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false, err
	}
	if !w.Recursive || strings.HasPrefix(filepath.Base(path), ".") {
		return true, nil
	}
	return true, w.addTree(watcher, path)
}
