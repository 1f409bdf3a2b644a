// Package watch monitors the local corpus for changes and invalidates the
// dispatcher's in-process BM25 index cache so the next action sees them.
package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sgx-labs/canon/internal/config"
	"github.com/sgx-labs/canon/internal/dispatch"
)

const debounceDelay = 2 * time.Second

// Watch starts watching corpusRoot for markdown changes and invalidates d's
// index cache on a debounced schedule. It blocks until the watcher's event
// channel closes or an unrecoverable error occurs.
func Watch(d *dispatch.Dispatcher, cfg *config.Config) error {
	corpusRoot := cfg.Corpus.Path

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	skip := cfg.SkipDirs()
	dirs := walkDirs(corpusRoot, skip)
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			fmt.Fprintf(os.Stderr, "  [WARN] could not watch %s: %v\n", dir, err)
		}
	}

	fmt.Fprintf(os.Stderr, "Watching %d directories under %s\n", len(dirs), corpusRoot)

	var (
		mu      sync.Mutex
		pending bool
		timer   *time.Timer
	)

	flush := func() {
		mu.Lock()
		changed := pending
		pending = false
		mu.Unlock()
		if !changed {
			return
		}
		d.InvalidateIndex()
		fmt.Fprintf(os.Stderr, "  Index invalidated, will rebuild on next action.\n")
	}

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}

			if !strings.HasSuffix(event.Name, ".md") {
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						name := filepath.Base(event.Name)
						if !skip[name] {
							w.Add(event.Name)
						}
					}
				}
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				mu.Lock()
				pending = true
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounceDelay, flush)
				mu.Unlock()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "  [WARN] watch error: %v\n", err)
		}
	}
}

func walkDirs(root string, skip map[string]bool) []string {
	var dirs []string
	filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			name := entry.Name()
			if skip[name] {
				return filepath.SkipDir
			}
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs
}
