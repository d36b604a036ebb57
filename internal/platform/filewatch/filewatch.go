// Package filewatch reports settled changes under a directory tree.
package filewatch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Debounce is how long events must be quiet before OnChange runs.
	Debounce time.Duration
	// OnChange runs on the watcher goroutine after a burst of events settles.
	OnChange func()
	// OnError receives watcher errors. Nil drops them.
	OnError func(error)
}

// Watcher watches a directory and every directory beneath it. fsnotify is not
// recursive, so directories created later are added as they appear.
type Watcher struct {
	fsw       *fsnotify.Watcher
	opts      Options
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Watch starts watching root until ctx is cancelled or Close is called.
func Watch(ctx context.Context, root string, opts Options) (*Watcher, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("watch root is required")
	}
	if opts.OnChange == nil {
		return nil, errors.New("change callback is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.OnError == nil {
		opts.OnError = func(error) {}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := addTree(fsw, root); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		fsw:    fsw,
		opts:   opts,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go w.loop(ctx)
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	w.closeOnce.Do(func() {
		w.cancel()
		<-w.done
		w.closeErr = w.fsw.Close()
	})
	return w.closeErr
}

// Done is closed once the watcher goroutine has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	timer := time.NewTimer(w.opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(w.fsw, event.Name); err != nil {
						w.opts.OnError(err)
					}
				}
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.opts.Debounce)
			pending = true
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.opts.OnError(err)
		case <-timer.C:
			pending = false
			w.opts.OnChange()
		}
	}
}

func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(entry.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
