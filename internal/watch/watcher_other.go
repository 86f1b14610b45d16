//go:build !linux

package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// PollInterval is how often modification times are compared.
const PollInterval = 250 * time.Millisecond

// Watcher polls the modification time of each added file.
type Watcher struct {
	mu        sync.Mutex
	files     map[string]time.Time
	debounce  *debouncer
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a watcher that calls onChange with the absolute path of a
// changed file once it has been quiet for delay (DefaultDelay when zero).
func New(onChange func(string), delay time.Duration) (*Watcher, error) {
	return &Watcher{
		files:    make(map[string]time.Time),
		debounce: newDebouncer(delay, onChange),
		done:     make(chan struct{}),
	}, nil
}

// Add starts reporting changes to path.
func (w *Watcher) Add(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", absPath, err)
	}

	w.mu.Lock()
	w.files[absPath] = info.ModTime()
	w.mu.Unlock()
	return nil
}

// Watch blocks, dispatching change events until Close is called.
func (w *Watcher) Watch() error {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.checkFiles()
		case <-w.done:
			return nil
		}
	}
}

func (w *Watcher) checkFiles() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.files))
	for path := range w.files {
		paths = append(paths, path)
	}
	w.mu.Unlock()

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			// mid-save; the next tick sees the new file
			continue
		}

		w.mu.Lock()
		lastMod := w.files[path]
		w.files[path] = info.ModTime()
		w.mu.Unlock()

		if !info.ModTime().Equal(lastMod) {
			w.debounce.trigger(path)
		}
	}
}

// Close stops Watch and cancels pending callbacks.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.debounce.stop()
	})
	return nil
}
