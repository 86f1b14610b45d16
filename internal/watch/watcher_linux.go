//go:build linux

package watch

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// events that mean a file in a watched directory has new content. Editors
// that save through a temp file and rename produce IN_MOVED_TO.
const inotifyMask = unix.IN_MODIFY | unix.IN_CLOSE_WRITE | unix.IN_MOVED_TO | unix.IN_CREATE

// Watcher watches the directories of the added files, so a file replaced
// by rename is still seen.
type Watcher struct {
	fd        int
	mu        sync.Mutex
	dirs      map[int]string
	watched   map[string]bool
	files     map[string]bool
	debounce  *debouncer
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a watcher that calls onChange with the absolute path of a
// changed file once it has been quiet for delay (DefaultDelay when zero).
func New(onChange func(string), delay time.Duration) (*Watcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("inotify_init failed: %w", err)
	}

	return &Watcher{
		fd:       fd,
		dirs:     make(map[int]string),
		watched:  make(map[string]bool),
		files:    make(map[string]bool),
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
	dir := filepath.Dir(absPath)

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.watched[dir] {
		wd, err := unix.InotifyAddWatch(w.fd, dir, inotifyMask)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.dirs[wd] = dir
		w.watched[dir] = true
	}
	w.files[absPath] = true
	return nil
}

// Watch blocks, dispatching change events until Close is called.
func (w *Watcher) Watch() error {
	buf := make([]byte, 4096)

	for {
		select {
		case <-w.done:
			return nil
		default:
		}

		n, err := unix.Read(w.fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				time.Sleep(100 * time.Millisecond)
				continue
			}
			select {
			case <-w.done:
				return nil
			default:
			}
			return fmt.Errorf("error reading inotify events: %w", err)
		}

		offset := 0
		for offset+unix.SizeofInotifyEvent <= n {
			event := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
			nameStart := offset + unix.SizeofInotifyEvent
			nameEnd := nameStart + int(event.Len)
			offset = nameEnd

			if event.Mask&inotifyMask == 0 || event.Len == 0 || nameEnd > n {
				continue
			}
			name := strings.TrimRight(string(buf[nameStart:nameEnd]), "\x00")

			w.mu.Lock()
			dir := w.dirs[int(event.Wd)]
			path := filepath.Join(dir, name)
			interested := dir != "" && w.files[path]
			w.mu.Unlock()

			if interested {
				w.debounce.trigger(path)
			}
		}
	}
}

// Close stops Watch and cancels pending callbacks.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.debounce.stop()
		err = unix.Close(w.fd)
	})
	return err
}
