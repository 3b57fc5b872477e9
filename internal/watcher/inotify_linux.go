//go:build linux

package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

const inotifyMask = unix.IN_CREATE | unix.IN_CLOSE_WRITE | unix.IN_MOVED_TO | unix.IN_DELETE_SELF

// inotifySource reads raw inotify events. The descriptor is non-blocking and
// wrapped in an *os.File so the runtime poller parks Read and Close wakes it.
type inotifySource struct {
	root   string
	fd     int
	file   *os.File
	logger *zap.Logger

	mu      sync.Mutex
	watches map[int]string // wd -> directory

	events chan Event
	errors chan error
	done   chan struct{}
	once   sync.Once
}

func newInotify(root string, logger *zap.Logger) (Source, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("inotify init: %w", err)
	}

	s := &inotifySource{
		root:    filepath.Clean(root),
		fd:      fd,
		file:    os.NewFile(uintptr(fd), "inotify"),
		logger:  logger,
		watches: make(map[int]string),
		events:  make(chan Event, queueSize),
		errors:  make(chan error, 1),
		done:    make(chan struct{}),
	}

	if _, err := s.addTree(root); err != nil {
		s.file.Close()
		return nil, err
	}

	go s.readLoop()
	return s, nil
}

func (s *inotifySource) Events() <-chan Event { return s.events }
func (s *inotifySource) Errors() <-chan error { return s.errors }

func (s *inotifySource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.file.Close()
	})
	return err
}

// addTree watches dir and every directory below it. It returns the regular
// files already present, which the caller reports when a directory was moved in.
func (s *inotifySource) addTree(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			s.logger.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.IsDir() {
			if d.Type().IsRegular() {
				files = append(files, path)
			}
			return nil
		}

		wd, err := unix.InotifyAddWatch(s.fd, path, inotifyMask)
		if err != nil {
			if path == dir {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			s.logger.Warn("cannot watch directory", zap.String("path", path), zap.Error(err))
			return nil
		}
		s.mu.Lock()
		s.watches[wd] = path
		s.mu.Unlock()
		return nil
	})
	return files, err
}

func (s *inotifySource) readLoop() {
	defer close(s.events)
	defer close(s.errors)

	var buf [unix.SizeofInotifyEvent * 4096]byte
	for {
		n, err := s.file.Read(buf[:])
		if err != nil {
			if errors.Is(err, os.ErrClosed) {
				return
			}
			s.fail(fmt.Errorf("inotify read: %w", err))
			return
		}
		if n < unix.SizeofInotifyEvent {
			s.fail(fmt.Errorf("inotify read: short read of %d bytes", n))
			return
		}

		var offset uint32
		for offset <= uint32(n-unix.SizeofInotifyEvent) {
			raw := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
			nameStart := offset + unix.SizeofInotifyEvent
			nameEnd := nameStart + raw.Len
			if nameEnd > uint32(n) {
				break
			}
			name := strings.TrimRight(string(buf[nameStart:nameEnd]), "\x00")

			if !s.handle(int(raw.Wd), raw.Mask, name) {
				return
			}
			offset = nameEnd
		}
	}
}

// handle translates one raw event. It returns false once the source is closed.
func (s *inotifySource) handle(wd int, mask uint32, name string) bool {
	if mask&unix.IN_Q_OVERFLOW != 0 {
		s.logger.Warn("inotify queue overflowed, events were lost")
		return true
	}

	s.mu.Lock()
	dir, ok := s.watches[wd]
	if mask&unix.IN_IGNORED != 0 {
		delete(s.watches, wd)
	}
	s.mu.Unlock()
	if !ok {
		return true
	}
	if mask&unix.IN_DELETE_SELF != 0 && filepath.Clean(dir) == s.root {
		s.fail(fmt.Errorf("watched directory %s was removed", dir))
		return false
	}
	if name == "" {
		return true
	}
	path := filepath.Join(dir, name)

	if mask&unix.IN_ISDIR != 0 {
		if mask&(unix.IN_CREATE|unix.IN_MOVED_TO) == 0 {
			return true
		}
		files, err := s.addTree(path)
		if err != nil {
			s.logger.Warn("cannot watch new directory", zap.String("path", path), zap.Error(err))
			return true
		}
		// Files written into a new directory before its watch was added
		// produce no close event of their own.
		kind := EventClosedAfterWrite
		if mask&unix.IN_MOVED_TO != 0 {
			kind = EventRenamedInto
		}
		for _, f := range files {
			if !s.send(Event{Path: f, Kind: kind}) {
				return false
			}
		}
		return true
	}

	switch {
	case mask&unix.IN_CLOSE_WRITE != 0:
		return s.send(Event{Path: path, Kind: EventClosedAfterWrite})
	case mask&unix.IN_MOVED_TO != 0:
		return s.send(Event{Path: path, Kind: EventRenamedInto})
	case mask&unix.IN_CREATE != 0:
		return s.send(Event{Path: path, Kind: EventCreated})
	default:
		return true
	}
}

func (s *inotifySource) send(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

func (s *inotifySource) fail(err error) {
	select {
	case <-s.done:
	default:
		s.errors <- err
	}
}
