package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// fsnotifySource is the portable backend. fsnotify cannot report close-after-
// write, so a file counts as written once it saw no activity for settle.
// All state is owned by the loop goroutine.
type fsnotifySource struct {
	root   string
	w      *fsnotify.Watcher
	settle time.Duration
	logger *zap.Logger

	pending map[string]time.Time // path -> last activity

	events chan Event
	errors chan error
	done   chan struct{}
	once   sync.Once
}

func newFsnotify(root string, settle time.Duration, logger *zap.Logger) (Source, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}

	s := &fsnotifySource{
		root:    filepath.Clean(root),
		w:       fw,
		settle:  settle,
		logger:  logger,
		pending: make(map[string]time.Time),
		events:  make(chan Event, queueSize),
		errors:  make(chan error, 1),
		done:    make(chan struct{}),
	}

	if _, err := s.addRecursive(root); err != nil {
		fw.Close()
		return nil, err
	}

	go s.loop()
	return s, nil
}

func (s *fsnotifySource) Events() <-chan Event { return s.events }
func (s *fsnotifySource) Errors() <-chan error { return s.errors }

func (s *fsnotifySource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.w.Close()
	})
	return err
}

func (s *fsnotifySource) addRecursive(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // skip inaccessible dirs
		}
		if !d.IsDir() {
			if d.Type().IsRegular() {
				files = append(files, path)
			}
			return nil
		}
		if err := s.w.Add(path); err != nil {
			if path == root {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			s.logger.Warn("cannot watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
	return files, err
}

func (s *fsnotifySource) loop() {
	defer close(s.events)
	defer close(s.errors)

	interval := s.settle / 4
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-s.w.Events:
			if !ok {
				return
			}
			if !s.handle(event) {
				return
			}
		case err, ok := <-s.w.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				s.logger.Warn("event queue overflowed, events were lost")
				continue
			}
			s.fail(fmt.Errorf("fsnotify: %w", err))
			return
		case now := <-ticker.C:
			if !s.flush(now) {
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *fsnotifySource) handle(event fsnotify.Event) bool {
	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Lstat(event.Name)
		if err != nil {
			return true
		}
		if info.IsDir() {
			// fsnotify reports directories moved into the tree as Create as well,
			// so files already inside are settled like new ones.
			files, err := s.addRecursive(event.Name)
			if err != nil {
				s.logger.Warn("cannot watch new directory", zap.String("path", event.Name), zap.Error(err))
			}
			for _, f := range files {
				s.pending[f] = time.Now()
			}
			return true
		}
		if !info.Mode().IsRegular() {
			return true
		}
		s.pending[event.Name] = time.Now()
		return s.send(Event{Path: event.Name, Kind: EventCreated})

	case event.Has(fsnotify.Write):
		s.pending[event.Name] = time.Now()

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if filepath.Clean(event.Name) == s.root {
			s.fail(fmt.Errorf("watched directory %s was removed", s.root))
			return false
		}
		delete(s.pending, event.Name)
	}
	return true
}

// flush emits ClosedAfterWrite for every file quiet for at least settle, in path order
func (s *fsnotifySource) flush(now time.Time) bool {
	var ready []string
	for path, last := range s.pending {
		if now.Sub(last) >= s.settle {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)

	for _, path := range ready {
		delete(s.pending, path)
		if _, err := os.Lstat(path); err != nil {
			continue
		}
		if !s.send(Event{Path: path, Kind: EventClosedAfterWrite}) {
			return false
		}
	}
	return true
}

func (s *fsnotifySource) fail(err error) {
	select {
	case <-s.done:
	default:
		s.errors <- err
	}
}

func (s *fsnotifySource) send(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}
