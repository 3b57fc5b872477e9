// Package watcher turns filesystem notifications under an inbox directory into
// an ordered stream of file events.
package watcher

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// EventKind classifies a filesystem notification
type EventKind int

const (
	EventOther EventKind = iota
	EventCreated
	EventClosedAfterWrite
	EventRenamedInto
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventClosedAfterWrite:
		return "closed-after-write"
	case EventRenamedInto:
		return "renamed-into"
	default:
		return "other"
	}
}

// Event is one notification for a file inside the watched tree
type Event struct {
	Path string
	Kind EventKind
}

// Complete reports whether the event means the file is fully written
func (e Event) Complete() bool {
	return e.Kind == EventClosedAfterWrite || e.Kind == EventRenamedInto
}

// Source delivers events in the order they were observed. Both channels are
// closed once the source stops. A value on Errors means the stream is broken.
type Source interface {
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// Backend names
const (
	BackendInotify  = "inotify"
	BackendFsnotify = "fsnotify"
)

// DefaultSettle is how long the fsnotify backend waits for a file to go quiet
const DefaultSettle = 2 * time.Second

const queueSize = 256

// Options selects and tunes the backend
type Options struct {
	Backend string
	Settle  time.Duration // fsnotify backend only
	Logger  *zap.Logger
}

// New starts watching root recursively with the configured backend
func New(root string, opts Options) (Source, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "watcher"), zap.String("backend", opts.Backend))

	switch opts.Backend {
	case BackendInotify, "":
		return newInotify(root, logger)
	case BackendFsnotify:
		settle := opts.Settle
		if settle <= 0 {
			settle = DefaultSettle
		}
		return newFsnotify(root, settle, logger)
	default:
		return nil, fmt.Errorf("unknown watch backend %q", opts.Backend)
	}
}
