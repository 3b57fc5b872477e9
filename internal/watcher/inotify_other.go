//go:build !linux

package watcher

import (
	"fmt"

	"go.uber.org/zap"
)

func newInotify(root string, logger *zap.Logger) (Source, error) {
	return nil, fmt.Errorf("the inotify backend requires linux, use %q", BackendFsnotify)
}
