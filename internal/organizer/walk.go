package organizer

import (
	"context"
	"io/fs"
	"path/filepath"
)

// WalkFunc is called for each regular file, or with a non-nil err for entries
// that could not be read. Returning an error stops the walk.
type WalkFunc func(path string, err error) error

// Walk visits the files under root depth-first in lexical order. Library roots
// nested inside root are not descended into, so a sort never re-processes what
// it just placed. The walk stops between files when ctx is cancelled.
func (o *Organizer) Walk(ctx context.Context, root string, fn WalkFunc) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if cbErr := fn(path, err); cbErr != nil {
				return cbErr
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != root && o.builder.IsRoot(absPath(path)) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return fn(path, nil)
	})
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
