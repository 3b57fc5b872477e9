package organizer

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"

	"github.com/Nomadcxx/mediasort/internal/media"
)

// Ownership is a resolved uid/gid pair. -1 leaves the value unchanged.
type Ownership struct {
	UID int
	GID int
}

// Unchanged reports whether no chown is needed
func (o Ownership) Unchanged() bool {
	return o.UID == -1 && o.GID == -1
}

// ResolveOwnership looks user and group names (or numeric ids) up. Empty names
// resolve to -1.
func ResolveOwnership(userName, groupName string) (Ownership, error) {
	own := Ownership{UID: -1, GID: -1}

	if userName != "" {
		uid, err := lookupID(userName, func(n string) (string, error) {
			u, err := user.Lookup(n)
			if err != nil {
				return "", err
			}
			return u.Uid, nil
		})
		if err != nil {
			return own, fmt.Errorf("unknown user %q: %w", userName, err)
		}
		own.UID = uid
	}

	if groupName != "" {
		gid, err := lookupID(groupName, func(n string) (string, error) {
			g, err := user.LookupGroup(n)
			if err != nil {
				return "", err
			}
			return g.Gid, nil
		})
		if err != nil {
			return own, fmt.Errorf("unknown group %q: %w", groupName, err)
		}
		own.GID = gid
	}

	return own, nil
}

func lookupID(name string, lookup func(string) (string, error)) (int, error) {
	if id, err := strconv.Atoi(name); err == nil {
		return id, nil
	}
	idStr, err := lookup(name)
	if err != nil {
		return -1, err
	}
	return strconv.Atoi(idStr)
}

// cascade applies mode and ownership from dest upward, stopping at the first
// library root. Directories get the execute bits added to mode. Roots are never
// touched. It returns the paths it changed, deepest first.
func (o *Organizer) cascade(dest string) ([]string, error) {
	var touched []string

	for current := filepath.Clean(dest); !o.builder.IsRoot(current); current = filepath.Dir(current) {
		parent := filepath.Dir(current)
		if parent == current {
			// Walked off the filesystem root without meeting a library root
			return touched, fmt.Errorf("%s is outside the library roots", dest)
		}

		info, err := os.Lstat(current)
		if err != nil {
			return touched, media.FilesystemError("stat", current, err)
		}

		mode := o.mode
		if info.IsDir() {
			mode |= 0o111
		}
		if err := os.Chmod(current, mode); err != nil {
			return touched, media.FilesystemError("chmod", current, err)
		}
		if !o.owner.Unchanged() {
			if err := os.Lchown(current, o.owner.UID, o.owner.GID); err != nil {
				return touched, media.FilesystemError("chown", current, err)
			}
		}
		touched = append(touched, current)
	}

	return touched, nil
}
