package organizer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Nomadcxx/mediasort/internal/media"
)

// transferMethod records how a file reached its destination
type transferMethod string

const (
	methodRename transferMethod = "rename"
	methodCopy   transferMethod = "copy"
)

// rename is swapped in tests to force the copy fallback
var rename = os.Rename

// transfer moves src to dst, creating dst's parents. Any rename failure falls
// back to copy then remove. A partial destination left by a failed copy is not
// cleaned up.
func transfer(src, dst string) (transferMethod, error) {
	destDir := filepath.Dir(dst)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", media.FilesystemError("mkdir", destDir, err)
	}

	renameErr := rename(src, dst)
	if renameErr == nil {
		return methodRename, nil
	}

	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("rename failed (%v), copy fallback: %w", renameErr, err)
	}
	if err := os.Remove(src); err != nil {
		return "", media.FilesystemError("remove", src, err)
	}
	return methodCopy, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return media.FilesystemError("open", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return media.FilesystemError("stat", src, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return media.FilesystemError("create", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return media.FilesystemError("copy", dst, err)
	}
	if err := out.Close(); err != nil {
		return media.FilesystemError("close", dst, err)
	}
	return nil
}
