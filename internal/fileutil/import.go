package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEscapesRoot reports a destination that would land outside its root
// directory.
var ErrEscapesRoot = errors.New("destination escapes root directory")

// CopyInto copies src into destRoot under the optional relative subdirectory
// relDir, creating directories as needed. The final path always stays inside
// destRoot; relDir values like "../elsewhere" are rejected. When a file with
// the same name already exists, a numeric suffix is appended (name_1.ext,
// name_2.ext, ...). Returns the destination path written.
func CopyInto(src, destRoot, relDir string) (string, error) {
	destDir, err := secureJoin(destRoot, relDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination directory: %w", err)
	}

	dst, err := collisionFreePath(filepath.Join(destDir, filepath.Base(src)))
	if err != nil {
		return "", err
	}
	if err := CopyFileVerified(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// MoveInto moves src into destRoot the same way CopyInto copies, falling back
// to copy-then-remove when rename crosses filesystems. Used for quarantine.
func MoveInto(src, destRoot, relDir string) (string, error) {
	destDir, err := secureJoin(destRoot, relDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination directory: %w", err)
	}

	dst, err := collisionFreePath(filepath.Join(destDir, filepath.Base(src)))
	if err != nil {
		return "", err
	}
	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}
	if err := CopyFileVerified(src, dst); err != nil {
		return "", err
	}
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("remove source after copy: %w", err)
	}
	return dst, nil
}

func secureJoin(root, rel string) (string, error) {
	root = filepath.Clean(root)
	if rel == "" {
		return root, nil
	}
	joined := filepath.Clean(filepath.Join(root, rel))
	if joined != root && !strings.HasPrefix(joined, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrEscapesRoot, rel)
	}
	return joined, nil
}

func collisionFreePath(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return path, nil
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; i < 1000; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, err := os.Stat(candidate); err != nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no collision-free name for %s", path)
}
