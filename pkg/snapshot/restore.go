package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/grit/pkg/object"
)

// Restore materializes the tree h at dest. Restore creates dest (and any
// subdirectory) itself, so an empty tree yields an empty directory.
// Existing files at entry paths are replaced; other files under dest are
// left alone. A symlink at an entry path is removed, never followed.
//
// Store errors (ErrNotFound, ErrTypeMismatch, ErrCorrupt) bubble up
// wrapped; filesystem failures are *RestoreError.
func (e *Engine) Restore(h object.Hash, dest string) error {
	return e.restoreTree(h, dest)
}

func (e *Engine) restoreTree(h object.Hash, dir string) error {
	entries, err := e.store.ReadTree(h)
	if err != nil {
		return fmt.Errorf("restore %s: %w", dir, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &RestoreError{Path: dir, Err: err}
	}

	for _, entry := range entries {
		target := filepath.Join(dir, entry.Name)
		switch entry.Type {
		case object.TypeBlob:
			data, err := e.store.ReadBlob(entry.Hash)
			if err != nil {
				return fmt.Errorf("restore %s: %w", target, err)
			}
			if err := writeFileAtomic(target, data, 0o644); err != nil {
				return &RestoreError{Path: target, Err: err}
			}
		case object.TypeTree:
			if err := removeSymlink(target); err != nil {
				return &RestoreError{Path: target, Err: err}
			}
			if err := e.restoreTree(entry.Hash, target); err != nil {
				return err
			}
		default:
			return fmt.Errorf("restore %s: %w: unknown entry type %s", target, object.ErrCorrupt, entry.Type)
		}
	}

	e.log.WithField("path", dir).Debug("restored directory")
	return nil
}

// removeSymlink deletes path if it is a symlink so a following MkdirAll
// creates a real directory instead of descending into the link target.
func removeSymlink(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return nil
	}
	return os.Remove(path)
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place, so a symlink already at path is replaced rather than written
// through.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".restore-tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
