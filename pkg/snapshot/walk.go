package snapshot

import (
	"errors"
	"fmt"
	"path"

	"github.com/odvcencio/grit/pkg/object"
)

// SkipDir can be returned by a WalkFunc on a tree entry to skip its
// contents.
var SkipDir = errors.New("skip this directory")

// WalkFunc is called for every entry reachable from the walked tree. p is
// the slash-separated path from the root tree.
type WalkFunc func(p string, entry object.TreeEntry) error

// FileEntry represents a single file in a flattened tree.
type FileEntry struct {
	Path string
	Hash object.Hash
}

// Walk visits every entry below tree h depth first, in stored order.
func (e *Engine) Walk(h object.Hash, fn WalkFunc) error {
	return e.walkRec(h, "", fn)
}

func (e *Engine) walkRec(h object.Hash, prefix string, fn WalkFunc) error {
	entries, err := e.store.ReadTree(h)
	if err != nil {
		return fmt.Errorf("walk tree %s: %w", h, err)
	}
	for _, entry := range entries {
		fullPath := path.Join(prefix, entry.Name)
		if err := fn(fullPath, entry); err != nil {
			if errors.Is(err, SkipDir) && entry.IsDir() {
				continue
			}
			return err
		}
		if entry.IsDir() {
			if err := e.walkRec(entry.Hash, fullPath, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flatten returns every file below tree h with its full path.
func (e *Engine) Flatten(h object.Hash) ([]FileEntry, error) {
	var result []FileEntry
	err := e.Walk(h, func(p string, entry object.TreeEntry) error {
		if entry.Type == object.TypeBlob {
			result = append(result, FileEntry{Path: p, Hash: entry.Hash})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
