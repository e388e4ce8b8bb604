package repo

import (
	"fmt"
	"strings"

	"github.com/odvcencio/grit/pkg/object"
)

// Lookup resolves relPath, a slash-separated path, below tree root. An
// empty path names root itself.
func (r *Repo) Lookup(root object.Hash, relPath string) (object.TreeEntry, error) {
	relPath = strings.Trim(relPath, "/")
	if relPath == "" {
		if _, err := r.Store.Get(root, object.TypeTree); err != nil {
			return object.TreeEntry{}, err
		}
		return object.TreeEntry{Type: object.TypeTree, Hash: root}, nil
	}

	parts := strings.Split(relPath, "/")
	current := root
	for i, part := range parts {
		entries, err := r.Store.ReadTree(current)
		if err != nil {
			return object.TreeEntry{}, fmt.Errorf("read tree %s: %w", current, err)
		}

		var (
			entry object.TreeEntry
			found bool
		)
		for _, te := range entries {
			if te.Name == part {
				entry = te
				found = true
				break
			}
		}
		if !found {
			return object.TreeEntry{}, fmt.Errorf("path %q in %s: %w", relPath, root, object.ErrNotFound)
		}
		if i == len(parts)-1 {
			return entry, nil
		}
		if !entry.IsDir() {
			return object.TreeEntry{}, fmt.Errorf("path %q in %s: %s is not a tree: %w",
				relPath, root, strings.Join(parts[:i+1], "/"), object.ErrNotFound)
		}
		current = entry.Hash
	}
	return object.TreeEntry{}, fmt.Errorf("path %q in %s: %w", relPath, root, object.ErrNotFound)
}

// ResolveObject parses an object name: a hash, or "<tree>:<path>" naming
// an entry below a tree.
func (r *Repo) ResolveObject(name string) (object.Hash, error) {
	oid, relPath, hasPath := strings.Cut(strings.TrimSpace(name), ":")
	h, err := object.ParseHash(oid)
	if err != nil {
		return "", fmt.Errorf("not a valid object name: %q", name)
	}
	if !hasPath {
		return h, nil
	}
	entry, err := r.Lookup(h, relPath)
	if err != nil {
		return "", err
	}
	return entry.Hash, nil
}
