package repo

import (
	"fmt"
	"path/filepath"

	"github.com/odvcencio/grit/pkg/object"
	"github.com/odvcencio/grit/pkg/snapshot"
	"github.com/sirupsen/logrus"
)

// TreeListing is one line of LsTree output.
type TreeListing struct {
	Type object.ObjectType
	Hash object.Hash
	Path string // slash-separated, relative to the listed tree
}

func (l TreeListing) String() string {
	return fmt.Sprintf("%s %s\t%s", l.Type, l.Hash, l.Path)
}

// Ignore builds the ignore set used by WriteTree: the repository
// directory, the configured paths and the patterns in the ignore file.
func (r *Repo) Ignore() (*snapshot.Ignore, error) {
	ig, err := snapshot.NewIgnore(r.WorkTree, r.Dir)
	if err != nil {
		return nil, err
	}
	for _, p := range r.Config.Snapshot.Ignore {
		if err := ig.AddPath(p); err != nil {
			return nil, err
		}
	}
	if name := r.Config.Snapshot.IgnoreFile; name != "" {
		if !filepath.IsAbs(name) {
			name = filepath.Join(r.WorkTree, name)
		}
		if err := ig.LoadPatternFile(name); err != nil {
			return nil, err
		}
	}
	return ig, nil
}

// WriteTree snapshots the work tree and returns the root tree hash.
func (r *Repo) WriteTree() (object.Hash, error) {
	ig, err := r.Ignore()
	if err != nil {
		return "", fmt.Errorf("write-tree: %w", err)
	}
	h, err := r.Engine.Snapshot(r.WorkTree, ig)
	if err != nil {
		return "", fmt.Errorf("write-tree: %w", err)
	}
	r.log.WithFields(logrus.Fields{"tree": h, "work_tree": r.WorkTree}).Info("wrote tree")
	return h, nil
}

// ReadTree restores tree h into dest, or into the work tree when dest is
// empty.
func (r *Repo) ReadTree(h object.Hash, dest string) error {
	if dest == "" {
		dest = r.WorkTree
	}
	if err := r.Engine.Restore(h, dest); err != nil {
		return fmt.Errorf("read-tree: %w", err)
	}
	r.log.WithFields(logrus.Fields{"tree": h, "dest": dest}).Info("restored tree")
	return nil
}

// LsTree lists the entries of tree h. With recursive set it descends into
// subtrees and lists every entry below h, subtrees included.
func (r *Repo) LsTree(h object.Hash, recursive bool) ([]TreeListing, error) {
	var out []TreeListing
	err := r.Engine.Walk(h, func(p string, entry object.TreeEntry) error {
		out = append(out, TreeListing{Type: entry.Type, Hash: entry.Hash, Path: p})
		if entry.IsDir() && !recursive {
			return snapshot.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ls-tree: %w", err)
	}
	return out, nil
}
