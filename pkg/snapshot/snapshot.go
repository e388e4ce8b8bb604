package snapshot

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/odvcencio/grit/pkg/object"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Snapshot writes the directory at root into the store and returns the hash
// of its tree. Children matched by ignore are skipped; ignore may be nil.
// Files become blobs, directories become nested trees, and an empty
// directory becomes the empty tree.
//
// Objects written before a failure stay in the store; they are valid
// content-addressed records and are reused by a retry.
func (e *Engine) Snapshot(root string, ignore *Ignore) (object.Hash, error) {
	dir, err := canonicalPath(root)
	if err != nil {
		return "", fmt.Errorf("snapshot %s: %w", root, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("snapshot %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("snapshot %s: not a directory", root)
	}
	if err := e.store.EnsureReady(); err != nil {
		return "", err
	}

	w := &walker{engine: e, ignore: ignore}
	if e.parallelism > 1 {
		// The calling goroutine is one worker; the semaphore covers the rest.
		w.sem = semaphore.NewWeighted(int64(e.parallelism - 1))
	}

	h, err := w.snapshotDir(dir, "", []string{dir})
	if err != nil {
		return "", err
	}
	e.log.WithFields(logrus.Fields{"root": dir, "tree": h}).Debug("snapshot complete")
	return h, nil
}

type walker struct {
	engine *Engine
	ignore *Ignore
	sem    *semaphore.Weighted
}

type childKind int

const (
	kindSkip childKind = iota
	kindFile
	kindDir
)

// snapshotDir writes the tree for dir. rel is the slash-separated path of
// dir below the snapshot root and ancestors the canonical directories on the
// way down, used to detect symlink cycles.
func (w *walker) snapshotDir(dir, rel string, ancestors []string) (object.Hash, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("snapshot %s: %w", dir, err)
	}

	results := make([]object.TreeEntry, len(dirEntries))
	keep := make([]bool, len(dirEntries))

	var g errgroup.Group
	for i, de := range dirEntries {
		i := i // per-iteration copy: closures below may run in goroutines (go < 1.22 loop semantics)
		name := de.Name()
		abs := filepath.Join(dir, name)
		childRel := path.Join(rel, name)

		kind, target, err := w.classify(abs, childRel)
		if err != nil {
			g.Wait()
			return "", err
		}
		if kind == kindSkip {
			continue
		}
		if err := object.ValidateName(name); err != nil {
			g.Wait()
			return "", fmt.Errorf("snapshot %s: %w", abs, err)
		}

		switch kind {
		case kindFile:
			h, err := w.snapshotFile(target)
			if err != nil {
				g.Wait()
				return "", err
			}
			results[i] = object.TreeEntry{Type: object.TypeBlob, Hash: h, Name: name}
			keep[i] = true

		case kindDir:
			if slices.Contains(ancestors, target) {
				g.Wait()
				return "", &UnsupportedFileTypeError{Path: abs, Mode: fs.ModeSymlink, Reason: "symlink cycle"}
			}
			childAncestors := append(slices.Clone(ancestors), target)
			run := func() error {
				h, err := w.snapshotDir(target, childRel, childAncestors)
				if err != nil {
					return err
				}
				results[i] = object.TreeEntry{Type: object.TypeTree, Hash: h, Name: name}
				keep[i] = true
				return nil
			}
			if w.sem != nil && w.sem.TryAcquire(1) {
				g.Go(func() error {
					defer w.sem.Release(1)
					return run()
				})
				continue
			}
			if err := run(); err != nil {
				g.Wait()
				return "", err
			}
		}
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	entries := make([]object.TreeEntry, 0, len(results))
	for i, entry := range results {
		if keep[i] {
			entries = append(entries, entry)
		}
	}

	h, err := w.engine.store.WriteTree(entries)
	if err != nil {
		return "", fmt.Errorf("snapshot %s: write tree: %w", dir, err)
	}
	return h, nil
}

// classify decides what to do with the directory entry at abs. For kindFile
// and kindDir it returns the path to read, which differs from abs for a
// followed symlink.
func (w *walker) classify(abs, rel string) (childKind, string, error) {
	info, err := os.Lstat(abs)
	if err != nil {
		return kindSkip, "", fmt.Errorf("snapshot %s: %w", abs, err)
	}
	mode := info.Mode()

	if w.ignore.Match(abs, rel, mode.IsDir()) {
		w.engine.log.WithField("path", abs).Debug("ignored")
		return kindSkip, "", nil
	}

	switch {
	case mode.IsRegular():
		return kindFile, abs, nil
	case mode.IsDir():
		return kindDir, abs, nil
	case mode&fs.ModeSymlink != 0:
		if w.engine.symlinks != SymlinkFollow {
			return kindSkip, "", &UnsupportedFileTypeError{Path: abs, Mode: mode, Reason: "symlinks are rejected"}
		}
		return w.followSymlink(abs, rel)
	default:
		return kindSkip, "", &UnsupportedFileTypeError{Path: abs, Mode: mode}
	}
}

func (w *walker) followSymlink(abs, rel string) (childKind, string, error) {
	target, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return kindSkip, "", fmt.Errorf("snapshot %s: resolve symlink: %w", abs, err)
	}
	info, err := os.Stat(target)
	if err != nil {
		return kindSkip, "", fmt.Errorf("snapshot %s: %w", abs, err)
	}
	mode := info.Mode()

	// A link may point into an excluded location such as the store itself.
	if w.ignore.Match(target, "", mode.IsDir()) {
		w.engine.log.WithFields(logrus.Fields{"path": abs, "target": target}).Debug("ignored symlink target")
		return kindSkip, "", nil
	}

	switch {
	case mode.IsRegular():
		return kindFile, target, nil
	case mode.IsDir():
		return kindDir, target, nil
	default:
		return kindSkip, "", &UnsupportedFileTypeError{Path: abs, Mode: mode, Reason: "symlink target is not a file or directory"}
	}
}

func (w *walker) snapshotFile(file string) (object.Hash, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("snapshot %s: %w", file, err)
	}
	h, err := w.engine.store.WriteBlob(data)
	if err != nil {
		return "", fmt.Errorf("snapshot %s: %w", file, err)
	}
	return h, nil
}
