// Package snapshot maps directory trees to tree objects in an object store
// and back.
package snapshot

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/object"
	"github.com/sirupsen/logrus"
)

// SymlinkPolicy selects how Snapshot treats symbolic links.
type SymlinkPolicy int

const (
	// SymlinkReject fails the snapshot with ErrUnsupportedFileType.
	SymlinkReject SymlinkPolicy = iota
	// SymlinkFollow stores the link target as if it were found in place of
	// the link.
	SymlinkFollow
)

func (p SymlinkPolicy) String() string {
	switch p {
	case SymlinkReject:
		return "reject"
	case SymlinkFollow:
		return "follow"
	default:
		return fmt.Sprintf("SymlinkPolicy(%d)", int(p))
	}
}

// ParseSymlinkPolicy parses "reject" or "follow". Empty means reject.
func ParseSymlinkPolicy(s string) (SymlinkPolicy, error) {
	switch s {
	case "", "reject":
		return SymlinkReject, nil
	case "follow":
		return SymlinkFollow, nil
	default:
		return 0, fmt.Errorf("unknown symlink policy %q (want reject or follow)", s)
	}
}

// Engine snapshots directories into a Store and restores them.
type Engine struct {
	store       *object.Store
	symlinks    SymlinkPolicy
	parallelism int
	log         logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSymlinks sets the symlink policy.
func WithSymlinks(p SymlinkPolicy) Option {
	return func(e *Engine) { e.symlinks = p }
}

// WithParallelism bounds how many subdirectories are snapshotted at once.
// Values below 2 snapshot sequentially.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.parallelism = n
	}
}

// WithLogger sets the logger for engine events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New creates an Engine over store.
func New(store *object.Store, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		symlinks:    SymlinkReject,
		parallelism: 1,
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the engine's object store.
func (e *Engine) Store() *object.Store { return e.store }
