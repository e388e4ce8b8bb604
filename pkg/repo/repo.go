package repo

import (
	"github.com/odvcencio/grit/pkg/object"
	"github.com/odvcencio/grit/pkg/snapshot"
	"github.com/sirupsen/logrus"
)

// DefaultDirName is the repository directory created inside a work tree
// when no explicit location is given.
const DefaultDirName = ".grit"

// Repo represents an opened grit repository.
type Repo struct {
	WorkTree string           // directory snapshotted by WriteTree
	Dir      string           // repository directory holding config and objects
	Config   *Config          // parsed config.toml
	Store    *object.Store    // content-addressed object store
	Engine   *snapshot.Engine // tree snapshot engine over Store

	log logrus.FieldLogger
}

// Option configures Init and Open.
type Option func(*options)

type options struct {
	log logrus.FieldLogger
}

// WithLogger sets the logger used by the repository, its store and its
// snapshot engine.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Close releases the object store.
func (r *Repo) Close() error {
	return r.Store.Close()
}
