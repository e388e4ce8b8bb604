package object

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

var _ Backend = (*Loose)(nil)

// LooseOptions configures a Loose backend.
type LooseOptions struct {
	// Compress stores new objects as zstd frames. Reads accept both forms.
	Compress bool
	Logger   logrus.FieldLogger
}

// Loose stores one file per object with a 2-character fan-out directory
// layout: objects/ab/cdef0123... Each file holds the canonical encoding,
// optionally zstd-compressed.
type Loose struct {
	root     string
	compress bool
	log      logrus.FieldLogger
}

// NewLoose returns a Loose backend rooted at root. It does not create
// anything; see CreateLoose.
func NewLoose(root string, opts LooseOptions) *Loose {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loose{
		root:     root,
		compress: opts.Compress,
		log:      log.WithField("backend", "loose"),
	}
}

// CreateLoose creates the objects/ directory under root and returns the
// backend.
func CreateLoose(root string, opts LooseOptions) (*Loose, error) {
	l := NewLoose(root, opts)
	if err := os.MkdirAll(l.objectsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create loose store: %w", err)
	}
	l.log.WithField("path", l.objectsDir()).Info("initialized loose object store")
	return l, nil
}

func (l *Loose) objectsDir() string {
	return filepath.Join(l.root, "objects")
}

// objectPath returns the filesystem path for a given hash.
func (l *Loose) objectPath(h Hash) string {
	return filepath.Join(l.objectsDir(), string(h[:2]), string(h[2:]))
}

func (l *Loose) Ready() error {
	info, err := os.Stat(l.objectsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s does not exist", ErrNotInitialized, l.objectsDir())
		}
		return fmt.Errorf("%w: %v", ErrNotInitialized, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrNotInitialized, l.objectsDir())
	}
	return nil
}

func (l *Loose) Has(h Hash) (bool, error) {
	_, err := os.Stat(l.objectPath(h))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Put writes the object atomically: data goes to a temp file in the fan-out
// directory which is then renamed into place.
func (l *Loose) Put(h Hash, objType ObjectType, payload []byte) error {
	ok, err := l.Has(h)
	if err != nil {
		return &WriteError{Op: "stat", Key: h, Err: err}
	}
	if ok {
		return nil
	}

	raw := Encode(objType, payload)
	if l.compress {
		compressed, err := compressZstd(raw)
		if err != nil {
			return &WriteError{Op: "compress", Key: h, Err: err}
		}
		raw = compressed
	}

	dir := filepath.Dir(l.objectPath(h))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Op: "mkdir", Key: h, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &WriteError{Op: "tmpfile", Key: h, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &WriteError{Op: "write", Key: h, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &WriteError{Op: "close", Key: h, Err: err}
	}
	if err := os.Rename(tmpName, l.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return &WriteError{Op: "rename", Key: h, Err: err}
	}

	l.log.WithFields(logrus.Fields{"hash": h, "type": objType, "size": len(payload)}).Debug("wrote object")
	return nil
}

func (l *Loose) Get(h Hash) (ObjectType, []byte, error) {
	raw, err := os.ReadFile(l.objectPath(h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil, fmt.Errorf("object %s: %w", h, ErrNotFound)
		}
		return 0, nil, fmt.Errorf("object read %s: %w", h, err)
	}
	if isZstdFrame(raw) {
		raw, err = decompressZstd(raw)
		if err != nil {
			return 0, nil, fmt.Errorf("object read %s: %w: %v", h, ErrCorrupt, err)
		}
	}
	objType, payload, err := Decode(raw)
	if err != nil {
		return 0, nil, fmt.Errorf("object read %s: %w", h, err)
	}
	return objType, payload, nil
}

func (l *Loose) Hashes() ([]Hash, error) {
	fanoutDirs, err := os.ReadDir(l.objectsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read objects dir: %w", err)
	}

	hashes := make([]Hash, 0)
	for _, fanoutDir := range fanoutDirs {
		if !fanoutDir.IsDir() {
			continue
		}
		prefix := fanoutDir.Name()
		if len(prefix) != 2 {
			continue
		}

		objectDir := filepath.Join(l.objectsDir(), prefix)
		objectEntries, err := os.ReadDir(objectDir)
		if err != nil {
			return nil, fmt.Errorf("read objects fanout %s: %w", prefix, err)
		}
		for _, objectEntry := range objectEntries {
			if objectEntry.IsDir() {
				continue
			}
			h := Hash(prefix + objectEntry.Name())
			if !h.Valid() {
				continue
			}
			hashes = append(hashes, h)
		}
	}

	sort.Slice(hashes, func(i, j int) bool {
		return hashes[i] < hashes[j]
	})
	return hashes, nil
}

func (l *Loose) Close() error {
	return nil
}
