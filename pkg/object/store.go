package object

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// Store is a content-addressed object store over a pluggable Backend.
// Objects are immutable: Put only ever inserts, and a duplicate Put is a
// no-op. Store is safe for concurrent use when its backend is.
type Store struct {
	backend      Backend
	log          logrus.FieldLogger
	verifyOnRead bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for store events.
func WithLogger(log logrus.FieldLogger) StoreOption {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithVerifyOnRead controls whether Get re-hashes records before returning
// them. It is on by default.
func WithVerifyOnRead(verify bool) StoreOption {
	return func(s *Store) { s.verifyOnRead = verify }
}

// NewStore creates a Store over b.
func NewStore(b Backend, opts ...StoreOption) *Store {
	s := &Store{
		backend:      b,
		log:          logrus.StandardLogger(),
		verifyOnRead: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureReady reports ErrNotInitialized when the backing location is absent.
// Every other operation checks it first.
func (s *Store) EnsureReady() error {
	return s.backend.Ready()
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) (bool, error) {
	if err := s.EnsureReady(); err != nil {
		return false, err
	}
	if !h.Valid() {
		return false, nil
	}
	return s.backend.Has(h)
}

// Put stores payload under its content hash and returns the hash.
func (s *Store) Put(objType ObjectType, payload []byte) (Hash, error) {
	if !objType.Valid() {
		return "", fmt.Errorf("object put: unknown type %s", objType)
	}
	if err := s.EnsureReady(); err != nil {
		return "", err
	}

	h := HashObject(objType, payload)
	if err := s.backend.Put(h, objType, payload); err != nil {
		return "", err
	}
	return h, nil
}

// Read returns the type and payload stored under h without a type check.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	if err := s.EnsureReady(); err != nil {
		return 0, nil, err
	}
	if !h.Valid() {
		return 0, nil, fmt.Errorf("object %q: %w", string(h), ErrNotFound)
	}

	objType, payload, err := s.backend.Get(h)
	if err != nil {
		return 0, nil, err
	}
	if s.verifyOnRead {
		if actual := HashObject(objType, payload); actual != h {
			return 0, nil, fmt.Errorf("object %s: %w: hash mismatch (computed %s)", h, ErrCorrupt, actual)
		}
	}
	return objType, payload, nil
}

// Get returns the payload stored under h. When expected is non-empty the
// stored type must be one of them, otherwise a *TypeMismatchError is
// returned.
func (s *Store) Get(h Hash, expected ...ObjectType) ([]byte, error) {
	objType, payload, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if len(expected) > 0 && !slices.Contains(expected, objType) {
		return nil, &TypeMismatchError{Hash: h, Want: slices.Clone(expected), Got: objType}
	}
	return payload, nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob stores data as a blob.
func (s *Store) WriteBlob(data []byte) (Hash, error) {
	return s.Put(TypeBlob, data)
}

// ReadBlob reads a blob.
func (s *Store) ReadBlob(h Hash) ([]byte, error) {
	return s.Get(h, TypeBlob)
}

// WriteTree serializes and stores a tree.
func (s *Store) WriteTree(entries []TreeEntry) (Hash, error) {
	data, err := MarshalTree(entries)
	if err != nil {
		return "", err
	}
	return s.Put(TypeTree, data)
}

// ReadTree reads and parses a tree.
func (s *Store) ReadTree(h Hash) ([]TreeEntry, error) {
	data, err := s.Get(h, TypeTree)
	if err != nil {
		return nil, err
	}
	entries, err := UnmarshalTree(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return entries, nil
}
