package repo

import (
	"fmt"
	"slices"

	"github.com/odvcencio/grit/pkg/object"
	"github.com/sirupsen/logrus"
)

// HashObject computes the hash of data as an object of type t and, when
// write is set, stores it. Tree payloads must be canonical.
func (r *Repo) HashObject(data []byte, t object.ObjectType, write bool) (object.Hash, error) {
	if !t.Valid() {
		return "", fmt.Errorf("hash-object: unknown type %s", t)
	}
	if t == object.TypeTree {
		if err := checkCanonicalTree(data); err != nil {
			return "", fmt.Errorf("hash-object: %w", err)
		}
	}
	if !write {
		return object.HashObject(t, data), nil
	}
	h, err := r.Store.Put(t, data)
	if err != nil {
		return "", fmt.Errorf("hash-object: %w", err)
	}
	r.log.WithFields(logrus.Fields{"hash": h, "type": t}).Debug("stored object")
	return h, nil
}

// checkCanonicalTree rejects tree payloads that do not parse or that are
// not in the form MarshalTree produces.
func checkCanonicalTree(data []byte) error {
	entries, err := object.UnmarshalTree(data)
	if err != nil {
		return err
	}
	canon, err := object.MarshalTree(entries)
	if err != nil {
		return fmt.Errorf("%w: %w", object.ErrCorrupt, err)
	}
	if string(canon) != string(data) {
		return fmt.Errorf("%w: tree entries are not in canonical order", object.ErrCorrupt)
	}
	return nil
}

// CatFile returns the type and payload of h. When expected is non-empty the
// stored type must be one of them.
func (r *Repo) CatFile(h object.Hash, expected ...object.ObjectType) (object.ObjectType, []byte, error) {
	t, payload, err := r.Store.Read(h)
	if err != nil {
		return 0, nil, err
	}
	if len(expected) > 0 && !slices.Contains(expected, t) {
		return 0, nil, &object.TypeMismatchError{Hash: h, Want: slices.Clone(expected), Got: t}
	}
	return t, payload, nil
}

// TypeOf returns the stored type of h.
func (r *Repo) TypeOf(h object.Hash) (object.ObjectType, error) {
	t, _, err := r.Store.Read(h)
	return t, err
}

// Exists reports whether h is stored.
func (r *Repo) Exists(h object.Hash) (bool, error) {
	return r.Store.Has(h)
}

// Verify re-hashes every stored object.
func (r *Repo) Verify() (*object.VerifySummary, error) {
	return r.Store.Verify()
}
