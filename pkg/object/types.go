package object

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HashLen is the length of a hex-encoded SHA-1 digest.
const HashLen = 40

// Hash is a 40-character lowercase hex-encoded SHA-1 digest.
type Hash string

// ParseHash validates s as an object hash and returns it lowercased.
func ParseHash(s string) (Hash, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	h := Hash(s)
	if !h.Valid() {
		return "", fmt.Errorf("invalid object hash %q", s)
	}
	return h, nil
}

// Valid reports whether h is 40 lowercase hex characters.
func (h Hash) Valid() bool {
	if len(h) != HashLen {
		return false
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func (h Hash) String() string { return string(h) }

func hashFromSum(sum []byte) Hash {
	return Hash(hex.EncodeToString(sum))
}

// ObjectType identifies the kind of object stored. The set is closed: the
// textual form is part of the hash input, so it is spelled out by hand
// rather than derived.
type ObjectType uint8

const (
	TypeBlob ObjectType = iota + 1
	TypeTree
)

const (
	tagBlob = "blob"
	tagTree = "tree"
)

// String returns the wire tag for t.
func (t ObjectType) String() string {
	switch t {
	case TypeBlob:
		return tagBlob
	case TypeTree:
		return tagTree
	default:
		return fmt.Sprintf("ObjectType(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the known object types.
func (t ObjectType) Valid() bool {
	return t == TypeBlob || t == TypeTree
}

// ParseObjectType decodes a wire tag. Unknown tags are corrupt data.
func ParseObjectType(s string) (ObjectType, error) {
	switch s {
	case tagBlob:
		return TypeBlob, nil
	case tagTree:
		return TypeTree, nil
	default:
		return 0, fmt.Errorf("%w: unknown object type %q", ErrCorrupt, s)
	}
}

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Type ObjectType
	Hash Hash
	Name string
}

// IsDir reports whether the entry names a subtree.
func (e TreeEntry) IsDir() bool { return e.Type == TypeTree }

func typeList(ts []ObjectType) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}
	return strings.Join(names, "|")
}
