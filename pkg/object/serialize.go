package object

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// MarshalTree serializes tree entries. Entries are sorted by
// (type, hash, name) before encoding; the order is part of the hash input.
// Each entry is
//
//	type\0hash\0name
//
// and entries are joined by '\n' with no trailing newline. No entries
// encode to an empty payload.
func MarshalTree(entries []TreeEntry) ([]byte, error) {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	SortEntries(sorted)

	var buf bytes.Buffer
	for i, e := range sorted {
		if !e.Type.Valid() {
			return nil, fmt.Errorf("marshal tree: entry %q: unknown type %s", e.Name, e.Type)
		}
		if !e.Hash.Valid() {
			return nil, fmt.Errorf("marshal tree: entry %q: invalid hash %q", e.Name, e.Hash)
		}
		if err := ValidateName(e.Name); err != nil {
			return nil, fmt.Errorf("marshal tree: %w", err)
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(e.Type.String())
		buf.WriteByte(0)
		buf.WriteString(string(e.Hash))
		buf.WriteByte(0)
		buf.WriteString(e.Name)
	}
	return buf.Bytes(), nil
}

// UnmarshalTree parses a tree payload. Malformed entries are ErrCorrupt.
func UnmarshalTree(data []byte) ([]TreeEntry, error) {
	if len(data) == 0 {
		return nil, nil
	}
	lines := strings.Split(string(data), "\n")
	entries := make([]TreeEntry, 0, len(lines))
	for _, line := range lines {
		parts := strings.Split(line, "\x00")
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: unmarshal tree: malformed entry %q", ErrCorrupt, line)
		}
		objType, err := ParseObjectType(parts[0])
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w", err)
		}
		h := Hash(parts[1])
		if !h.Valid() {
			return nil, fmt.Errorf("%w: unmarshal tree: invalid hash %q", ErrCorrupt, parts[1])
		}
		if err := ValidateName(parts[2]); err != nil {
			return nil, fmt.Errorf("%w: unmarshal tree: %w", ErrCorrupt, err)
		}
		entries = append(entries, TreeEntry{Type: objType, Hash: h, Name: parts[2]})
	}
	return entries, nil
}

// SortEntries sorts entries in place into canonical tree order: by type tag,
// then hash, then name, comparing bytes.
func SortEntries(entries []TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if ta, tb := a.Type.String(), b.Type.String(); ta != tb {
			return ta < tb
		}
		if a.Hash != b.Hash {
			return a.Hash < b.Hash
		}
		return a.Name < b.Name
	})
}

// ValidateName checks that name is a single path component that the tree
// encoding can carry.
func ValidateName(name string) error {
	switch name {
	case "", ".", "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, "/\x00\n") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
