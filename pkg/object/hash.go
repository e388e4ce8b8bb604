package object

import (
	"bytes"
	"crypto/sha1"
	"fmt"
)

// Encode returns the canonical encoding "type\0payload" that is both hashed
// and stored.
func Encode(objType ObjectType, payload []byte) []byte {
	tag := objType.String()
	out := make([]byte, 0, len(tag)+1+len(payload))
	out = append(out, tag...)
	out = append(out, 0)
	out = append(out, payload...)
	return out
}

// Decode splits a canonical encoding back into its type and payload.
func Decode(raw []byte) (ObjectType, []byte, error) {
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return 0, nil, fmt.Errorf("%w: invalid format (no NUL)", ErrCorrupt)
	}
	objType, err := ParseObjectType(string(raw[:nulIdx]))
	if err != nil {
		return 0, nil, err
	}
	return objType, raw[nulIdx+1:], nil
}

// HashObject computes the SHA-1 of the canonical encoding "type\0payload".
func HashObject(objType ObjectType, payload []byte) Hash {
	h := sha1.New()
	h.Write([]byte(objType.String()))
	h.Write([]byte{0})
	h.Write(payload)
	return hashFromSum(h.Sum(nil))
}
