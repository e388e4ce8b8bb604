package object

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"testing"
)

func TestHashObjectKnownVectors(t *testing.T) {
	tests := []struct {
		name    string
		typ     ObjectType
		payload string
		want    Hash
	}{
		{"bacon", TypeBlob, "Bacon ipsum dolor amet doner pork chop filet mignon beef ribs.\n", "9cd51de1c206221527fd40ae2b45cfdd96b8fb07"},
		{"hello", TypeBlob, "hello\n", "a921a1ed31bcddeb5a51085e5d7dbdc7cf86b905"},
		{"empty blob", TypeBlob, "", "48ede76ef68a65b7292840b4ad4d1f111359d82a"},
		{"empty tree", TypeTree, "", "d28c5ff92df044a522508a29cf3fad0b812f672f"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HashObject(tt.typ, []byte(tt.payload))
			if got != tt.want {
				t.Errorf("HashObject = %s, want %s", got, tt.want)
			}
			if rawSHA1(Encode(tt.typ, []byte(tt.payload))) != got {
				t.Error("HashObject disagrees with SHA-1 of the encoded form")
			}
		})
	}
}

func rawSHA1(data []byte) Hash {
	sum := sha1.Sum(data)
	return Hash(hex.EncodeToString(sum[:]))
}

func TestHashObjectTypeMatters(t *testing.T) {
	data := []byte("hello")
	if HashObject(TypeBlob, data) == HashObject(TypeTree, data) {
		t.Error("Different types should produce different hashes")
	}
	if HashObject(TypeBlob, data) == rawSHA1(data) {
		t.Error("HashObject should differ from the raw SHA-1 due to the type tag")
	}
}

func TestEncodeDecode(t *testing.T) {
	raw := Encode(TypeTree, []byte("a\x00b"))
	if !bytes.Equal(raw, []byte("tree\x00a\x00b")) {
		t.Fatalf("Encode = %q", raw)
	}
	typ, payload, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if typ != TypeTree || string(payload) != "a\x00b" {
		t.Errorf("Decode = (%s, %q)", typ, payload)
	}
}

func TestDecodeCorrupt(t *testing.T) {
	for _, raw := range []string{"blob", "invalid_type\x00data", "\x00data", "Blob\x00x"} {
		if _, _, err := Decode([]byte(raw)); !errors.Is(err, ErrCorrupt) {
			t.Errorf("Decode(%q) error = %v, want ErrCorrupt", raw, err)
		}
	}
}

func TestObjectTypeString(t *testing.T) {
	if TypeBlob.String() != "blob" || TypeTree.String() != "tree" {
		t.Fatalf("tags: %q %q", TypeBlob, TypeTree)
	}
	for _, tag := range []string{"blob", "tree"} {
		typ, err := ParseObjectType(tag)
		if err != nil {
			t.Fatalf("ParseObjectType(%q): %v", tag, err)
		}
		if typ.String() != tag {
			t.Errorf("round trip %q -> %q", tag, typ)
		}
	}
	if ObjectType(0).Valid() || ObjectType(9).Valid() {
		t.Error("zero and out-of-range types should be invalid")
	}
}

func TestParseHash(t *testing.T) {
	h, err := ParseHash(" 9CD51DE1C206221527FD40AE2B45CFDD96B8FB07\n")
	if err != nil {
		t.Fatalf("ParseHash: %v", err)
	}
	if h != "9cd51de1c206221527fd40ae2b45cfdd96b8fb07" {
		t.Errorf("ParseHash = %q", h)
	}
	for _, bad := range []string{"", "abc", "zzd51de1c206221527fd40ae2b45cfdd96b8fb07", "9cd51de1c206221527fd40ae2b45cfdd96b8fb0701"} {
		if _, err := ParseHash(bad); err == nil {
			t.Errorf("ParseHash(%q) should fail", bad)
		}
	}
}
