package object

import (
	"errors"
	"reflect"
	"testing"
)

const (
	helloHash = Hash("a921a1ed31bcddeb5a51085e5d7dbdc7cf86b905")
	worldHash = Hash("19747b55e5cd85449fb13dc593c4bec92023ac5b")
	barHash   = Hash("cbd562ad5aef8b67aa45e19ae0f5118c585cdcde")
)

func TestMarshalTreeCanonicalOrder(t *testing.T) {
	entries := []TreeEntry{
		{Type: TypeTree, Hash: barHash, Name: "bar"},
		{Type: TypeBlob, Hash: helloHash, Name: "foo.txt"},
	}
	data, err := MarshalTree(entries)
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	want := "blob\x00" + string(helloHash) + "\x00foo.txt\ntree\x00" + string(barHash) + "\x00bar"
	if string(data) != want {
		t.Fatalf("MarshalTree =\n%q\nwant\n%q", data, want)
	}
	if got := HashObject(TypeTree, data); got != "501d1fbd1356e278cf16101ac3309ee373ba7e1c" {
		t.Errorf("tree hash = %s", got)
	}

	// Input order must not matter, and the input slice is left untouched.
	reversed := []TreeEntry{entries[1], entries[0]}
	data2, err := MarshalTree(reversed)
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	if string(data2) != string(data) {
		t.Error("MarshalTree depends on input order")
	}
	if reversed[0].Name != "foo.txt" {
		t.Error("MarshalTree mutated its input")
	}
}

func TestSortEntriesByTypeThenHashThenName(t *testing.T) {
	entries := []TreeEntry{
		{Type: TypeTree, Hash: helloHash, Name: "a"},
		{Type: TypeBlob, Hash: worldHash, Name: "a"},
		{Type: TypeBlob, Hash: helloHash, Name: "z"},
		{Type: TypeBlob, Hash: helloHash, Name: "b"},
	}
	SortEntries(entries)
	want := []TreeEntry{
		{Type: TypeBlob, Hash: worldHash, Name: "a"},
		{Type: TypeBlob, Hash: helloHash, Name: "b"},
		{Type: TypeBlob, Hash: helloHash, Name: "z"},
		{Type: TypeTree, Hash: helloHash, Name: "a"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("SortEntries =\n%v\nwant\n%v", entries, want)
	}
}

func TestMarshalTreeEmpty(t *testing.T) {
	data, err := MarshalTree(nil)
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("empty tree payload = %q, want empty", data)
	}
	entries, err := UnmarshalTree(data)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want none", entries)
	}
}

func TestMarshalTreeRejectsBadNames(t *testing.T) {
	for _, name := range []string{"", ".", "..", "a/b", "a\nb", "a\x00b"} {
		_, err := MarshalTree([]TreeEntry{{Type: TypeBlob, Hash: helloHash, Name: name}})
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("MarshalTree(name=%q) error = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestUnmarshalTreeRoundTrip(t *testing.T) {
	in := []TreeEntry{
		{Type: TypeBlob, Hash: helloHash, Name: "foo.txt"},
		{Type: TypeTree, Hash: barHash, Name: "bar"},
		{Type: TypeBlob, Hash: worldHash, Name: "with space.md"},
	}
	data, err := MarshalTree(in)
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	out, err := UnmarshalTree(data)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	sorted := append([]TreeEntry(nil), in...)
	SortEntries(sorted)
	if !reflect.DeepEqual(out, sorted) {
		t.Errorf("round trip =\n%v\nwant\n%v", out, sorted)
	}
}

func TestUnmarshalTreeCorrupt(t *testing.T) {
	tests := map[string]string{
		"two fields":   "blob\x00" + string(helloHash),
		"four fields":  "blob\x00" + string(helloHash) + "\x00a\x00b",
		"unknown type": "link\x00" + string(helloHash) + "\x00a",
		"bad hash":     "blob\x00nothex\x00a",
		"empty name":   "blob\x00" + string(helloHash) + "\x00",
		"blank line":   "blob\x00" + string(helloHash) + "\x00a\n",
	}
	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := UnmarshalTree([]byte(payload)); !errors.Is(err, ErrCorrupt) {
				t.Errorf("UnmarshalTree error = %v, want ErrCorrupt", err)
			}
		})
	}
}
