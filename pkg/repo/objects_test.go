package repo

import (
	"errors"
	"testing"

	"github.com/odvcencio/grit/pkg/object"
)

func TestHashObject_WriteFlag(t *testing.T) {
	r := initTestRepo(t, DefaultConfig())
	data := []byte("Bacon ipsum dolor amet doner pork chop filet mignon beef ribs.\n")
	const want = object.Hash("9cd51de1c206221527fd40ae2b45cfdd96b8fb07")

	h, err := r.HashObject(data, object.TypeBlob, false)
	if err != nil {
		t.Fatalf("HashObject: %v", err)
	}
	if h != want {
		t.Fatalf("hash = %s, want %s", h, want)
	}
	if ok, err := r.Exists(h); err != nil || ok {
		t.Fatalf("Exists after dry run = %v, %v; want false", ok, err)
	}

	if h, err = r.HashObject(data, object.TypeBlob, true); err != nil || h != want {
		t.Fatalf("HashObject -w = %s, %v", h, err)
	}
	if ok, err := r.Exists(h); err != nil || !ok {
		t.Fatalf("Exists after write = %v, %v; want true", ok, err)
	}
}

func TestHashObject_TreeMustBeCanonical(t *testing.T) {
	r := initTestRepo(t, DefaultConfig())
	blob := "a921a1ed31bcddeb5a51085e5d7dbdc7cf86b905"

	good := []byte("blob\x00" + blob + "\x00a\nblob\x00" + blob + "\x00b")
	if _, err := r.HashObject(good, object.TypeTree, true); err != nil {
		t.Fatalf("HashObject(canonical tree): %v", err)
	}

	unsorted := []byte("blob\x00" + blob + "\x00b\nblob\x00" + blob + "\x00a")
	if _, err := r.HashObject(unsorted, object.TypeTree, false); !errors.Is(err, object.ErrCorrupt) {
		t.Errorf("unsorted tree error = %v, want ErrCorrupt", err)
	}
	if _, err := r.HashObject([]byte("garbage"), object.TypeTree, false); !errors.Is(err, object.ErrCorrupt) {
		t.Errorf("garbage tree error = %v, want ErrCorrupt", err)
	}
}

func TestCatFile(t *testing.T) {
	r := initTestRepo(t, DefaultConfig())
	blob, err := r.HashObject([]byte("hello\n"), object.TypeBlob, true)
	if err != nil {
		t.Fatalf("HashObject: %v", err)
	}

	typ, data, err := r.CatFile(blob)
	if err != nil {
		t.Fatalf("CatFile: %v", err)
	}
	if typ != object.TypeBlob || string(data) != "hello\n" {
		t.Errorf("CatFile = %s %q", typ, data)
	}

	_, _, err = r.CatFile(blob, object.TypeTree)
	var tm *object.TypeMismatchError
	if !errors.As(err, &tm) {
		t.Fatalf("CatFile(tree) error = %v, want *TypeMismatchError", err)
	}
	if tm.Got != object.TypeBlob {
		t.Errorf("Got = %s", tm.Got)
	}

	if typ, err := r.TypeOf(blob); err != nil || typ != object.TypeBlob {
		t.Errorf("TypeOf = %s, %v", typ, err)
	}

	missing := object.HashObject(object.TypeBlob, []byte("nope"))
	if _, _, err := r.CatFile(missing); !errors.Is(err, object.ErrNotFound) {
		t.Errorf("CatFile(missing) error = %v, want ErrNotFound", err)
	}
}

func TestVerify(t *testing.T) {
	r := initTestRepo(t, DefaultConfig())
	writeWorkFile(t, r, "foo.txt", "hello\n")
	writeWorkFile(t, r, "bar/baz.txt", "world\n")
	if _, err := r.WriteTree(); err != nil {
		t.Fatalf("WriteTree: %v", err)
	}

	summary, err := r.Verify()
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if summary.Blobs != 2 || summary.Trees != 2 {
		t.Errorf("summary = %+v, want 2 blobs and 2 trees", summary)
	}
}
