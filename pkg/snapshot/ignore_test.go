package snapshot

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestIgnore(t *testing.T, root string, paths ...string) *Ignore {
	t.Helper()
	ig, err := NewIgnore(root, paths...)
	if err != nil {
		t.Fatalf("NewIgnore: %v", err)
	}
	return ig
}

func TestIgnore_NilMatchesNothing(t *testing.T) {
	var ig *Ignore
	if ig.Match("/anything", "anything", true) {
		t.Error("nil Ignore should not match")
	}
	if ig.Paths() != nil {
		t.Error("nil Ignore should have no paths")
	}
}

func TestIgnore_PathMatchesWholeComponents(t *testing.T) {
	root, err := canonicalPath(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ig := newTestIgnore(t, root, ".grit")
	store := filepath.Join(root, ".grit")

	cases := []struct {
		abs  string
		want bool
	}{
		{store, true},
		{filepath.Join(store, "objects", "ab"), true},
		{filepath.Join(root, ".gritx"), false},
		{filepath.Join(root, ".gri"), false},
		{root, false},
	}
	for _, tc := range cases {
		if got := ig.Match(tc.abs, "", false); got != tc.want {
			t.Errorf("Match(%s) = %v, want %v", tc.abs, got, tc.want)
		}
	}
}

func TestIgnore_RelativePathsResolveAgainstRoot(t *testing.T) {
	root, err := canonicalPath(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ig := newTestIgnore(t, root, "vendor", "./a/b/../c")
	paths := ig.Paths()
	want := []string{filepath.Join(root, "vendor"), filepath.Join(root, "a", "c")}
	if len(paths) != len(want) {
		t.Fatalf("Paths() = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("Paths()[%d] = %s, want %s", i, paths[i], want[i])
		}
	}
}

func TestIgnore_SymlinkedPathIsCanonicalized(t *testing.T) {
	root, err := canonicalPath(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	realDir := filepath.Join(root, "real-store")
	mkdir(t, realDir)
	link := filepath.Join(t.TempDir(), "store-link")
	if err := os.Symlink(realDir, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	ig := newTestIgnore(t, root, link)
	if !ig.Match(filepath.Join(realDir, "objects"), "real-store/objects", true) {
		t.Error("expected the symlink target to be ignored")
	}
}

func TestIgnore_Patterns(t *testing.T) {
	root := t.TempDir()
	ig := newTestIgnore(t, root)
	ig.AddPatterns(
		"# comment",
		"",
		"*.log",
		"!important.log",
		"build/",
		"/top.txt",
		"docs/*.tmp",
		"**/generated/**",
	)

	cases := []struct {
		rel   string
		isDir bool
		want  bool
	}{
		{"debug.log", false, true},
		{"nested/deep/trace.log", false, true},
		{"important.log", false, false},
		{"build", true, true},
		{"build/output.o", false, true},
		{"build/sub/file.txt", false, true},
		{"src/build", false, false},
		{"src/build", true, true},
		{"top.txt", false, true},
		{"sub/top.txt", false, false},
		{"docs/a.tmp", false, true},
		{"docs/sub/a.tmp", false, false},
		{"x/generated/y.go", false, true},
		{"main.go", false, false},
	}
	for _, tc := range cases {
		abs := filepath.Join(root, filepath.FromSlash(tc.rel))
		if got := ig.Match(abs, tc.rel, tc.isDir); got != tc.want {
			t.Errorf("Match(%q, dir=%v) = %v, want %v", tc.rel, tc.isDir, got, tc.want)
		}
	}
}

func TestIgnore_LastMatchWins(t *testing.T) {
	root := t.TempDir()
	ig := newTestIgnore(t, root)
	ig.AddPatterns("!keep.txt", "*.txt")
	if !ig.Match(filepath.Join(root, "keep.txt"), "keep.txt", false) {
		t.Error("a later pattern should override an earlier negation")
	}
}

func TestIgnore_LoadPatternFile(t *testing.T) {
	root := t.TempDir()
	ig := newTestIgnore(t, root)

	if err := ig.LoadPatternFile(filepath.Join(root, ".gritignore")); err != nil {
		t.Fatalf("missing pattern file should not fail: %v", err)
	}

	writeFile(t, filepath.Join(root, ".gritignore"), "*.o\r\ncache/\n")
	if err := ig.LoadPatternFile(filepath.Join(root, ".gritignore")); err != nil {
		t.Fatalf("LoadPatternFile: %v", err)
	}
	if !ig.Match(filepath.Join(root, "a.o"), "a.o", false) {
		t.Error("expected a.o to be ignored")
	}
	if !ig.Match(filepath.Join(root, "cache", "x"), "cache/x", false) {
		t.Error("expected cache/x to be ignored")
	}
}

func TestGlobToRegex(t *testing.T) {
	cases := map[string]string{
		"*.go":        `^[^/]*\.go$`,
		"a/**/b":      `^a/(?:.*/)?b$`,
		"**/x":        `^(?:.*/)?x$`,
		"file?.[ch]":  `^file[^/]\.\[ch\]$`,
		"trailing/**": `^trailing/.*$`,
	}
	for in, want := range cases {
		if got := globToRegex(in); got != want {
			t.Errorf("globToRegex(%q) = %q, want %q", in, got, want)
		}
	}
}
