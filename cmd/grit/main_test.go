package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// runGrit executes the root command against workTree and returns stdout.
func runGrit(t *testing.T, workTree string, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--work-tree", workTree, "-q"}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustRunGrit(t *testing.T, workTree string, args ...string) string {
	t.Helper()
	out, err := runGrit(t, workTree, "", args...)
	if err != nil {
		t.Fatalf("grit %s: %v\noutput:\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func writeCmdFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

func TestLogLevel(t *testing.T) {
	cases := []struct {
		verbose int
		quiet   bool
		want    logrus.Level
	}{
		{0, false, logrus.WarnLevel},
		{1, false, logrus.InfoLevel},
		{2, false, logrus.DebugLevel},
		{3, false, logrus.TraceLevel},
		{7, false, logrus.TraceLevel},
		{2, true, logrus.ErrorLevel},
	}
	for _, tc := range cases {
		if got := logLevel(tc.verbose, tc.quiet); got != tc.want {
			t.Errorf("logLevel(%d, %v) = %v, want %v", tc.verbose, tc.quiet, got, tc.want)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	out := mustRunGrit(t, t.TempDir(), "version")
	if out != "grit "+version+"\n" {
		t.Errorf("version output = %q", out)
	}
}

func TestInitCmd(t *testing.T) {
	dir := t.TempDir()
	out := mustRunGrit(t, dir, "init")
	if !strings.HasPrefix(out, "Initialized empty grit repository in ") {
		t.Errorf("init output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, ".grit", "config.toml")); err != nil {
		t.Fatalf("config.toml missing: %v", err)
	}

	if _, err := runGrit(t, dir, "", "init"); err == nil {
		t.Fatal("second init should fail")
	}
}

func TestInitCmdBackendFlags(t *testing.T) {
	dir := t.TempDir()
	mustRunGrit(t, dir, "init", "--backend", "sqlite")
	if _, err := os.Stat(filepath.Join(dir, ".grit", "objects.db")); err != nil {
		t.Fatalf("objects.db missing: %v", err)
	}

	other := t.TempDir()
	if _, err := runGrit(t, other, "", "init", "--backend", "sqlite", "--compression", "zstd"); err == nil {
		t.Fatal("zstd with sqlite should be rejected")
	}
}

func TestCommandsRequireRepo(t *testing.T) {
	dir := t.TempDir()
	writeCmdFile(t, filepath.Join(dir, "f"), []byte("x"))
	for _, args := range [][]string{
		{"write-tree"},
		{"hash-object", "-w", filepath.Join(dir, "f")},
		{"verify"},
	} {
		_, err := runGrit(t, dir, "", args...)
		if err == nil || !strings.Contains(err.Error(), "not initialized") {
			t.Errorf("grit %v error = %v, want not initialized", args, err)
		}
	}
}

func TestExplicitRepoFlag(t *testing.T) {
	work := t.TempDir()
	repoDir := filepath.Join(t.TempDir(), "store")
	mustRunGrit(t, work, "--repo", repoDir, "init")
	writeCmdFile(t, filepath.Join(work, "foo.txt"), []byte("hello\n"))

	out := mustRunGrit(t, work, "--repo", repoDir, "write-tree")
	if strings.TrimSpace(out) != "08154aef411697438884f851608641b7f4b79bd3" {
		t.Errorf("write-tree output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(work, ".grit")); !os.IsNotExist(err) {
		t.Errorf("default repository directory should not be created: %v", err)
	}
}
