package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}

	cases := map[string]string{
		"":         "",
		"/tmp":     "/tmp",
		"~":        home,
		"~/models": filepath.Join(home, "models"),
	}
	for in, want := range cases {
		got, err := ExpandHome(in)
		if err != nil {
			t.Fatalf("ExpandHome(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	if !PathExists(dir) {
		t.Fatalf("expected %q to exist", dir)
	}
	missing := filepath.Join(dir, "nope")
	if PathExists(missing) {
		t.Fatalf("expected %q to be missing", missing)
	}
	f := filepath.Join(dir, "f")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !PathExists(f) {
		t.Fatalf("expected empty file to exist")
	}
}

func TestAppDataDir(t *testing.T) {
	if runtime.GOOS == "linux" {
		base := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", base)
		got, err := AppDataDir("astro")
		if err != nil {
			t.Fatalf("AppDataDir: %v", err)
		}
		if got != filepath.Join(base, "astro") {
			t.Fatalf("got %q", got)
		}
		return
	}
	got, err := AppDataDir("astro")
	if err != nil {
		t.Fatalf("AppDataDir: %v", err)
	}
	if filepath.Base(got) != "astro" {
		t.Fatalf("got %q", got)
	}
}

func TestExecutableDir(t *testing.T) {
	dir, err := ExecutableDir()
	if err != nil {
		t.Fatalf("ExecutableDir: %v", err)
	}
	if !PathExists(dir) {
		t.Fatalf("%q does not exist", dir)
	}
}
