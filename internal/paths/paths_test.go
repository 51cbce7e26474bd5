package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveWithFlag(t *testing.T) {
	dir := t.TempDir()
	p, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Root != dir {
		t.Fatalf("root = %s", p.Root)
	}
	if p.ConfigFile != filepath.Join(dir, "bottlesmith.yaml") {
		t.Fatalf("config = %s", p.ConfigFile)
	}
	if p.JournalFile != filepath.Join(dir, "journal.db") {
		t.Fatalf("journal = %s", p.JournalFile)
	}
}

func TestResolveDefaultsToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.HasPrefix(p.Root, home) || filepath.Base(p.Root) != ".bottlesmith" {
		t.Fatalf("root = %s", p.Root)
	}
}

func TestEnsureDirs(t *testing.T) {
	p, err := Resolve(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatal(err)
	}
	if err := p.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	for _, dir := range []string{p.Root, p.LogsDir, p.TempDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("dir %s not created: %v", dir, err)
		}
	}
}

func TestFileAndDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if ok, _ := FileExists(file); !ok {
		t.Fatal("FileExists(file) = false")
	}
	if ok, _ := FileExists(dir); ok {
		t.Fatal("FileExists(dir) = true")
	}
	if ok, _ := DirExists(dir); !ok {
		t.Fatal("DirExists(dir) = false")
	}
	if ok, _ := DirExists(filepath.Join(dir, "missing")); ok {
		t.Fatal("DirExists(missing) = true")
	}
}
