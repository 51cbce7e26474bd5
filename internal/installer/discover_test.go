package installer

import (
	"os"
	"path/filepath"
	"testing"
)

func makeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		full := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("MZ"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestDiscoverPrefersNameMatch(t *testing.T) {
	root := makeTree(t,
		"bin/Launcher.exe",
		"bin/GreatGame.exe",
		"docs/readme.txt",
	)
	got, err := DiscoverExecutable(root, "Great Game")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "GreatGame.exe" {
		t.Fatalf("picked %s", got)
	}
}

func TestDiscoverSkipsExcludedDirsAndNames(t *testing.T) {
	root := makeTree(t,
		"Windows/system.exe",
		"System32/game.exe",
		"unins000.exe",
		"CrashReporter.exe",
		"vcredist_x64.exe",
		"Game.exe",
	)
	got, err := DiscoverExecutable(root, "Game")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "Game.exe" {
		t.Fatalf("picked %s", got)
	}
}

func TestDiscoverTieBreaksByWalkOrder(t *testing.T) {
	// Neither candidate matches the hint; the lexicographically first path
	// must win so repeated runs pick the same binary.
	root := makeTree(t, "alpha.exe", "beta.exe")
	got, err := DiscoverExecutable(root, "zzz")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "alpha.exe" {
		t.Fatalf("picked %s", got)
	}
}

func TestDiscoverNoCandidates(t *testing.T) {
	root := makeTree(t, "data/readme.txt", "setup.exe")
	if _, err := DiscoverExecutable(root, "Game"); err == nil {
		t.Fatal("expected error when only excluded binaries exist")
	}
}
