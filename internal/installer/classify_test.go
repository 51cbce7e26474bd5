package installer

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClassifyKinds(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		want Kind
	}{
		{"exe installer", touch(t, filepath.Join(dir, "setup.exe")), KindExecutable},
		{"msi installer", touch(t, filepath.Join(dir, "app.msi")), KindExecutable},
		{"uppercase extension", touch(t, filepath.Join(dir, "GAME.EXE")), KindExecutable},
		{"disk image", touch(t, filepath.Join(dir, "game.iso")), KindDiskImage},
		{"directory", dir, KindFolder},
		{"unknown file", touch(t, filepath.Join(dir, "readme.txt")), KindInvalid},
		{"missing path", filepath.Join(dir, "nope.exe"), KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := Classify(Request{TargetPath: tt.path})
			if cls.Kind != tt.want {
				t.Fatalf("Classify(%s) = %s (%s), want %s", tt.path, cls.Kind, cls.Reason, tt.want)
			}
		})
	}
}

func TestClassifyIgnoresDeclaredKind(t *testing.T) {
	dir := t.TempDir()

	// A directory stays a folder install even when the caller declared "file".
	cls := Classify(Request{TargetPath: dir, Declared: DeclaredFile})
	if cls.Kind != KindFolder {
		t.Fatalf("directory declared as file classified as %s", cls.Kind)
	}

	// And a file stays a file install even when declared "folder".
	exe := touch(t, filepath.Join(dir, "setup.exe"))
	cls = Classify(Request{TargetPath: exe, Declared: DeclaredFolder})
	if cls.Kind != KindExecutable {
		t.Fatalf("file declared as folder classified as %s", cls.Kind)
	}
}

func TestBottleNameDerivation(t *testing.T) {
	tests := []struct {
		req  Request
		want string
	}{
		{Request{TargetPath: "/downloads/Game Setup.exe"}, "Game-Setup"},
		{Request{TargetPath: "/downloads/app.msi", Bottle: "my-bottle"}, "my-bottle"},
		{Request{TargetPath: "/downloads/app.msi", Bottle: "  "}, "app"},
		{Request{TargetPath: "/downloads/~~~.exe"}, "bottle"},
	}
	for _, tt := range tests {
		if got := tt.req.BottleName(); got != tt.want {
			t.Errorf("BottleName(%+v) = %q, want %q", tt.req, got, tt.want)
		}
	}
}

func TestDisplayDerivation(t *testing.T) {
	req := Request{TargetPath: "/downloads/Great Game.iso"}
	if got := req.Display(); got != "Great Game" {
		t.Fatalf("Display = %q", got)
	}
	req.DisplayName = "Custom"
	if got := req.Display(); got != "Custom" {
		t.Fatalf("Display = %q", got)
	}
}
