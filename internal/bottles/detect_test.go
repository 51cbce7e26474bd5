package bottles

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type scriptedRunner struct {
	stdout string
	err    error
	calls  [][]string
}

func (r *scriptedRunner) Run(_ context.Context, command string, args []string, _ RunOptions) (RunResult, error) {
	r.calls = append(r.calls, append([]string{command}, args...))
	return RunResult{Stdout: []byte(r.stdout)}, r.err
}

func TestDetectFlatpak(t *testing.T) {
	runner := &scriptedRunner{stdout: "org.gimp.GIMP\ncom.usebottles.bottles\n"}

	cmds, err := Detect(context.Background(), runner, "auto")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if cmds.Flavor != FlavorFlatpak {
		t.Fatalf("flavor = %s", cmds.Flavor)
	}
	want := []string{"flatpak", "run", "--command=bottles-cli", "com.usebottles.bottles"}
	if strings.Join(cmds.BottlesCLI, " ") != strings.Join(want, " ") {
		t.Fatalf("bottles-cli argv = %v", cmds.BottlesCLI)
	}
	if len(runner.calls) != 1 || runner.calls[0][0] != "flatpak" {
		t.Fatalf("probe calls = %v", runner.calls)
	}
}

func TestDetectFlatpakRequiredButMissing(t *testing.T) {
	runner := &scriptedRunner{stdout: "org.gimp.GIMP\n"}
	if _, err := Detect(context.Background(), runner, "flatpak"); err == nil {
		t.Fatal("expected error when flatpak app is absent")
	}
}

func TestDetectNative(t *testing.T) {
	bin := t.TempDir()
	for _, tool := range []string{"bottles-cli", "winetricks"} {
		path := filepath.Join(bin, tool)
		if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PATH", bin)

	runner := &scriptedRunner{stdout: ""} // no flatpak app
	cmds, err := Detect(context.Background(), runner, "auto")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if cmds.Flavor != FlavorNative {
		t.Fatalf("flavor = %s", cmds.Flavor)
	}
	if len(cmds.BottlesCLI) != 1 || cmds.BottlesCLI[0] != "bottles-cli" {
		t.Fatalf("bottles-cli argv = %v", cmds.BottlesCLI)
	}
}

func TestDetectNothingInstalled(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	runner := &scriptedRunner{stdout: ""}
	if _, err := Detect(context.Background(), runner, "auto"); err == nil {
		t.Fatal("expected error with no installation present")
	}
}
