package installer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"bottlesmith/internal/shortcut"
)

func TestFolderInstallSuccess(t *testing.T) {
	copied := makeTree(t, "Game.exe", "unins000.exe", "data/assets.pak")

	gw := newFakeGateway()
	gw.copyDest = copied
	sc := &fakeShortcuts{}
	in := &FolderInstaller{
		Gateway:   gw,
		Resolver:  &fakeResolver{report: mustInstallReport("vcrun2019")},
		Shortcuts: sc,
	}

	req := Request{TargetPath: "/games/Game", DisplayName: "Game"}
	entry, err := in.Install(context.Background(), req, Classification{Kind: KindFolder})
	if err != nil {
		t.Fatalf("Install: %v", err)
	}

	if !gw.bottles["Game"] {
		t.Fatalf("bottle not ensured: %v", gw.bottles)
	}
	if len(gw.ran) != 1 || filepath.Base(gw.ran[0]) != "Game.exe" {
		t.Fatalf("ran = %v", gw.ran)
	}
	// Folder installs always record a manual shortcut.
	if len(sc.upserted) != 1 || sc.upserted[0].Source != shortcut.SourceManual {
		t.Fatalf("upserted = %v", sc.upserted)
	}
	if entry.Target != gw.ran[0] {
		t.Fatalf("entry target = %q, ran = %q", entry.Target, gw.ran[0])
	}
}

func TestFolderInstallNoLaunchableBinary(t *testing.T) {
	copied := makeTree(t, "setup.exe", "docs/readme.txt")

	gw := newFakeGateway()
	gw.copyDest = copied
	in := &FolderInstaller{Gateway: gw, Resolver: &fakeResolver{}, Shortcuts: &fakeShortcuts{}}

	_, err := in.Install(context.Background(), Request{TargetPath: "/games/Game"}, Classification{Kind: KindFolder})
	var stageErr *Error
	if !errors.As(err, &stageErr) || stageErr.Stage != StageDiscovery {
		t.Fatalf("err = %v, want discovery-stage error", err)
	}
	// Nothing should have run.
	if len(gw.ran) != 0 {
		t.Fatalf("ran = %v", gw.ran)
	}
}

func TestFolderInstallCopyFailure(t *testing.T) {
	gw := newFakeGateway()
	gw.copyErr = errors.New("disk full")
	in := &FolderInstaller{Gateway: gw, Resolver: &fakeResolver{}, Shortcuts: &fakeShortcuts{}}

	_, err := in.Install(context.Background(), Request{TargetPath: "/games/Game"}, Classification{Kind: KindFolder})
	var stageErr *Error
	if !errors.As(err, &stageErr) || stageErr.Stage != StageStaging {
		t.Fatalf("err = %v, want staging-stage error", err)
	}
}

func TestFolderInstallShortcutFailureIsFatal(t *testing.T) {
	copied := makeTree(t, "Game.exe")

	gw := newFakeGateway()
	gw.copyDest = copied
	in := &FolderInstaller{
		Gateway:   gw,
		Resolver:  &fakeResolver{},
		Shortcuts: &fakeShortcuts{upsertErr: errors.New("sidecar unwritable")},
	}

	// Unlike the file workflow, the manual record is the only handle the user
	// has on the copied tree, so failing to write it fails the install.
	_, err := in.Install(context.Background(), Request{TargetPath: "/games/Game"}, Classification{Kind: KindFolder})
	var stageErr *Error
	if !errors.As(err, &stageErr) || stageErr.Stage != StageShortcut {
		t.Fatalf("err = %v, want shortcut-stage error", err)
	}
}
