package shortcut

import (
	"path/filepath"
	"reflect"
	"testing"
)

func newTestSidecar(t *testing.T) *Sidecar {
	t.Helper()
	return NewSidecar(filepath.Join(t.TempDir(), "shortcuts.yaml"))
}

func TestSidecarUpsertAndFind(t *testing.T) {
	s := newTestSidecar(t)

	if err := s.Upsert("game", Record{DisplayName: "Game", Target: "/p/game.exe"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	rec, ok, err := s.Find("game", "Game")
	if err != nil || !ok {
		t.Fatalf("Find = %v, %v, %v", rec, ok, err)
	}
	if rec.Target != "/p/game.exe" {
		t.Fatalf("target = %q", rec.Target)
	}

	// Upsert with the same display name replaces.
	if err := s.Upsert("game", Record{DisplayName: "Game", Target: "/p/v2.exe"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	rec, _, _ = s.Find("game", "Game")
	if rec.Target != "/p/v2.exe" {
		t.Fatalf("replace failed, target = %q", rec.Target)
	}

	records, err := s.List("game")
	if err != nil || len(records) != 1 {
		t.Fatalf("List = %v, %v", records, err)
	}
}

func TestSidecarDelete(t *testing.T) {
	s := newTestSidecar(t)
	if err := s.Upsert("b", Record{DisplayName: "App", Target: "/x"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("b", "App"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Find("b", "App"); ok {
		t.Fatal("record survived delete")
	}
	// Deleting again is a no-op.
	if err := s.Delete("b", "App"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestSidecarBottlesSorted(t *testing.T) {
	s := newTestSidecar(t)
	for _, bottle := range []string{"zeta", "alpha", "mid"} {
		if err := s.Upsert(bottle, Record{DisplayName: "A", Target: "/x"}); err != nil {
			t.Fatal(err)
		}
	}
	names, err := s.Bottles()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"alpha", "mid", "zeta"}) {
		t.Fatalf("bottles = %v", names)
	}
}

func TestSidecarMissingFileIsEmpty(t *testing.T) {
	s := newTestSidecar(t)
	records, err := s.List("whatever")
	if err != nil || len(records) != 0 {
		t.Fatalf("List on missing file = %v, %v", records, err)
	}
}
