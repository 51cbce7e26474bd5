package journal

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"bottlesmith/internal/installer"
	"bottlesmith/internal/orchestrator"
	"bottlesmith/internal/shortcut"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		req := installer.Request{TargetPath: fmt.Sprintf("/d/app%d.exe", i)}
		outcome := orchestrator.Outcome{
			Status: orchestrator.StatusSucceeded,
			Bottle: fmt.Sprintf("app%d", i),
			Shortcut: &shortcut.Entry{
				Bottle: fmt.Sprintf("app%d", i), DisplayName: fmt.Sprintf("App %d", i),
			},
		}
		if err := store.Record(ctx, req, outcome, 2*time.Second); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d", len(entries))
	}
	// Newest first.
	if entries[0].Target != "/d/app2.exe" || entries[1].Target != "/d/app1.exe" {
		t.Fatalf("order = %s, %s", entries[0].Target, entries[1].Target)
	}
	if entries[0].Shortcut != "App 2" || entries[0].TookMS != 2000 {
		t.Fatalf("entry = %+v", entries[0])
	}
}

func TestRecordFailure(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	outcome := orchestrator.Outcome{
		Status: orchestrator.StatusFailed,
		Bottle: "game",
		Stage:  installer.StageExecution,
		Error:  "run binary: timed out",
	}
	if err := store.Record(ctx, installer.Request{TargetPath: "/d/game.exe"}, outcome, time.Second); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len = %d", len(entries))
	}
	e := entries[0]
	if e.Status != "failed" || e.Stage != "execution" || e.Error == "" || e.Shortcut != "" {
		t.Fatalf("entry = %+v", e)
	}
}

func TestRecentEmpty(t *testing.T) {
	store := openTestStore(t)
	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %v", entries)
	}
}
