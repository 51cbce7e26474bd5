package shortcut

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type fakeNative struct {
	mu      sync.Mutex
	entries map[string][]Entry
	created []Entry
	listErr error
}

func newFakeNative() *fakeNative {
	return &fakeNative{entries: map[string][]Entry{}}
}

func (f *fakeNative) add(bottle, name, target string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[bottle] = append(f.entries[bottle], Entry{DisplayName: name, Target: target})
}

func (f *fakeNative) List(_ context.Context, bottle string) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]Entry(nil), f.entries[bottle]...), nil
}

func (f *fakeNative) Create(_ context.Context, bottle, displayName, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, Entry{Bottle: bottle, DisplayName: displayName, Target: target})
	return nil
}

func newTestManager(t *testing.T, native NativeStore) (*Manager, *Sidecar) {
	t.Helper()
	sidecar := NewSidecar(filepath.Join(t.TempDir(), "shortcuts.yaml"))
	m := NewManager(sidecar, native, nil, 50*time.Millisecond)
	m.pollInterval = 5 * time.Millisecond
	return m, sidecar
}

func TestUpsertManualSkippedWhenNativeExists(t *testing.T) {
	native := newFakeNative()
	native.add("game", "Game", "/prefix/drive_c/game.exe")
	m, sidecar := newTestManager(t, native)

	entry, err := m.Upsert(context.Background(), Entry{
		Bottle: "game", DisplayName: "Game", Target: "/other", Source: SourceManual,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if entry.Source != SourceNative {
		t.Fatalf("source = %q, want native", entry.Source)
	}
	// The manual record must not be written.
	if _, ok, _ := sidecar.Find("game", "Game"); ok {
		t.Fatal("manual record written despite native entry")
	}
}

func TestUpsertNativeDropsStaleManualRecord(t *testing.T) {
	m, sidecar := newTestManager(t, newFakeNative())

	if err := sidecar.Upsert("game", Record{DisplayName: "Game", Target: "/old"}); err != nil {
		t.Fatal(err)
	}
	_, err := m.Upsert(context.Background(), Entry{
		Bottle: "game", DisplayName: "Game", Target: "/new", Source: SourceNative,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, ok, _ := sidecar.Find("game", "Game"); ok {
		t.Fatal("stale manual record survived native adoption")
	}
}

func TestAdoptNativeFindsLateEntry(t *testing.T) {
	native := newFakeNative()
	m, _ := newTestManager(t, native)

	go func() {
		time.Sleep(15 * time.Millisecond)
		native.add("game", "Game", "")
	}()

	entry, err := m.AdoptNative(context.Background(), "game", "Game", "/prefix/drive_c/game.exe")
	if err != nil {
		t.Fatalf("AdoptNative: %v", err)
	}
	if entry.Source != SourceNative {
		t.Fatalf("source = %q", entry.Source)
	}
	// The entry's empty target is backfilled from the known binary path.
	if entry.Target != "/prefix/drive_c/game.exe" {
		t.Fatalf("target = %q", entry.Target)
	}
	if len(native.created) != 0 {
		t.Fatalf("synthesized despite native entry: %v", native.created)
	}
}

func TestAdoptNativeSynthesizesAfterWindow(t *testing.T) {
	native := newFakeNative()
	m, _ := newTestManager(t, native)
	m.pollWindow = 10 * time.Millisecond

	entry, err := m.AdoptNative(context.Background(), "game", "Game", "/p/game.exe")
	if err != nil {
		t.Fatalf("AdoptNative: %v", err)
	}
	if entry.DisplayName != "Game" || entry.Target != "/p/game.exe" {
		t.Fatalf("entry = %+v", entry)
	}
	if len(native.created) != 1 {
		t.Fatalf("expected one native registration, got %v", native.created)
	}
}

func TestAdoptNativeHonorsCancellation(t *testing.T) {
	m, _ := newTestManager(t, newFakeNative())
	m.pollWindow = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if _, err := m.AdoptNative(ctx, "game", "Game", "/p"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestFindPrefersNative(t *testing.T) {
	native := newFakeNative()
	native.add("game", "Game", "/native")
	m, sidecar := newTestManager(t, native)
	if err := sidecar.Upsert("game", Record{DisplayName: "Game", Target: "/manual"}); err != nil {
		t.Fatal(err)
	}

	entry, ok, err := m.Find(context.Background(), "game", "Game")
	if err != nil || !ok {
		t.Fatalf("Find = %v, %v, %v", entry, ok, err)
	}
	if entry.Source != SourceNative || entry.Target != "/native" {
		t.Fatalf("entry = %+v", entry)
	}
}

func TestFindFallsBackToManualOnListError(t *testing.T) {
	native := newFakeNative()
	native.listErr = errors.New("cli unavailable")
	m, sidecar := newTestManager(t, native)
	if err := sidecar.Upsert("game", Record{DisplayName: "Game", Target: "/manual"}); err != nil {
		t.Fatal(err)
	}

	entry, ok, err := m.Find(context.Background(), "game", "Game")
	if err != nil || !ok {
		t.Fatalf("Find = %v, %v, %v", entry, ok, err)
	}
	if entry.Source != SourceManual {
		t.Fatalf("source = %q", entry.Source)
	}
}
