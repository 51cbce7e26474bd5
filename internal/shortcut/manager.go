package shortcut

import (
	"context"
	"sync"
	"time"
)

// Source tells which backend holds a shortcut entry.
type Source string

const (
	// SourceNative entries live inside the environment manager's own store.
	SourceNative Source = "native"
	// SourceManual entries live in the sidecar file.
	SourceManual Source = "manual"
)

// Entry is one logical shortcut, identified by (Bottle, DisplayName).
type Entry struct {
	Bottle      string `json:"bottle"`
	DisplayName string `json:"display_name"`
	Target      string `json:"target"`
	Source      Source `json:"source"`
}

// NativeStore is the environment manager's shortcut backend as seen by the
// manager.
type NativeStore interface {
	List(ctx context.Context, bottle string) ([]Entry, error)
	Create(ctx context.Context, bottle, displayName, target string) error
}

type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Manager reconciles the two shortcut backends and guarantees exactly one
// entry per (bottle, display name). Native entries are authoritative: a
// manual write is skipped when the native backend already tracks the same
// shortcut, and adopting a native entry drops any stale manual record.
type Manager struct {
	sidecar *Sidecar
	native  NativeStore
	logger  Logger

	pollWindow   time.Duration
	pollInterval time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(sidecar *Sidecar, native NativeStore, logger Logger, pollWindow time.Duration) *Manager {
	if logger == nil {
		logger = noopLogger{}
	}
	if pollWindow <= 0 {
		pollWindow = 10 * time.Second
	}
	return &Manager{
		sidecar:      sidecar,
		native:       native,
		logger:       logger,
		pollWindow:   pollWindow,
		pollInterval: time.Second,
		locks:        map[string]*sync.Mutex{},
	}
}

// keyLock serializes writes per (bottle, display name); reads stay lock-free.
func (m *Manager) keyLock(bottle, displayName string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := bottle + "\x00" + displayName
	lock, ok := m.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	return lock
}

// Upsert stores a shortcut entry, enforcing the one-entry invariant. The
// returned entry reflects the backend that ended up authoritative.
func (m *Manager) Upsert(ctx context.Context, e Entry) (Entry, error) {
	lock := m.keyLock(e.Bottle, e.DisplayName)
	lock.Lock()
	defer lock.Unlock()

	if e.Source == SourceManual {
		if native, ok := m.findNative(ctx, e.Bottle, e.DisplayName); ok {
			// Conflict: the native backend already owns this shortcut.
			// Non-fatal; the native entry wins.
			m.logger.Printf("shortcut conflict for %s/%s: native entry is authoritative, skipping manual record", e.Bottle, e.DisplayName)
			if native.Target == "" {
				native.Target = e.Target
			}
			return native, nil
		}
		if err := m.sidecar.Upsert(e.Bottle, Record{DisplayName: e.DisplayName, Target: e.Target}); err != nil {
			return Entry{}, err
		}
		return e, nil
	}

	// Adopting a native entry: drop any stale manual record so the backends
	// never hold conflicting entries for the same logical shortcut.
	if _, ok, err := m.sidecar.Find(e.Bottle, e.DisplayName); err == nil && ok {
		m.logger.Printf("shortcut %s/%s: dropping manual record superseded by native entry", e.Bottle, e.DisplayName)
		if delErr := m.sidecar.Delete(e.Bottle, e.DisplayName); delErr != nil {
			return Entry{}, delErr
		}
	}
	return e, nil
}

// AdoptNative waits for the environment manager to surface a shortcut for the
// given display name, adopting it when it appears. When the polling window
// closes without a match, an entry is synthesized from the known binary path
// and registered natively. Both paths are best-effort bookkeeping; the caller
// treats errors as non-fatal.
func (m *Manager) AdoptNative(ctx context.Context, bottle, displayName, target string) (Entry, error) {
	deadline := time.Now().Add(m.pollWindow)
	for {
		if native, ok := m.findNative(ctx, bottle, displayName); ok {
			if native.Target == "" {
				native.Target = target
			}
			return m.Upsert(ctx, native)
		}
		if time.Now().After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return Entry{}, ctx.Err()
		case <-time.After(m.pollInterval):
		}
	}

	m.logger.Printf("shortcut %s/%s: no native entry appeared, synthesizing", bottle, displayName)
	if m.native != nil {
		if err := m.native.Create(ctx, bottle, displayName, target); err != nil {
			m.logger.Printf("shortcut %s/%s: native registration failed: %v", bottle, displayName, err)
		}
	}
	entry := Entry{Bottle: bottle, DisplayName: displayName, Target: target, Source: SourceNative}
	return m.Upsert(ctx, entry)
}

// Find returns the entry for (bottle, displayName). The native backend is
// checked first since it is authoritative.
func (m *Manager) Find(ctx context.Context, bottle, displayName string) (Entry, bool, error) {
	if native, ok := m.findNative(ctx, bottle, displayName); ok {
		return native, true, nil
	}
	rec, ok, err := m.sidecar.Find(bottle, displayName)
	if err != nil || !ok {
		return Entry{}, false, err
	}
	return Entry{Bottle: bottle, DisplayName: rec.DisplayName, Target: rec.Target, Source: SourceManual}, true, nil
}

func (m *Manager) findNative(ctx context.Context, bottle, displayName string) (Entry, bool) {
	if m.native == nil {
		return Entry{}, false
	}
	entries, err := m.native.List(ctx, bottle)
	if err != nil {
		// The native listing is advisory; a failed probe must not block the
		// manual path.
		m.logger.Printf("shortcut %s: native listing failed: %v", bottle, err)
		return Entry{}, false
	}
	for _, entry := range entries {
		if entry.DisplayName == displayName {
			entry.Bottle = bottle
			entry.Source = SourceNative
			return entry, true
		}
	}
	return Entry{}, false
}
