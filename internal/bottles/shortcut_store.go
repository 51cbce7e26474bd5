package bottles

import (
	"context"

	"bottlesmith/internal/shortcut"
)

// ShortcutStore adapts the gateway's program operations to the shortcut
// manager's native-backend interface.
type ShortcutStore struct {
	Gateway *Gateway
}

func (s ShortcutStore) List(ctx context.Context, bottle string) ([]shortcut.Entry, error) {
	native, err := s.Gateway.ListShortcuts(ctx, bottle)
	if err != nil {
		return nil, err
	}
	entries := make([]shortcut.Entry, 0, len(native))
	for _, n := range native {
		entries = append(entries, shortcut.Entry{
			Bottle:      bottle,
			DisplayName: n.Name,
			Target:      n.Path,
			Source:      shortcut.SourceNative,
		})
	}
	return entries, nil
}

func (s ShortcutStore) Create(ctx context.Context, bottle, displayName, target string) error {
	return s.Gateway.CreateShortcut(ctx, bottle, displayName, target)
}

var _ shortcut.NativeStore = ShortcutStore{}
