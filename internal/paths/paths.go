package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataPaths captures canonical locations for bottlesmith state on disk.
type DataPaths struct {
	Root        string
	ConfigFile  string
	CatalogFile string
	SidecarFile string
	JournalFile string
	LogsDir     string
	TempDir     string
}

// Resolve determines the data root using the optional --data flag or the
// user's home directory when the flag is empty.
func Resolve(dataFlag string) (DataPaths, error) {
	var (
		root string
		err  error
	)

	if dataFlag != "" {
		root, err = filepath.Abs(dataFlag)
	} else {
		var home string
		home, err = os.UserHomeDir()
		if err == nil {
			root = filepath.Join(home, ".bottlesmith")
		}
	}
	if err != nil {
		return DataPaths{}, fmt.Errorf("resolve data root: %w", err)
	}

	return newDataPaths(root), nil
}

func newDataPaths(root string) DataPaths {
	return DataPaths{
		Root:        root,
		ConfigFile:  filepath.Join(root, "bottlesmith.yaml"),
		CatalogFile: filepath.Join(root, "catalog.yaml"),
		SidecarFile: filepath.Join(root, "shortcuts.yaml"),
		JournalFile: filepath.Join(root, "journal.db"),
		LogsDir:     filepath.Join(root, "logs"),
		TempDir:     filepath.Join(root, "tmp"),
	}
}

// EnsureDirs creates the data root plus the logs and temp directories.
func (p DataPaths) EnsureDirs() error {
	dirs := []string{p.Root, p.LogsDir, p.TempDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
