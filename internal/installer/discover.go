package installer

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Directory names never searched for launchable binaries.
var excludedDirs = map[string]bool{
	"windows":        true,
	"system32":       true,
	"syswow64":       true,
	"installer":      true,
	"temp_installer": true,
}

// Name fragments that mark a binary as a non-launch candidate (uninstallers,
// crash handlers, redistributable installers).
var excludedKeywords = []string{
	"uninstall", "crash", "report", "update", "patch", "readme",
	"vcredist", "directx", "setup", "unins",
}

// DiscoverExecutable scans a copied application tree for the binary a user
// would launch. Preference goes to the candidate whose name most closely
// matches the display name (longest common substring); ties fall back to the
// first candidate in the deterministic lexicographic walk order.
func DiscoverExecutable(root, displayName string) (string, error) {
	hint := normalizeHint(displayName)

	best := ""
	bestScore := -1
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if excludedDirs[strings.ToLower(d.Name())] {
				return filepath.SkipDir
			}
			return nil
		}
		name := strings.ToLower(d.Name())
		if !strings.HasSuffix(name, ".exe") {
			return nil
		}
		stem := strings.TrimSuffix(name, ".exe")
		for _, bad := range excludedKeywords {
			if strings.Contains(stem, bad) {
				return nil
			}
		}
		score := longestCommonSubstring(hint, normalizeHint(stem))
		if score > bestScore {
			bestScore = score
			best = path
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan for executables: %w", err)
	}
	if best == "" {
		return "", fmt.Errorf("no launchable binary found under %s", root)
	}
	return best, nil
}

func normalizeHint(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, s)
}

func longestCommonSubstring(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	best := 0
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > best {
					best = cur[j]
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return best
}
