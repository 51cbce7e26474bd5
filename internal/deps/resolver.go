package deps

import (
	"debug/pe"
	"fmt"
	"os"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Report is the immutable outcome of one dependency scan. A re-scan produces
// a new report.
type Report struct {
	BinaryPath string      `json:"binary_path"`
	Imports    []string    `json:"imports"`
	Resolved   []Component `json:"resolved"`
	Unresolved []string    `json:"unresolved"`
}

// Resolver maps a binary's import table to runtime components. Reports are
// memoized per (path, size, mtime) since scanning the same installer twice in
// a workflow is common.
type Resolver struct {
	catalog *Catalog
	cache   *lru.Cache[string, Report]
}

func NewResolver(catalog *Catalog) (*Resolver, error) {
	if catalog == nil {
		catalog = Builtin()
	}
	cache, err := lru.New[string, Report](128)
	if err != nil {
		return nil, err
	}
	return &Resolver{catalog: catalog, cache: cache}, nil
}

// Scan reads the binary's PE import table and resolves it against the
// catalog.
func (r *Resolver) Scan(binaryPath string) (Report, error) {
	info, err := os.Stat(binaryPath)
	if err != nil {
		return Report{}, fmt.Errorf("stat binary: %w", err)
	}
	key := fmt.Sprintf("%s|%d|%d", binaryPath, info.Size(), info.ModTime().UnixNano())
	if cached, ok := r.cache.Get(key); ok {
		return cached, nil
	}

	imports, err := importedLibraries(binaryPath)
	if err != nil {
		return Report{}, err
	}

	report := r.ResolveImports(binaryPath, imports)
	r.cache.Add(key, report)
	return report, nil
}

// ResolveImports maps library names to components. Resolution is
// case-insensitive, components are deduplicated in first-seen order and then
// normalized to the fixed install order. Unmapped libraries are reported but
// never fail an install.
func (r *Resolver) ResolveImports(binaryPath string, imports []string) Report {
	report := Report{BinaryPath: binaryPath, Imports: imports}

	seen := make(map[string]bool)
	for _, lib := range imports {
		comp, ok := r.catalog.Resolve(lib)
		if !ok {
			report.Unresolved = append(report.Unresolved, strings.ToLower(lib))
			continue
		}
		if seen[comp.ID] {
			continue
		}
		seen[comp.ID] = true
		report.Resolved = append(report.Resolved, comp)
	}

	report.Resolved = InstallOrder(report.Resolved)
	sort.Strings(report.Unresolved)
	return report
}

// InstallOrder returns the components sorted by the fixed install order
// (lexicographic by id), which keeps component installs reproducible across
// scans.
func InstallOrder(components []Component) []Component {
	ordered := append([]Component(nil), components...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}

// MustInstall filters a resolved set down to the components that actually
// need installation.
func MustInstall(components []Component) []Component {
	var out []Component
	for _, comp := range components {
		if comp.Provided == ProvidedInstall {
			out = append(out, comp)
		}
	}
	return out
}

// importedLibraries extracts the distinct library names from a PE binary's
// import table, in first-seen order.
func importedLibraries(binaryPath string) ([]string, error) {
	f, err := pe.Open(binaryPath)
	if err != nil {
		return nil, fmt.Errorf("parse PE binary: %w", err)
	}
	defer f.Close()

	symbols, err := f.ImportedSymbols()
	if err != nil {
		return nil, fmt.Errorf("read import table: %w", err)
	}

	var libs []string
	seen := make(map[string]bool)
	for _, sym := range symbols {
		// Symbols come back as "Function:library.dll".
		idx := strings.LastIndex(sym, ":")
		if idx < 0 || idx == len(sym)-1 {
			continue
		}
		lib := strings.ToLower(sym[idx+1:])
		if seen[lib] {
			continue
		}
		seen[lib] = true
		libs = append(libs, lib)
	}
	return libs, nil
}
