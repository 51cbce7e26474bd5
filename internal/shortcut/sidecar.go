package shortcut

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

const sidecarVersion = 1

// Record is one manually tracked shortcut inside the sidecar file.
type Record struct {
	DisplayName string `yaml:"display_name"`
	Target      string `yaml:"target"`
}

type sidecarFile struct {
	Version int                 `yaml:"version"`
	Bottles map[string][]Record `yaml:"bottles"`
}

// Sidecar persists manual shortcut records in a human-readable YAML file
// keyed by bottle name. Writes are atomic (write-then-rename) so a partial
// write never corrupts the store.
type Sidecar struct {
	path string
}

func NewSidecar(path string) *Sidecar {
	return &Sidecar{path: path}
}

func (s *Sidecar) load() (*sidecarFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &sidecarFile{Version: sidecarVersion, Bottles: map[string][]Record{}}, nil
		}
		return nil, fmt.Errorf("read shortcut sidecar: %w", err)
	}

	var f sidecarFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode shortcut sidecar: %w", err)
	}
	if f.Version == 0 {
		f.Version = sidecarVersion
	}
	if f.Bottles == nil {
		f.Bottles = map[string][]Record{}
	}
	return &f, nil
}

func (s *Sidecar) save(f *sidecarFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure sidecar dir: %w", err)
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode shortcut sidecar: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp sidecar: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace sidecar: %w", err)
	}
	return nil
}

// Upsert stores a record, replacing any existing record with the same
// display name under the bottle.
func (s *Sidecar) Upsert(bottle string, rec Record) error {
	f, err := s.load()
	if err != nil {
		return err
	}

	records := f.Bottles[bottle]
	replaced := false
	for i, existing := range records {
		if existing.DisplayName == rec.DisplayName {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
		sort.Slice(records, func(i, j int) bool {
			return records[i].DisplayName < records[j].DisplayName
		})
	}
	f.Bottles[bottle] = records
	return s.save(f)
}

// Find returns the record for (bottle, displayName) when present.
func (s *Sidecar) Find(bottle, displayName string) (Record, bool, error) {
	f, err := s.load()
	if err != nil {
		return Record{}, false, err
	}
	for _, rec := range f.Bottles[bottle] {
		if rec.DisplayName == displayName {
			return rec, true, nil
		}
	}
	return Record{}, false, nil
}

// Delete removes the record for (bottle, displayName) when present.
func (s *Sidecar) Delete(bottle, displayName string) error {
	f, err := s.load()
	if err != nil {
		return err
	}
	records := f.Bottles[bottle]
	for i, rec := range records {
		if rec.DisplayName == displayName {
			f.Bottles[bottle] = append(records[:i], records[i+1:]...)
			return s.save(f)
		}
	}
	return nil
}

// List returns all records for a bottle.
func (s *Sidecar) List(bottle string) ([]Record, error) {
	f, err := s.load()
	if err != nil {
		return nil, err
	}
	return f.Bottles[bottle], nil
}

// Bottles returns all bottle names with at least one record, sorted.
func (s *Sidecar) Bottles() ([]string, error) {
	f, err := s.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.Bottles))
	for name, records := range f.Bottles {
		if len(records) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
