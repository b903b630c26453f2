// Package regions holds the fixed allow-list that maps full region names to
// their two-letter codes.
package regions

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed regions.yaml
var defaultTable []byte

type Entry struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

type table struct {
	Regions []Entry `yaml:"regions"`
}

type Resolver struct {
	entries []Entry
	byName  map[string]string
}

// NewResolver builds a resolver from YAML. Duplicate names or codes and
// codes that are not two letters are rejected.
func NewResolver(data []byte) (*Resolver, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("regions: parse table: %w", err)
	}

	r := &Resolver{byName: make(map[string]string, len(t.Regions))}
	codes := make(map[string]bool, len(t.Regions))
	for _, e := range t.Regions {
		key := strings.ToUpper(strings.TrimSpace(e.Name))
		code := strings.ToUpper(strings.TrimSpace(e.Code))
		if key == "" || len(code) != 2 {
			return nil, fmt.Errorf("regions: invalid entry %q/%q", e.Name, e.Code)
		}
		if _, dup := r.byName[key]; dup {
			return nil, fmt.Errorf("regions: duplicate name %q", e.Name)
		}
		if codes[code] {
			return nil, fmt.Errorf("regions: duplicate code %q", code)
		}
		codes[code] = true
		r.byName[key] = code
		r.entries = append(r.entries, Entry{Name: strings.TrimSpace(e.Name), Code: code})
	}
	return r, nil
}

// Default returns the resolver for the embedded table.
func Default() *Resolver {
	r, err := NewResolver(defaultTable)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve maps a raw region name to its code. Unlisted names are not guessed.
func (r *Resolver) Resolve(name string) (string, bool) {
	code, ok := r.byName[strings.ToUpper(strings.TrimSpace(name))]
	return code, ok
}

// Entries returns the table in file order.
func (r *Resolver) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
