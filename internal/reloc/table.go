package reloc

import (
	"sort"

	"github.com/stsoe/aiebu/internal/aiebuerr"
)

// Table accumulates relocation entries for a single assembler
// invocation, rejecting duplicate (section, offset) sites and exposing
// deterministic iteration grouped by (section, schema).
type Table struct {
	bySite map[Site]Symbol
	order  []Site
}

// NewTable returns an empty table. hint is an optional capacity
// suggestion; zero is fine.
func NewTable(hint int) *Table {
	return &Table{
		bySite: make(map[Site]Symbol, hint),
		order:  make([]Site, 0, hint),
	}
}

// Add inserts sym, or returns internal_error if a symbol was already
// emitted at the same (section, offset) site — per the data model,
// that collision is a programming error, never a recoverable condition.
func (t *Table) Add(sym Symbol) error {
	site := sym.Site()
	if _, exists := t.bySite[site]; exists {
		return aiebuerr.Internal("duplicate symbol at section %q offset %d", site.Section, site.Offset)
	}
	t.bySite[site] = sym
	t.order = append(t.order, site)
	return nil
}

// Len returns the number of accumulated symbols.
func (t *Table) Len() int { return len(t.order) }

// Symbols returns all accumulated symbols in insertion order.
func (t *Table) Symbols() []Symbol {
	out := make([]Symbol, 0, len(t.order))
	for _, site := range t.order {
		out = append(out, t.bySite[site])
	}
	return out
}

// Group is a set of symbols sharing a (Section, Schema) pair.
type Group struct {
	Section string
	Schema  Schema
	Symbols []Symbol
}

// Grouped returns symbols grouped by (Section, Schema), groups sorted by
// section then schema, and symbols within a group sorted by offset —
// the deterministic order the container builder consumes.
func (t *Table) Grouped() []Group {
	type key struct {
		section string
		schema  Schema
	}
	byKey := make(map[key][]Symbol)
	var keys []key
	for _, site := range t.order {
		sym := t.bySite[site]
		k := key{section: sym.Section, schema: sym.Schema}
		if _, seen := byKey[k]; !seen {
			keys = append(keys, k)
		}
		byKey[k] = append(byKey[k], sym)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].section != keys[j].section {
			return keys[i].section < keys[j].section
		}
		return keys[i].schema < keys[j].schema
	})
	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		syms := byKey[k]
		sort.SliceStable(syms, func(i, j int) bool { return syms[i].Offset < syms[j].Offset })
		groups = append(groups, Group{Section: k.section, Schema: k.schema, Symbols: syms})
	}
	return groups
}
