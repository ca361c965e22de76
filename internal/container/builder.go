// Package container assembles the walked, classified bytes and
// relocations into the on-disk object the external ELF-consuming loader
// expects.
package container

import "github.com/stsoe/aiebu/internal/reloc"

// Builder is the byte-sink and relocation-table contract the core hands
// its output to; the concrete container format is treated as an
// external collaborator, so callers may substitute another Builder
// without touching the walkers or classifier.
type Builder interface {
	AddSection(name string, data []byte) error
	AddRelocation(sym reloc.Symbol) error
	Bytes() ([]byte, error)
}
