// Package reloc holds the relocation record data model shared by every
// walker and the container builder: a Symbol names a byte site the
// runtime loader must patch with a resolved buffer address before
// dispatch, and Table accumulates and deduplicates them.
package reloc

import "fmt"

// Schema selects the loader-side patching algorithm for a Symbol. The
// bit-exact patching is done by the runtime loader; this package only
// carries the tag, and internal/container stores it as one byte per
// relocation record without interpreting it.
type Schema uint8

const (
	SchemaUnknown Schema = iota
	SchemaScalar32
	SchemaShimDMA48
	SchemaShimDMA57
	SchemaControlPacket48
)

func (s Schema) String() string {
	switch s {
	case SchemaScalar32:
		return "scalar_32"
	case SchemaShimDMA48:
		return "shim_dma_48"
	case SchemaShimDMA57:
		return "shim_dma_57"
	case SchemaControlPacket48:
		return "control_packet_48"
	default:
		return "unknown"
	}
}

// BufferType is the loader-facing coarse buffer classification carried
// alongside the finer Section string, mirroring the original assembler's
// patch_buffer_type. It plays no part in Symbol identity or classifier
// decisions.
type BufferType uint8

const (
	BufferInstruct BufferType = iota
	BufferControlPacket
)

// Well-known section tags. Per-PM sections are formatted dynamically
// (see PMSection).
const (
	SectionCtrlText = ".ctrltext"
	SectionCtrlData = ".ctrldata"
)

// PMSection returns the section tag for a per-PM control packet, e.g.
// ".ctrlpkt.pm.3" for pmID == 3.
func PMSection(pmID int) string {
	return fmt.Sprintf(".ctrlpkt.pm.%d", pmID)
}

// Symbol is one relocation record: a symbolic name resolved later by the
// runtime loader, and the byte site plus encoding schema describing how
// the loader must patch it in.
type Symbol struct {
	Name         string
	Offset       uint32
	Schema       Schema
	Section      string
	Addend       uint32
	MaskOrLength uint32
	Buffer       BufferType
}

// Site identifies a Symbol's uniqueness key: (Section, Offset).
type Site struct {
	Section string
	Offset  uint32
}

func (s Symbol) Site() Site {
	return Site{Section: s.Section, Offset: s.Offset}
}
