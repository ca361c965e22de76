package container

import (
	"encoding/binary"
	"testing"

	"github.com/stsoe/aiebu/internal/reloc"
)

func TestELFBuilder_ProducesValidHeader(t *testing.T) {
	b := NewELFBuilder()
	if err := b.AddSection(reloc.SectionCtrlText, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("AddSection: %v", err)
	}
	if err := b.AddSection(reloc.SectionCtrlData, []byte{5, 6, 7, 8, 9, 10}); err != nil {
		t.Fatalf("AddSection: %v", err)
	}
	if err := b.AddRelocation(reloc.Symbol{Name: "ofm", Offset: 0, Schema: reloc.SchemaShimDMA48, Section: reloc.SectionCtrlText}); err != nil {
		t.Fatalf("AddRelocation: %v", err)
	}

	out, err := b.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	if len(out) < elfHeaderSize {
		t.Fatalf("output too short: %d bytes", len(out))
	}
	if out[0] != 0x7f || out[1] != 'E' || out[2] != 'L' || out[3] != 'F' {
		t.Fatalf("missing ELF magic: %v", out[0:4])
	}
	if out[4] != 2 {
		t.Fatalf("expected ELFCLASS64, got %d", out[4])
	}
	eType := binary.LittleEndian.Uint16(out[16:18])
	if eType != 1 {
		t.Fatalf("expected ET_REL (1), got %d", eType)
	}
	shoff := binary.LittleEndian.Uint64(out[40:48])
	shnum := binary.LittleEndian.Uint16(out[60:62])
	if int(shoff)+int(shnum)*shdrEntrySize > len(out) {
		t.Fatalf("section header table overruns the file: shoff=%d shnum=%d len=%d", shoff, shnum, len(out))
	}
}

func TestELFBuilder_DuplicateSectionIsRejected(t *testing.T) {
	b := NewELFBuilder()
	if err := b.AddSection(reloc.SectionCtrlText, []byte{1}); err != nil {
		t.Fatalf("AddSection: %v", err)
	}
	if err := b.AddSection(reloc.SectionCtrlText, []byte{2}); err == nil {
		t.Fatalf("expected an error re-adding the same section name")
	}
}

func TestELFBuilder_DuplicateRelocationSiteIsRejected(t *testing.T) {
	b := NewELFBuilder()
	sym := reloc.Symbol{Name: "a", Offset: 4, Schema: reloc.SchemaScalar32, Section: reloc.SectionCtrlText}
	if err := b.AddRelocation(sym); err != nil {
		t.Fatalf("AddRelocation: %v", err)
	}
	if err := b.AddRelocation(sym); err == nil {
		t.Fatalf("expected an error for a duplicate (section, offset) site")
	}
}
