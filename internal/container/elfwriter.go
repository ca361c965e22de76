package container

import (
	"encoding/binary"
	"sort"

	"fortio.org/safecast"

	"github.com/stsoe/aiebu/internal/aiebuerr"
	"github.com/stsoe/aiebu/internal/reloc"
)

const (
	elfHeaderSize   = 64
	shdrEntrySize   = 64
	symEntrySize    = 24
	relocRecordSize = 24

	shtProgbits = 1
	shtSymtab   = 2
	shtStrtab   = 3

	shfAlloc     = 0x2
	shfExecinstr = 0x4

	sectionAiebuReloc = ".aiebu.reloc"
)

// ELFBuilder assembles an ET_REL ELF64 object: the walked sections
// verbatim, a symbol table naming every relocation target, and a
// bespoke ".aiebu.reloc" section carrying the (section, offset, symbol,
// schema, addend, mask_or_length) tuples the loader contract
// names — standard SHT_RELA cannot carry the schema/mask_or_length pair,
// so this format is domain-specific rather than a generic linker
// relocation.
type ELFBuilder struct {
	order []string
	data  map[string][]byte
	table *reloc.Table
}

// NewELFBuilder returns an empty builder.
func NewELFBuilder() *ELFBuilder {
	return &ELFBuilder{data: make(map[string][]byte), table: reloc.NewTable(16)}
}

func (b *ELFBuilder) AddSection(name string, data []byte) error {
	if _, exists := b.data[name]; exists {
		return aiebuerr.Internal("section %q already added", name)
	}
	b.order = append(b.order, name)
	b.data[name] = data
	return nil
}

func (b *ELFBuilder) AddRelocation(sym reloc.Symbol) error {
	return b.table.Add(sym)
}

type strtab struct {
	buf []byte
	off map[string]uint32
}

func newStrtab() *strtab {
	return &strtab{buf: []byte{0}, off: map[string]uint32{"": 0}}
}

func (s *strtab) intern(name string) uint32 {
	if off, ok := s.off[name]; ok {
		return off
	}
	off := uint32(len(s.buf))
	s.buf = append(s.buf, []byte(name)...)
	s.buf = append(s.buf, 0)
	s.off[name] = off
	return off
}

func align4(n int) int { return (n + 3) &^ 3 }

func putU16(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func putU32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func putU64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }

// Bytes lays out and serializes the ELF64 object.
func (b *ELFBuilder) Bytes() ([]byte, error) {
	symtabStr := newStrtab()
	symbolNames := make([]string, 0, b.table.Len())
	seen := make(map[string]bool)
	for _, sym := range b.table.Symbols() {
		if !seen[sym.Name] {
			seen[sym.Name] = true
			symbolNames = append(symbolNames, sym.Name)
		}
	}
	sort.Strings(symbolNames)
	symNameOff := make(map[string]uint32, len(symbolNames))
	for _, name := range symbolNames {
		symNameOff[name] = symtabStr.intern(name)
	}

	symtab := make([]byte, symEntrySize*(1+len(symbolNames)))
	for i, name := range symbolNames {
		off := (i + 1) * symEntrySize
		putU32(symtab[off:], symNameOff[name])
		symtab[off+4] = 0x10 // STB_GLOBAL<<4 | STT_NOTYPE
		symtab[off+5] = 0
		putU16(symtab[off+6:], 0) // st_shndx = SHN_UNDEF: resolved by the loader, not local to this object
		putU64(symtab[off+8:], 0)
		putU64(symtab[off+16:], 0)
	}

	relocBuf := make([]byte, 0, relocRecordSize*b.table.Len())
	for _, group := range b.table.Grouped() {
		sectionOff := symtabStr.intern(group.Section)
		for _, sym := range group.Symbols {
			rec := make([]byte, relocRecordSize)
			putU32(rec[0:], symNameOff[sym.Name])
			putU32(rec[4:], sectionOff)
			putU32(rec[8:], sym.Offset)
			putU32(rec[12:], sym.Addend)
			putU32(rec[16:], sym.MaskOrLength)
			rec[20] = byte(sym.Schema)
			relocBuf = append(relocBuf, rec...)
		}
	}

	// Section layout: NULL, user sections in insertion order, .symtab,
	// .strtab (symbol names and relocation target section names),
	// .aiebu.reloc, .shstrtab (section names).
	type shdr struct {
		name        string
		shType      uint32
		flags       uint64
		offset      int
		size        int
		link, info  uint32
		addralign   uint64
		entsize     uint64
	}

	var sections []shdr
	sections = append(sections, shdr{}) // NULL

	fileOff := elfHeaderSize
	for _, name := range b.order {
		fileOff = align4(fileOff)
		flags := uint64(shfAlloc)
		if name == reloc.SectionCtrlText {
			flags |= shfExecinstr
		}
		sections = append(sections, shdr{
			name: name, shType: shtProgbits, flags: flags,
			offset: fileOff, size: len(b.data[name]), addralign: 4,
		})
		fileOff += len(b.data[name])
	}

	fileOff = align4(fileOff)
	symtabOffset := fileOff
	fileOff += len(symtab)

	fileOff = align4(fileOff)
	symstrOffset := fileOff
	fileOff += len(symtabStr.buf)

	fileOff = align4(fileOff)
	relocOffset := fileOff
	fileOff += len(relocBuf)

	shstrtab := newStrtab()
	nameOffsets := make([]uint32, len(sections))
	for i, s := range sections {
		if i == 0 {
			continue
		}
		nameOffsets[i] = shstrtab.intern(s.name)
	}
	symtabShstrOff := shstrtab.intern(".symtab")
	strtabShstrOff := shstrtab.intern(".strtab")
	relocShstrOff := shstrtab.intern(sectionAiebuReloc)
	shstrtabShstrOff := shstrtab.intern(".shstrtab")

	fileOff = align4(fileOff)
	shstrtabOffset := fileOff
	fileOff += len(shstrtab.buf)

	fileOff = align4(fileOff)
	shdrOffset := fileOff

	symtabSecIdx, err := safecast.Conv[uint32](len(sections))
	if err != nil {
		return nil, aiebuerr.Internal("section count overflow: %v", err)
	}
	strtabSecIdx := symtabSecIdx + 1
	relocSecIdx := symtabSecIdx + 2
	shstrtabSecIdx := symtabSecIdx + 3
	totalShnum := shstrtabSecIdx + 1

	fileOff += int(totalShnum) * shdrEntrySize
	out := make([]byte, fileOff)

	out[0], out[1], out[2], out[3] = 0x7f, 'E', 'L', 'F'
	out[4] = 2 // ELFCLASS64
	out[5] = 1 // ELFDATA2LSB
	out[6] = 1 // EV_CURRENT
	out[7] = 0 // ELFOSABI_NONE
	putU16(out[16:], 1) // e_type: ET_REL
	putU16(out[18:], 0) // e_machine: no public EM_* constant for this device
	putU32(out[20:], 1) // e_version
	putU64(out[24:], 0) // e_entry
	putU64(out[32:], 0) // e_phoff
	putU64(out[40:], uint64(shdrOffset))
	putU32(out[48:], 0)
	putU16(out[52:], elfHeaderSize)
	putU16(out[54:], 0)
	putU16(out[56:], 0)
	putU16(out[58:], shdrEntrySize)
	putU16(out[60:], uint16(totalShnum))
	putU16(out[62:], uint16(shstrtabSecIdx))

	for i, name := range b.order {
		s := sections[i+1]
		copy(out[s.offset:], b.data[name])
	}
	copy(out[symtabOffset:], symtab)
	copy(out[symstrOffset:], symtabStr.buf)
	copy(out[relocOffset:], relocBuf)
	copy(out[shstrtabOffset:], shstrtab.buf)

	shdrTable := out[shdrOffset:]
	writeShdr := func(idx int, nameOff uint32, shType uint32, flags uint64, addr uint64, offset, size int, link, info uint32, addralign, entsize uint64) {
		s := shdrTable[idx*shdrEntrySize:]
		putU32(s[0:], nameOff)
		putU32(s[4:], shType)
		putU64(s[8:], flags)
		putU64(s[16:], addr)
		putU64(s[24:], uint64(offset))
		putU64(s[32:], uint64(size))
		putU32(s[40:], link)
		putU32(s[44:], info)
		putU64(s[48:], addralign)
		putU64(s[56:], entsize)
	}

	// index 0: SHT_NULL, all zero.
	for i := range b.order {
		s := sections[i+1]
		writeShdr(i+1, nameOffsets[i+1], shtProgbits, s.flags, 0, s.offset, s.size, 0, 0, s.addralign, 0)
	}
	writeShdr(int(symtabSecIdx), symtabShstrOff, shtSymtab, 0, 0, symtabOffset, len(symtab), uint32(strtabSecIdx), uint32(1), 8, symEntrySize)
	writeShdr(int(strtabSecIdx), strtabShstrOff, shtStrtab, 0, 0, symstrOffset, len(symtabStr.buf), 0, 0, 1, 0)
	writeShdr(int(relocSecIdx), relocShstrOff, shtProgbits, 0, 0, relocOffset, len(relocBuf), uint32(symtabSecIdx), 0, 4, relocRecordSize)
	writeShdr(int(shstrtabSecIdx), shstrtabShstrOff, shtStrtab, 0, 0, shstrtabOffset, len(shstrtab.buf), 0, 0, 1, 0)

	return out, nil
}
