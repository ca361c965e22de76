package dpu

import (
	"encoding/binary"

	"github.com/stsoe/aiebu/internal/aiebuerr"
	"github.com/stsoe/aiebu/internal/classify"
	"github.com/stsoe/aiebu/internal/reloc"
)

// Result is what a completed walk produced.
type Result struct {
	Symbols []reloc.Symbol
}

// Walk scans buf, a stream of little-endian 32-bit DPU instruction
// words, and returns the shim-DMA relocations it finds.
func Walk(buf []byte, section string) (*Result, error) {
	if len(buf)%4 != 0 {
		return nil, aiebuerr.InvalidAsm("DPU instruction buffer length %d is not a multiple of 4", len(buf))
	}
	numWords := len(buf) / 4
	res := &Result{}

	pc := 0
	for pc < numWords {
		word := word32(buf, pc)
		op := Opcode(word >> 24)

		switch op {
		case OpWriteShimBD:
			sym, err := patchShimBD(buf, pc, section, word)
			if err != nil {
				return nil, err
			}
			res.Symbols = append(res.Symbols, *sym)
			pc += writeShimBDWords

		case OpWriteBD:
			row := (word >> 8) & 0xFF
			switch row {
			case 0:
				sym, err := patchShimBD(buf, pc, section, word)
				if err != nil {
					return nil, err
				}
				res.Symbols = append(res.Symbols, *sym)
				pc += writeBDRow1Words
			case 1:
				pc += writeBDRow1Words
			default:
				pc += writeBDRowNWords
			}

		case OpDumpRegister:
			if pc+1 >= numWords {
				return nil, aiebuerr.InvalidAsm("truncated DUMP_REGISTER at word %d", pc)
			}
			count := word32(buf, pc+1) & 0x00FFFFFF
			pc += 1 + int(count)*2

		default:
			words, ok := fixedWordSize(op)
			if !ok {
				return nil, aiebuerr.InvalidAsm("unknown DPU opcode 0x%02x at word %d", byte(op), pc)
			}
			pc += words
		}

		if pc > numWords {
			return nil, aiebuerr.InvalidAsm("DPU instruction at word %d overruns the buffer", pc)
		}
	}

	return res, nil
}

func word32(buf []byte, wordIdx int) uint32 {
	return binary.LittleEndian.Uint32(buf[wordIdx*4 : wordIdx*4+4])
}

func patchShimBD(buf []byte, pc int, section string, headerWord uint32) (*reloc.Symbol, error) {
	argidx := headerWord & 0x0000000F
	name, ok := argIndexNames[argidx]
	if !ok {
		return nil, aiebuerr.InvalidAsm("invalid dpu arg index %d", argidx)
	}
	offset := uint32(pc+1) * 4
	if err := classify.Sanitize(buf, offset); err != nil {
		return nil, err
	}
	return &reloc.Symbol{
		Name:    name,
		Offset:  offset,
		Schema:  reloc.SchemaShimDMA48,
		Section: section,
	}, nil
}
