// Package dpu walks a direct-DPU instruction stream — a flat sequence of
// 32-bit words whose high byte is an opcode — and emits shim-DMA
// relocations for WRITE_SHIM_BD/WRITE_BD instructions.
package dpu

// Opcode identifies a DPU instruction, taken from the high byte of its
// leading word.
type Opcode byte

// Opcode values and word sizes below are a modeled approximation: the
// original opcode table lives in a hardware header this pack does not
// retrieve. Sizes are chosen so WRITE_SHIM_BD spans 8 words in total (the
// opcode word followed by a 7-word BD payload), and so every remaining opcode still
// advances the cursor by a fixed, non-zero word count.
const (
	OpWriteShimBD          Opcode = 0x02
	OpWriteBD              Opcode = 0x03
	OpNoop                 Opcode = 0x00
	OpWrite32              Opcode = 0x04
	OpWriteBDExtendAIETile Opcode = 0x05
	OpWrite32ExtendGeneral Opcode = 0x06
	OpWriteBDExtendShim    Opcode = 0x07
	OpWriteBDExtendMem     Opcode = 0x08
	OpWrite32ExtendDiffBD  Opcode = 0x09
	OpWriteBDExtendSameBD  Opcode = 0x0A
	OpDumpDDR              Opcode = 0x0B
	OpWriteMemBD           Opcode = 0x0C
	OpWrite32RTP           Opcode = 0x0D
	OpRead32               Opcode = 0x0E
	OpRead32Poll           Opcode = 0x0F
	OpSync                 Opcode = 0x10
	OpMergeSync            Opcode = 0x11
	OpDumpRegister         Opcode = 0x12
	OpRecordTimestamp      Opcode = 0x13
)

// Word sizes for the fixed-size instructions, including the leading
// opcode word.
const (
	writeShimBDWords          = 8
	writeBDRow1Words          = 9
	writeBDRowNWords          = 7
	noopWords                 = 1
	write32Words              = 2
	writeBDExtendAIETileWords = 9
	write32ExtendGeneralWords = 3
	writeBDExtendShimWords    = 9
	writeBDExtendMemWords     = 9
	write32ExtendDiffBDWords  = 3
	writeBDExtendSameBDWords  = 7
	dumpDDRWords              = 2
	writeMemBDWords           = 9
	write32RTPWords           = 2
	read32Words               = 2
	read32PollWords           = 3
	syncWords                 = 1
	mergeSyncWords            = 1
	recordTimestampWords      = 1
)

// fixedWordSize returns the fixed advance for opcodes whose size never
// depends on operand content. ok is false for WRITE_SHIM_BD, WRITE_BD and
// DUMP_REGISTER, which the walker handles specially.
func fixedWordSize(op Opcode) (words int, ok bool) {
	switch op {
	case OpNoop:
		return noopWords, true
	case OpWrite32:
		return write32Words, true
	case OpWriteBDExtendAIETile:
		return writeBDExtendAIETileWords, true
	case OpWrite32ExtendGeneral:
		return write32ExtendGeneralWords, true
	case OpWriteBDExtendShim:
		return writeBDExtendShimWords, true
	case OpWriteBDExtendMem:
		return writeBDExtendMemWords, true
	case OpWrite32ExtendDiffBD:
		return write32ExtendDiffBDWords, true
	case OpWriteBDExtendSameBD:
		return writeBDExtendSameBDWords, true
	case OpDumpDDR:
		return dumpDDRWords, true
	case OpWriteMemBD:
		return writeMemBDWords, true
	case OpWrite32RTP:
		return write32RTPWords, true
	case OpRead32:
		return read32Words, true
	case OpRead32Poll:
		return read32PollWords, true
	case OpSync:
		return syncWords, true
	case OpMergeSync:
		return mergeSyncWords, true
	case OpRecordTimestamp:
		return recordTimestampWords, true
	default:
		return 0, false
	}
}

// argIndexNames is the fixed argument-index-to-name table WRITE_SHIM_BD
// and row-0 WRITE_BD instructions use, keyed by the low nibble of the
// instruction's first byte.
var argIndexNames = map[uint32]string{
	0: "ifm",
	1: "param",
	2: "ofm",
	3: "inter",
	4: "out2",
	5: "control-packet",
}
