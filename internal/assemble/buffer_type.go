package assemble

import "github.com/stsoe/aiebu/internal/aiebuerr"

// BufferType is the request-level discriminant selecting which walker
// (or first-pass) an assemble call routes through.
type BufferType int

const (
	BlobInstrDPU BufferType = iota
	BlobInstrPrepost
	BlobInstrTransaction
	BlobControlPacket
	AsmAIE2
	AsmAIE2PS
)

func (t BufferType) String() string {
	switch t {
	case BlobInstrDPU:
		return "blob_instr_dpu"
	case BlobInstrPrepost:
		return "blob_instr_prepost"
	case BlobInstrTransaction:
		return "blob_instr_transaction"
	case BlobControlPacket:
		return "blob_control_packet"
	case AsmAIE2:
		return "asm_aie2"
	case AsmAIE2PS:
		return "asm_aie2ps"
	default:
		return "unknown"
	}
}

// ParseBufferType maps a CLI/config string onto a BufferType.
func ParseBufferType(s string) (BufferType, error) {
	switch s {
	case "blob_instr_dpu":
		return BlobInstrDPU, nil
	case "blob_instr_prepost":
		return BlobInstrPrepost, nil
	case "blob_instr_transaction":
		return BlobInstrTransaction, nil
	case "blob_control_packet":
		return BlobControlPacket, nil
	case "asm_aie2":
		return AsmAIE2, nil
	case "asm_aie2ps":
		return AsmAIE2PS, nil
	default:
		return 0, aiebuerr.InvalidAsm("unknown buffer type %q", s)
	}
}

// usesDirectDPUWalker reports whether t's instruction stream is a
// direct-DPU word stream (internal/dpu) rather than a transaction
// stream with a Header (internal/txn).
func (t BufferType) usesDirectDPUWalker() bool {
	return t == BlobInstrDPU || t == BlobInstrPrepost
}

// isTextAssembly reports whether t names a textual first-pass input
// rather than a binary blob.
func (t BufferType) isTextAssembly() bool {
	return t == AsmAIE2 || t == AsmAIE2PS
}
