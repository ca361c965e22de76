package classify

import (
	"strconv"

	"github.com/stsoe/aiebu/internal/reloc"
)

// Input bundles everything the classifier needs to turn a (register,
// patch-site) pair into a relocation. Raw is the section byte buffer the
// walker is patching in place — Sanitize needs write access to it before
// a shim_dma_48 emission.
type Input struct {
	Reg          uint32
	ArgIndex     uint32
	ArgOffset    uint32
	Offset       uint32
	BufferLength uint32
	Addend       uint32
	Section      string
	ArgName      string
	ArgIndexMap  map[uint32]string
	Raw          []byte
}

// Classify chooses the relocation schema and section tag for a patch
// site, per the four mutually-exclusive BD-address classes. A nil,nil
// result means the register address matched none of the classes and the
// call is a silent no-op.
func Classify(in Input) (*reloc.Symbol, error) {
	switch {
	case isMemBDWord0(in.Reg):
		return &reloc.Symbol{
			Name:         strconv.FormatUint(uint64(in.ArgIndex), 10),
			Offset:       in.Offset,
			Schema:       reloc.SchemaScalar32,
			Section:      in.Section,
			Addend:       in.Addend,
			MaskOrLength: MaskMemBufferLength,
		}, nil

	case isMemBDWord0(in.Reg - 4):
		return &reloc.Symbol{
			Name:         strconv.FormatUint(uint64(in.ArgIndex), 10),
			Offset:       in.Offset + 4,
			Schema:       reloc.SchemaScalar32,
			Section:      in.Section,
			Addend:       in.Addend,
			MaskOrLength: MaskMemBaseAddress,
		}, nil

	case isShimBDWord0(in.Reg):
		return &reloc.Symbol{
			Name:         strconv.FormatUint(uint64(in.ArgIndex), 10),
			Offset:       in.Offset,
			Schema:       reloc.SchemaScalar32,
			Section:      in.Section,
			Addend:       in.Addend,
			MaskOrLength: MaskShimBufferLength,
		}, nil

	case isShimBDWord0(in.Reg - 4):
		if err := Sanitize(in.Raw, in.Offset); err != nil {
			return nil, err
		}
		return &reloc.Symbol{
			Name:         resolveName(in),
			Offset:       in.Offset,
			Schema:       reloc.SchemaShimDMA48,
			Section:      in.Section,
			Addend:       in.Addend,
			MaskOrLength: in.BufferLength,
		}, nil

	default:
		return nil, nil
	}
}

func resolveName(in Input) string {
	if in.ArgName != "" {
		return in.ArgName
	}
	if in.ArgIndexMap != nil {
		if name, ok := in.ArgIndexMap[in.ArgIndex-in.ArgOffset]; ok {
			return name
		}
	}
	return strconv.FormatUint(uint64(in.ArgIndex), 10)
}
