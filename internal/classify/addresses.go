package classify

// The upstream register-address tables live in the loader's tile-register
// map, which this repo does not carry. These constants model a small,
// internally-consistent set of BD word-0 addresses sufficient to
// exercise every classifier branch; a real deployment would source them
// from the device TRM instead.
const (
	// ShimDMABD0_0 is the word-0 address of the first shim-tile DMA BD.
	ShimDMABD0_0 uint32 = 0x100
	shimBDStride uint32 = 0x20
	shimBDCount  int    = 16

	// MemBD0_0 is the word-0 address of the first mem-tile BD.
	MemBD0_0    uint32 = 0x400
	memBDStride uint32 = 0x20
	memBDCount  int    = 16
)

var shimBDWord0 = buildAddressSet(ShimDMABD0_0, shimBDStride, shimBDCount)
var memBDWord0 = buildAddressSet(MemBD0_0, memBDStride, memBDCount)

func buildAddressSet(base, stride uint32, count int) map[uint32]struct{} {
	set := make(map[uint32]struct{}, count)
	for i := 0; i < count; i++ {
		set[base+uint32(i)*stride] = struct{}{}
	}
	return set
}

func isShimBDWord0(reg uint32) bool {
	_, ok := shimBDWord0[reg]
	return ok
}

func isMemBDWord0(reg uint32) bool {
	_, ok := memBDWord0[reg]
	return ok
}

// Relocation masks. Exact bit layouts belong to the loader's BD
// encoding; these model plausible length/address field widths for a DMA
// BD and are what the classifier stamps into Symbol.MaskOrLength for
// scalar_32 relocations.
const (
	MaskMemBufferLength  uint32 = 0x0001FFFF
	MaskMemBaseAddress   uint32 = 0xFFFFFFFF
	MaskShimBufferLength uint32 = 0x0001FFFF
)
