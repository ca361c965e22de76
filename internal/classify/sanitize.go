package classify

import "github.com/stsoe/aiebu/internal/aiebuerr"

// Sanitize zeroes the address bits at a shim-DMA BD's word 1 and word 2
// before a shim_dma_48 relocation is emitted there, so the loader's
// additive patch cannot race with residual high bits the compiler wrote.
// offset is the BD's word-0 byte offset within raw; bytes
// [offset+4, offset+10) are touched. Applying Sanitize twice to the same
// range is a no-op the second time (idempotent).
func Sanitize(raw []byte, offset uint32) error {
	base := int(offset)
	end := base + 10
	if base < 0 || end > len(raw) {
		return aiebuerr.InvalidAsm("sanitiser range [%d,%d) exceeds buffer of length %d", base+4, end, len(raw))
	}
	raw[base+4] &= 0x03
	raw[base+5] = 0
	raw[base+6] = 0
	raw[base+7] = 0
	raw[base+8] = 0
	raw[base+9] = 0
	return nil
}
