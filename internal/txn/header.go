// Package txn walks a binary transaction opcode stream — a compact
// recording of accelerator register accesses — and emits relocations for
// its DMA-buffer-descriptor patch sites.
package txn

import (
	"encoding/binary"

	"github.com/stsoe/aiebu/internal/aiebuerr"
)

// HeaderSize is the fixed byte length of a transaction header.
const HeaderSize = 16

// Header is the fixed preamble of a transaction buffer: version, device
// geometry, and the operation count the walker must consume exactly.
type Header struct {
	Major, Minor                 byte
	DeviceGen                    uint16
	NumCols, NumRows, NumMemRows byte
	TotalSize                    uint32
	NumOps                       uint32
}

// Optimised reports whether the header selects the (major=1, minor=0)
// optimised opcode record layout rather than the legacy one.
func (h Header) Optimised() bool {
	return h.Major == 1 && h.Minor == 0
}

// ParseHeader reads the fixed-size transaction preamble from buf.
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, aiebuerr.InvalidAsm("transaction buffer of %d bytes is shorter than the %d-byte header", len(buf), HeaderSize)
	}
	return Header{
		Major:      buf[0],
		Minor:      buf[1],
		DeviceGen:  binary.LittleEndian.Uint16(buf[2:4]),
		NumCols:    buf[4],
		NumRows:    buf[5],
		NumMemRows: buf[6],
		TotalSize:  binary.LittleEndian.Uint32(buf[8:12]),
		NumOps:     binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}
