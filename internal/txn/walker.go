package txn

import (
	"encoding/binary"

	"github.com/stsoe/aiebu/internal/aiebuerr"
	"github.com/stsoe/aiebu/internal/classify"
	"github.com/stsoe/aiebu/internal/reloc"
)

// Config carries the metadata-derived context the walker needs to hand
// off to the classifier.
type Config struct {
	ArgOffset   uint32
	ArgIndexMap map[uint32]string
}

// Result is what a completed walk produced.
type Result struct {
	Symbols []reloc.Symbol
	NumCols int
}

type bdEntry struct {
	offset uint32
	length uint32
}

type pmWindow struct {
	remaining int
	pmID      byte
}

type walkState struct {
	cfg      Config
	section  string
	raw      []byte // the full buffer, for in-place sanitisation
	bdMap    map[uint32]bdEntry
	pmWindow *pmWindow
	symbols  []reloc.Symbol
}

// Walk scans buf, a transaction stream beginning with a Header, and
// returns the relocations discovered plus the header's NumCols.
func Walk(buf []byte, section string, cfg Config) (*Result, error) {
	hdr, err := ParseHeader(buf)
	if err != nil {
		return nil, err
	}
	body := buf[HeaderSize:]
	w := &walkState{cfg: cfg, section: section, raw: buf, bdMap: make(map[uint32]bdEntry)}

	pos := 0
	for i := uint32(0); i < hdr.NumOps; i++ {
		if pos >= len(body) {
			return nil, aiebuerr.InvalidAsm("transaction stream truncated at op %d of %d", i, hdr.NumOps)
		}
		op := Opcode(body[pos])
		windowActiveBefore := w.pmWindow != nil

		var size int
		if hdr.Optimised() {
			size, err = w.stepOptimised(body, pos, op)
		} else {
			size, err = w.stepLegacy(body, pos, op)
		}
		if err != nil {
			return nil, err
		}
		pos += size

		if windowActiveBefore && w.pmWindow != nil {
			w.pmWindow.remaining--
			if w.pmWindow.remaining <= 0 {
				w.pmWindow = nil
			}
		}
	}

	return &Result{Symbols: w.symbols, NumCols: int(hdr.NumCols)}, nil
}

// stepCommon dispatches opcodes shared verbatim between header versions.
// handled is false when op is not one of the shared opcodes.
func (w *walkState) stepCommon(body []byte, pos int, op Opcode) (size int, handled bool, err error) {
	switch op {
	case OpWrite, OpMaskWrite, OpMaskPoll, OpMaskPollBusy, OpNoop, OpPreempt:
		return advanceOnlyRecordSize, true, nil
	case OpBlockWrite:
		n, err := w.handleBlockWrite(body, pos)
		return n, true, err
	case OpLoadPMStart:
		n, err := w.handleLoadPMStart(body, pos)
		return n, true, err
	default:
		return 0, false, nil
	}
}

func (w *walkState) stepLegacy(body []byte, pos int, op Opcode) (int, error) {
	if n, handled, err := w.stepCommon(body, pos, op); handled {
		return n, err
	}
	if op != OpCustomOpBegin {
		return 0, aiebuerr.InvalidAsm("unknown legacy transaction opcode 0x%02x at offset %d", byte(op), pos)
	}
	if pos+customOpRecordSize > len(body) {
		return 0, aiebuerr.InvalidAsm("truncated custom-op record at offset %d", pos)
	}
	subop := body[pos+1]
	if subop == SubOpDDRPatch {
		if err := w.handleDDRPatch(body, pos); err != nil {
			return 0, err
		}
	}
	// TCT / MERGE_SYNC / READ_REGS / RECORD_TIMER: advance only.
	return customOpRecordSize, nil
}

func (w *walkState) stepOptimised(body []byte, pos int, op Opcode) (int, error) {
	if n, handled, err := w.stepCommon(body, pos, op); handled {
		return n, err
	}
	switch op {
	case OpDDRPatchOpt:
		if pos+customOpRecordSize > len(body) {
			return 0, aiebuerr.InvalidAsm("truncated custom-op record at offset %d", pos)
		}
		if err := w.handleDDRPatch(body, pos); err != nil {
			return 0, err
		}
		return customOpRecordSize, nil
	case OpTCTOpt, OpMergeSyncOpt, OpReadRegsOpt, OpRecordTimerOpt:
		if pos+customOpRecordSize > len(body) {
			return 0, aiebuerr.InvalidAsm("truncated custom-op record at offset %d", pos)
		}
		return customOpRecordSize, nil
	default:
		return 0, aiebuerr.InvalidAsm("unknown optimised transaction opcode 0x%02x at offset %d", byte(op), pos)
	}
}

func (w *walkState) handleBlockWrite(body []byte, pos int) (int, error) {
	if pos+blockWriteHeaderSize > len(body) {
		return 0, aiebuerr.InvalidAsm("truncated BLOCKWRITE record at offset %d", pos)
	}
	regOff := binary.LittleEndian.Uint32(body[pos+4 : pos+8])
	payloadLen := binary.LittleEndian.Uint32(body[pos+8 : pos+12])
	payloadStart := pos + blockWriteHeaderSize
	if payloadStart+int(payloadLen) > len(body) {
		return 0, aiebuerr.InvalidAsm("BLOCKWRITE payload of %d bytes overruns the buffer at offset %d", payloadLen, pos)
	}
	payload := body[payloadStart : payloadStart+int(payloadLen)]
	// body is offset HeaderSize into w.raw, so section-relative offset
	// of the payload adds that back in.
	payloadOffset := uint32(HeaderSize + payloadStart)

	if w.pmWindow != nil {
		if len(payload) < 4 {
			return 0, aiebuerr.InvalidAsm("PM-load BLOCKWRITE payload of %d bytes is too small for a word count", len(payload))
		}
		wordCount := binary.LittleEndian.Uint32(payload[0:4])
		bufLen := wordCount * 4
		offset := (regOff + 4) & 0xFFFFF
		w.symbols = append(w.symbols, reloc.Symbol{
			Name:         "",
			Offset:       offset,
			Schema:       reloc.SchemaScalar32,
			Section:      reloc.PMSection(int(w.pmWindow.pmID)),
			Addend:       0,
			MaskOrLength: classify.MaskShimBufferLength,
		})
		_ = bufLen // buffer length is informational for this schema and is not stored; MaskOrLength above carries the scalar_32 mask.
		return blockWriteHeaderSize + int(payloadLen), nil
	}

	if len(payload)%ShimDMABDSize != 0 {
		return 0, aiebuerr.InvalidAsm("BLOCKWRITE payload of %d bytes is not a multiple of the shim BD size %d", len(payload), ShimDMABDSize)
	}
	for chunkOff := 0; chunkOff < len(payload); chunkOff += ShimDMABDSize {
		chunk := payload[chunkOff : chunkOff+ShimDMABDSize]
		length := binary.LittleEndian.Uint32(chunk[0:4]) * 4
		key := (regOff + uint32(chunkOff)) & 0xFFFF_FFF0
		w.bdMap[key] = bdEntry{offset: payloadOffset + uint32(chunkOff), length: length}
	}
	return blockWriteHeaderSize + int(payloadLen), nil
}

func (w *walkState) handleLoadPMStart(body []byte, pos int) (int, error) {
	if pos+loadPMStartRecordSize > len(body) {
		return 0, aiebuerr.InvalidAsm("truncated LOAD_PM_START record at offset %d", pos)
	}
	loadSeqCount := uint32(body[pos+1]) | uint32(body[pos+2])<<8 | uint32(body[pos+3])<<16
	pmID := body[pos+4]
	if !isKnownPMID(pmID) {
		return 0, aiebuerr.InvalidAsm("unknown PM load id %d", pmID)
	}
	w.pmWindow = &pmWindow{remaining: int(loadSeqCount) + 1, pmID: pmID}
	return loadPMStartRecordSize, nil
}

func (w *walkState) handleDDRPatch(body []byte, pos int) error {
	if w.pmWindow != nil {
		return aiebuerr.InvalidAsm("DDR_PATCH opcode found inside an open PM-load window")
	}
	regaddr := binary.LittleEndian.Uint32(body[pos+4 : pos+8])
	argidx := binary.LittleEndian.Uint32(body[pos+8 : pos+12])
	argplus := binary.LittleEndian.Uint32(body[pos+12 : pos+16])

	key := regaddr & 0xFFFF_FFF0
	entry, ok := w.bdMap[key]
	if !ok {
		return aiebuerr.InvalidAsm("no block-write opcode present before the patch opcode at register 0x%x", regaddr)
	}

	sym, err := classify.Classify(classify.Input{
		Reg:          regaddr & 0xFFFFF,
		ArgIndex:     argidx + w.cfg.ArgOffset,
		ArgOffset:    w.cfg.ArgOffset,
		Offset:       entry.offset,
		BufferLength: entry.length,
		Addend:       argplus,
		Section:      w.section,
		ArgIndexMap:  w.cfg.ArgIndexMap,
		Raw:          w.raw,
	})
	if err != nil {
		return err
	}
	if sym != nil {
		w.symbols = append(w.symbols, *sym)
	}
	return nil
}
