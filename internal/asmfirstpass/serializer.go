package asmfirstpass

import (
	"strconv"

	"github.com/stsoe/aiebu/internal/aiebuerr"
)

// SerializerFunc computes the byte size an op occupies given the current
// walk position, mirroring aiebu_assembler's isa_op::serializer(args)->size(state)
// callback.
type SerializerFunc func(pos uint32, args []string) (uint32, error)

const controlRecordSize = 8

func fixedSize(n uint32) SerializerFunc {
	return func(uint32, []string) (uint32, error) { return n, nil }
}

// alignSerializer pads pos up to the next multiple of the alignment
// named in args[0].
func alignSerializer(pos uint32, args []string) (uint32, error) {
	if len(args) != 1 {
		return 0, aiebuerr.InvalidAsm(".align expects exactly one argument, got %d", len(args))
	}
	boundary, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil || boundary == 0 {
		return 0, aiebuerr.InvalidAsm("malformed .align boundary %q", args[0])
	}
	rem := pos % uint32(boundary)
	if rem == 0 {
		return 0, nil
	}
	return uint32(boundary) - rem, nil
}

// DefaultSerializers is the ISA table a plain assembly stream is
// expected to carry: the control-flow mnemonics the first pass itself
// interprets, plus the register-access mnemonics shared with the
// transaction opcode set, given a fixed record size here since this
// layer only measures bytes and never encodes them.
func DefaultSerializers() map[string]SerializerFunc {
	return map[string]SerializerFunc{
		"start_job":          fixedSize(controlRecordSize),
		"start_job_deferred": fixedSize(controlRecordSize),
		"end_job":            fixedSize(controlRecordSize),
		"eof":                fixedSize(controlRecordSize),
		"local_barrier":      fixedSize(controlRecordSize),
		"launch_job":         fixedSize(controlRecordSize),

		"write":          fixedSize(controlRecordSize),
		"mask_write":     fixedSize(controlRecordSize),
		"mask_poll":      fixedSize(controlRecordSize),
		"mask_poll_busy": fixedSize(controlRecordSize),
		"noop":           fixedSize(controlRecordSize),
		"preempt":        fixedSize(controlRecordSize),

		".align": alignSerializer,
	}
}
