package asmfirstpass

import (
	"strconv"
	"strings"

	"github.com/stsoe/aiebu/internal/aiebuerr"
)

// ParseNumArg parses one of the numeric-argument grammars a first-pass
// operand may use. A forward reference to a label not yet present in
// labels returns an *aiebuerr.SymbolUnresolved, a recoverable signal
// distinct from a genuine parse failure.
func ParseNumArg(arg string, labels map[string]*Label) (uint32, error) {
	switch {
	case strings.HasPrefix(arg, "@"):
		name := arg[1:]
		lbl, ok := labels[name]
		if !ok {
			return 0, &aiebuerr.SymbolUnresolved{Name: name}
		}
		return lbl.Pos, nil

	case strings.HasPrefix(arg, "tile_"):
		rest := arg[len("tile_"):]
		parts := strings.SplitN(rest, "_", 2)
		if len(parts) != 2 {
			return 0, aiebuerr.InvalidAsm("malformed tile argument %q", arg)
		}
		col, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, aiebuerr.InvalidAsm("malformed tile column in %q", arg)
		}
		row, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, aiebuerr.InvalidAsm("malformed tile row in %q", arg)
		}
		return uint32(col&0x7F)<<5 | uint32(row&0x1F), nil

	case strings.HasPrefix(arg, "s2mm_"):
		idx, err := strconv.Atoi(arg[len("s2mm_"):])
		if err != nil {
			return 0, aiebuerr.InvalidAsm("malformed s2mm channel in %q", arg)
		}
		return uint32(idx), nil

	case strings.HasPrefix(arg, "mm2s_"):
		idx, err := strconv.Atoi(arg[len("mm2s_"):])
		if err != nil {
			return 0, aiebuerr.InvalidAsm("malformed mm2s channel in %q", arg)
		}
		return 6 + uint32(idx), nil

	case strings.HasPrefix(arg, "0x"), strings.HasPrefix(arg, "0X"):
		v, err := strconv.ParseUint(arg[2:], 16, 32)
		if err != nil {
			return 0, aiebuerr.InvalidAsm("malformed hex argument %q", arg)
		}
		return uint32(v), nil

	default:
		if isDecimal(arg) {
			v, err := strconv.ParseUint(arg, 10, 32)
			if err != nil {
				return 0, aiebuerr.InvalidAsm("malformed decimal argument %q", arg)
			}
			return uint32(v), nil
		}
		return 0, aiebuerr.InvalidAsm("unrecognised numeric argument %q", arg)
	}
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
