// Package patchmeta parses the external-buffer metadata document that
// accompanies an instruction/control-packet blob and turns it into an
// argument-index-to-name map plus a list of pre-declared control-packet
// relocations.
package patchmeta

import (
	"github.com/tidwall/gjson"

	"github.com/stsoe/aiebu/internal/aiebuerr"
	"github.com/stsoe/aiebu/internal/diag"
	"github.com/stsoe/aiebu/internal/reloc"
)

// maxDiagnostics bounds how many non-fatal observations a single Bind
// call records; a document producing more than this is almost
// certainly malformed in a way that also trips a fatal error.
const maxDiagnostics = 64

// Config carries the tunables the metadata binder needs and cannot infer
// from the document itself.
type Config struct {
	ArgOffset    uint32
	MaxArgIndex  uint32
	MaxArgPlus   uint64
	CtrlDataSize uint32
}

// Result is what binding a metadata document produced. Diagnostics
// holds non-fatal observations made along the way — a coalesced buffer
// with no patch locations, say — that the caller may want to surface
// without treating the bind as having failed.
type Result struct {
	ArgIndexMap map[uint32]string
	Relocations []reloc.Symbol
	Diagnostics []diag.Diagnostic
}

// Bind detects the metadata dialect by root key and parses it.
func Bind(doc []byte, cfg Config) (*Result, error) {
	if !gjson.ValidBytes(doc) {
		return nil, aiebuerr.InvalidAsm("metadata document is not valid JSON")
	}
	root := gjson.ParseBytes(doc)
	bag := diag.NewBag(maxDiagnostics)

	var res *Result
	var err error
	switch {
	case root.Get("external_buffers").Exists():
		res, err = bindCompilerA(root.Get("external_buffers"), cfg, bag)
	case root.Get("ctrl_pkt_patch_info").Exists() || root.Get("ctrl_pkt_xrt_arg_idx").Exists():
		res, err = bindCompilerB(root, cfg, bag)
	default:
		return nil, aiebuerr.InvalidAsm("metadata document matches neither the external_buffers nor the ctrl_pkt_patch_info dialect")
	}
	if err != nil {
		return nil, err
	}
	res.Diagnostics = bag.Items()
	return res, nil
}

func validateOffset(offset, size, argIndex, maxArgIndex uint32) error {
	if offset > size {
		valid := "VALID"
		if argIndex > maxArgIndex {
			valid = "INVALID"
		}
		return aiebuerr.InvalidAsm("offset (%d) is greater than size (%d), arg index %d is %s", offset, size, argIndex, valid)
	}
	if argIndex > maxArgIndex {
		return aiebuerr.InvalidAsm("arg index (%d) is greater than max arg index (%d)", argIndex, maxArgIndex)
	}
	return nil
}

func validateAddend(addend uint64, maxArgPlus uint64) (uint32, error) {
	if addend > maxArgPlus {
		return 0, aiebuerr.InvalidAsm("addend (0x%x) exceeds the maximum of 0x%x", addend, maxArgPlus)
	}
	return uint32(addend), nil
}
