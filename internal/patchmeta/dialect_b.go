package patchmeta

import (
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/stsoe/aiebu/internal/diag"
	"github.com/stsoe/aiebu/internal/reloc"
)

// bindCompilerB implements the "ctrl_pkt_patch_info" dialect: a fixed
// default argument map with an optional control-packet-index override,
// plus a flat list of patch locations.
func bindCompilerB(root gjson.Result, cfg Config, bag *diag.Bag) (*Result, error) {
	res := &Result{ArgIndexMap: map[uint32]string{
		0: "3",
		1: "4",
		2: "5",
		3: "6",
		4: "7",
	}}

	if idx := root.Get("ctrl_pkt_xrt_arg_idx"); idx.Exists() {
		res.ArgIndexMap[uint32(idx.Uint())] = "control-packet"
	} else {
		res.ArgIndexMap[4] = "control-packet"
		bag.Add(diag.Diagnostic{
			Severity: diag.SevInfo,
			Code:     diag.MetaDialectFallback,
			Message:  "ctrl_pkt_xrt_arg_idx absent, falling back to default control-packet argument index 4",
		})
	}

	patches := root.Get("ctrl_pkt_patch_info")
	if !patches.Exists() {
		return res, nil
	}

	var walkErr error
	patches.ForEach(func(_, patch gjson.Result) bool {
		offset := uint32(patch.Get("offset").Uint())
		argIndex := uint32(patch.Get("xrt_arg_idx").Uint())
		if err := validateOffset(offset, cfg.CtrlDataSize, argIndex, cfg.MaxArgIndex); err != nil {
			walkErr = err
			return false
		}
		addend, err := validateAddend(patch.Get("bo_offset").Uint(), cfg.MaxArgPlus)
		if err != nil {
			walkErr = err
			return false
		}
		res.Relocations = append(res.Relocations, reloc.Symbol{
			Name:    strconv.FormatUint(uint64(argIndex+cfg.ArgOffset), 10),
			Offset:  offset - 8,
			Schema:  reloc.SchemaControlPacket48,
			Section: reloc.SectionCtrlData,
			Addend:  addend,
		})
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return res, nil
}
