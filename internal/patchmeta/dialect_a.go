package patchmeta

import (
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/stsoe/aiebu/internal/diag"
	"github.com/stsoe/aiebu/internal/reloc"
)

// bindCompilerA implements the "external_buffers" dialect: xrt_id-keyed
// buffers, optionally split into coalesced sub-buffers each carrying its
// own control-packet patch locations.
func bindCompilerA(externalBuffers gjson.Result, cfg Config, bag *diag.Bag) (*Result, error) {
	res := &Result{ArgIndexMap: make(map[uint32]string)}

	var walkErr error
	externalBuffers.ForEach(func(_, buffer gjson.Result) bool {
		xrtID := uint32(buffer.Get("xrt_id").Uint())
		name := strconv.FormatUint(uint64(xrtID+cfg.ArgOffset), 10)
		if buffer.Get("ctrl_pkt_buffer").Bool() {
			res.ArgIndexMap[xrtID] = "control-packet"
		} else {
			res.ArgIndexMap[xrtID] = name
		}

		coalesced := buffer.Get("coalesed_buffers")
		if coalesced.Exists() {
			sizeInBytes := uint32(buffer.Get("size_in_bytes").Uint())
			coalesced.ForEach(func(_, cb gjson.Result) bool {
				offsetInBytes := uint32(cb.Get("offset_in_bytes").Uint())
				if err := validateOffset(offsetInBytes, sizeInBytes, xrtID, cfg.MaxArgIndex); err != nil {
					walkErr = err
					return false
				}
				addend, err := validateAddend(cb.Get("offset_in_bytes").Uint(), cfg.MaxArgPlus)
				if err != nil {
					walkErr = err
					return false
				}
				locs, err := extractControlPacketPatches(name, xrtID, addend, cb, cfg)
				if err != nil {
					walkErr = err
					return false
				}
				if len(locs) == 0 {
					bag.Add(diag.Diagnostic{
						Severity: diag.SevInfo,
						Code:     diag.MetaCoalescedBufferNoPatchLocs,
						Message:  "coalesced buffer carries no control-packet patch locations",
						Context:  name,
					})
				}
				res.Relocations = append(res.Relocations, locs...)
				return true
			})
		} else {
			addend, err := validateAddend(buffer.Get("offset_in_bytes").Uint(), cfg.MaxArgPlus)
			if err != nil {
				walkErr = err
				return false
			}
			locs, err := extractControlPacketPatches(name, xrtID, addend, buffer, cfg)
			if err != nil {
				walkErr = err
				return false
			}
			if len(locs) == 0 {
				bag.Add(diag.Diagnostic{
					Severity: diag.SevInfo,
					Code:     diag.MetaBufferNoPatchLocations,
					Message:  "buffer carries no control-packet patch locations",
					Context:  name,
				})
			}
			res.Relocations = append(res.Relocations, locs...)
		}
		return walkErr == nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return res, nil
}

func extractControlPacketPatches(name string, argIndex, addend uint32, node gjson.Result, cfg Config) ([]reloc.Symbol, error) {
	locations := node.Get("control_packet_patch_locations")
	if !locations.Exists() {
		return nil, nil
	}
	var out []reloc.Symbol
	var walkErr error
	locations.ForEach(func(_, loc gjson.Result) bool {
		offset := uint32(loc.Get("offset").Uint())
		if err := validateOffset(offset, cfg.CtrlDataSize, argIndex, cfg.MaxArgIndex); err != nil {
			walkErr = err
			return false
		}
		out = append(out, reloc.Symbol{
			Name:    name,
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
	return out, nil
}
