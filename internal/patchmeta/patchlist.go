package patchmeta

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/stsoe/aiebu/internal/aiebuerr"
	"github.com/stsoe/aiebu/internal/reloc"
)

// PatchRecord is a pre-built patch declaration, the third metadata input
// shape alongside the two JSON dialects: a symbol with a buffer type, a
// relocation schema, and every offset it patches.
type PatchRecord struct {
	Symbol  string           `msgpack:"symbol"`
	BufType reloc.BufferType `msgpack:"buf_type"`
	Schema  reloc.Schema     `msgpack:"schema"`
	PmID    int              `msgpack:"pm_id"`
	Offsets []uint32         `msgpack:"offsets"`
}

func sectionFor(rec PatchRecord) string {
	if rec.Schema == reloc.SchemaScalar32 && rec.BufType == reloc.BufferInstruct && rec.PmID != 0 {
		return reloc.PMSection(rec.PmID)
	}
	switch rec.BufType {
	case reloc.BufferControlPacket:
		return reloc.SectionCtrlData
	default:
		return reloc.SectionCtrlText
	}
}

// DecodePatchList decodes a msgpack-encoded list of PatchRecord and fans
// each one out into one relocation per declared offset.
func DecodePatchList(doc []byte) ([]reloc.Symbol, error) {
	var records []PatchRecord
	if err := msgpack.Unmarshal(doc, &records); err != nil {
		return nil, aiebuerr.InvalidAsm("malformed patch record list: %v", err)
	}
	var out []reloc.Symbol
	for _, rec := range records {
		section := sectionFor(rec)
		for _, offset := range rec.Offsets {
			out = append(out, reloc.Symbol{
				Name:    rec.Symbol,
				Offset:  offset,
				Schema:  rec.Schema,
				Section: section,
			})
		}
	}
	return out, nil
}
