// Package assemble is the top-level orchestration layer: it takes a
// buffer-type discriminant, one or two input buffers (or a pre-tokenized
// assembly item list), and a metadata document, and drives the walker,
// metadata binder, and container builder needed to produce a finished
// object.
package assemble

import (
	"context"

	"github.com/stsoe/aiebu/internal/aiebuerr"
	"github.com/stsoe/aiebu/internal/asmfirstpass"
	"github.com/stsoe/aiebu/internal/config"
	"github.com/stsoe/aiebu/internal/container"
	"github.com/stsoe/aiebu/internal/diag"
	"github.com/stsoe/aiebu/internal/dpu"
	"github.com/stsoe/aiebu/internal/patchmeta"
	"github.com/stsoe/aiebu/internal/reloc"
	"github.com/stsoe/aiebu/internal/txn"
)

// Dialect names the metadata document's shape.
type Dialect string

const (
	DialectAuto      Dialect = "auto"
	DialectCompilerA Dialect = "compiler-a"
	DialectCompilerB Dialect = "compiler-b"
	DialectPatchList Dialect = "patchlist"
)

// Request is one assemble invocation's input. InstrBuf is required for
// every blob type; for a text-assembly type (AsmAIE2, AsmAIE2PS) Items
// is required instead. ControlPacketBuf is nil-able: a blob request may
// carry its control packet inline in the text section instead of as a
// second buffer.
type Request struct {
	Type             BufferType
	InstrBuf         []byte
	ControlPacketBuf []byte
	MetadataDoc      []byte
	Dialect          Dialect
	Items            []asmfirstpass.Item
}

// Result is what a completed assemble call produced: a finished
// container's bytes for a blob request, or the first-pass analysis for
// a text-assembly request. The first pass only computes positions and
// the job graph; it never defines a final instruction encoding, so a
// text-assembly request has no container to build. Diagnostics carries
// non-fatal observations from metadata binding (a coalesced buffer with
// no patch locations, say) that never aborted the run.
type Result struct {
	Bytes       []byte
	Table       *reloc.Table
	NumCols     int
	FirstPass   *asmfirstpass.Result
	Diagnostics []diag.Diagnostic
}

// Assemble runs one request to completion using cfg's tunables. ctx is
// checked before metadata binding and again before the walk and
// container build, so a caller with a deadline or cancellation, such as
// the CLI racing this against other reads, doesn't wait for a step it no
// longer needs.
func Assemble(ctx context.Context, req Request, cfg config.Config) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Type.isTextAssembly() {
		return assembleText(req, cfg)
	}
	return assembleBlob(ctx, req, cfg)
}

func assembleText(req Request, cfg config.Config) (*Result, error) {
	fp, err := asmfirstpass.Run(req.Items, asmfirstpass.Config{Serializers: asmfirstpass.DefaultSerializers()})
	if err != nil {
		return nil, err
	}
	return &Result{FirstPass: fp}, nil
}

func assembleBlob(ctx context.Context, req Request, cfg config.Config) (*Result, error) {
	if len(req.InstrBuf) == 0 {
		return nil, aiebuerr.InvalidAsm("blob request for %s carries no instruction buffer", req.Type)
	}

	table := reloc.NewTable(16)
	argIndexMap := map[uint32]string{}
	var diagnostics []diag.Diagnostic

	ctrlDataSize := uint32(len(req.ControlPacketBuf))
	if req.Type == BlobControlPacket {
		ctrlDataSize = uint32(len(req.InstrBuf))
	}

	if len(req.MetadataDoc) > 0 {
		if req.Dialect == DialectPatchList {
			syms, err := patchmeta.DecodePatchList(req.MetadataDoc)
			if err != nil {
				return nil, err
			}
			for _, sym := range syms {
				if err := table.Add(sym); err != nil {
					return nil, err
				}
			}
		} else {
			bound, err := patchmeta.Bind(req.MetadataDoc, cfg.PatchMetaConfig(ctrlDataSize))
			if err != nil {
				return nil, err
			}
			argIndexMap = bound.ArgIndexMap
			diagnostics = bound.Diagnostics
			for _, sym := range bound.Relocations {
				if err := table.Add(sym); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	numCols := 0
	builder := container.NewELFBuilder()

	switch {
	case req.Type == BlobControlPacket:
		if err := builder.AddSection(reloc.SectionCtrlData, req.InstrBuf); err != nil {
			return nil, err
		}

	case req.Type.usesDirectDPUWalker():
		res, err := dpu.Walk(req.InstrBuf, reloc.SectionCtrlText)
		if err != nil {
			return nil, err
		}
		if err := builder.AddSection(reloc.SectionCtrlText, req.InstrBuf); err != nil {
			return nil, err
		}
		for _, sym := range res.Symbols {
			if err := table.Add(sym); err != nil {
				return nil, err
			}
		}
		if len(req.ControlPacketBuf) > 0 {
			if err := builder.AddSection(reloc.SectionCtrlData, req.ControlPacketBuf); err != nil {
				return nil, err
			}
		}

	case req.Type == BlobInstrTransaction:
		res, err := txn.Walk(req.InstrBuf, reloc.SectionCtrlText, txn.Config{
			ArgOffset:   cfg.ArgOffset,
			ArgIndexMap: argIndexMap,
		})
		if err != nil {
			return nil, err
		}
		numCols = res.NumCols
		if err := builder.AddSection(reloc.SectionCtrlText, req.InstrBuf); err != nil {
			return nil, err
		}
		for _, sym := range res.Symbols {
			if err := table.Add(sym); err != nil {
				return nil, err
			}
		}
		if len(req.ControlPacketBuf) > 0 {
			if err := builder.AddSection(reloc.SectionCtrlData, req.ControlPacketBuf); err != nil {
				return nil, err
			}
		}

	default:
		return nil, aiebuerr.Internal("unhandled buffer type %s", req.Type)
	}

	for _, sym := range table.Symbols() {
		if err := builder.AddRelocation(sym); err != nil {
			return nil, err
		}
	}

	out, err := builder.Bytes()
	if err != nil {
		return nil, err
	}

	return &Result{Bytes: out, Table: table, NumCols: numCols, Diagnostics: diagnostics}, nil
}
