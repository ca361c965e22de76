package classify

import (
	"testing"

	"github.com/stsoe/aiebu/internal/reloc"
)

func rawWithBD(offset uint32) []byte {
	buf := make([]byte, offset+16)
	for i := range buf {
		buf[i] = 0xFF
	}
	return buf
}

func TestClassify_MemWord0(t *testing.T) {
	sym, err := Classify(Input{Reg: MemBD0_0, ArgIndex: 4, Offset: 100, Addend: 0, Section: ".ctrltext", Raw: rawWithBD(100)})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if sym == nil || sym.Schema != reloc.SchemaScalar32 || sym.Offset != 100 || sym.MaskOrLength != MaskMemBufferLength {
		t.Fatalf("unexpected symbol: %+v", sym)
	}
}

func TestClassify_MemWord1(t *testing.T) {
	sym, err := Classify(Input{Reg: MemBD0_0 + 4, ArgIndex: 4, Offset: 100, Section: ".ctrltext", Raw: rawWithBD(100)})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if sym == nil || sym.Offset != 104 || sym.MaskOrLength != MaskMemBaseAddress {
		t.Fatalf("unexpected symbol: %+v", sym)
	}
}

func TestClassify_ShimWord0(t *testing.T) {
	sym, err := Classify(Input{Reg: ShimDMABD0_0, ArgIndex: 4, Offset: 100, Section: ".ctrltext", Raw: rawWithBD(100)})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if sym == nil || sym.Schema != reloc.SchemaScalar32 || sym.MaskOrLength != MaskShimBufferLength {
		t.Fatalf("unexpected symbol: %+v", sym)
	}
}

func TestClassify_ShimWord1EmitsShimDMA48AndSanitizes(t *testing.T) {
	raw := rawWithBD(100)
	sym, err := Classify(Input{
		Reg: ShimDMABD0_0 + 4, ArgIndex: 3 + 4, ArgOffset: 3, Offset: 100,
		BufferLength: 64, Addend: 0x1000, Section: ".ctrltext", Raw: raw,
		ArgIndexMap: map[uint32]string{4: "ofm"},
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if sym == nil || sym.Schema != reloc.SchemaShimDMA48 || sym.Name != "ofm" || sym.MaskOrLength != 64 || sym.Addend != 0x1000 {
		t.Fatalf("unexpected symbol: %+v", sym)
	}
	if raw[104] != 0xFF&0x03 || raw[105] != 0 || raw[106] != 0 || raw[107] != 0 || raw[108] != 0 || raw[109] != 0 {
		t.Fatalf("sanitiser did not clear address bits: %v", raw[100:112])
	}
}

func TestClassify_ArgNameOverridesMap(t *testing.T) {
	sym, err := Classify(Input{
		Reg: ShimDMABD0_0 + 4, ArgIndex: 7, Offset: 100, Section: ".ctrltext", Raw: rawWithBD(100),
		ArgName: "scratch", ArgIndexMap: map[uint32]string{7: "should-not-be-used"},
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if sym.Name != "scratch" {
		t.Fatalf("expected ArgName to win, got %q", sym.Name)
	}
}

func TestClassify_NoMatchIsSilentNoOp(t *testing.T) {
	sym, err := Classify(Input{Reg: 0xDEAD, ArgIndex: 1, Offset: 0, Section: ".ctrltext", Raw: rawWithBD(0)})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if sym != nil {
		t.Fatalf("expected no-op, got %+v", sym)
	}
}

func TestClassify_Exclusivity(t *testing.T) {
	// By construction the four address sets never overlap: a shim word-0
	// address is never also a mem word-0 or word-1 address, and vice versa.
	for reg := range shimBDWord0 {
		if isMemBDWord0(reg) || isMemBDWord0(reg-4) {
			t.Fatalf("shim address %#x also classifies as a mem BD address", reg)
		}
	}
	for reg := range memBDWord0 {
		if isShimBDWord0(reg) || isShimBDWord0(reg-4) {
			t.Fatalf("mem address %#x also classifies as a shim BD address", reg)
		}
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	raw := make([]byte, 16)
	for i := range raw {
		raw[i] = 0xAB
	}
	if err := Sanitize(raw, 0); err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	once := append([]byte(nil), raw...)
	if err := Sanitize(raw, 0); err != nil {
		t.Fatalf("Sanitize (second): %v", err)
	}
	for i := range raw {
		if raw[i] != once[i] {
			t.Fatalf("Sanitize is not idempotent at byte %d: %d vs %d", i, once[i], raw[i])
		}
	}
}

func TestSanitize_RangeOutOfBounds(t *testing.T) {
	raw := make([]byte, 8)
	if err := Sanitize(raw, 4); err == nil {
		t.Fatalf("expected out-of-bounds error")
	}
}
