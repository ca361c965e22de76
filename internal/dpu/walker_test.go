package dpu

import (
	"encoding/binary"
	"testing"

	"github.com/stsoe/aiebu/internal/reloc"
)

func putWord(buf []byte, idx int, w uint32) {
	binary.LittleEndian.PutUint32(buf[idx*4:idx*4+4], w)
}

// buildS5 builds [WRITE_SHIM_BD|argidx=2, seven BD words, NOOP].
func buildS5() []byte {
	buf := make([]byte, (writeShimBDWords+noopWords)*4)
	header := uint32(OpWriteShimBD)<<24 | 2
	putWord(buf, 0, header)
	for i := 1; i < writeShimBDWords; i++ {
		putWord(buf, i, 0xFFFFFFFF)
	}
	putWord(buf, writeShimBDWords, uint32(OpNoop)<<24)
	return buf
}

func TestWalk_S5DirectDPU(t *testing.T) {
	buf := buildS5()
	res, err := Walk(buf, ".ctrltext")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(res.Symbols) != 1 {
		t.Fatalf("expected one symbol, got %d: %+v", len(res.Symbols), res.Symbols)
	}
	sym := res.Symbols[0]
	if sym.Schema != reloc.SchemaShimDMA48 {
		t.Fatalf("expected shim_dma_48, got %v", sym.Schema)
	}
	if sym.Offset != 4 {
		t.Fatalf("expected offset 4, got %d", sym.Offset)
	}
	if sym.Name != "ofm" {
		t.Fatalf("expected name ofm, got %q", sym.Name)
	}
	if buf[8] != 0xFF&0x03 || buf[9] != 0 || buf[10] != 0 || buf[11] != 0 {
		t.Fatalf("sanitiser did not clear address bits: %v", buf[4:16])
	}
}

func TestWalk_WriteBDRow0BehavesAsShimBD(t *testing.T) {
	buf := make([]byte, writeBDRow1Words*4)
	header := uint32(OpWriteBD)<<24 | (0 << 8) | 1
	putWord(buf, 0, header)
	res, err := Walk(buf, ".ctrltext")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(res.Symbols) != 1 || res.Symbols[0].Name != "param" {
		t.Fatalf("unexpected result: %+v", res.Symbols)
	}
}

func TestWalk_WriteBDRowNAdvancesWithoutEmitting(t *testing.T) {
	buf := make([]byte, writeBDRowNWords*4)
	header := uint32(OpWriteBD)<<24 | (2 << 8)
	putWord(buf, 0, header)
	res, err := Walk(buf, ".ctrltext")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(res.Symbols) != 0 {
		t.Fatalf("expected no symbols for row >= 2, got %+v", res.Symbols)
	}
}

func TestWalk_DumpRegisterVariableLength(t *testing.T) {
	count := uint32(3)
	buf := make([]byte, (1+1+int(count)*2)*4)
	putWord(buf, 0, uint32(OpDumpRegister)<<24)
	putWord(buf, 1, count)
	res, err := Walk(buf, ".ctrltext")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(res.Symbols) != 0 {
		t.Fatalf("expected no symbols, got %+v", res.Symbols)
	}
}

func TestWalk_UnknownOpcodeIsInvalid(t *testing.T) {
	buf := make([]byte, 4)
	putWord(buf, 0, 0xFE<<24)
	if _, err := Walk(buf, ".ctrltext"); err == nil {
		t.Fatalf("expected invalid_asm for unknown opcode")
	}
}

func TestWalk_InvalidArgIndexIsInvalid(t *testing.T) {
	buf := make([]byte, writeShimBDWords*4)
	header := uint32(OpWriteShimBD)<<24 | 9
	putWord(buf, 0, header)
	if _, err := Walk(buf, ".ctrltext"); err == nil {
		t.Fatalf("expected invalid_asm for unknown arg index")
	}
}

func TestWalk_NonMultipleOf4IsInvalid(t *testing.T) {
	if _, err := Walk(make([]byte, 5), ".ctrltext"); err == nil {
		t.Fatalf("expected invalid_asm for misaligned buffer")
	}
}
