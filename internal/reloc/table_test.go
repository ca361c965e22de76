package reloc

import (
	"errors"
	"testing"

	"github.com/stsoe/aiebu/internal/aiebuerr"
)

func TestTable_AddRejectsDuplicateSite(t *testing.T) {
	tbl := NewTable(0)
	sym := Symbol{Name: "4", Offset: 100, Section: SectionCtrlData, Schema: SchemaControlPacket48}
	if err := tbl.Add(sym); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	dup := sym
	dup.Name = "5"
	err := tbl.Add(dup)
	if err == nil {
		t.Fatalf("expected duplicate-site error, got nil")
	}
	if !errors.Is(err, aiebuerr.ErrInternal) {
		t.Fatalf("expected internal_error, got %v", err)
	}
}

func TestTable_GroupedOrdersDeterministically(t *testing.T) {
	tbl := NewTable(0)
	syms := []Symbol{
		{Name: "b", Offset: 20, Section: SectionCtrlText, Schema: SchemaScalar32},
		{Name: "a", Offset: 4, Section: SectionCtrlText, Schema: SchemaScalar32},
		{Name: "c", Offset: 8, Section: SectionCtrlData, Schema: SchemaControlPacket48},
	}
	for _, s := range syms {
		if err := tbl.Add(s); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	groups := tbl.Grouped()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Section != SectionCtrlData {
		t.Fatalf("expected .ctrldata group first (lexical order), got %q", groups[0].Section)
	}
	textGroup := groups[1]
	if len(textGroup.Symbols) != 2 || textGroup.Symbols[0].Offset != 4 || textGroup.Symbols[1].Offset != 20 {
		t.Fatalf("expected text group sorted by offset, got %+v", textGroup.Symbols)
	}
}

func TestTable_SymbolsPreservesInsertionOrder(t *testing.T) {
	tbl := NewTable(0)
	_ = tbl.Add(Symbol{Offset: 10, Section: SectionCtrlText})
	_ = tbl.Add(Symbol{Offset: 2, Section: SectionCtrlText})
	got := tbl.Symbols()
	if got[0].Offset != 10 || got[1].Offset != 2 {
		t.Fatalf("expected insertion order, got %+v", got)
	}
}
