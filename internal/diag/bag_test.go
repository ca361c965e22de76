package diag

import "testing"

func TestBag_AddRespectsCapacity(t *testing.T) {
	b := NewBag(1)
	if !b.Add(Diagnostic{Severity: SevInfo, Code: MetaInfo, Message: "first"}) {
		t.Fatalf("first Add should succeed")
	}
	if b.Add(Diagnostic{Severity: SevInfo, Code: MetaInfo, Message: "second"}) {
		t.Fatalf("Add past capacity should fail")
	}
	if b.Len() != 1 {
		t.Fatalf("Len = %d, want 1", b.Len())
	}
}

func TestBag_HasErrorsAndWarnings(t *testing.T) {
	b := NewBag(4)
	b.Add(Diagnostic{Severity: SevInfo})
	if b.HasErrors() || b.HasWarnings() {
		t.Fatalf("info-only bag should report no errors or warnings")
	}
	b.Add(Diagnostic{Severity: SevWarning})
	if b.HasErrors() || !b.HasWarnings() {
		t.Fatalf("after a warning: HasErrors=%v HasWarnings=%v, want false true", b.HasErrors(), b.HasWarnings())
	}
	b.Add(Diagnostic{Severity: SevError})
	if !b.HasErrors() {
		t.Fatalf("after an error: HasErrors should be true")
	}
}

func TestBag_MergeGrowsCapacity(t *testing.T) {
	a := NewBag(1)
	a.Add(Diagnostic{Message: "a"})
	b := NewBag(2)
	b.Add(Diagnostic{Message: "b1"})
	b.Add(Diagnostic{Message: "b2"})

	a.Merge(b)
	if a.Len() != 3 {
		t.Fatalf("Len after merge = %d, want 3", a.Len())
	}
	if a.Cap() < 3 {
		t.Fatalf("Cap after merge = %d, want >= 3", a.Cap())
	}
}
