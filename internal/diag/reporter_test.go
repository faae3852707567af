package diag

import (
	"testing"

	"cguard/internal/source"
)

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(10)
	r := BagReporter{Bag: bag}
	b := ReportError(r, GuardDirective, sp(0, 0, 7), "On line 0, cannot have preprocessor macro #define").
		WithNote(sp(0, 0, 15), "#define X 1")
	b.Emit()
	b.Emit()

	if bag.Len() != 1 {
		t.Fatalf("bag has %d diagnostics, want 1", bag.Len())
	}
	d := bag.Items()[0]
	if d.Severity != SevError || d.Code != GuardDirective {
		t.Errorf("unexpected diagnostic %+v", d)
	}
	if len(d.Notes) != 1 || d.Notes[0].Msg != "#define X 1" {
		t.Errorf("notes = %+v", d.Notes)
	}
}

func TestNilBuilderIsSafe(t *testing.T) {
	var b *ReportBuilder
	b.WithNote(source.Span{}, "x").Emit()
	if got := b.Diagnostic(); got.Message != "" {
		t.Errorf("nil builder diagnostic = %+v", got)
	}
	BagReporter{}.Report(GuardMacro, SevError, source.Span{}, "dropped", nil)
	NopReporter{}.Report(GuardMacro, SevError, source.Span{}, "dropped", nil)
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	r.Report(ParseSyntax, SevError, sp(0, 4, 20), "outer", nil)
	r.Report(ParseSyntax, SevError, sp(0, 4, 9), "inner", nil)
	r.Report(ParseMissing, SevError, sp(0, 4, 4), "missing", nil)
	r.Report(ParseSyntax, SevError, sp(1, 4, 9), "other file", nil)

	if bag.Len() != 3 {
		t.Fatalf("bag has %d diagnostics, want 3", bag.Len())
	}
	if bag.Items()[0].Message != "outer" {
		t.Errorf("first kept = %q, want outer", bag.Items()[0].Message)
	}
}
