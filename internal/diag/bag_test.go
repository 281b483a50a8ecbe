package diag

import (
	"testing"

	"dlc/internal/source"
)

func TestBagLimitAndErrors(t *testing.T) {
	b := NewBag(2)
	r := BagReporter{Bag: b}

	ReportWarning(r, SemaInfo, source.Span{}, "w").Emit()
	if b.HasErrors() {
		t.Fatal("warning counted as error")
	}
	ReportError(r, SemaUnknownName, source.Span{Start: 3, End: 4}, "unknown name x").Emit()
	ReportError(r, SemaUnknownName, source.Span{Start: 5, End: 6}, "dropped").Emit()

	if b.Len() != 2 {
		t.Fatalf("Len = %d, want 2", b.Len())
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Error("expected both errors and warnings")
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	b := NewBag(0)
	rb := ReportError(BagReporter{Bag: b}, SemaWrongArgCount, source.Span{}, "fac expects 1 argument").
		WithNote(source.Span{Start: 1, End: 2}, "declared here")
	rb.Emit()
	rb.Emit()

	if b.Len() != 1 {
		t.Fatalf("Len = %d, want 1", b.Len())
	}
	if got := b.Items()[0].Notes; len(got) != 1 || got[0].Msg != "declared here" {
		t.Errorf("notes = %+v", got)
	}
}

func TestSortAndDedup(t *testing.T) {
	b := NewBag(0)
	b.Add(NewError(SemaUnknownName, source.Span{Start: 9, End: 10}, "b"))
	b.Add(NewError(LexUnknownChar, source.Span{Start: 1, End: 2}, "a"))
	b.Add(NewError(SemaUnknownName, source.Span{Start: 9, End: 10}, "b"))

	b.Sort()
	b.Dedup()
	items := b.Items()
	if len(items) != 2 {
		t.Fatalf("Len = %d, want 2", len(items))
	}
	if items[0].Code != LexUnknownChar {
		t.Errorf("first = %v", items[0].Code)
	}
}

func TestDedupReporter(t *testing.T) {
	b := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: b})
	sp := source.Span{Start: 1, End: 4}
	r.Report(SemaDuplicateName, SevError, sp, "x already defined", nil)
	r.Report(SemaDuplicateName, SevError, sp, "x already defined", nil)
	r.Report(SemaDuplicateName, SevError, sp, "y already defined", nil)
	if b.Len() != 2 {
		t.Errorf("Len = %d, want 2", b.Len())
	}
	if r.Suppressed() != 1 {
		t.Errorf("Suppressed = %d, want 1", r.Suppressed())
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		LexUnknownChar:   "LEX1001",
		SynUnexpectedEOF: "SYN2002",
		SemaMissingEntry: "SEM3008",
		IOLoadFileError:  "IO4001",
		Code(9999):       "E0000",
	}
	for c, want := range cases {
		if got := c.ID(); got != want {
			t.Errorf("%d.ID() = %s, want %s", c, got, want)
		}
	}
	if got := Code(9999).Title(); got != "Unknown error" {
		t.Errorf("Title = %q", got)
	}
}
