package diag

import (
	"testing"

	"sharpfix/internal/source"
)

func sp(start, end uint32) source.Span { return source.Span{File: 1, Start: start, End: end} }

func TestBagSortIsDeterministic(t *testing.T) {
	b := NewBag(0)
	b.Add(New(SevWarning, "SPC6001", sp(10, 12), "b"))
	b.Add(New(SevWarning, "MNT3011", sp(10, 12), "a"))
	b.Add(New(SevError, "DOC2001", sp(3, 4), "c"))
	b.Add(New(SevWarning, "MNT3011", sp(10, 11), "d"))
	b.Sort()

	want := []struct {
		code  Code
		start uint32
		end   uint32
	}{
		{"DOC2001", 3, 4},
		{"MNT3011", 10, 11},
		{"MNT3011", 10, 12},
		{"SPC6001", 10, 12},
	}
	for i, w := range want {
		got := b.Items()[i]
		if got.Code != w.code || got.Primary.Start != w.start || got.Primary.End != w.end {
			t.Fatalf("item %d: got %s %s, want %s %d-%d", i, got.Code, got.Primary, w.code, w.start, w.end)
		}
	}
}

func TestBagLimitDedupFilter(t *testing.T) {
	b := NewBag(3)
	for i := range 5 {
		b.Add(New(SevWarning, "MNT3011", sp(0, 1), string(rune('a'+i))))
	}
	if b.Len() != 3 {
		t.Fatalf("len = %d, want 3", b.Len())
	}
	b.Dedup()
	if b.Len() != 1 || b.Items()[0].Message != "a" {
		t.Fatalf("dedup kept %v", b.Items())
	}

	b = NewBag(0)
	b.Add(New(SevInfo, "MNT3011", sp(0, 1), "x"))
	b.Add(New(SevError, "MNT3012", sp(1, 2), "y"))
	b.Filter(func(d Diagnostic) bool { return d.Severity >= SevWarning })
	if b.Len() != 1 || !b.HasErrors() {
		t.Fatalf("filter kept %v", b.Items())
	}
}

func TestSameIgnoresMessage(t *testing.T) {
	a := New(SevWarning, "MNT3011", sp(4, 9), "one")
	c := New(SevError, "MNT3011", sp(4, 9), "two")
	if !Same(a, c) {
		t.Fatalf("same code and span must be the same finding")
	}
	if Same(a, New(SevWarning, "MNT3012", sp(4, 9), "one")) || Same(a, New(SevWarning, "MNT3011", sp(4, 8), "one")) {
		t.Fatalf("different code or span must differ")
	}
}

func TestReportBuilder(t *testing.T) {
	bag := NewBag(0)
	dedup := NewDedupReporter(BagReporter{Bag: bag})
	ReportInfo(dedup, "MNT3014", sp(20, 30), "twice").
		WithSecondary(sp(5, 10)).
		WithProp("event", "Changed").
		Emit()
	ReportInfo(dedup, "MNT3014", sp(20, 30), "again").Emit()
	if bag.Len() != 1 {
		t.Fatalf("len = %d, want 1", bag.Len())
	}
	d := bag.Items()[0]
	if len(d.Secondary) != 1 || d.Prop("event") != "Changed" || d.Severity != SevInfo {
		t.Fatalf("builder lost data: %+v", d)
	}
	if got := len(d.Spans()); got != 2 {
		t.Fatalf("spans = %d, want 2", got)
	}
}

func TestCodes(t *testing.T) {
	cases := []struct {
		in  string
		ok  bool
		cat string
		num int
	}{
		{"MNT3011", true, "MNT", 3011},
		{"IO0001", true, "IO", 1},
		{"mnt3011", false, "", 0},
		{"MNT301", false, "", 0},
		{"MNT+301", false, "", 0},
	}
	for _, tc := range cases {
		c, err := ParseCode(tc.in)
		if (err == nil) != tc.ok {
			t.Fatalf("ParseCode(%q) err = %v", tc.in, err)
		}
		if !tc.ok {
			continue
		}
		if c.Category() != tc.cat || c.Number() != tc.num {
			t.Fatalf("%q: category %q number %d", tc.in, c.Category(), c.Number())
		}
	}
	if s, err := ParseSeverity("Error"); err != nil || s != SevError {
		t.Fatalf("ParseSeverity(Error) = %v, %v", s, err)
	}
}
