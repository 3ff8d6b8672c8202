package source

import "testing"

func TestSpanContains(t *testing.T) {
	outer := Span{File: 1, Start: 10, End: 20}
	tests := []struct {
		name  string
		inner Span
		want  bool
	}{
		{"same", outer, true},
		{"inside", Span{File: 1, Start: 12, End: 18}, true},
		{"empty at end", Span{File: 1, Start: 20, End: 20}, true},
		{"crosses end", Span{File: 1, Start: 15, End: 21}, false},
		{"other file", Span{File: 2, Start: 12, End: 18}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outer.Contains(tt.inner); got != tt.want {
				t.Fatalf("Contains(%v) = %v, want %v", tt.inner, got, tt.want)
			}
		})
	}
}

func TestSpanOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want bool
	}{
		{"disjoint", Span{Start: 0, End: 5}, Span{Start: 5, End: 9}, false},
		{"intersecting", Span{Start: 0, End: 6}, Span{Start: 5, End: 9}, true},
		{"nested", Span{Start: 0, End: 10}, Span{Start: 2, End: 3}, true},
		{"two empty", Span{Start: 4, End: 4}, Span{Start: 4, End: 4}, false},
		{"empty inside", Span{Start: 4, End: 4}, Span{Start: 2, End: 6}, true},
		{"empty at boundary", Span{Start: 2, End: 2}, Span{Start: 2, End: 6}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Fatalf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Fatalf("Overlaps is not symmetric")
			}
		})
	}
}

func TestSpanCoverAndLen(t *testing.T) {
	got := Span{File: 1, Start: 10, End: 12}.Cover(Span{File: 1, Start: 4, End: 11})
	want := Span{File: 1, Start: 4, End: 12}
	if got != want {
		t.Fatalf("Cover = %v, want %v", got, want)
	}
	if got.Len() != 8 {
		t.Fatalf("Len = %d, want 8", got.Len())
	}
	if NewSpan(1, 4, 8) != want {
		t.Fatalf("NewSpan mismatch")
	}
}
