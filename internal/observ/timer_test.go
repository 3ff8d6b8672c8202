package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimer(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("discover")
	tm.End(idx, "3 files")

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Add("parse", time.Millisecond)
		}()
	}
	wg.Wait()

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("phases = %+v", rep.Phases)
	}
	parse := rep.Phases[1]
	if parse.Name != "parse" || parse.Count != 4 || parse.DurationMS != 4 {
		t.Fatalf("parse = %+v", parse)
	}
	if rep.TotalMS != rep.Phases[0].DurationMS {
		t.Fatalf("cumulative phases must not enter total: %+v", rep)
	}
	if s := tm.Summary(); !strings.Contains(s, "// 3 files") || !strings.Contains(s, "x4 (cpu)") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	tm.Add("y", time.Second)
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("nil timer recorded %+v", r)
	}
}
