package driver

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"sharpfix/internal/rules"
)

func TestWatchReanalysesOnChange(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Equals.cs")
	writeFile(t, path, "public class TestMe { }\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan *Result, 8)
	done := make(chan error, 1)
	opts := options(t, root, rules.EqualsSimplification)
	go func() {
		done <- Watch(ctx, root, opts, WatchOptions{
			Debounce: 50 * time.Millisecond,
			OnResult: func(r *Result, err error) {
				if err != nil {
					t.Errorf("Diagnose: %v", err)
					return
				}
				results <- r
			},
		})
	}()

	next := func() *Result {
		t.Helper()
		select {
		case r := <-results:
			return r
		case <-time.After(10 * time.Second):
			t.Fatalf("no analysis within timeout")
			return nil
		}
	}

	if r := next(); r.Bag.Len() != 0 {
		t.Fatalf("initial run: %d diagnostics", r.Bag.Len())
	}
	writeFile(t, path, equalsSrc)
	r := next()
	for r.Bag.Len() == 0 {
		// первое событие могло прийти до конца записи
		r = next()
	}
	if r.Bag.Items()[0].Code != rules.EqualsSimplification {
		t.Fatalf("after change: %+v", r.Bag.Items())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Watch did not stop")
	}
}
