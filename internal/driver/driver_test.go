package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"sharpfix/internal/config"
	"sharpfix/internal/diag"
	"sharpfix/internal/fix"
	"sharpfix/internal/parser"
	"sharpfix/internal/rule"
	"sharpfix/internal/rules"
)

const equalsSrc = `public class TestMe
{
    public bool DoSomething(string a, string b)
    {
        if (a == b || (a != null && a.Equals(b)))
        {
            return true;
        }

        return false;
    }
}
`

var equalsFixed = strings.Replace(equalsSrc, "a == b || (a != null && a.Equals(b))", "string.Equals(a, b)", 1)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func options(t *testing.T, root string, codes ...diag.Code) Options {
	t.Helper()
	cat, reg, err := rules.Default()
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	var set *rule.Set
	if len(codes) == 0 {
		set = cat.All()
	} else if set, err = cat.Only(codes...); err != nil {
		t.Fatalf("select: %v", err)
	}
	return Options{Config: config.Default(root), Rules: set, Fixes: reg, Jobs: 2}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) count(st Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Status == st {
			n++
		}
	}
	return n
}

func TestDiagnoseDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "App", "Equals.cs"), equalsSrc)
	writeFile(t, filepath.Join(root, "App", "bin", "Debug", "Gen.cs"), equalsSrc)
	writeFile(t, filepath.Join(root, "readme.md"), "a == b || (a != null && a.Equals(b))")

	opts := options(t, root, rules.EqualsSimplification)
	rec := &recorder{}
	opts.Progress = rec
	res, err := Diagnose(context.Background(), root, opts)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if len(res.Units) != 1 || !strings.HasSuffix(filepath.ToSlash(res.Units[0].Path), "App/Equals.cs") {
		t.Fatalf("units = %+v", res.Units)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != rules.EqualsSimplification || items[0].Prop("owner") != "string" {
		t.Fatalf("diagnostics = %+v", items)
	}
	if rec.count(StatusDone) != 1 || rec.count(StatusQueued) != 1 {
		t.Fatalf("events = %+v", rec.events)
	}
}

func TestDiagnoseMaxDiagnostics(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A.cs"), equalsSrc)
	writeFile(t, filepath.Join(root, "B.cs"), equalsSrc)

	opts := options(t, root, rules.EqualsSimplification)
	opts.MaxDiagnostics = 1
	res, err := Diagnose(context.Background(), root, opts)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if res.Bag.Len() != 1 {
		t.Fatalf("bag holds %d diagnostics, want 1", res.Bag.Len())
	}
	if f := res.Files.Get(res.Bag.Items()[0].Primary.File); !strings.HasSuffix(f.Path, "A.cs") {
		t.Fatalf("truncation must keep the first file in order, got %s", f.Path)
	}
}

func TestDiagnoseCache(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Equals.cs")
	writeFile(t, path, equalsSrc)

	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	opts := options(t, root, rules.EqualsSimplification)
	opts.Cache = cache

	first, err := Diagnose(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	second, err := Diagnose(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if first.Units[0].Cached || !second.Units[0].Cached || second.Units[0].Tree != nil {
		t.Fatalf("cached = %v, %v", first.Units[0].Cached, second.Units[0].Cached)
	}
	a, b := first.Bag.Items(), second.Bag.Items()
	if len(a) != 1 || len(b) != 1 || !diag.Same(a[0], b[0]) || a[0].Prop("owner") != b[0].Prop("owner") || a[0].Message != b[0].Message {
		t.Fatalf("cached diagnostics differ:\n%+v\n%+v", a, b)
	}

	// другой набор правил - другой ключ
	opts = options(t, root, rules.ContractionInComment)
	opts.Cache = cache
	third, err := Diagnose(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if third.Units[0].Cached || third.Bag.Len() != 0 {
		t.Fatalf("fingerprint ignored: cached=%v diags=%d", third.Units[0].Cached, third.Bag.Len())
	}

	// fix работает и по результату из кэша
	opts = options(t, root, rules.EqualsSimplification)
	opts.Cache = cache
	fr, err := Fix(context.Background(), path, opts, FixOptions{Mode: fix.ApplyModeAll, DryRun: true})
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if !fr.Diagnose.Units[0].Cached || len(fr.Files) != 1 || string(fr.Files[0].After) != equalsFixed {
		t.Fatalf("fix from cached result failed: %+v", fr.Files)
	}
}

func TestDiagnoseParseIncomplete(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Broken.cs")
	writeFile(t, path, "class C { void M( { int = ; } ")

	res, err := Diagnose(context.Background(), path, options(t, root))
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	found := false
	for _, d := range res.Bag.Items() {
		if d.Code == diag.ParseIncomplete && d.Severity == diag.SevInfo {
			found = true
		}
	}
	if !found {
		t.Fatalf("no %s diagnostic in %+v", diag.ParseIncomplete, res.Bag.Items())
	}
}

func TestDiagnoseRequiresRules(t *testing.T) {
	if _, err := Diagnose(context.Background(), t.TempDir(), Options{}); err != ErrNoRules {
		t.Fatalf("got %v, want ErrNoRules", err)
	}
}

func TestFixWritesFiles(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Equals.cs")
	bom := "\xEF\xBB\xBF"
	writeFile(t, path, bom+equalsSrc)

	fr, err := Fix(context.Background(), root, options(t, root, rules.EqualsSimplification), FixOptions{Mode: fix.ApplyModeAll})
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if fr.Applied() != 1 || len(fr.Files) != 1 || !fr.Files[0].Written {
		t.Fatalf("result = %+v", fr.Files)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != bom+equalsFixed {
		t.Fatalf("file content:\n%q\nwant:\n%q", got, bom+equalsFixed)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("permissions changed to %v", info.Mode().Perm())
	}
	entries, err := os.ReadDir(root)
	if err != nil || len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v %v", entries, err)
	}

	// второй прогон: исправлять нечего
	fr, err = Fix(context.Background(), root, options(t, root, rules.EqualsSimplification), FixOptions{Mode: fix.ApplyModeAll})
	if err != nil || len(fr.Files) != 0 {
		t.Fatalf("second run changed files: %+v %v", fr, err)
	}
}

func TestFixDryRunAndRuleMode(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Equals.cs")
	writeFile(t, path, equalsSrc)

	opts := options(t, root)
	fr, err := Fix(context.Background(), path, opts, FixOptions{Mode: fix.ApplyModeRule, Rule: rules.EqualsSimplification, DryRun: true})
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if len(fr.Files) != 1 || fr.Files[0].Written {
		t.Fatalf("result = %+v", fr.Files)
	}
	ff := fr.Files[0]
	if !bytes.Equal(ff.Before, []byte(equalsSrc)) || string(ff.After) != equalsFixed {
		t.Fatalf("after:\n%s", ff.After)
	}
	for _, a := range ff.Result.Applied {
		if a.Code != rules.EqualsSimplification {
			t.Fatalf("rule mode applied %s", a.Code)
		}
	}
	got, _ := os.ReadFile(path)
	if string(got) != equalsSrc {
		t.Fatalf("dry run wrote the file")
	}
}

func TestDiskCache(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := cacheKey(Digest{1}, "fp", "v1")
	if key == cacheKey(Digest{1}, "fp", "v2") || key == cacheKey(Digest{2}, "fp", "v1") {
		t.Fatalf("cache key ignores its inputs")
	}

	var out DiskPayload
	if hit, err := cache.Get(key, &out); hit || err != nil {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}
	in := &DiskPayload{Schema: diskCacheSchemaVersion, Path: "a.cs", Fingerprint: "fp", Diagnostics: []CachedDiagnostic{
		{Code: "MNT3012", Severity: 1, Message: "m", Start: 3, End: 9, Secondary: [][2]uint32{{4, 5}}, Props: map[string]string{"owner": "string"}},
	}}
	if err := cache.Put(key, in); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if hit, err := cache.Get(key, &out); !hit || err != nil {
		t.Fatalf("Get: hit=%v err=%v", hit, err)
	}
	ds := fromDiskPayload(&out, 7)
	if len(ds) != 1 || ds[0].Primary.File != 7 || ds[0].Secondary[0].End != 5 || ds[0].Prop("owner") != "string" {
		t.Fatalf("restored = %+v", ds)
	}

	old := &DiskPayload{Schema: diskCacheSchemaVersion + 1}
	if err := cache.Put(key, old); err != nil {
		t.Fatal(err)
	}
	if hit, _ := cache.Get(key, &out); hit {
		t.Fatalf("foreign schema accepted")
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if hit, _ := cache.Get(key, &out); hit {
		t.Fatalf("entry survived DropAll")
	}
	var nilCache *DiskCache
	if err := nilCache.Put(key, in); err != nil {
		t.Fatalf("nil cache Put: %v", err)
	}
}

func TestParsingAfterDiagnose(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"A.cs", "B.cs", "C.cs", "D.cs"} {
		writeFile(t, filepath.Join(root, name), equalsSrc)
	}
	opts := options(t, root, rules.EqualsSimplification)
	for i := range 8 {
		res, err := Diagnose(context.Background(), root, opts)
		if err != nil {
			t.Fatalf("Diagnose #%d: %v", i, err)
		}
		if res.Bag.Len() != 4 {
			t.Fatalf("Diagnose #%d: %d diagnostics, want 4", i, res.Bag.Len())
		}
		for j := range 8 {
			if _, err := parser.ParseText(context.Background(), 1, "x.cs", []byte(equalsSrc)); err != nil {
				t.Fatalf("parse %d after Diagnose #%d: %v", j, i, err)
			}
		}
	}
}
