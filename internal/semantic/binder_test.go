package semantic_test

import (
	"context"
	"testing"

	"sharpfix/internal/parser"
	"sharpfix/internal/semantic"
	"sharpfix/internal/syntax"
)

func bind(t *testing.T, text string, opts ...semantic.Option) *semantic.Binder {
	t.Helper()
	tree, err := parser.ParseText(context.Background(), 1, "bind.cs", []byte(text))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return semantic.Bind(tree, opts...)
}

// ident returns the i-th identifier token spelled name.
func ident(t *testing.T, b *semantic.Binder, name string, i int) *syntax.Node {
	t.Helper()
	seen := 0
	var found *syntax.Node
	b.Tree().Root().Tokens(func(tok *syntax.Node) bool {
		if tok.Kind() == syntax.KindIdentifier && tok.Text() == name {
			if seen == i {
				found = tok
				return false
			}
			seen++
		}
		return true
	})
	if found == nil {
		t.Fatalf("identifier %q #%d not found", name, i)
	}
	return found
}

func TestPartialTypesMergeAndSubtype(t *testing.T) {
	b := bind(t, `using System;
namespace N
{
    class Base { }
    partial class A : Base { }
    partial class A : IDisposable { public void Dispose() { } }
}
`)
	a, ok := b.Declared("N.A")
	if !ok {
		t.Fatalf("N.A not declared")
	}
	if len(a.Partial) != 2 {
		t.Fatalf("partial parts = %d, want 2", len(a.Partial))
	}
	base, _ := b.Declared("N.Base")
	disp, ok := b.WellKnownType("System.IDisposable")
	if !ok {
		t.Fatalf("System.IDisposable missing from well-known table")
	}
	obj, _ := b.WellKnownType("System.Object")
	cases := []struct {
		name string
		t    *semantic.TypeInfo
		base *semantic.TypeInfo
		want bool
	}{
		{"class", a, base, true},
		{"interface", a, disp, true},
		{"object", a, obj, true},
		{"self", base, base, true},
		{"reverse", base, a, false},
		{"nil", nil, base, false},
	}
	for _, tc := range cases {
		if got := b.IsSubtype(tc.t, tc.base); got != tc.want {
			t.Fatalf("%s: IsSubtype = %t, want %t", tc.name, got, tc.want)
		}
	}
	dispose := a.Member("Dispose")
	if len(dispose) != 1 || len(dispose[0].Overrides) != 1 {
		t.Fatalf("Dispose should implement IDisposable.Dispose, got %v", dispose)
	}
}

func TestResolveParametersAndLocals(t *testing.T) {
	b := bind(t, `class C
{
    void M(string s, int n)
    {
        var t = s;
        int k = n;
        System.Console.WriteLine(t + k);
    }
}
`)
	cases := []struct {
		name string
		nth  int
		kind semantic.SymbolKind
		typ  string
	}{
		{"s", 1, semantic.SymbolParameter, "System.String"},
		{"n", 1, semantic.SymbolParameter, "System.Int32"},
		{"t", 1, semantic.SymbolLocal, "System.String"},
		{"k", 1, semantic.SymbolLocal, "System.Int32"},
		{"t", 0, semantic.SymbolLocal, "System.String"},
	}
	for _, tc := range cases {
		id := ident(t, b, tc.name, tc.nth)
		sym, ok := b.Resolve(id)
		if !ok {
			t.Fatalf("%s#%d: unresolved", tc.name, tc.nth)
		}
		if sym.Kind != tc.kind || sym.Name != tc.name {
			t.Fatalf("%s#%d: got %v", tc.name, tc.nth, sym)
		}
		typ, ok := b.TypeOf(id)
		if !ok || typ.FullName != tc.typ {
			t.Fatalf("%s#%d: TypeOf = %v, want %s", tc.name, tc.nth, typ, tc.typ)
		}
	}
	if sym, ok := b.Resolve(ident(t, b, "WriteLine", 0)); ok {
		t.Fatalf("unknown member resolved to %v", sym)
	}
}

func TestResolveEventsAndMembers(t *testing.T) {
	b := bind(t, `using System;
class Publisher
{
    public event EventHandler Changed;
    private int count;
    void Hook(EventHandler h)
    {
        Changed += h;
        this.count = 1;
    }
}
`)
	ev, ok := b.Resolve(ident(t, b, "Changed", 1))
	if !ok || ev.Kind != semantic.SymbolEvent {
		t.Fatalf("Changed: got %v", ev)
	}
	if ev.Type == nil || ev.Type.FullName != "System.EventHandler" {
		t.Fatalf("event type = %v", ev.Type)
	}
	field, ok := b.Resolve(ident(t, b, "count", 1))
	if !ok || field.Kind != semantic.SymbolField || field.Containing == nil || field.Containing.FullName != "Publisher" {
		t.Fatalf("this.count: got %v", field)
	}
}

func TestResolveFrameworkTypesThroughUsings(t *testing.T) {
	b := bind(t, `using NUnit.Framework;
using Alias = NUnit.Framework.Assert;
class Tests
{
    void T(int x)
    {
        Assert.AreEqual(1, x);
        Alias.IsTrue(true);
        throw new ArgumentException();
    }
}
`, semantic.WithImplicitUsings(semantic.DefaultImplicitUsings...))
	for _, name := range []string{"Assert", "Alias"} {
		sym, ok := b.Resolve(ident(t, b, name, 1))
		if !ok || sym.Kind != semantic.SymbolType || sym.Type.FullName != "NUnit.Framework.Assert" {
			t.Fatalf("%s: got %v", name, sym)
		}
	}
	m, ok := b.Resolve(ident(t, b, "AreEqual", 0))
	if !ok || m.Kind != semantic.SymbolMethod || m.Containing.FullName != "NUnit.Framework.Assert" {
		t.Fatalf("AreEqual: got %v", m)
	}
	ex, ok := b.Resolve(ident(t, b, "ArgumentException", 0))
	if !ok || ex.Type.FullName != "System.ArgumentException" {
		t.Fatalf("ArgumentException: got %v", ex)
	}
}

func TestQueryVariablesDoNotResolve(t *testing.T) {
	b := bind(t, `class C
{
    void M(int[] xs)
    {
        var q = from x in xs where x > 0 select x;
    }
}
`)
	if sym, ok := b.Resolve(ident(t, b, "x", 1)); ok {
		t.Fatalf("range variable resolved to %v", sym)
	}
}

func TestForeignNodeDoesNotResolve(t *testing.T) {
	a := bind(t, "class A { int f; }")
	other := bind(t, "class B { int f; }")
	if _, ok := a.Resolve(ident(t, other, "f", 0)); ok {
		t.Fatalf("node from another tree resolved")
	}
	if _, ok := a.TypeOf(ident(t, other, "f", 0)); ok {
		t.Fatalf("TypeOf accepted a node from another tree")
	}
}

func TestNullResolver(t *testing.T) {
	var r semantic.Resolver = semantic.Null{}
	if _, ok := r.Resolve(nil); ok {
		t.Fatalf("Null resolved a node")
	}
	if _, ok := r.WellKnownType("System.String"); ok {
		t.Fatalf("Null knows types")
	}
}

func TestThisAndBaseTypes(t *testing.T) {
	b := bind(t, `namespace N
{
    class Base { }
    class A : Base
    {
        void M() { var x = this; var y = base.ToString(); }
    }
}
`)
	var this, base *syntax.Node
	b.Tree().Root().Tokens(func(tok *syntax.Node) bool {
		switch tok.Kind() {
		case syntax.KindThis:
			this = tok
		case syntax.KindBase:
			base = tok
		}
		return true
	})
	if this == nil || base == nil {
		t.Fatalf("this=%v base=%v: keyword tokens not found", this, base)
	}
	if typ, ok := b.TypeOf(this); !ok || typ.FullName != "N.A" {
		t.Fatalf("TypeOf(this) = %v, %t", typ, ok)
	}
	if typ, ok := b.TypeOf(base); !ok || typ.FullName != "N.Base" {
		t.Fatalf("TypeOf(base) = %v, %t", typ, ok)
	}
}
