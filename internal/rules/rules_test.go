package rules_test

import (
	"strings"
	"testing"

	"sharpfix/internal/diag"
	"sharpfix/internal/harness"
	"sharpfix/internal/rules"
)

func verifier(t *testing.T, code diag.Code) *harness.Verifier {
	t.Helper()
	cat, reg, err := rules.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return harness.New(cat, reg).Rule(code)
}

func TestCatalogIsComplete(t *testing.T) {
	cat, reg, err := rules.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if cat.Len() != 9 {
		t.Fatalf("catalog has %d rules, want 9", cat.Len())
	}
	for _, code := range reg.Codes() {
		if _, ok := cat.Get(code); !ok {
			t.Fatalf("fix %s has no rule", code)
		}
	}
	for _, r := range cat.Rules() {
		if r.Name == "" || r.Title == "" || r.Category == "" {
			t.Fatalf("rule %s lacks metadata", r.Code)
		}
	}
}

func TestLoadDataRejectsUnknownFields(t *testing.T) {
	if _, err := rules.LoadData([]byte("argument_exception:\n  X: {}\n")); err == nil {
		t.Fatalf("unknown top-level key accepted")
	}
	if _, err := rules.LoadData([]byte("argument_exceptions:\n  X:\n    args: 'nameof(x)'\n")); err == nil {
		t.Fatalf("template without {param} accepted")
	}
	d, err := rules.LoadData([]byte("contractions:\n  - phrase: \"can't\"\n    use: cannot\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, _, err := rules.New(d); err != nil {
		t.Fatalf("new: %v", err)
	}
}

func TestArgumentExceptionFix(t *testing.T) {
	v := verifier(t, rules.ArgumentExceptionWithoutParam)
	const original = `using System;

public class TestMe
{
    public void DoSomething(object x)
    {
        if (x is null) throw new ArgumentNullException();
    }
}
`
	v.AssertDiagnosticsAt(t, original, "new ArgumentNullException()")
	v.AssertFix(t, original, strings.Replace(original,
		"new ArgumentNullException()", `new ArgumentNullException(nameof(x), "TODO")`, 1))
}

func TestArgumentExceptionTemplates(t *testing.T) {
	v := verifier(t, rules.ArgumentExceptionWithoutParam)
	tests := []struct {
		name   string
		throw  string
		params string
		want   string
	}{
		{"out of range", "throw new ArgumentOutOfRangeException();", "int index",
			`throw new ArgumentOutOfRangeException(nameof(index), index, "TODO");`},
		{"plain", "throw new ArgumentException();", "string name",
			`throw new ArgumentException("TODO", nameof(name));`},
		{"qualified", "throw new System.ArgumentNullException();", "object value",
			`throw new System.ArgumentNullException(nameof(value), "TODO");`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "using System;\n\npublic class TestMe\n{\n    public void M(" + tt.params + ")\n    {\n        " + tt.throw + " // why\n    }\n}\n"
			v.AssertFix(t, src, strings.Replace(src, tt.throw, tt.want, 1))
		})
	}
}

func TestArgumentExceptionNoDiagnostics(t *testing.T) {
	v := verifier(t, rules.ArgumentExceptionWithoutParam)
	tests := []struct {
		name string
		src  string
	}{
		{"has arguments", `using System;
public class TestMe
{
    public void M(object x)
    {
        throw new ArgumentNullException(nameof(x));
    }
}
`},
		{"not thrown", `using System;
public class TestMe
{
    public object M(object x)
    {
        return new ArgumentNullException();
    }
}
`},
		{"other exception", `using System;
public class TestMe
{
    public void M(object x)
    {
        throw new InvalidOperationException();
    }
}
`},
		{"unresolved type", `public class TestMe
{
    public void M(object x)
    {
        throw new Unknown.ArgumentNullException();
    }
}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v.AssertNoDiagnostics(t, tt.src)
		})
	}
}

func TestArgumentExceptionWithoutParameterIsNotFixable(t *testing.T) {
	v := verifier(t, rules.ArgumentExceptionWithoutParam)
	const src = `using System;
public class TestMe
{
    public void M(object x, object y)
    {
        throw new ArgumentNullException();
    }
}
`
	v.AssertDiagnostics(t, src, 1)
	if err := v.Fix(src, src); err == nil {
		t.Fatalf("expected the fix to be unavailable")
	}
}

func TestEqualsSimplification(t *testing.T) {
	v := verifier(t, rules.EqualsSimplification)
	const original = `public class TestMe
{
    public bool DoSomething(string a, string b)
    {
        if (a == b || (a != null && a.Equals(b)))
        {
            return true;
        }

        return false;
    }

    public bool DoSomethingElse(object a, object b)
    {
        if (a == b || (a != null && a.Equals(b)))
        {
            return true;
        }

        return false;
    }
}
`
	v.AssertDiagnostics(t, original, 2)
	want := strings.Replace(original, "a == b || (a != null && a.Equals(b))", "string.Equals(a, b)", 1)
	want = strings.Replace(want, "a == b || (a != null && a.Equals(b))", "object.Equals(a, b)", 1)
	v.AssertFixAll(t, original, want)
}

func TestEqualsSimplificationNoDiagnostics(t *testing.T) {
	v := verifier(t, rules.EqualsSimplification)
	for _, cond := range []string{
		"a == b",
		"a == b || (b != null && b.Equals(a))",
		"a == b || (a != null && a.Equals(c))",
		"a == b && (a != null && a.Equals(b))",
	} {
		src := "public class TestMe\n{\n    public bool M(string a, string b, string c)\n    {\n        return " + cond + ";\n    }\n}\n"
		v.AssertNoDiagnostics(t, src)
	}
	// тип a неизвестен: лучше промолчать
	v.AssertNoDiagnostics(t, "public class TestMe\n{\n    public bool M()\n    {\n        return a == b || (a != null && a.Equals(b));\n    }\n}\n")
}

const switchOriginal = `public class TestMe
{
    public string DoSomething(int x)
    {
        string result;
        switch (x)
        {
            case 1:
                result = "one";
                break;
            case 2:
                result = "two"; // second
                break;
            default:
                result = "many";
                break;
        }
        return result;
    }
}
`

func TestReturnFromSwitchArms(t *testing.T) {
	v := verifier(t, rules.ReturnFromSwitchArms)
	v.AssertDiagnostics(t, switchOriginal, 1)
	v.AssertFix(t, switchOriginal, `public class TestMe
{
    public string DoSomething(int x)
    {
        switch (x)
        {
            case 1:
                return "one";
            case 2:
                return "two"; // second
            default:
                return "many";
        }
    }
}
`)
}

func TestReturnFromSwitchArmsSecondarySpans(t *testing.T) {
	v := verifier(t, rules.ReturnFromSwitchArms)
	res, err := v.Analyze(switchOriginal)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(res.Diagnostics) != 1 || len(res.Diagnostics[0].Secondary) != 3 {
		t.Fatalf("diagnostics = %+v", res.Diagnostics)
	}
}

func TestReturnFromSwitchArmsNoDiagnostics(t *testing.T) {
	v := verifier(t, rules.ReturnFromSwitchArms)
	tests := []struct {
		name, from, to string
	}{
		{"no default", "            default:\n                result = \"many\";\n                break;\n", ""},
		{"other variable", `result = "two";`, `other = "two";`},
		{"used again", "        return result;\n", "        Log(result);\n        return result;\n"},
		{"not returned", "        return result;\n", "        return null;\n"},
		{"extra statement", "                result = \"one\";\n", "                result = \"one\";\n                Log(x);\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v.AssertNoDiagnostics(t, strings.Replace(switchOriginal, tt.from, tt.to, 1))
		})
	}
}

func TestDuplicateEventRegistration(t *testing.T) {
	v := verifier(t, rules.DuplicateEventRegistration)
	const src = `public class TestMe
{
    public event EventHandler Changed;

    public void Register(EventHandler handler)
    {
        Changed += handler;
        Changed += OnChanged;
        Changed += handler;
    }

    public void RegisterOnce(EventHandler handler)
    {
        Changed += handler;
    }

    public void Reregister(EventHandler handler)
    {
        Changed += handler;
        Changed -= handler;
        Changed += handler;
    }

    private void OnChanged(object sender, EventArgs e)
    {
    }
}
`
	res, err := v.Analyze(src)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %+v", len(res.Diagnostics), res.Diagnostics)
	}
	d := res.Diagnostics[0]
	if len(d.Secondary) != 1 || !d.Secondary[0].Less(d.Primary) {
		t.Fatalf("second registration should be primary, first secondary: %+v", d)
	}
}

func TestEventRaisedInLock(t *testing.T) {
	v := verifier(t, rules.EventRaisedInLock)
	const template = `using System;

public class TestMe
{
    private readonly object _gate = new object();

    public event EventHandler Changed;

    public void DoSomething(EventHandler handler)
    {
        lock (_gate)
        {
            BODY
        }
    }
}
`
	tests := []struct {
		name string
		body string
		want int
	}{
		{"register only", "Changed += handler;\n            Changed -= handler;", 0},
		{"invoke", "Changed(this, EventArgs.Empty);", 1},
		{"this invoke", "this.Changed(this, EventArgs.Empty);", 1},
		{"explicit invoke", "Changed.Invoke(this, EventArgs.Empty);", 1},
		{"null conditional", "Changed?.Invoke(this, EventArgs.Empty);", 1},
		{"in lambda", "Action raise = () => Changed(this, EventArgs.Empty);", 0},
		{"delegate parameter", "handler(this, EventArgs.Empty);", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v.AssertDiagnostics(t, strings.Replace(template, "BODY", tt.body, 1), tt.want)
		})
	}
	v.AssertNoDiagnostics(t, strings.Replace(strings.Replace(template, "lock (_gate)", "", 1), "BODY", "Changed(this, EventArgs.Empty);", 1))
}

func TestClassicAssertion(t *testing.T) {
	v := verifier(t, rules.ClassicAssertion)
	const template = `using NUnit.Framework;

[TestFixture]
public class TestMe
{
    [Test]
    public void DoSomething()
    {
        CALL;
    }
}
`
	tests := []struct {
		call, want string
	}{
		{"Assert.AreEqual(42, 0815)", "Assert.That(0815, Is.EqualTo(42))"},
		{"Assert.AreEqual(42, x, \"message\")", "Assert.That(x, Is.EqualTo(42), \"message\")"},
		{"Assert.IsTrue(flag)", "Assert.That(flag, Is.True)"},
		{"Assert.IsNotNull(value)", "Assert.That(value, Is.Not.Null)"},
		{"NUnit.Framework.Assert.AreNotEqual(1, y)", "NUnit.Framework.Assert.That(y, Is.Not.EqualTo(1))"},
	}
	for _, tt := range tests {
		t.Run(tt.call, func(t *testing.T) {
			v.AssertFix(t, strings.Replace(template, "CALL", tt.call, 1), strings.Replace(template, "CALL", tt.want, 1))
		})
	}

	for _, call := range []string{
		"Assert.That(x, Is.EqualTo(42))",
		"Assert.AreEqual(42)",
		"Assert.AreEqual(expected: 42, actual: x)",
	} {
		v.AssertNoDiagnostics(t, strings.Replace(template, "CALL", call, 1))
	}
	// без using NUnit.Framework Assert не разрешается
	v.AssertNoDiagnostics(t, strings.Replace(strings.Replace(template, "using NUnit.Framework;\n", "", 1), "CALL", "Assert.AreEqual(42, 0815)", 1))
}

func TestBlankLineBeforeControlFlow(t *testing.T) {
	v := verifier(t, rules.BlankLineBeforeControlFlow)
	const original = `public class TestMe
{
    public void DoSomething(int x)
    {
        var y = x;
        if (y > 0)
        {
            y--;
        }
    }
}
`
	want := strings.Replace(original, "var y = x;\n", "var y = x;\n\n", 1)
	v.AssertFix(t, original, want)
	v.AssertNoDiagnostics(t, want)
	v.AssertNoDiagnostics(t, "public class TestMe\n{\n    public void M(int x)\n    {\n        if (x > 0)\n        {\n        }\n    }\n}\n")
}

func TestBlankLineAfterControlFlow(t *testing.T) {
	v := verifier(t, rules.BlankLineAfterControlFlow)
	const original = `public class TestMe
{
    public void DoSomething(int x)
    {
        foreach (var i in new[] { 1, 2 })
        {
            x += i;
        }
        x++;
        while (x > 0)
        {
            x--;
        }
        return;
    }
}
`
	v.AssertDiagnostics(t, original, 2)
	want := strings.Replace(strings.Replace(original, "        }\n        x++;", "        }\n\n        x++;", 1),
		"        }\n        return;", "        }\n\n        return;", 1)
	v.AssertFixAll(t, original, want)
}

func TestContractionInComment(t *testing.T) {
	v := verifier(t, rules.ContractionInComment)
	const src = `public class TestMe
{
    /// <summary>It doesn't matter.</summary>
    public void DoSomething()
    {
        // Don't do this, we can't.
        var s = "don't flag strings";
        /* won't */
    }
}
`
	v.AssertDiagnosticsAt(t, src, "doesn't", "Don't", "can't", "won't")
	v.AssertNoDiagnostics(t, "public class TestMe\n{\n    // do not, cannot, dont\n}\n")
}
