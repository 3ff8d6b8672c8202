package fuzztests

import "testing"

const maxFuzzInput = 16 << 10 // 16 KiB: больше не нужно для поиска падений

// csharpSeeds cover the constructs the rule catalog looks at.
var csharpSeeds = []string{
	"class C { }",
	"using System;\nnamespace N { public class C { public void M(string s) { if (s == null) throw new ArgumentNullException(\"s\"); } } }\n",
	"class C { bool M(string a, string b) { return a == b || (a != null && a.Equals(b)); } }",
	"class C { object l = new object(); event System.EventHandler E; void M() { lock (l) { E += H; E?.Invoke(this, null); } } }",
	"class C { int M(int x) { int r; switch (x) { case 1: r = 2; break; default: r = 3; break; } return r; } }",
	"[TestFixture] class T { [Test] public void A() { Assert.AreEqual(1, 2); } }",
	"class C\r\n{\r\n    // it's a comment\r\n    int F = 1; /* block */\r\n}\r\n",
	"#region R\nclass C { }\n#endregion\n",
	"class C { void M() { var s = $\"{x}\"; var v = @\"a\nb\"; var c = 'x'; } }",
	"class C { void M( { int = ; } ",
}

func addSeeds(f *testing.F) {
	for _, s := range csharpSeeds {
		f.Add([]byte(s))
	}
}

func clamp(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}
