package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"sharpfix/internal/source"
)

func TestJSON(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs, "Test.cs")

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeSecondary: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("internal diagnostics must be dropped: %+v", out)
	}
	d := out.Diagnostics[0]
	want := LocationJSON{File: "Test.cs", StartByte: 34, EndByte: 42, StartLine: 3, StartCol: 25, EndLine: 3, EndCol: 33}
	if d.Severity != "WARNING" || d.Code != "MNT3012" || d.Location != want {
		t.Fatalf("got %+v", d)
	}
	if len(d.Related) != 1 || d.Related[0].EndByte != 35 {
		t.Fatalf("related: %+v", d.Related)
	}
}

func TestJSONInternalAndMax(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs, "Test.cs")

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludeInternal: true})
	if out.Count != 2 {
		t.Fatalf("count = %d, want 2", out.Count)
	}
	if d := out.Diagnostics[0]; !d.Internal || d.Error != "boom" || d.Location.StartLine != 0 {
		t.Fatalf("internal entry: %+v", d)
	}
	if out := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludeInternal: true, Max: 1}); out.Count != 1 {
		t.Fatalf("max not applied: %d", out.Count)
	}
}

func TestSarif(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs, "Test.cs")

	var buf bytes.Buffer
	meta := SarifRunMeta{
		ToolName:       "sharpfix",
		ToolVersion:    "0.1.0",
		InvocationArgs: []string{"diag", "."},
		Rules:          []SarifRule{{ID: "MNT3012", Name: "equals-simplification", Title: "Simplify", Level: "warning"}},
	}
	if err := Sarif(&buf, bag, fs, meta); err != nil {
		t.Fatalf("Sarif: %v", err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("got %+v", log)
	}
	run := log.Runs[0]
	if _, err := uuid.Parse(run.Automation.GUID); err != nil {
		t.Fatalf("run guid %q: %v", run.Automation.GUID, err)
	}
	if len(run.Tool.Driver.Rules) != 1 || run.Tool.Driver.Rules[0].DefaultConfiguration.Level != "warning" {
		t.Fatalf("rules: %+v", run.Tool.Driver.Rules)
	}
	if len(run.Results) != 1 {
		t.Fatalf("results: %+v", run.Results)
	}
	r := run.Results[0]
	reg := r.Locations[0].Physical.Region
	if r.RuleID != "MNT3012" || r.Level != "warning" || reg.StartLine != 3 || reg.StartColumn != 25 || reg.ByteLength != 8 {
		t.Fatalf("result: %+v", r)
	}
	if len(r.RelatedLocations) != 1 || r.RelatedLocations[0].ID != 1 {
		t.Fatalf("related: %+v", r.RelatedLocations)
	}
	if len(run.Invocations) != 1 || !run.Invocations[0].ExecutionSuccessful {
		t.Fatalf("invocations: %+v", run.Invocations)
	}

	buf.Reset()
	meta.RunID = "fixed"
	if err := Sarif(&buf, bag, fs, meta); err != nil || !bytes.Contains(buf.Bytes(), []byte(`"guid": "fixed"`)) {
		t.Fatalf("run id not kept: %v\n%s", err, buf.String())
	}
}
