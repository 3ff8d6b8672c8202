package diagfmt

import (
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/google/uuid"

	"sharpfix/internal/diag"
	"sharpfix/internal/source"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Automation  sarifAutomation   `json:"automationDetails"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string           `json:"name"`
	Version        string           `json:"version,omitempty"`
	InformationURI string           `json:"informationUri,omitempty"`
	Rules          []sarifReporting `json:"rules,omitempty"`
}

type sarifReporting struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name,omitempty"`
	ShortDescription     *sarifMessage     `json:"shortDescription,omitempty"`
	DefaultConfiguration *sarifRuleConfig  `json:"defaultConfiguration,omitempty"`
	Properties           map[string]string `json:"properties,omitempty"`
}

type sarifRuleConfig struct {
	Level string `json:"level"`
}

type sarifAutomation struct {
	GUID string `json:"guid"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID           string          `json:"ruleId"`
	Level            string          `json:"level"`
	Message          sarifMessage    `json:"message"`
	Locations        []sarifLocation `json:"locations"`
	RelatedLocations []sarifLocation `json:"relatedLocations,omitempty"`
}

type sarifLocation struct {
	ID       int                   `json:"id,omitempty"`
	Physical sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	Artifact sarifArtifact `json:"artifactLocation"`
	Region   sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
	ByteOffset  uint32 `json:"byteOffset"`
	ByteLength  uint32 `json:"byteLength"`
}

// SarifLevel maps a severity onto the SARIF result levels.
func SarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0).
// Внутренние диагностики движка в отчёт не попадают.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	guid := meta.RunID
	if guid == "" {
		guid = uuid.NewString()
	}
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           meta.ToolName,
			Version:        meta.ToolVersion,
			InformationURI: meta.InformationURI,
		}},
		Automation: sarifAutomation{GUID: guid},
		Results:    make([]sarifResult, 0, bag.Len()),
	}
	for _, r := range meta.Rules {
		rep := sarifReporting{ID: r.ID, Name: r.Name}
		if r.Title != "" {
			rep.ShortDescription = &sarifMessage{Text: r.Title}
		}
		if r.Level != "" {
			rep.DefaultConfiguration = &sarifRuleConfig{Level: r.Level}
		}
		if r.Category != "" {
			rep.Properties = map[string]string{"category": r.Category}
		}
		run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, rep)
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{
			Arguments:           meta.InvocationArgs,
			ExecutionSuccessful: !bag.HasErrors(),
		}}
	}

	for _, d := range bag.Items() {
		if d.Internal {
			continue
		}
		loc, ok := sarifLocate(fs, d.Primary)
		if !ok {
			continue
		}
		res := sarifResult{
			RuleID:    d.Code.ID(),
			Level:     SarifLevel(d.Severity),
			Message:   sarifMessage{Text: d.Message},
			Locations: []sarifLocation{loc},
		}
		for i, sp := range d.Secondary {
			if rel, ok := sarifLocate(fs, sp); ok {
				rel.ID = i + 1
				res.RelatedLocations = append(res.RelatedLocations, rel)
			}
		}
		run.Results = append(run.Results, res)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}})
}

func sarifLocate(fs *source.FileSet, sp source.Span) (sarifLocation, bool) {
	f := fs.Get(sp.File)
	if f == nil {
		return sarifLocation{}, false
	}
	start, end := fs.Resolve(sp)
	uri := filepath.ToSlash(f.FormatPath("relative", fs.BaseDir()))
	return sarifLocation{Physical: sarifPhysicalLocation{
		Artifact: sarifArtifact{URI: uri},
		Region: sarifRegion{
			StartLine:   start.Line,
			StartColumn: start.Col,
			EndLine:     end.Line,
			EndColumn:   end.Col,
			ByteOffset:  sp.Start,
			ByteLength:  sp.Len(),
		},
	}}, true
}
