package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto chooses relative or absolute path automatically.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color         bool
	Context       int8 // строк контекста над строкой находки
	PathMode      PathMode
	ShowSecondary bool
	ShowInternal  bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	Max              int // обрезка вывода, не Bag
	IncludeSecondary bool
	IncludeInternal  bool
}

// SarifRule describes one rule in the SARIF tool component.
type SarifRule struct {
	ID       string
	Name     string
	Title    string
	Category string
	Level    string // error, warning, note
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InformationURI string
	InvocationArgs []string
	Rules          []SarifRule
	RunID          string // пусто - сгенерировать uuid
}

// TreeOpts configures syntax tree dumps.
type TreeOpts struct {
	ShowTrivia bool
	MaxDepth   int // 0 - без ограничения
}

func pathModeName(m PathMode) string {
	switch m {
	case PathModeAbsolute:
		return "absolute"
	case PathModeRelative:
		return "relative"
	case PathModeBasename:
		return "basename"
	default:
		return "auto"
	}
}
