package semantic

// Level is the severity of a diagnostic.
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

// String returns the lower-case severity name.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	default:
		return "info"
	}
}

// Diagnostic is a compiler-reported issue.
type Diagnostic struct {
	Level   Level
	Code    string
	Message string
	Span    Span
}

// Model is the compiled view of one document.
type Model interface {
	// URI identifies the document.
	URI() string
	// Symbols returns every declaration in source order.
	Symbols() []*Symbol
	// Diagnostics returns every issue reported for this document, including
	// those found while resolving its modules.
	Diagnostics() []Diagnostic
	// LineStarts returns the document's line-start table.
	LineStarts() LineStarts
	// NestedModel resolves the model of the document a module symbol refers to.
	// It reports false when the symbol is not a module or the document could
	// not be resolved.
	NestedModel(s *Symbol) (Model, bool)
}

// Errors returns the error-level diagnostics of m.
func Errors(m Model) []Diagnostic {
	var out []Diagnostic
	for _, d := range m.Diagnostics() {
		if d.Level == LevelError {
			out = append(out, d)
		}
	}
	return out
}
