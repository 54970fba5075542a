package semantic

// Sentinel names used by compilers for declarations without a usable name.
const (
	MissingName = "<missing>"
	ErrorName   = "<error>"
)

// SymbolKind classifies a declaration.
type SymbolKind int

const (
	KindResource SymbolKind = iota
	KindModule
	KindParameter
	KindVariable
	KindLocal
	KindOutput
)

// String returns the lower-case name of the kind.
func (k SymbolKind) String() string {
	switch k {
	case KindResource:
		return "resource"
	case KindModule:
		return "module"
	case KindParameter:
		return "parameter"
	case KindVariable:
		return "variable"
	case KindLocal:
		return "local"
	case KindOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Symbol is a named declaration inside one model.
//
// Symbols are owned by their model and compared by pointer identity.
type Symbol struct {
	// Name is unique within the owning model, or one of the sentinel names.
	Name string
	Kind SymbolKind
	Type Type
	// Span covers the whole declaration in the owning document.
	Span Span
	// References lists the symbols of the same model the declaration body
	// refers to directly, in source order.
	References []*Symbol
	// Existing marks resources that are read rather than deployed.
	Existing bool
	// Source is the module path expression, set only for modules.
	Source ModuleSource
}

// ModuleSource describes the path a module declaration points at.
type ModuleSource struct {
	// Path is the literal path value. Empty when not a literal.
	Path string
	// Literal reports whether the path could be determined statically.
	Literal bool
}

// IsSentinel reports whether the symbol carries one of the sentinel names.
func (s *Symbol) IsSentinel() bool {
	return s.Name == MissingName || s.Name == ErrorName
}

// IsDeployable reports whether the symbol declares a resource or a module.
func (s *Symbol) IsDeployable() bool {
	return s.Kind == KindResource || s.Kind == KindModule
}

// ModulePath returns the literal module path of a module symbol.
func ModulePath(s *Symbol) (string, bool) {
	if s.Kind != KindModule || !s.Source.Literal {
		return "", false
	}
	return s.Source.Path, true
}
