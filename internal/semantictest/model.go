// Package semantictest provides an in-memory semantic.Model for tests.
//
// Every declaration added to a [Model] occupies its own line of a virtual
// document, so spans and ranges are predictable: the n-th declaration spans
// bytes [n*LineWidth, n*LineWidth+LineWidth-1) on line n.
package semantictest

import (
	"github.com/matzehuels/deploygraph/pkg/semantic"
)

// LineWidth is the width of one virtual line, including its line break.
const LineWidth = 40

// Model is a hand-assembled semantic model.
type Model struct {
	uri     string
	symbols []*semantic.Symbol
	diags   []semantic.Diagnostic
	nested  map[*semantic.Symbol]semantic.Model
}

var _ semantic.Model = (*Model)(nil)

// New returns an empty model for uri.
func New(uri string) *Model {
	return &Model{uri: uri, nested: make(map[*semantic.Symbol]semantic.Model)}
}

func (m *Model) URI() string                        { return m.uri }
func (m *Model) Symbols() []*semantic.Symbol        { return m.symbols }
func (m *Model) Diagnostics() []semantic.Diagnostic { return m.diags }

// LineStarts returns one line per declaration plus a trailing empty line.
func (m *Model) LineStarts() semantic.LineStarts {
	ls := make(semantic.LineStarts, len(m.symbols)+1)
	for i := range ls {
		ls[i] = i * LineWidth
	}
	return ls
}

// NestedModel returns the model registered with [Model.Module].
func (m *Model) NestedModel(s *semantic.Symbol) (semantic.Model, bool) {
	nm, ok := m.nested[s]
	return nm, ok
}

// Add appends s, assigning it the next line.
func (m *Model) Add(s *semantic.Symbol) *semantic.Symbol {
	n := len(m.symbols)
	s.Span = semantic.Span{Start: n * LineWidth, End: n*LineWidth + LineWidth - 1}
	m.symbols = append(m.symbols, s)
	return s
}

// Resource declares a single resource of the given type. An empty type
// leaves the type reference undetermined.
func (m *Model) Resource(name, typ string) *semantic.Symbol {
	return m.Add(&semantic.Symbol{Name: name, Kind: semantic.KindResource, Type: resourceType(typ)})
}

// ResourceCollection declares a collection of resources.
func (m *Model) ResourceCollection(name, typ string) *semantic.Symbol {
	return m.Add(&semantic.Symbol{
		Name: name,
		Kind: semantic.KindResource,
		Type: semantic.ArrayType{Item: resourceType(typ)},
	})
}

// Module declares a single module with a literal path. An empty path makes
// the path non-literal. nested may be nil.
func (m *Model) Module(name, path string, nested semantic.Model) *semantic.Symbol {
	s := m.Add(&semantic.Symbol{
		Name:   name,
		Kind:   semantic.KindModule,
		Type:   semantic.ModuleType{},
		Source: semantic.ModuleSource{Path: path, Literal: path != ""},
	})
	if nested != nil {
		m.nested[s] = nested
	}
	return s
}

// ModuleCollection declares a collection of modules.
func (m *Model) ModuleCollection(name, path string, nested semantic.Model) *semantic.Symbol {
	s := m.Module(name, path, nested)
	s.Type = semantic.ArrayType{Item: semantic.ModuleType{}}
	return s
}

// Variable declares a variable.
func (m *Model) Variable(name string) *semantic.Symbol {
	return m.Add(&semantic.Symbol{Name: name, Kind: semantic.KindVariable, Type: semantic.PrimitiveType{Name: "string"}})
}

// Error reports an error diagnostic over the declaration of s.
func (m *Model) Error(s *semantic.Symbol, msg string) {
	m.diags = append(m.diags, semantic.Diagnostic{Level: semantic.LevelError, Message: msg, Span: s.Span})
}

// Diagnose appends an arbitrary diagnostic.
func (m *Model) Diagnose(d semantic.Diagnostic) {
	m.diags = append(m.diags, d)
}

// Ref makes from reference every symbol in to.
func Ref(from *semantic.Symbol, to ...*semantic.Symbol) {
	from.References = append(from.References, to...)
}

func resourceType(typ string) semantic.Type {
	if typ == "" {
		return semantic.ResourceType{}
	}
	return semantic.ResourceType{Ref: &semantic.TypeReference{Type: typ}}
}
