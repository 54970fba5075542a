package compiler

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"

	"github.com/matzehuels/deploygraph/pkg/semantic"
)

// document is the semantic model of one compiled file.
type document struct {
	uri        string
	path       string
	src        []byte
	lineStarts semantic.LineStarts

	symbols []*semantic.Symbol
	diags   []semantic.Diagnostic
	index   map[string]*semantic.Symbol
	nested  map[*semantic.Symbol]*document
	// modules are the declarations with local sources, linked after compiling.
	modules []moduleDecl
}

type moduleDecl struct {
	symbol *semantic.Symbol
	source string
	span   semantic.Span
}

var _ semantic.Model = (*document)(nil)

func newDocument(uri, path string, src []byte) *document {
	return &document{
		uri:        uri,
		path:       path,
		src:        src,
		lineStarts: semantic.ComputeLineStarts(src),
		index:      make(map[string]*semantic.Symbol),
		nested:     make(map[*semantic.Symbol]*document),
	}
}

func (d *document) URI() string                        { return d.uri }
func (d *document) Symbols() []*semantic.Symbol        { return d.symbols }
func (d *document) Diagnostics() []semantic.Diagnostic { return d.diags }
func (d *document) LineStarts() semantic.LineStarts    { return d.lineStarts }

func (d *document) NestedModel(s *semantic.Symbol) (semantic.Model, bool) {
	nested, ok := d.nested[s]
	if !ok {
		return nil, false
	}
	return nested, true
}

// add registers sym. A name that is already taken is reported and replaced
// by the error sentinel so that names stay unique.
func (d *document) add(sym *semantic.Symbol) *semantic.Symbol {
	if !sym.IsSentinel() {
		if _, taken := d.index[sym.Name]; taken {
			d.errorf(sym.Span, "duplicate-declaration", "%q is already declared", sym.Name)
			sym.Name = semantic.ErrorName
		} else {
			d.index[sym.Name] = sym
		}
	}
	d.symbols = append(d.symbols, sym)
	return sym
}

func (d *document) errorf(span semantic.Span, code, format string, args ...any) {
	d.report(semantic.LevelError, span, code, format, args...)
}

func (d *document) warnf(span semantic.Span, code, format string, args ...any) {
	d.report(semantic.LevelWarning, span, code, format, args...)
}

func (d *document) report(level semantic.Level, span semantic.Span, code, format string, args ...any) {
	d.diags = append(d.diags, semantic.Diagnostic{
		Level:   level,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Span:    span,
	})
}

func (d *document) addHCLDiagnostics(diags hcl.Diagnostics) {
	for _, diag := range diags {
		level := semantic.LevelError
		if diag.Severity == hcl.DiagWarning {
			level = semantic.LevelWarning
		}
		var sp semantic.Span
		if diag.Subject != nil {
			sp = span(*diag.Subject)
		}
		msg := diag.Summary
		if diag.Detail != "" {
			msg += ": " + diag.Detail
		}
		d.diags = append(d.diags, semantic.Diagnostic{Level: level, Code: "syntax", Message: msg, Span: sp})
	}
}

// text returns the source covered by r.
func (d *document) text(r hcl.Range) string {
	if r.Start.Byte < 0 || r.End.Byte > len(d.src) || r.Start.Byte > r.End.Byte {
		return ""
	}
	return string(d.src[r.Start.Byte:r.End.Byte])
}

func span(r hcl.Range) semantic.Span {
	return semantic.Span{Start: r.Start.Byte, End: r.End.Byte}
}
