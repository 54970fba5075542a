package compiler

import (
	"maps"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/matzehuels/deploygraph/pkg/semantic"
)

// declaration pairs a symbol with the traversals its body reads.
type declaration struct {
	symbol *semantic.Symbol
	refs   []hcl.Traversal
}

// Blocks that are valid but declare nothing.
var passiveBlocks = map[string]bool{
	"terraform": true,
	"provider":  true,
	"moved":     true,
	"import":    true,
	"removed":   true,
	"check":     true,
}

// Traversal roots that never name a declaration.
var ignoredRoots = map[string]bool{
	"count":     true,
	"each":      true,
	"self":      true,
	"path":      true,
	"terraform": true,
}

var (
	resourceMeta  = map[string]bool{"provider": true}
	moduleMeta    = map[string]bool{"source": true, "version": true, "providers": true}
	variableMeta  = map[string]bool{"type": true}
	lifecycleMeta = map[string]bool{"ignore_changes": true}
	dynamicMeta   = map[string]bool{"iterator": true}
)

// compile declares every block of body, then resolves references once all
// names are known.
func (d *document) compile(body hcl.Body) {
	syntax, ok := body.(*hclsyntax.Body)
	if !ok {
		return
	}
	var decls []declaration
	for _, blk := range syntax.Blocks {
		decls = append(decls, d.declare(blk)...)
	}
	for _, decl := range decls {
		d.resolve(decl)
	}
}

func (d *document) declare(blk *hclsyntax.Block) []declaration {
	switch blk.Type {
	case "resource", "data":
		return []declaration{d.declareResource(blk)}
	case "module":
		return []declaration{d.declareModule(blk)}
	case "variable":
		return []declaration{d.declareVariable(blk)}
	case "output":
		return []declaration{d.declareOutput(blk)}
	case "locals":
		return d.declareLocals(blk)
	}
	if !passiveBlocks[blk.Type] {
		d.warnf(span(blk.TypeRange), "unsupported-block", "unsupported block type %q", blk.Type)
	}
	return nil
}

func (d *document) declareResource(blk *hclsyntax.Block) declaration {
	existing := blk.Type == "data"
	d.checkLabelCount(blk, 2)
	typ, typOK := d.label(blk, 0, "type")
	name, nameOK := d.label(blk, 1, "name")

	addr := name
	switch {
	case !nameOK:
	case !typOK:
		addr = typ
	case existing:
		addr = "data." + typ + "." + name
	default:
		addr = typ + "." + name
	}

	rt := semantic.ResourceType{}
	if typOK {
		rt.Ref = &semantic.TypeReference{Type: typ, Provider: providerName(blk.Body)}
	}

	sym := d.add(&semantic.Symbol{
		Name:     addr,
		Kind:     semantic.KindResource,
		Type:     collectionOf(blk.Body, rt),
		Span:     span(blk.Range()),
		Existing: existing,
	})
	return declaration{symbol: sym, refs: traversals(blk.Body, resourceMeta, nil)}
}

func (d *document) declareModule(blk *hclsyntax.Block) declaration {
	d.checkLabelCount(blk, 1)
	name, ok := d.label(blk, 0, "name")
	addr := name
	if ok {
		addr = "module." + name
	}

	sym := &semantic.Symbol{
		Name: addr,
		Kind: semantic.KindModule,
		Type: collectionOf(blk.Body, semantic.ModuleType{}),
		Span: span(blk.Range()),
	}

	var srcSpan semantic.Span
	if attr, has := blk.Body.Attributes["source"]; !has {
		d.errorf(span(blk.DefRange()), "missing-source", "module %q has no source", name)
	} else if source, lit := literalString(attr.Expr); lit {
		sym.Source = semantic.ModuleSource{Path: source, Literal: true}
		srcSpan = span(attr.SrcRange)
	} else {
		d.errorf(span(attr.SrcRange), "dynamic-source", "module source must be a string literal")
	}

	d.add(sym)
	if !sym.IsSentinel() && sym.Source.Literal && isLocalSource(sym.Source.Path) {
		d.modules = append(d.modules, moduleDecl{symbol: sym, source: sym.Source.Path, span: srcSpan})
	}
	return declaration{symbol: sym, refs: traversals(blk.Body, moduleMeta, nil)}
}

func (d *document) declareVariable(blk *hclsyntax.Block) declaration {
	d.checkLabelCount(blk, 1)
	name, ok := d.label(blk, 0, "name")
	if ok {
		name = "var." + name
	}
	typ := "any"
	if attr, has := blk.Body.Attributes["type"]; has {
		if text := d.text(attr.Expr.Range()); text != "" {
			typ = text
		}
	}
	sym := d.add(&semantic.Symbol{
		Name: name,
		Kind: semantic.KindParameter,
		Type: semantic.PrimitiveType{Name: typ},
		Span: span(blk.Range()),
	})
	return declaration{symbol: sym, refs: traversals(blk.Body, variableMeta, nil)}
}

func (d *document) declareOutput(blk *hclsyntax.Block) declaration {
	d.checkLabelCount(blk, 1)
	name, ok := d.label(blk, 0, "name")
	if ok {
		name = "output." + name
	}
	sym := d.add(&semantic.Symbol{
		Name: name,
		Kind: semantic.KindOutput,
		Type: semantic.PrimitiveType{Name: "any"},
		Span: span(blk.Range()),
	})
	return declaration{symbol: sym, refs: traversals(blk.Body, nil, nil)}
}

func (d *document) declareLocals(blk *hclsyntax.Block) []declaration {
	d.checkLabelCount(blk, 0)
	var decls []declaration
	for _, attr := range sortedAttributes(blk.Body) {
		sym := d.add(&semantic.Symbol{
			Name: "local." + attr.Name,
			Kind: semantic.KindVariable,
			Type: semantic.PrimitiveType{Name: "any"},
			Span: span(attr.SrcRange),
		})
		decls = append(decls, declaration{symbol: sym, refs: exprTraversals(attr.Expr, nil)})
	}
	return decls
}

// label returns the i-th label of blk, or a sentinel name when the label is
// absent, empty or not an identifier.
func (d *document) label(blk *hclsyntax.Block, i int, what string) (string, bool) {
	if i >= len(blk.Labels) || blk.Labels[i] == "" {
		rng := blk.DefRange()
		if i < len(blk.LabelRanges) {
			rng = blk.LabelRanges[i]
		}
		d.errorf(span(rng), "missing-label", "%s block is missing its %s", blk.Type, what)
		return semantic.MissingName, false
	}
	if !hclsyntax.ValidIdentifier(blk.Labels[i]) {
		d.errorf(span(blk.LabelRanges[i]), "invalid-label",
			"invalid %s %q: must start with a letter or underscore and contain only letters, digits, underscores and dashes",
			what, blk.Labels[i])
		return semantic.ErrorName, false
	}
	return blk.Labels[i], true
}

func (d *document) checkLabelCount(blk *hclsyntax.Block, want int) {
	if len(blk.Labels) > want {
		d.errorf(span(blk.LabelRanges[want]), "extra-label", "%s block expects %d labels, found %d", blk.Type, want, len(blk.Labels))
	}
}

// resolve links decl to the declarations its traversals name.
func (d *document) resolve(decl declaration) {
	seen := make(map[*semantic.Symbol]bool)
	for _, tr := range decl.refs {
		if ignoredRoots[tr.RootName()] {
			continue
		}
		addr, complete := address(tr)
		target := d.index[addr]
		if !complete || target == nil {
			d.errorf(span(tr.SourceRange()), "undeclared-reference", "reference to undeclared %q", addr)
			continue
		}
		if !seen[target] {
			seen[target] = true
			decl.symbol.References = append(decl.symbol.References, target)
		}
	}
}

// address returns the declaration address a traversal starts with. It
// reports false when the traversal is too short to name a declaration.
func address(tr hcl.Traversal) (string, bool) {
	root := tr.RootName()
	want := 1
	if root == "data" {
		want = 2
	}
	parts := []string{root}
	for _, step := range tr[1:] {
		if len(parts) > want {
			break
		}
		attr, ok := step.(hcl.TraverseAttr)
		if !ok {
			break
		}
		parts = append(parts, attr.Name)
	}
	return strings.Join(parts, "."), len(parts) > want
}

// traversals collects the variable traversals of body, descending into nested
// blocks. Attributes named in skip are not read. Roots named in iterators are
// dropped.
func traversals(body *hclsyntax.Body, skip, iterators map[string]bool) []hcl.Traversal {
	var out []hcl.Traversal
	for _, attr := range sortedAttributes(body) {
		if !skip[attr.Name] {
			out = append(out, exprTraversals(attr.Expr, iterators)...)
		}
	}
	for _, blk := range body.Blocks {
		switch blk.Type {
		case "lifecycle":
			out = append(out, traversals(blk.Body, lifecycleMeta, iterators)...)
		case "dynamic":
			scope := maps.Clone(iterators)
			if scope == nil {
				scope = make(map[string]bool)
			}
			scope[dynamicIterator(blk)] = true
			out = append(out, traversals(blk.Body, dynamicMeta, scope)...)
		default:
			out = append(out, traversals(blk.Body, nil, iterators)...)
		}
	}
	return out
}

func exprTraversals(expr hclsyntax.Expression, iterators map[string]bool) []hcl.Traversal {
	if expr == nil {
		return nil
	}
	var out []hcl.Traversal
	for _, tr := range expr.Variables() {
		if !iterators[tr.RootName()] {
			out = append(out, tr)
		}
	}
	return out
}

// dynamicIterator returns the name a dynamic block binds its elements to.
func dynamicIterator(blk *hclsyntax.Block) string {
	if attr, ok := blk.Body.Attributes["iterator"]; ok {
		if kw := hcl.ExprAsKeyword(attr.Expr); kw != "" {
			return kw
		}
	}
	if len(blk.Labels) > 0 {
		return blk.Labels[0]
	}
	return ""
}

func sortedAttributes(body *hclsyntax.Body) []*hclsyntax.Attribute {
	attrs := slices.Collect(maps.Values(body.Attributes))
	slices.SortFunc(attrs, func(a, b *hclsyntax.Attribute) int {
		return a.SrcRange.Start.Byte - b.SrcRange.Start.Byte
	})
	return attrs
}

func collectionOf(body *hclsyntax.Body, item semantic.Type) semantic.Type {
	_, count := body.Attributes["count"]
	_, forEach := body.Attributes["for_each"]
	if count || forEach {
		return semantic.ArrayType{Item: item}
	}
	return item
}

// providerName returns the provider configuration a resource selects, such
// as "aws" or "aws.west", or "" for the default.
func providerName(body *hclsyntax.Body) string {
	attr, ok := body.Attributes["provider"]
	if !ok {
		return ""
	}
	tr, diags := hcl.AbsTraversalForExpr(attr.Expr)
	if diags.HasErrors() {
		return ""
	}
	parts := []string{tr.RootName()}
	for _, step := range tr[1:] {
		if a, ok := step.(hcl.TraverseAttr); ok {
			parts = append(parts, a.Name)
		}
	}
	return strings.Join(parts, ".")
}

// literalString evaluates expr without any variables or functions and
// reports whether it is a known string.
func literalString(expr hclsyntax.Expression) (string, bool) {
	if expr == nil || len(expr.Variables()) > 0 {
		return "", false
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() || v.IsNull() || !v.IsKnown() || !v.Type().Equals(cty.String) {
		return "", false
	}
	return v.AsString(), true
}
