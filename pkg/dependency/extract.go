// Package dependency computes the resource and module dependencies of a single
// semantic model.
//
// A declaration depends on every resource or module it references, either
// directly or through the variables, locals, outputs and parameters it reads.
// Dependencies never cross documents: only symbols of the model being
// extracted are ever reported.
package dependency

import (
	"slices"
	"strings"

	"github.com/matzehuels/deploygraph/pkg/semantic"
)

// Dependencies maps each resource or module declaration of a model to the
// resource and module declarations it depends on, sorted by name.
type Dependencies map[*semantic.Symbol][]*semantic.Symbol

// Extract returns the dependencies of every resource and module in m.
//
// Symbols named [semantic.MissingName] or [semantic.ErrorName] are neither
// keys nor targets. A declaration never depends on itself. Extract does not
// fail; a model without deployable declarations yields an empty map.
func Extract(m semantic.Model) Dependencies {
	symbols := m.Symbols()
	inModel := make(map[*semantic.Symbol]bool, len(symbols))
	for _, s := range symbols {
		inModel[s] = true
	}

	deps := make(Dependencies)
	for _, s := range symbols {
		if !s.IsDeployable() || s.IsSentinel() {
			continue
		}
		deps[s] = collect(s, inModel)
	}
	return deps
}

// collect walks the reference graph from root. Resource and module references
// terminate a path; anything else is expanded so that indirect dependencies
// through intermediate values are reported.
func collect(root *semantic.Symbol, inModel map[*semantic.Symbol]bool) []*semantic.Symbol {
	seen := map[*semantic.Symbol]bool{root: true}
	stack := slices.Clone(root.References)
	slices.Reverse(stack)

	var out []*semantic.Symbol
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if seen[s] || !inModel[s] {
			continue
		}
		seen[s] = true

		switch {
		case s.IsSentinel():
		case s.IsDeployable():
			out = append(out, s)
		default:
			for i := len(s.References) - 1; i >= 0; i-- {
				stack = append(stack, s.References[i])
			}
		}
	}

	slices.SortFunc(out, func(a, b *semantic.Symbol) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}
