package graph

import (
	"bytes"
	"fmt"
	"strings"
)

// ToDOT converts a graph to Graphviz DOT source. Nodes declared inside a
// module are grouped in a cluster named after the module node, nested as
// deeply as the modules are. Nodes with errors are outlined in red and
// collections use a double border.
//
// The output is text only; no layout is computed.
func ToDOT(g *Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph deployment {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=rounded];\n")

	children := make(map[string][]Node)
	for _, n := range g.Nodes {
		children[n.ParentID] = append(children[n.ParentID], n)
	}
	writeScope(&buf, children, "", 1)

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.SourceID, e.TargetID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeScope(buf *bytes.Buffer, children map[string][]Node, parentID string, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range children[parentID] {
		fmt.Fprintf(buf, "%s%q [%s];\n", indent, n.ID, strings.Join(dotAttrs(n), ", "))
		if len(children[n.ID]) == 0 {
			continue
		}
		fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, "cluster_"+n.ID)
		fmt.Fprintf(buf, "%s  label=%q;\n", indent, n.SymbolicName)
		writeScope(buf, children, n.ID, depth+1)
		fmt.Fprintf(buf, "%s}\n", indent)
	}
}

func dotAttrs(n Node) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.SymbolicName+"\n"+n.Ref)}
	if n.Kind.IsModule() {
		attrs = append(attrs, "shape=component")
	}
	if n.IsCollection() {
		attrs = append(attrs, "peripheries=2")
	}
	if n.HasError {
		attrs = append(attrs, "color=red")
	}
	return attrs
}
