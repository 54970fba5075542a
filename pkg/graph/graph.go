package graph

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrDuplicateNodeID is returned by [Graph.Validate] when two nodes share an id.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.Validate] when an edge starts
	// at a node that does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.Validate] when an edge ends
	// at a node that does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrUnknownParentNode is returned by [Graph.Validate] when a node's
	// parent is missing or is not a module.
	ErrUnknownParentNode = errors.New("unknown parent node")

	// ErrMalformedID is returned by [Graph.Validate] when a node id does not
	// match its parent and symbolic name.
	ErrMalformedID = errors.New("node ID does not match parent and symbolic name")
)

// =============================================================================
// Ordering and Lookup
// =============================================================================

// Sort orders nodes by id and edges by source and target id.
func (g *Graph) Sort() {
	slices.SortFunc(g.Nodes, func(a, b Node) int { return strings.Compare(a.ID, b.ID) })
	slices.SortFunc(g.Edges, func(a, b Edge) int { return strings.Compare(a.sortKey(), b.sortKey()) })
}

// Lookup returns the node with the given id. Nodes must be sorted.
func (g *Graph) Lookup(id string) (Node, bool) {
	i, ok := slices.BinarySearchFunc(g.Nodes, id, func(n Node, id string) int {
		return strings.Compare(n.ID, id)
	})
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Children returns the nodes declared in the model reached through the
// module node parentID, in id order. An empty parentID returns the
// entry-document nodes.
func (g *Graph) Children(parentID string) []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.ParentID == parentID {
			out = append(out, n)
		}
	}
	return out
}

// Validate checks the structural invariants of a built graph: unique ids,
// ids composed from parent and symbolic name, parents that are module
// nodes, and edges whose endpoints exist.
func (g *Graph) Validate() error {
	byID := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := byID[n.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
		}
		byID[n.ID] = n
	}
	for _, n := range g.Nodes {
		if n.ID != NodeID(n.ParentID, n.SymbolicName) {
			return fmt.Errorf("%w: %s", ErrMalformedID, n.ID)
		}
		if n.ParentID == "" {
			continue
		}
		if p, ok := byID[n.ParentID]; !ok || !p.Kind.IsModule() {
			return fmt.Errorf("%w: %s (parent of %s)", ErrUnknownParentNode, n.ParentID, n.ID)
		}
	}
	for _, e := range g.Edges {
		if _, ok := byID[e.SourceID]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSourceNode, e.SourceID)
		}
		if _, ok := byID[e.TargetID]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTargetNode, e.TargetID)
		}
	}
	return nil
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalGraph converts a graph to indented JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes g as indented JSON. Empty node and edge lists are
// written as [] rather than null.
func WriteJSON(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(normalized(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML writes g as YAML using the same field names as JSON.
func WriteYAML(g *Graph, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(normalized(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Write encodes g in the named format: "json", "yaml" or "dot".
func Write(g *Graph, format string, w io.Writer) error {
	switch format {
	case "json":
		return WriteJSON(g, w)
	case "yaml":
		return WriteYAML(g, w)
	case "dot":
		_, err := io.WriteString(w, ToDOT(g))
		return err
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// WriteFile writes g to path in the named format.
// The file is created with 0644 permissions.
func WriteFile(g *Graph, format, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, format, f)
}

// ReadJSON decodes a JSON graph.
func ReadJSON(r io.Reader) (*Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &g, nil
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (*Graph, error) {
	return ReadJSON(bytes.NewReader(data))
}

// Fingerprint returns the SHA-256 hex digest of the compact JSON encoding of g.
// Identical graphs always produce identical fingerprints.
func Fingerprint(g *Graph) (string, error) {
	data, err := json.Marshal(normalized(g))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func normalized(g *Graph) *Graph {
	if g.Nodes != nil && g.Edges != nil {
		return g
	}
	out := *g
	if out.Nodes == nil {
		out.Nodes = []Node{}
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}
	return &out
}
