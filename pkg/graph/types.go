package graph

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/matzehuels/deploygraph/pkg/semantic"
)

// Unknown is reported for resource types and module paths that cannot be
// determined statically.
const Unknown = "unknown"

// Separator joins a parent node id and a symbolic name.
const Separator = "::"

// =============================================================================
// Graph - Deployment Graph Serialization
// =============================================================================

// Graph is the deployment graph handed to presentation clients.
//
// Nodes are sorted by ID and edges by SourceID+">"+TargetID; see [Graph.Sort].
type Graph struct {
	Nodes     []Node `json:"nodes" yaml:"nodes"`
	Edges     []Edge `json:"edges" yaml:"edges"`
	HasErrors bool   `json:"hasErrors" yaml:"hasErrors"`
}

// =============================================================================
// Node - Deployable Declaration
// =============================================================================

// Kind is the closed set of node variants.
type Kind int

const (
	KindResource Kind = iota
	KindResourceCollection
	KindModule
	KindModuleCollection
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindResource:
		return "resource"
	case KindResourceCollection:
		return "resource-collection"
	case KindModule:
		return "module"
	case KindModuleCollection:
		return "module-collection"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsModule reports whether k is a single module or a module collection.
func (k Kind) IsModule() bool { return k == KindModule || k == KindModuleCollection }

// IsCollection reports whether k describes a collection.
func (k Kind) IsCollection() bool { return k == KindResourceCollection || k == KindModuleCollection }

// Node is one resource or module declaration.
//
// Ref holds the resource type for resource kinds and the module path for
// module kinds, so a node can never describe both. On the wire it is split
// into the mutually exclusive resourceType and modulePath fields.
type Node struct {
	ID           string
	ParentID     string // empty for entry-document nodes
	SymbolicName string
	Kind         Kind
	Ref          string
	Range        semantic.Range
	HasError     bool
}

// ResourceType returns the resource type of a resource node.
func (n Node) ResourceType() (string, bool) {
	if n.Kind.IsModule() {
		return "", false
	}
	return n.Ref, true
}

// ModulePath returns the module path of a module node.
func (n Node) ModulePath() (string, bool) {
	if !n.Kind.IsModule() {
		return "", false
	}
	return n.Ref, true
}

// IsCollection reports whether the declaration is a collection.
func (n Node) IsCollection() bool { return n.Kind.IsCollection() }

// NodeID composes the id of a node declared as name in a model reached
// through parentID. An empty parentID denotes the entry document.
func NodeID(parentID, name string) string {
	if parentID == "" {
		return name
	}
	return parentID + Separator + name
}

// wireNode is the field contract consumed by presentation clients.
type wireNode struct {
	ID           string         `json:"id" yaml:"id"`
	ParentID     *string        `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	SymbolicName string         `json:"symbolicName" yaml:"symbolicName"`
	ResourceType *string        `json:"resourceType" yaml:"resourceType"`
	ModulePath   *string        `json:"modulePath" yaml:"modulePath"`
	IsCollection bool           `json:"isCollection" yaml:"isCollection"`
	Range        semantic.Range `json:"range" yaml:"range"`
	HasError     bool           `json:"hasError" yaml:"hasError"`
}

var errAmbiguousKind = errors.New("node must set exactly one of resourceType and modulePath")

func (n Node) wire() wireNode {
	w := wireNode{
		ID:           n.ID,
		SymbolicName: n.SymbolicName,
		IsCollection: n.IsCollection(),
		Range:        n.Range,
		HasError:     n.HasError,
	}
	if n.ParentID != "" {
		parent := n.ParentID
		w.ParentID = &parent
	}
	ref := n.Ref
	if n.Kind.IsModule() {
		w.ModulePath = &ref
	} else {
		w.ResourceType = &ref
	}
	return w
}

func (w wireNode) node() (Node, error) {
	n := Node{
		ID:           w.ID,
		SymbolicName: w.SymbolicName,
		Range:        w.Range,
		HasError:     w.HasError,
	}
	if w.ParentID != nil {
		n.ParentID = *w.ParentID
	}
	switch {
	case w.ResourceType != nil && w.ModulePath == nil:
		n.Ref = *w.ResourceType
		n.Kind = KindResource
		if w.IsCollection {
			n.Kind = KindResourceCollection
		}
	case w.ModulePath != nil && w.ResourceType == nil:
		n.Ref = *w.ModulePath
		n.Kind = KindModule
		if w.IsCollection {
			n.Kind = KindModuleCollection
		}
	default:
		return Node{}, fmt.Errorf("node %q: %w", w.ID, errAmbiguousKind)
	}
	return n, nil
}

// MarshalJSON encodes the node in its wire shape.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.wire())
}

// UnmarshalJSON decodes the wire shape.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	decoded, err := w.node()
	if err != nil {
		return err
	}
	*n = decoded
	return nil
}

// MarshalYAML encodes the node in its wire shape.
func (n Node) MarshalYAML() (any, error) {
	return n.wire(), nil
}

// =============================================================================
// Edge - Directed Dependency
// =============================================================================

// Edge states that the declaration of SourceID depends on TargetID.
type Edge struct {
	SourceID string `json:"sourceId" yaml:"sourceId"`
	TargetID string `json:"targetId" yaml:"targetId"`
}

// sortKey is the ordering key of an edge.
func (e Edge) sortKey() string { return e.SourceID + ">" + e.TargetID }
