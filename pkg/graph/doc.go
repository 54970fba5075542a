// Package graph provides the deployment graph types and their serialization.
//
// This package defines the wire format exchanged with presentation clients.
// The field names are a cross-component contract:
//
//	Node:  { id, parentId?, symbolicName, resourceType, modulePath, isCollection, range, hasError }
//	Edge:  { sourceId, targetId }
//	Graph: { nodes, edges, hasErrors }
//
// # Node Identity
//
// Entry-document nodes use their symbolic name as id. Nodes declared in a
// module's document are prefixed by the module node's id:
//
//	module.net               // entry document
//	module.net::aws_subnet.a // declared in the document module.net points at
//
// Use [NodeID] to compose ids.
//
// # Node Kinds
//
// [Node] stores its variant as a [Kind] (resource, resource collection,
// module, module collection) with a single Ref field. When encoded, Ref
// becomes either resourceType or modulePath and the other field is null.
//
// # Serialization
//
//	graph.WriteJSON(g, os.Stdout)      // indented JSON
//	graph.WriteYAML(g, os.Stdout)      // YAML, same field names
//	dot := graph.ToDOT(g)              // Graphviz source with module clusters
//	g, err := graph.ReadJSON(r)        // decode
//	etag, _ := graph.Fingerprint(g)    // stable content hash
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
