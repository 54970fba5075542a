// Package builder turns compiled deployment documents into a deployment graph.
//
// [Build] walks the entry document's semantic model and, breadth first, the
// models of every module it can resolve. Each model is processed as one
// batch: its resource and module declarations become nodes, and the
// dependencies among them become edges. Node ids are composed from the id of
// the module node that led to the model and the declaration's name, so ids are
// unique across documents without any shared registry.
//
// # Errors
//
// Compile errors never abort a build. They are reported through
// [graph.Graph.HasErrors] and the per-node HasError flag. Build only fails when
// ctx is cancelled or when the dependency extractor reports a target that was
// not materialized as a node, which indicates a bug rather than bad input.
//
// # Concurrency
//
// Build keeps no state between calls and may be called concurrently. With
// [Options.Concurrency] above one, dependency extraction for all models of a
// nesting level runs in parallel; nodes and edges are still assembled by a
// single goroutine.
package builder
