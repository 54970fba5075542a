// Package semantic defines the read-only view of a compiled deployment document.
//
// A [Model] exposes the declarations of one document as [Symbol] values, the
// diagnostics reported while compiling it, and the line-start table needed to
// turn byte offsets into editor positions. Module declarations can lazily
// resolve the model of the document they reference through [Model.NestedModel].
//
// # Types
//
// A symbol's declared [Type] is a closed set of variants:
//
//	ResourceType{Ref}            single resource
//	ArrayType{Item: ResourceType} resource collection
//	ModuleType{}                 single module
//	ArrayType{Item: ModuleType}  module collection
//	PrimitiveType, ErrorType     everything else
//
// # Sentinel Names
//
// Compilers substitute [MissingName] or [ErrorName] for declarations whose name
// could not be recovered. Consumers should treat such symbols as non-existent;
// the underlying problem is already reported as a diagnostic.
//
// # Positions
//
// [Span] values are byte offsets. [ToRange] converts them to zero-based
// line/character pairs using a document's [LineStarts].
package semantic
