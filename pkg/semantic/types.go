package semantic

// Type is the declared type of a symbol. The set of implementations is closed.
type Type interface {
	typeName() string
}

// TypeReference identifies a resource type.
type TypeReference struct {
	// Type is the resource type name, e.g. "aws_s3_bucket".
	Type string
	// Provider is the provider local name, e.g. "aws". May be empty.
	Provider string
}

// FullyQualifiedType returns the provider-qualified type name.
func (r TypeReference) FullyQualifiedType() string {
	if r.Provider == "" {
		return r.Type
	}
	return r.Provider + "/" + r.Type
}

// ResourceType is the type of a single resource. Ref is nil when the resource
// type could not be determined statically.
type ResourceType struct{ Ref *TypeReference }

// ModuleType is the type of a single module.
type ModuleType struct{}

// ArrayType is a collection of Item.
type ArrayType struct{ Item Type }

// PrimitiveType covers values such as strings, numbers and objects.
type PrimitiveType struct{ Name string }

// ErrorType marks a declaration whose type failed to resolve.
type ErrorType struct{}

func (ResourceType) typeName() string { return "resource" }
func (ModuleType) typeName() string   { return "module" }
func (t ArrayType) typeName() string {
	if t.Item == nil {
		return "array"
	}
	return t.Item.typeName() + "[]"
}
func (t PrimitiveType) typeName() string { return t.Name }
func (ErrorType) typeName() string       { return "error" }

// TypeName returns a short display name for t.
func TypeName(t Type) string {
	if t == nil {
		return "any"
	}
	return t.typeName()
}

// ResourceTypeRef returns the type reference of a single resource or of the
// element of a resource collection.
func ResourceTypeRef(t Type) *TypeReference {
	switch t := t.(type) {
	case ResourceType:
		return t.Ref
	case ArrayType:
		if rt, ok := t.Item.(ResourceType); ok {
			return rt.Ref
		}
	}
	return nil
}

// IsResourceCollection reports whether t is an array of resources.
func IsResourceCollection(t Type) bool {
	at, ok := t.(ArrayType)
	if !ok {
		return false
	}
	_, ok = at.Item.(ResourceType)
	return ok
}

// IsModuleCollection reports whether t is an array of modules.
func IsModuleCollection(t Type) bool {
	at, ok := t.(ArrayType)
	if !ok {
		return false
	}
	_, ok = at.Item.(ModuleType)
	return ok
}
