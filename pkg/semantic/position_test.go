package semantic

import "testing"

func TestComputeLineStarts(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want LineStarts
	}{
		{"empty", "", LineStarts{0}},
		{"single line", "abc", LineStarts{0}},
		{"lf", "a\nbc\n", LineStarts{0, 2, 5}},
		{"crlf", "a\r\nb", LineStarts{0, 3}},
		{"cr", "a\rb", LineStarts{0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLineStarts([]byte(tt.src))
			if len(got) != len(tt.want) {
				t.Fatalf("ComputeLineStarts(%q) = %v, want %v", tt.src, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ComputeLineStarts(%q) = %v, want %v", tt.src, got, tt.want)
				}
			}
		})
	}
}

func TestToRange(t *testing.T) {
	ls := ComputeLineStarts([]byte("resource {\n  a = 1\n}\n"))

	got := ToRange(Span{Start: 0, End: 20}, ls)
	want := Range{Start: Position{0, 0}, End: Position{2, 1}}
	if got != want {
		t.Errorf("ToRange = %+v, want %+v", got, want)
	}

	inner := ToRange(Span{Start: 13, End: 18}, ls)
	if inner.Start != (Position{1, 2}) || inner.End != (Position{1, 7}) {
		t.Errorf("ToRange(inner) = %+v", inner)
	}

	// Stable for identical inputs.
	if ToRange(Span{Start: 13, End: 18}, ls) != inner {
		t.Error("ToRange is not stable")
	}
}

func TestPositionAtClamps(t *testing.T) {
	ls := LineStarts{0, 4}
	if got := ls.PositionAt(-3); got != (Position{0, 0}) {
		t.Errorf("PositionAt(-3) = %+v", got)
	}
	if got := ls.PositionAt(10); got != (Position{1, 6}) {
		t.Errorf("PositionAt(10) = %+v", got)
	}
}

func TestAreOverlapping(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want bool
	}{
		{"disjoint", Span{0, 5}, Span{6, 9}, false},
		{"adjacent", Span{0, 5}, Span{5, 9}, false},
		{"nested", Span{0, 10}, Span{2, 3}, true},
		{"partial", Span{0, 5}, Span{4, 9}, true},
		{"zero width inside", Span{0, 5}, Span{3, 3}, true},
		{"zero width at end", Span{0, 5}, Span{5, 5}, true},
		{"zero width outside", Span{0, 5}, Span{7, 7}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AreOverlapping(tt.a, tt.b); got != tt.want {
				t.Errorf("AreOverlapping(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := AreOverlapping(tt.b, tt.a); got != tt.want {
				t.Errorf("AreOverlapping is not symmetric for %v, %v", tt.a, tt.b)
			}
		})
	}
}

func TestTypeHelpers(t *testing.T) {
	ref := &TypeReference{Type: "aws_vpc", Provider: "aws"}

	if got := ResourceTypeRef(ResourceType{Ref: ref}); got != ref {
		t.Errorf("ResourceTypeRef(single) = %v", got)
	}
	if got := ResourceTypeRef(ArrayType{Item: ResourceType{Ref: ref}}); got != ref {
		t.Errorf("ResourceTypeRef(array) = %v", got)
	}
	if got := ResourceTypeRef(ModuleType{}); got != nil {
		t.Errorf("ResourceTypeRef(module) = %v, want nil", got)
	}
	if !IsResourceCollection(ArrayType{Item: ResourceType{}}) {
		t.Error("IsResourceCollection(array of resource) = false")
	}
	if IsResourceCollection(ResourceType{}) {
		t.Error("IsResourceCollection(resource) = true")
	}
	if !IsModuleCollection(ArrayType{Item: ModuleType{}}) {
		t.Error("IsModuleCollection(array of module) = false")
	}
	if ref.FullyQualifiedType() != "aws/aws_vpc" {
		t.Errorf("FullyQualifiedType = %q", ref.FullyQualifiedType())
	}
	if (TypeReference{Type: "x"}).FullyQualifiedType() != "x" {
		t.Error("FullyQualifiedType without provider should be the bare type")
	}
}
