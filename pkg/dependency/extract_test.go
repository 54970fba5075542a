package dependency

import (
	"testing"

	"github.com/matzehuels/deploygraph/internal/semantictest"
	"github.com/matzehuels/deploygraph/pkg/semantic"
)

func names(syms []*semantic.Symbol) []string {
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = s.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		build func(m *semantictest.Model)
		want  map[string][]string
	}{
		{
			name:  "Empty",
			build: func(m *semantictest.Model) {},
			want:  map[string][]string{},
		},
		{
			name: "NoDependencies",
			build: func(m *semantictest.Model) {
				m.Resource("storage", "aws_s3_bucket")
				m.Module("child", "./child.tf", nil)
			},
			want: map[string][]string{"storage": {}, "child": {}},
		},
		{
			name: "Direct",
			build: func(m *semantictest.Model) {
				nic := m.Resource("nic", "azurerm_network_interface")
				vm := m.Resource("vm", "azurerm_virtual_machine")
				semantictest.Ref(vm, nic)
			},
			want: map[string][]string{"nic": {}, "vm": {"nic"}},
		},
		{
			name: "ThroughVariables",
			build: func(m *semantictest.Model) {
				vpc := m.Resource("vpc", "aws_vpc")
				id := m.Variable("vpc_id")
				alias := m.Variable("alias")
				semantictest.Ref(id, vpc)
				semantictest.Ref(alias, id)
				subnet := m.Resource("subnet", "aws_subnet")
				semantictest.Ref(subnet, alias)
			},
			want: map[string][]string{"vpc": {}, "subnet": {"vpc"}},
		},
		{
			name: "VariableCycle",
			build: func(m *semantictest.Model) {
				a := m.Variable("a")
				b := m.Variable("b")
				semantictest.Ref(a, b)
				semantictest.Ref(b, a)
				r := m.Resource("r", "t")
				semantictest.Ref(r, a)
			},
			want: map[string][]string{"r": {}},
		},
		{
			name: "DeduplicatesAndSorts",
			build: func(m *semantictest.Model) {
				z := m.Resource("z", "t")
				a := m.Resource("a", "t")
				v := m.Variable("v")
				semantictest.Ref(v, z)
				app := m.Module("app", "./app.tf", nil)
				semantictest.Ref(app, z, v, a, z)
			},
			want: map[string][]string{"z": {}, "a": {}, "app": {"a", "z"}},
		},
		{
			name: "SelfReference",
			build: func(m *semantictest.Model) {
				r := m.Resource("r", "t")
				semantictest.Ref(r, r)
			},
			want: map[string][]string{"r": {}},
		},
		{
			name: "ExcludesSentinels",
			build: func(m *semantictest.Model) {
				missing := m.Resource(semantic.MissingName, "t")
				broken := m.Module(semantic.ErrorName, "", nil)
				ok := m.Resource("ok", "t")
				semantictest.Ref(ok, missing, broken)
			},
			want: map[string][]string{"ok": {}},
		},
		{
			name: "IgnoresForeignSymbols",
			build: func(m *semantictest.Model) {
				other := semantictest.New("other.tf").Resource("elsewhere", "t")
				r := m.Resource("r", "t")
				semantictest.Ref(r, other)
			},
			want: map[string][]string{"r": {}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := semantictest.New("main.tf")
			tt.build(m)

			got := Extract(m)
			if len(got) != len(tt.want) {
				t.Fatalf("len(Extract) = %d, want %d", len(got), len(tt.want))
			}
			for sym, deps := range got {
				want, ok := tt.want[sym.Name]
				if !ok {
					t.Errorf("unexpected key %q", sym.Name)
					continue
				}
				if !equal(names(deps), want) {
					t.Errorf("deps[%s] = %v, want %v", sym.Name, names(deps), want)
				}
				for _, d := range deps {
					if !d.IsDeployable() {
						t.Errorf("deps[%s] contains non-deployable %q", sym.Name, d.Name)
					}
				}
			}
		})
	}
}
