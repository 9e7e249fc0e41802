package validator

import (
	"strings"
	"testing"

	"mercator-hq/prism/pkg/condexpr/ast"
	"mercator-hq/prism/pkg/condexpr/parser"
)

func parseUnit(t *testing.T, manifest string) *ast.Unit {
	t.Helper()
	unit, err := parser.NewParser().ParseBytes([]byte(manifest), "test.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() failed: %v", err)
	}
	return unit
}

func TestValidator_ValidUnit(t *testing.T) {
	unit := parseUnit(t, `
manifest_version: "1.0"
unit: net-stack
predicates: [tls, legacy]
aliases:
  - name: secure
    exported: true
    when: "all(tls, not(legacy))"
switches:
  - name: transport
    target: transport_gen.go
    arms:
      - when: "secure"
        fragment: "a"
    default: "b"
`)

	if err := NewValidator().Validate([]*ast.Unit{unit}); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
}

func TestStructural_ArmAfterWildcard(t *testing.T) {
	unit := parseUnit(t, `
manifest_version: "1.0"
unit: u
predicates: [a, b]
switches:
  - name: s
    target: out.go
    arms:
      - when: "a"
        fragment: "first"
      - when: "_"
        fragment: "wildcard"
      - when: "b"
        fragment: "unreachable"
`)

	err := NewStructuralValidator().Validate(unit)
	if err == nil {
		t.Fatal("Validate() succeeded, want arm-after-wildcard error")
	}
	if !strings.Contains(err.Error(), "can never match") {
		t.Errorf("error = %q, want unreachable-arm message", err.Error())
	}
}

func TestStructural_MetadataErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		wantMsg  string
	}{
		{
			name: "missing manifest version",
			manifest: `
unit: u
switches:
  - name: s
    target: out.go
    default: "x"
`,
			wantMsg: "manifest_version",
		},
		{
			name: "unsupported version",
			manifest: `
manifest_version: "9.9"
unit: u
`,
			wantMsg: "Unsupported manifest version",
		},
		{
			name: "unit name not kebab-case",
			manifest: `
manifest_version: "1.0"
unit: MyUnit
`,
			wantMsg: "kebab-case",
		},
		{
			name: "reserved predicate name",
			manifest: `
manifest_version: "1.0"
unit: u
predicates: [enabled]
`,
			wantMsg: "reserved",
		},
		{
			name: "duplicate predicate",
			manifest: `
manifest_version: "1.0"
unit: u
predicates: [a, a]
`,
			wantMsg: "Duplicate predicate",
		},
		{
			name: "alias shadows builtin",
			manifest: `
manifest_version: "1.0"
unit: u
aliases:
  - name: disabled
    when: "all()"
`,
			wantMsg: "shadows a builtin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := parseUnit(t, tt.manifest)
			err := NewStructuralValidator().Validate(unit)
			if err == nil {
				t.Fatal("Validate() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestStructural_DepthLimit(t *testing.T) {
	unit := parseUnit(t, `
manifest_version: "1.0"
unit: u
predicates: [a]
aliases:
  - name: deep
    when: "not(not(not(a)))"
`)

	err := NewStructuralValidator().WithMaxDepth(2).Validate(unit)
	if err == nil {
		t.Fatal("Validate() succeeded, want depth error")
	}
	if !strings.Contains(err.Error(), "maximum depth") {
		t.Errorf("error = %q, want depth message", err.Error())
	}
}

func TestSemantic_UndeclaredPredicate(t *testing.T) {
	unit := parseUnit(t, `
manifest_version: "1.0"
unit: u
predicates: [tracing]
switches:
  - name: s
    target: out.go
    arms:
      - when: "tracng"
        fragment: "x"
`)

	err := NewSemanticValidator().Validate([]*ast.Unit{unit})
	if err == nil {
		t.Fatal("Validate() succeeded, want undeclared predicate error")
	}
	if !strings.Contains(err.Error(), "Undeclared predicate") {
		t.Errorf("error = %q, want undeclared message", err.Error())
	}
	// Close misspelling should produce a suggestion.
	if !strings.Contains(err.Error(), "tracing") {
		t.Errorf("error = %q, want suggestion naming 'tracing'", err.Error())
	}
}

func TestSemantic_BuiltinsNeedNoDeclaration(t *testing.T) {
	unit := parseUnit(t, `
manifest_version: "1.0"
unit: u
switches:
  - name: s
    target: out.go
    arms:
      - when: "enabled"
        fragment: "x"
`)

	if err := NewSemanticValidator().Validate([]*ast.Unit{unit}); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
}

func TestSemantic_CrossUnitReferences(t *testing.T) {
	provider := parseUnit(t, `
manifest_version: "1.0"
unit: provider
predicates: [a]
aliases:
  - name: public
    exported: true
    when: "a"
  - name: hidden
    when: "a"
`)

	tests := []struct {
		name     string
		manifest string
		wantMsg  string
	}{
		{
			name: "valid exported reference",
			manifest: `
manifest_version: "1.0"
unit: consumer
switches:
  - name: s
    target: out.go
    arms:
      - when: "provider.public"
        fragment: "x"
`,
			wantMsg: "",
		},
		{
			name: "private alias across units",
			manifest: `
manifest_version: "1.0"
unit: consumer
switches:
  - name: s
    target: out.go
    arms:
      - when: "provider.hidden"
        fragment: "x"
`,
			wantMsg: "private to unit",
		},
		{
			name: "unknown unit",
			manifest: `
manifest_version: "1.0"
unit: consumer
switches:
  - name: s
    target: out.go
    arms:
      - when: "missing.public"
        fragment: "x"
`,
			wantMsg: "unknown unit",
		},
		{
			name: "unknown alias",
			manifest: `
manifest_version: "1.0"
unit: consumer
switches:
  - name: s
    target: out.go
    arms:
      - when: "provider.nope"
        fragment: "x"
`,
			wantMsg: "defines no alias",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumer := parseUnit(t, tt.manifest)
			err := NewSemanticValidator().Validate([]*ast.Unit{provider, consumer})

			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("Validate() failed: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestSemantic_DuplicateUnitNames(t *testing.T) {
	a := parseUnit(t, `
manifest_version: "1.0"
unit: shared
`)
	b := parseUnit(t, `
manifest_version: "1.0"
unit: shared
`)

	err := NewSemanticValidator().Validate([]*ast.Unit{a, b})
	if err == nil {
		t.Fatal("Validate() succeeded, want duplicate unit error")
	}
	if !strings.Contains(err.Error(), "defined twice") {
		t.Errorf("error = %q, want duplicate message", err.Error())
	}
}

func TestSemantic_AliasCycle(t *testing.T) {
	unit := parseUnit(t, `
manifest_version: "1.0"
unit: u
aliases:
  - name: ping
    when: "pong"
  - name: pong
    when: "ping"
`)

	err := NewSemanticValidator().Validate([]*ast.Unit{unit})
	if err == nil {
		t.Fatal("Validate() succeeded, want cycle error")
	}
	if !strings.Contains(err.Error(), "Circular alias definition") {
		t.Errorf("error = %q, want cycle message", err.Error())
	}
}

func TestSemantic_CrossUnitAliasCycle(t *testing.T) {
	a := parseUnit(t, `
manifest_version: "1.0"
unit: unit-a
aliases:
  - name: x
    exported: true
    when: "unit-b.y"
`)
	b := parseUnit(t, `
manifest_version: "1.0"
unit: unit-b
aliases:
  - name: y
    exported: true
    when: "unit-a.x"
`)

	err := NewSemanticValidator().Validate([]*ast.Unit{a, b})
	if err == nil {
		t.Fatal("Validate() succeeded, want cross-unit cycle error")
	}
	if !strings.Contains(err.Error(), "Circular alias definition") {
		t.Errorf("error = %q, want cycle message", err.Error())
	}
}

func TestSemantic_SelfReferenceNotCycle(t *testing.T) {
	// A diamond (two paths to the same alias) must not be reported as a
	// cycle.
	unit := parseUnit(t, `
manifest_version: "1.0"
unit: u
predicates: [base]
aliases:
  - name: low
    when: "base"
  - name: mid-a
    when: "low"
  - name: mid-b
    when: "low"
  - name: top
    when: "all(mid-a, mid-b)"
`)

	if err := NewSemanticValidator().Validate([]*ast.Unit{unit}); err != nil {
		t.Fatalf("Validate() failed on diamond: %v", err)
	}
}

func TestValidator_StructuralBlocksSemantic(t *testing.T) {
	// A structurally broken unit must not produce cascading semantic
	// errors.
	unit := parseUnit(t, `
manifest_version: "9.9"
unit: u
predicates: [a]
switches:
  - name: s
    target: out.go
    arms:
      - when: "undeclared"
        fragment: "x"
`)

	err := NewValidator().Validate([]*ast.Unit{unit})
	if err == nil {
		t.Fatal("Validate() succeeded, want structural error")
	}
	if strings.Contains(err.Error(), "Undeclared predicate") {
		t.Errorf("semantic errors reported despite structural failure: %q", err.Error())
	}
}
