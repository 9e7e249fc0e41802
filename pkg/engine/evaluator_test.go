package engine

import (
	"errors"
	"testing"

	"mercator-hq/prism/pkg/condexpr/ast"
)

func pred(name string) *ast.ExprNode {
	return &ast.ExprNode{Kind: ast.ExprKindPredicate, Predicate: name}
}

func negate(child *ast.ExprNode) *ast.ExprNode {
	return &ast.ExprNode{Kind: ast.ExprKindNot, Children: []*ast.ExprNode{child}}
}

func allOf(children ...*ast.ExprNode) *ast.ExprNode {
	return &ast.ExprNode{Kind: ast.ExprKindAll, Children: children}
}

func anyOf(children ...*ast.ExprNode) *ast.ExprNode {
	return &ast.ExprNode{Kind: ast.ExprKindAny, Children: children}
}

func aliasRef(unit, name string) *ast.ExprNode {
	return &ast.ExprNode{Kind: ast.ExprKindAlias, AliasUnit: unit, AliasName: name}
}

func textFragment(text string) *ast.Fragment {
	return &ast.Fragment{Kind: ast.FragmentKindText, Text: text}
}

// countingOracle records every predicate the evaluator consults.
type countingOracle struct {
	values  map[string]bool
	lookups map[string]int
}

func newCountingOracle(values map[string]bool) *countingOracle {
	return &countingOracle{
		values:  values,
		lookups: make(map[string]int),
	}
}

func (o *countingOracle) Lookup(name string) (bool, bool) {
	o.lookups[name]++
	value, known := o.values[name]
	return value, known
}

func newTestEvaluator(t *testing.T, unit *ast.Unit, oracle Oracle) *Evaluator {
	t.Helper()
	registry := NewRegistry()
	if err := registry.AddUnit(unit, oracle); err != nil {
		t.Fatalf("AddUnit() failed: %v", err)
	}
	return NewEvaluator(registry, nil)
}

func TestEvaluator_Basics(t *testing.T) {
	oracle := UnitOracle(nil, map[string]bool{"a": true, "b": false})
	eval := newTestEvaluator(t, &ast.Unit{Name: "u"}, oracle)

	tests := []struct {
		name string
		expr *ast.ExprNode
		want bool
	}{
		{"true predicate", pred("a"), true},
		{"false predicate", pred("b"), false},
		{"unknown predicate reads false", pred("missing"), false},
		{"builtin enabled", pred("enabled"), true},
		{"builtin disabled", pred("disabled"), false},
		{"negation", negate(pred("b")), true},
		{"double negation", negate(negate(pred("a"))), true},
		{"empty all is vacuously true", allOf(), true},
		{"empty any is vacuously false", anyOf(), false},
		{"all true", allOf(pred("a"), pred("enabled")), true},
		{"all with false operand", allOf(pred("a"), pred("b")), false},
		{"any with true operand", anyOf(pred("b"), pred("a")), true},
		{"any all false", anyOf(pred("b"), pred("missing")), false},
		{"nested", allOf(pred("a"), anyOf(pred("b"), negate(pred("b")))), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateIn("u", tt.expr)
			if err != nil {
				t.Fatalf("EvaluateIn() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateIn(%s) = %v, want %v", tt.expr.String(), got, tt.want)
			}
		})
	}
}

func TestEvaluator_ShortCircuit(t *testing.T) {
	t.Run("all stops at first false", func(t *testing.T) {
		oracle := newCountingOracle(map[string]bool{"x": false, "y": true})
		eval := newTestEvaluator(t, &ast.Unit{Name: "u"}, oracle)

		got, err := eval.EvaluateIn("u", allOf(pred("x"), pred("y")))
		if err != nil {
			t.Fatalf("EvaluateIn() failed: %v", err)
		}
		if got {
			t.Error("EvaluateIn() = true, want false")
		}
		if oracle.lookups["y"] != 0 {
			t.Errorf("operand after first false was consulted %d times", oracle.lookups["y"])
		}
	})

	t.Run("any stops at first true", func(t *testing.T) {
		oracle := newCountingOracle(map[string]bool{"x": true, "y": false})
		eval := newTestEvaluator(t, &ast.Unit{Name: "u"}, oracle)

		got, err := eval.EvaluateIn("u", anyOf(pred("x"), pred("y")))
		if err != nil {
			t.Fatalf("EvaluateIn() failed: %v", err)
		}
		if !got {
			t.Error("EvaluateIn() = false, want true")
		}
		if oracle.lookups["y"] != 0 {
			t.Errorf("operand after first true was consulted %d times", oracle.lookups["y"])
		}
	})
}

func TestEvaluator_AliasDefinitionSiteBinding(t *testing.T) {
	// The alias reads its defining unit's toggles, never the caller's.
	provider := &ast.Unit{
		Name: "provider",
		Aliases: []*ast.Alias{
			{Name: "fast", Exported: true, Body: pred("turbo")},
		},
	}
	consumer := &ast.Unit{Name: "consumer"}

	eng, err := New([]*ast.Unit{provider, consumer}, &Config{
		UnitToggles: map[string]map[string]bool{
			"provider": {"turbo": true},
			"consumer": {"turbo": false},
		},
	}, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	got, err := eng.EvaluateIn("consumer", aliasRef("provider", "fast"))
	if err != nil {
		t.Fatalf("EvaluateIn() failed: %v", err)
	}
	if !got {
		t.Error("alias read the caller's toggles, want the defining unit's")
	}

	// The same predicate name evaluated directly in the consumer is false.
	got, err = eng.EvaluateIn("consumer", pred("turbo"))
	if err != nil {
		t.Fatalf("EvaluateIn() failed: %v", err)
	}
	if got {
		t.Error("consumer's own toggle = true, want false")
	}
}

func TestEvaluator_UnitTogglesOverrideGlobal(t *testing.T) {
	eng, err := New([]*ast.Unit{{Name: "u"}}, &Config{
		Toggles:     map[string]bool{"flag": true},
		UnitToggles: map[string]map[string]bool{"u": {"flag": false}},
	}, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	got, err := eng.EvaluateIn("u", pred("flag"))
	if err != nil {
		t.Fatalf("EvaluateIn() failed: %v", err)
	}
	if got {
		t.Error("unit override lost to the global toggle map")
	}
}

func TestEvaluator_AliasMemoization(t *testing.T) {
	oracle := newCountingOracle(map[string]bool{"p": true})
	unit := &ast.Unit{
		Name: "u",
		Aliases: []*ast.Alias{
			{Name: "cached", Body: pred("p")},
		},
	}
	eval := newTestEvaluator(t, unit, oracle)

	expr := allOf(aliasRef("u", "cached"), aliasRef("u", "cached"))
	got, err := eval.EvaluateIn("u", expr)
	if err != nil {
		t.Fatalf("EvaluateIn() failed: %v", err)
	}
	if !got {
		t.Error("EvaluateIn() = false, want true")
	}
	if oracle.lookups["p"] != 1 {
		t.Errorf("alias body evaluated %d times, want 1", oracle.lookups["p"])
	}
}

func TestEvaluator_UnknownReferences(t *testing.T) {
	eng, err := New([]*ast.Unit{{Name: "u"}}, nil, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if _, err := eng.EvaluateIn("ghost", pred("a")); err == nil {
		t.Error("EvaluateIn() succeeded for unknown unit")
	} else {
		var unknownUnit *UnknownUnitError
		if !errors.As(err, &unknownUnit) {
			t.Errorf("error type = %T, want *UnknownUnitError", err)
		}
	}

	if _, err := eng.EvaluateIn("u", aliasRef("u", "ghost")); err == nil {
		t.Error("EvaluateIn() succeeded for unknown alias")
	} else {
		var unknownAlias *UnknownAliasError
		if !errors.As(err, &unknownAlias) {
			t.Errorf("error type = %T, want *UnknownAliasError", err)
		}
	}
}

func TestEngine_New_Errors(t *testing.T) {
	if _, err := New(nil, nil, nil); !errors.Is(err, ErrNoUnitsLoaded) {
		t.Errorf("New(nil units) error = %v, want ErrNoUnitsLoaded", err)
	}

	units := []*ast.Unit{{Name: "u"}, {Name: "u"}}
	if _, err := New(units, nil, nil); !errors.Is(err, ErrDuplicateUnit) {
		t.Errorf("New(duplicate units) error = %v, want ErrDuplicateUnit", err)
	}
}

func TestHandle_CallShapes(t *testing.T) {
	unit := &ast.Unit{
		Name: "u",
		Aliases: []*ast.Alias{
			{Name: "on", Exported: true, Body: pred("enabled")},
			{Name: "off", Body: pred("disabled")},
		},
	}
	eng, err := New([]*ast.Unit{unit}, nil, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	on, err := eng.Alias("u.on")
	if err != nil {
		t.Fatalf("Alias() failed: %v", err)
	}
	off, err := eng.Alias("u.off")
	if err != nil {
		t.Fatalf("Alias() failed: %v", err)
	}

	if on.Path() != "u.on" {
		t.Errorf("Path() = %q, want %q", on.Path(), "u.on")
	}
	if !on.Exported() {
		t.Error("Exported() = false, want true")
	}
	if off.Exported() {
		t.Error("Exported() = true, want false")
	}

	if got, err := on.Bool(); err != nil || !got {
		t.Errorf("Bool() = (%v, %v), want (true, nil)", got, err)
	}

	frag := textFragment("payload")

	if got, err := on.Gate(frag); err != nil || got != frag {
		t.Errorf("Gate() on true alias = (%v, %v), want the fragment", got, err)
	}
	if got, err := off.Gate(frag); err != nil || got != nil {
		t.Errorf("Gate() on false alias = (%v, %v), want (nil, nil)", got, err)
	}

	then, els := textFragment("then"), textFragment("else")
	if got, err := on.Choose(then, els); err != nil || got != then {
		t.Errorf("Choose() on true alias = (%v, %v), want then", got, err)
	}
	if got, err := off.Choose(then, els); err != nil || got != els {
		t.Errorf("Choose() on false alias = (%v, %v), want else", got, err)
	}
}

func TestEngine_Alias_InvalidPath(t *testing.T) {
	eng, err := New([]*ast.Unit{{Name: "u"}}, nil, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	for _, path := range []string{"", "noDot", ".leading", "trailing."} {
		if _, err := eng.Alias(path); err == nil {
			t.Errorf("Alias(%q) succeeded, want error", path)
		}
	}
}

func TestOracle_Chain(t *testing.T) {
	oracle := Chain(
		MapOracle{"a": true},
		MapOracle{"a": false, "b": true},
	)

	if value, known := oracle.Lookup("a"); !value || !known {
		t.Errorf("Lookup(a) = (%v, %v), want earlier oracle to win", value, known)
	}
	if value, known := oracle.Lookup("b"); !value || !known {
		t.Errorf("Lookup(b) = (%v, %v), want (true, true)", value, known)
	}
	if _, known := oracle.Lookup("c"); known {
		t.Error("Lookup(c) known = true, want false")
	}
}
