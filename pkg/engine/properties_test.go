package engine

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"mercator-hq/prism/pkg/condexpr/ast"
)

func evalWith(t *testing.T, toggles map[string]bool, expr *ast.ExprNode) bool {
	t.Helper()
	eval := newTestEvaluator(t, &ast.Unit{Name: "u"}, MapOracle(toggles))
	value, err := eval.EvaluateIn("u", expr)
	if err != nil {
		t.Fatalf("EvaluateIn() failed: %v", err)
	}
	return value
}

func TestEvaluator_Properties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("double negation is identity", prop.ForAll(
		func(x bool) bool {
			toggles := map[string]bool{"x": x}
			return evalWith(t, toggles, negate(negate(pred("x")))) == x
		},
		gen.Bool(),
	))

	properties.Property("all matches conjunction", prop.ForAll(
		func(a, b, c bool) bool {
			toggles := map[string]bool{"a": a, "b": b, "c": c}
			expr := allOf(pred("a"), pred("b"), pred("c"))
			return evalWith(t, toggles, expr) == (a && b && c)
		},
		gen.Bool(), gen.Bool(), gen.Bool(),
	))

	properties.Property("any matches disjunction", prop.ForAll(
		func(a, b, c bool) bool {
			toggles := map[string]bool{"a": a, "b": b, "c": c}
			expr := anyOf(pred("a"), pred("b"), pred("c"))
			return evalWith(t, toggles, expr) == (a || b || c)
		},
		gen.Bool(), gen.Bool(), gen.Bool(),
	))

	properties.Property("De Morgan over all", prop.ForAll(
		func(a, b bool) bool {
			toggles := map[string]bool{"a": a, "b": b}
			lhs := negate(allOf(pred("a"), pred("b")))
			rhs := anyOf(negate(pred("a")), negate(pred("b")))
			return evalWith(t, toggles, lhs) == evalWith(t, toggles, rhs)
		},
		gen.Bool(), gen.Bool(),
	))

	properties.Property("alias is transparent to its body", prop.ForAll(
		func(a, b bool) bool {
			body := anyOf(pred("a"), negate(pred("b")))
			unit := &ast.Unit{
				Name:    "u",
				Aliases: []*ast.Alias{{Name: "combo", Body: body}},
			}
			toggles := map[string]bool{"a": a, "b": b}
			eval := newTestEvaluator(t, unit, MapOracle(toggles))

			direct, err := eval.EvaluateIn("u", body)
			if err != nil {
				return false
			}
			viaAlias, err := eval.EvaluateIn("u", aliasRef("u", "combo"))
			if err != nil {
				return false
			}
			return direct == viaAlias
		},
		gen.Bool(), gen.Bool(),
	))

	properties.TestingRun(t)
}
