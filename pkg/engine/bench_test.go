package engine

import (
	"testing"

	"mercator-hq/prism/pkg/condexpr/ast"
)

func BenchmarkEvaluate(b *testing.B) {
	oracle := UnitOracle(nil, map[string]bool{
		"tls":     true,
		"http2":   true,
		"tracing": false,
	})

	registry := NewRegistry()
	if err := registry.AddUnit(&ast.Unit{Name: "u"}, oracle); err != nil {
		b.Fatal(err)
	}
	eval := NewEvaluator(registry, nil)

	expr := allOf(
		pred("tls"),
		negate(pred("tracing")),
		anyOf(pred("http2"), pred("enabled")),
	)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := eval.EvaluateIn("u", expr); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSelect(b *testing.B) {
	oracle := UnitOracle(nil, map[string]bool{"b": true})

	registry := NewRegistry()
	if err := registry.AddUnit(&ast.Unit{Name: "u"}, oracle); err != nil {
		b.Fatal(err)
	}
	selector := NewSelector(NewEvaluator(registry, nil), nil)

	sw := &ast.SwitchNode{
		Arms: []*ast.SwitchArm{
			arm(pred("a"), textFragment("one")),
			arm(pred("b"), textFragment("two")),
			arm(pred("c"), textFragment("three")),
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := selector.Select("u", sw); err != nil {
			b.Fatal(err)
		}
	}
}
