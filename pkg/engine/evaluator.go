package engine

import (
	"fmt"
	"log/slog"

	"mercator-hq/prism/pkg/condexpr/ast"
)

// Evaluator reduces a condition expression tree to a single boolean against
// the registry's oracle snapshots. Evaluation is deterministic and, for
// validated trees, total.
//
// Short-circuiting is part of the contract, not an optimization: downstream
// branch selection only materializes the chosen side, so an operand that
// boolean algebra does not require must never be evaluated.
type Evaluator struct {
	registry *Registry
	logger   *slog.Logger

	// memo caches alias results per (unit, alias). The oracle snapshot is
	// immutable for the whole pass, so memoization cannot change outcomes.
	memo map[string]bool
}

// NewEvaluator creates an evaluator over the given registry.
func NewEvaluator(registry *Registry, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		registry: registry,
		logger:   logger,
		memo:     make(map[string]bool),
	}
}

// EvaluateIn evaluates an expression in the context of the named unit.
// Predicate leaves consult the unit's oracle; alias references jump to the
// defining unit's context regardless of the caller's.
func (e *Evaluator) EvaluateIn(unit string, expr *ast.ExprNode) (bool, error) {
	scope, err := e.registry.scope(unit)
	if err != nil {
		return false, err
	}
	return e.evaluate(scope, expr)
}

// evaluate walks the expression tree within a unit scope.
func (e *Evaluator) evaluate(scope *unitScope, expr *ast.ExprNode) (bool, error) {
	if expr == nil {
		return false, &EvaluationError{Unit: scope.unit.Name, Message: "nil expression"}
	}

	switch expr.Kind {
	case ast.ExprKindPredicate:
		// Unknown toggles read as false, same as an unset build flag.
		value, _ := scope.oracle.Lookup(expr.Predicate)
		return value, nil

	case ast.ExprKindNot:
		if len(expr.Children) != 1 {
			return false, &EvaluationError{
				Unit:    scope.unit.Name,
				Message: fmt.Sprintf("not() has %d operands, want 1", len(expr.Children)),
			}
		}
		value, err := e.evaluate(scope, expr.Children[0])
		if err != nil {
			return false, err
		}
		return !value, nil

	case ast.ExprKindAll:
		// Vacuously true when empty; stops at the first false operand.
		for _, child := range expr.Children {
			value, err := e.evaluate(scope, child)
			if err != nil {
				return false, err
			}
			if !value {
				return false, nil
			}
		}
		return true, nil

	case ast.ExprKindAny:
		// Vacuously false when empty; stops at the first true operand.
		for _, child := range expr.Children {
			value, err := e.evaluate(scope, child)
			if err != nil {
				return false, err
			}
			if value {
				return true, nil
			}
		}
		return false, nil

	case ast.ExprKindAlias:
		return e.evaluateAlias(expr.AliasUnit, expr.AliasName)

	default:
		return false, &EvaluationError{
			Unit:    scope.unit.Name,
			Message: fmt.Sprintf("unknown expression kind %q", expr.Kind),
		}
	}
}

// evaluateAlias evaluates an alias in its defining unit's scope. The caller's
// scope is deliberately not a parameter: definition-site binding means the
// alias body always reads the toggles of the unit that declared it.
func (e *Evaluator) evaluateAlias(unit, name string) (bool, error) {
	alias, err := e.registry.Lookup(unit, name)
	if err != nil {
		return false, err
	}

	key := alias.Path()
	if value, ok := e.memo[key]; ok {
		return value, nil
	}

	value, err := e.evaluate(alias.scope, alias.body)
	if err != nil {
		return false, err
	}

	e.memo[key] = value
	e.logger.Debug("alias evaluated",
		"alias", key,
		"value", value,
	)
	return value, nil
}

// Alias resolves a dotted "unit.alias" path to a handle sharing this
// evaluator. The handle supports the three alias call shapes.
func (e *Evaluator) Alias(path string) (*Handle, error) {
	alias, err := e.registry.Resolve(path)
	if err != nil {
		return nil, err
	}
	return &Handle{alias: alias, eval: e}, nil
}

// Handle is a reference to a defined alias. It carries no copy of the alias
// body; every call shape funnels into the same definition-site evaluation.
type Handle struct {
	alias *Alias
	eval  *Evaluator
}

// Path returns the canonical path of the referenced alias.
func (h *Handle) Path() string {
	return h.alias.Path()
}

// Exported reports whether the referenced alias is part of its unit's public
// contract.
func (h *Handle) Exported() bool {
	return h.alias.Exported
}

// Bool returns the alias's boolean value directly.
func (h *Handle) Bool() (bool, error) {
	return h.eval.evaluateAlias(h.alias.Unit, h.alias.Name)
}

// Gate returns the fragment if the alias holds, or nil if it does not.
// This is the single-payload call shape: the rejected fragment is simply
// never produced.
func (h *Handle) Gate(fragment *ast.Fragment) (*ast.Fragment, error) {
	value, err := h.Bool()
	if err != nil {
		return nil, err
	}
	if !value {
		return nil, nil
	}
	return fragment, nil
}

// Choose returns then if the alias holds and els otherwise, the if/else call
// shape. Both shapes share one underlying evaluation with Bool and Gate.
func (h *Handle) Choose(then, els *ast.Fragment) (*ast.Fragment, error) {
	value, err := h.Bool()
	if err != nil {
		return nil, err
	}
	if value {
		return then, nil
	}
	return els, nil
}
