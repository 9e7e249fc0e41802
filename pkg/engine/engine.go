package engine

import (
	"log/slog"

	"mercator-hq/prism/pkg/condexpr/ast"
)

// Engine bundles the registry, evaluator, and selector for one evaluation
// pass. It is constructed from a validated unit set and an immutable toggle
// configuration, and is discarded when the pass completes.
type Engine struct {
	registry *Registry
	eval     *Evaluator
	selector *Selector
	logger   *slog.Logger
}

// Config supplies the oracle state for an evaluation pass.
type Config struct {
	// Toggles is the global toggle map applied to every unit.
	Toggles map[string]bool

	// UnitToggles holds per-unit overrides, keyed by unit name. A unit's
	// oracle consults its overrides before the global map, which is how
	// two units can see different answers for the same predicate name.
	UnitToggles map[string]map[string]bool
}

// New builds an engine over a validated unit set. Each unit's aliases are
// bound to that unit's oracle snapshot at definition time.
func New(units []*ast.Unit, cfg *Config, logger *slog.Logger) (*Engine, error) {
	if len(units) == 0 {
		return nil, ErrNoUnitsLoaded
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	registry := NewRegistry()
	for _, unit := range units {
		oracle := UnitOracle(cfg.UnitToggles[unit.Name], cfg.Toggles)
		if err := registry.AddUnit(unit, oracle); err != nil {
			return nil, err
		}
	}

	eval := NewEvaluator(registry, logger)
	return &Engine{
		registry: registry,
		eval:     eval,
		selector: NewSelector(eval, logger),
		logger:   logger,
	}, nil
}

// Registry returns the engine's registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// EvaluateIn evaluates an expression in the named unit's context.
func (e *Engine) EvaluateIn(unit string, expr *ast.ExprNode) (bool, error) {
	return e.eval.EvaluateIn(unit, expr)
}

// Select selects one switch in the named unit's context.
func (e *Engine) Select(unit string, sw *ast.SwitchNode) (*Selection, error) {
	return e.selector.Select(unit, sw)
}

// Resolve selects a switch and resolves nested switches on the committed
// path down to literal text.
func (e *Engine) Resolve(unit string, sw *ast.SwitchNode) (string, []*Selection, error) {
	return e.selector.Resolve(unit, sw)
}

// Alias resolves a dotted "unit.alias" path to a handle.
func (e *Engine) Alias(path string) (*Handle, error) {
	return e.eval.Alias(path)
}
