package engine

import (
	"log/slog"

	"mercator-hq/prism/pkg/condexpr/ast"
)

// Selection describes the outcome of selecting one switch.
type Selection struct {
	// Fragment is the winning payload, or nil when no arm matched and the
	// switch has no wildcard (the empty result).
	Fragment *ast.Fragment

	// ArmIndex is the index of the committed arm, or -1 for the empty result.
	ArmIndex int

	// Wildcard reports whether the wildcard arm won.
	Wildcard bool

	// Condition is the committed arm's condition text, or "_" for the
	// wildcard. Used by decision reports.
	Condition string

	// ArmsEvaluated counts how many arm conditions were evaluated before
	// the switch committed.
	ArmsEvaluated int
}

// Empty reports whether the switch produced no output.
func (s *Selection) Empty() bool {
	return s.Fragment == nil
}

// Selector walks a switch's arms in written order and commits to the first
// arm whose condition holds. Arms after the committed one are never visited;
// their fragments stay untouched by the rest of the toolchain.
type Selector struct {
	eval   *Evaluator
	logger *slog.Logger
}

// NewSelector creates a selector sharing the given evaluator.
func NewSelector(eval *Evaluator, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{
		eval:   eval,
		logger: logger,
	}
}

// Select evaluates a switch in the context of the named unit.
//
// A constant switch (single wildcard arm) commits without consulting any
// predicate. A switch with no matching arm and no wildcard yields the empty
// result rather than an error.
func (s *Selector) Select(unit string, sw *ast.SwitchNode) (*Selection, error) {
	for i, arm := range sw.Arms {
		if arm.IsWildcard() {
			s.logger.Debug("switch committed to wildcard",
				"unit", unit,
				"switch", sw.Name,
				"arm", i,
			)
			return &Selection{
				Fragment:      arm.Fragment,
				ArmIndex:      i,
				Wildcard:      true,
				Condition:     "_",
				ArmsEvaluated: i,
			}, nil
		}

		value, err := s.eval.EvaluateIn(unit, arm.Expr)
		if err != nil {
			return nil, err
		}
		if value {
			s.logger.Debug("switch committed",
				"unit", unit,
				"switch", sw.Name,
				"arm", i,
				"condition", arm.Expr.String(),
			)
			return &Selection{
				Fragment:      arm.Fragment,
				ArmIndex:      i,
				Condition:     arm.Expr.String(),
				ArmsEvaluated: i + 1,
			}, nil
		}
	}

	s.logger.Debug("switch matched no arm",
		"unit", unit,
		"switch", sw.Name,
	)
	return &Selection{
		Fragment:      nil,
		ArmIndex:      -1,
		ArmsEvaluated: len(sw.Arms),
	}, nil
}

// Resolve selects a switch and then resolves nested switches inside the
// committed fragment until literal text (or the empty result) remains.
// Only fragments on the committed path are ever visited; every selection
// along the way is appended to the returned trail, outermost first.
func (s *Selector) Resolve(unit string, sw *ast.SwitchNode) (string, []*Selection, error) {
	var trail []*Selection

	current := sw
	for {
		selection, err := s.Select(unit, current)
		if err != nil {
			return "", trail, err
		}
		trail = append(trail, selection)

		if selection.Empty() {
			return "", trail, nil
		}
		if selection.Fragment.IsText() {
			return selection.Fragment.Text, trail, nil
		}
		current = selection.Fragment.Switch
	}
}
