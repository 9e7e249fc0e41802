package validator

import (
	"fmt"
	"strings"

	"mercator-hq/prism/pkg/condexpr/ast"
	cferrors "mercator-hq/prism/pkg/condexpr/errors"
)

// SemanticValidator validates semantic correctness across a set of units.
// It checks that alias references resolve to visible aliases, that
// expressions only consult declared predicates, and that the alias reference
// graph is acyclic. Cycle rejection happens here, at definition time, so
// evaluation never has to guard against unbounded alias expansion.
type SemanticValidator struct {
	units  map[string]*ast.Unit
	errors *cferrors.ErrorList
}

// NewSemanticValidator creates a new semantic validator.
func NewSemanticValidator() *SemanticValidator {
	return &SemanticValidator{
		errors: cferrors.NewErrorList(),
	}
}

// Validate performs semantic validation across all units in a build.
func (v *SemanticValidator) Validate(units []*ast.Unit) error {
	v.errors = cferrors.NewErrorList()
	v.units = make(map[string]*ast.Unit, len(units))

	for _, unit := range units {
		if prev, ok := v.units[unit.Name]; ok {
			v.errors.AddErrorWithSuggestion(
				cferrors.ErrorTypeSemantic,
				fmt.Sprintf("Unit %q is defined twice (also in %s)", unit.Name, prev.SourceFile),
				unit.Location,
				"Unit names are global to a build; rename one of the two",
			)
			continue
		}
		v.units[unit.Name] = unit
	}

	for _, unit := range units {
		v.validateUnit(unit)
	}

	v.validateAliasCycles(units)

	return v.errors.ToError()
}

// validateUnit checks every expression in a unit.
func (v *SemanticValidator) validateUnit(unit *ast.Unit) {
	for _, alias := range unit.Aliases {
		v.validateExpr(unit, alias.Body)
	}
	for _, sw := range unit.Switches {
		v.validateSwitchNode(unit, sw)
	}
}

// validateSwitchNode checks arm expressions, descending into nested switches.
func (v *SemanticValidator) validateSwitchNode(unit *ast.Unit, sw *ast.SwitchNode) {
	for _, arm := range sw.Arms {
		if arm.Expr != nil {
			v.validateExpr(unit, arm.Expr)
		}
		if arm.Fragment.IsSwitch() {
			v.validateSwitchNode(unit, arm.Fragment.Switch)
		}
	}
}

// validateExpr checks predicate declarations and alias resolution for every
// leaf of an expression owned by the given unit.
func (v *SemanticValidator) validateExpr(unit *ast.Unit, expr *ast.ExprNode) {
	expr.Walk(func(n *ast.ExprNode) bool {
		switch n.Kind {
		case ast.ExprKindPredicate:
			v.validatePredicateRef(unit, n)
		case ast.ExprKindAlias:
			v.validateAliasRef(unit, n)
		}
		return true
	})
}

// validatePredicateRef requires predicates to be declared by the consulting
// unit, keeping toggle usage introspectable per unit.
func (v *SemanticValidator) validatePredicateRef(unit *ast.Unit, n *ast.ExprNode) {
	if unit.DeclaresPredicate(n.Predicate) {
		return
	}

	valid := append([]string{}, unit.Predicates...)
	for _, alias := range unit.Aliases {
		valid = append(valid, alias.Name)
	}

	v.errors.AddErrorWithSuggestion(
		cferrors.ErrorTypeSemantic,
		fmt.Sprintf("Undeclared predicate %q in unit %q", n.Predicate, unit.Name),
		n.Location,
		cferrors.SuggestName(n.Predicate, valid),
	)
}

// validateAliasRef resolves an alias reference and enforces visibility.
func (v *SemanticValidator) validateAliasRef(unit *ast.Unit, n *ast.ExprNode) {
	target, ok := v.units[n.AliasUnit]
	if !ok {
		valid := make([]string, 0, len(v.units))
		for name := range v.units {
			valid = append(valid, name)
		}
		v.errors.AddErrorWithSuggestion(
			cferrors.ErrorTypeSemantic,
			fmt.Sprintf("Alias reference %q names unknown unit %q", n.AliasPath(), n.AliasUnit),
			n.Location,
			cferrors.SuggestName(n.AliasUnit, valid),
		)
		return
	}

	alias := target.GetAlias(n.AliasName)
	if alias == nil {
		valid := make([]string, 0, len(target.Aliases))
		for _, a := range target.Aliases {
			valid = append(valid, a.Name)
		}
		v.errors.AddErrorWithSuggestion(
			cferrors.ErrorTypeSemantic,
			fmt.Sprintf("Unit %q defines no alias %q", n.AliasUnit, n.AliasName),
			n.Location,
			cferrors.SuggestName(n.AliasName, valid),
		)
		return
	}

	if !alias.Exported && target.Name != unit.Name {
		v.errors.AddErrorWithSuggestion(
			cferrors.ErrorTypeSemantic,
			fmt.Sprintf("Alias %q is private to unit %q", n.AliasPath(), n.AliasUnit),
			n.Location,
			fmt.Sprintf("Mark the alias exported in %s to reference it from other units", target.SourceFile),
		)
	}
}

// validateAliasCycles performs DFS over the alias reference graph and rejects
// cycles. Aliases evaluate by walking back into their bodies, so a cycle
// would mean unbounded recursive expansion at evaluation time.
func (v *SemanticValidator) validateAliasCycles(units []*ast.Unit) {
	visited := make(map[string]bool)
	inProgress := make(map[string]bool)

	for _, unit := range units {
		for _, alias := range unit.Aliases {
			key := aliasKey(unit.Name, alias.Name)
			if !visited[key] {
				v.checkAliasCycle(unit, alias, visited, inProgress, []string{})
			}
		}
	}
}

// checkAliasCycle performs DFS from one alias definition.
func (v *SemanticValidator) checkAliasCycle(unit *ast.Unit, alias *ast.Alias, visited, inProgress map[string]bool, path []string) {
	key := aliasKey(unit.Name, alias.Name)
	visited[key] = true
	inProgress[key] = true
	path = append(path, key)

	for _, ref := range alias.Body.AliasRefs() {
		refKey := aliasKey(ref.AliasUnit, ref.AliasName)

		if inProgress[refKey] {
			cycle := append(append([]string{}, path...), refKey)
			v.errors.AddErrorWithSuggestion(
				cferrors.ErrorTypeSemantic,
				fmt.Sprintf("Circular alias definition: %s", strings.Join(cycle, " -> ")),
				alias.Location,
				"Remove the circular dependency between aliases",
			)
			continue
		}

		if visited[refKey] {
			continue
		}

		refUnit, ok := v.units[ref.AliasUnit]
		if !ok {
			continue // Unresolvable reference, reported separately
		}
		refAlias := refUnit.GetAlias(ref.AliasName)
		if refAlias == nil {
			continue
		}

		v.checkAliasCycle(refUnit, refAlias, visited, inProgress, path)
	}

	inProgress[key] = false
}

// aliasKey builds the canonical "unit.alias" key for cycle tracking.
func aliasKey(unit, alias string) string {
	return unit + "." + alias
}
