package validator

import (
	"fmt"
	"regexp"

	"mercator-hq/prism/pkg/condexpr/ast"
	cferrors "mercator-hq/prism/pkg/condexpr/errors"
)

var (
	// kebabCasePattern validates kebab-case names (e.g., "my-unit-name")
	kebabCasePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

	// identifierPattern validates predicate and alias identifiers
	identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

	// supportedManifestVersions defines which manifest versions this parser supports
	supportedManifestVersions = map[string]bool{
		"1.0": true,
	}
)

// defaultMaxDepth bounds expression and switch nesting.
const defaultMaxDepth = 32

// StructuralValidator validates the structural integrity of a unit.
// It checks required fields, naming conventions, arm ordering (no arm may
// follow the wildcard), and nesting depth.
type StructuralValidator struct {
	maxDepth int
	errors   *cferrors.ErrorList
}

// NewStructuralValidator creates a new structural validator.
func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{
		maxDepth: defaultMaxDepth,
		errors:   cferrors.NewErrorList(),
	}
}

// WithMaxDepth sets the maximum expression and switch nesting depth.
func (v *StructuralValidator) WithMaxDepth(depth int) *StructuralValidator {
	v.maxDepth = depth
	return v
}

// Validate performs structural validation on a unit.
// It returns an ErrorList containing all structural errors found.
func (v *StructuralValidator) Validate(unit *ast.Unit) error {
	v.errors = cferrors.NewErrorList()

	v.validateMetadata(unit)
	v.validatePredicates(unit)
	v.validateAliases(unit)
	v.validateSwitches(unit)

	return v.errors.ToError()
}

// validateMetadata validates unit metadata fields.
func (v *StructuralValidator) validateMetadata(unit *ast.Unit) {
	if unit.ManifestVersion == "" {
		v.errors.AddErrorWithSuggestion(
			cferrors.ErrorTypeStructural,
			"Missing required field 'manifest_version'",
			unit.Location,
			cferrors.SuggestMissingField("manifest_version", `"1.0"`),
		)
	} else if !supportedManifestVersions[unit.ManifestVersion] {
		v.errors.AddErrorWithSuggestion(
			cferrors.ErrorTypeStructural,
			fmt.Sprintf("Unsupported manifest version %q", unit.ManifestVersion),
			unit.Location,
			"Supported versions: 1.0",
		)
	}

	if unit.Name == "" {
		v.errors.AddErrorWithSuggestion(
			cferrors.ErrorTypeStructural,
			"Missing required field 'unit'",
			unit.Location,
			cferrors.SuggestMissingField("unit", `"my-unit"`),
		)
	} else if !kebabCasePattern.MatchString(unit.Name) {
		v.errors.AddErrorWithSuggestion(
			cferrors.ErrorTypeStructural,
			fmt.Sprintf("Unit name %q must be kebab-case (lowercase with hyphens)", unit.Name),
			unit.Location,
			"Example: 'my-unit-name'",
		)
	}
}

// validatePredicates validates predicate declarations.
func (v *StructuralValidator) validatePredicates(unit *ast.Unit) {
	seen := make(map[string]bool, len(unit.Predicates))
	for _, name := range unit.Predicates {
		if !identifierPattern.MatchString(name) {
			v.errors.AddErrorWithSuggestion(
				cferrors.ErrorTypeStructural,
				fmt.Sprintf("Invalid predicate name %q", name),
				unit.Location,
				"Predicate names start with a letter or underscore",
			)
			continue
		}
		if ast.IsBuiltinPredicate(name) {
			v.errors.AddErrorWithSuggestion(
				cferrors.ErrorTypeStructural,
				fmt.Sprintf("Predicate name %q is reserved", name),
				unit.Location,
				"The builtin predicates 'enabled' and 'disabled' are implicitly declared",
			)
			continue
		}
		if seen[name] {
			v.errors.AddError(
				cferrors.ErrorTypeStructural,
				fmt.Sprintf("Duplicate predicate declaration %q", name),
				unit.Location,
			)
		}
		seen[name] = true
	}
}

// validateAliases validates alias declarations.
func (v *StructuralValidator) validateAliases(unit *ast.Unit) {
	seen := make(map[string]bool, len(unit.Aliases))
	for _, alias := range unit.Aliases {
		if !identifierPattern.MatchString(alias.Name) {
			v.errors.AddErrorWithSuggestion(
				cferrors.ErrorTypeStructural,
				fmt.Sprintf("Invalid alias name %q", alias.Name),
				alias.Location,
				"Alias names start with a letter or underscore",
			)
			continue
		}
		if ast.IsBuiltinPredicate(alias.Name) {
			v.errors.AddErrorWithSuggestion(
				cferrors.ErrorTypeStructural,
				fmt.Sprintf("Alias name %q shadows a builtin predicate", alias.Name),
				alias.Location,
				"Pick a name other than 'enabled' or 'disabled'",
			)
			continue
		}
		if seen[alias.Name] {
			v.errors.AddError(
				cferrors.ErrorTypeStructural,
				fmt.Sprintf("Duplicate alias %q", alias.Name),
				alias.Location,
			)
		}
		seen[alias.Name] = true

		v.validateExprDepth(alias.Body, 1)
	}
}

// validateSwitches validates switch declarations, including the arm ordering
// invariant: nothing may follow the wildcard arm.
func (v *StructuralValidator) validateSwitches(unit *ast.Unit) {
	seen := make(map[string]bool, len(unit.Switches))
	for _, sw := range unit.Switches {
		if !kebabCasePattern.MatchString(sw.Name) {
			v.errors.AddErrorWithSuggestion(
				cferrors.ErrorTypeStructural,
				fmt.Sprintf("Switch name %q must be kebab-case", sw.Name),
				sw.Location,
				"Example: 'pool-impl'",
			)
		}
		if seen[sw.Name] {
			v.errors.AddError(
				cferrors.ErrorTypeStructural,
				fmt.Sprintf("Duplicate switch %q", sw.Name),
				sw.Location,
			)
		}
		seen[sw.Name] = true

		v.validateSwitchNode(sw, 1)
	}
}

// validateSwitchNode checks a switch (top-level or nested) for arm ordering
// and depth violations.
func (v *StructuralValidator) validateSwitchNode(sw *ast.SwitchNode, depth int) {
	if depth > v.maxDepth {
		v.errors.AddErrorWithSuggestion(
			cferrors.ErrorTypeStructural,
			fmt.Sprintf("Switch nesting exceeds maximum depth %d", v.maxDepth),
			sw.Location,
			"Flatten the nested switches or raise the depth limit",
		)
		return
	}

	wildcardSeen := false
	for i, arm := range sw.Arms {
		if wildcardSeen {
			// The wildcard is terminal: a later arm is unreachable and
			// rejected outright rather than silently ignored.
			v.errors.AddErrorWithSuggestion(
				cferrors.ErrorTypeStructural,
				fmt.Sprintf("Arm at index %d follows the wildcard arm and can never match", i),
				arm.Location,
				"Move the wildcard arm to the end of the switch",
			)
			continue
		}
		if arm.IsWildcard() {
			wildcardSeen = true
		} else {
			v.validateExprDepth(arm.Expr, depth)
		}

		if arm.Fragment.IsSwitch() {
			v.validateSwitchNode(arm.Fragment.Switch, depth+1)
		}
	}
}

// validateExprDepth bounds expression tree depth.
func (v *StructuralValidator) validateExprDepth(expr *ast.ExprNode, depth int) {
	if expr == nil {
		return
	}
	if depth > v.maxDepth {
		v.errors.AddErrorWithSuggestion(
			cferrors.ErrorTypeStructural,
			fmt.Sprintf("Expression nesting exceeds maximum depth %d", v.maxDepth),
			expr.Location,
			"Extract sub-expressions into aliases",
		)
		return
	}
	for _, child := range expr.Children {
		v.validateExprDepth(child, depth+1)
	}
}
