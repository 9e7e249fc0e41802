package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"mercator-hq/prism/pkg/condexpr/ast"
	cferrors "mercator-hq/prism/pkg/condexpr/errors"
)

// wildcardPattern marks the wildcard arm in manifest YAML.
const wildcardPattern = "_"

// builder constructs AST nodes from intermediate YAML structures.
// It parses inline expression strings, converts switch arms, and preserves
// source locations.
type builder struct {
	sourcePath   string
	unitName     string
	localAliases map[string]bool
	errors       *cferrors.ErrorList
}

// newBuilder creates a new AST builder for the given source file.
func newBuilder(sourcePath string) *builder {
	return &builder{
		sourcePath: sourcePath,
		errors:     cferrors.NewErrorList(),
	}
}

// buildUnit transforms a yamlUnit into an ast.Unit.
func (b *builder) buildUnit(yu *yamlUnit) (*ast.Unit, error) {
	line, column := nodeLocation(yu.node)
	unit := &ast.Unit{
		ManifestVersion: yu.ManifestVersion,
		Name:            yu.Unit,
		Description:     yu.Description,
		Predicates:      yu.Predicates,
		Aliases:         make([]*ast.Alias, 0, len(yu.Aliases)),
		Switches:        make([]*ast.SwitchNode, 0, len(yu.Switches)),
		SourceFile:      b.sourcePath,
		Location: ast.Location{
			File:   b.sourcePath,
			Line:   line,
			Column: column,
		},
	}

	b.unitName = yu.Unit

	// Bare identifiers in expressions resolve to local aliases before
	// predicates, so the alias name set is collected up front.
	b.localAliases = make(map[string]bool, len(yu.Aliases))
	for _, ya := range yu.Aliases {
		if ya.Name != "" {
			b.localAliases[ya.Name] = true
		}
	}

	// Build aliases
	for i, ya := range yu.Aliases {
		alias, err := b.buildAlias(&ya)
		if err != nil {
			b.addBuildError(err, fmt.Sprintf("Invalid alias at index %d", i), ya.node)
			continue
		}
		unit.Aliases = append(unit.Aliases, alias)
	}

	// Build switches
	for i, ys := range yu.Switches {
		sw, err := b.buildSwitch(&ys, true)
		if err != nil {
			b.addBuildError(err, fmt.Sprintf("Invalid switch at index %d", i), ys.node)
			continue
		}
		unit.Switches = append(unit.Switches, sw)
	}

	if b.errors.HasErrors() {
		return nil, b.errors
	}

	return unit, nil
}

// buildAlias transforms a yamlAlias into an ast.Alias.
func (b *builder) buildAlias(ya *yamlAlias) (*ast.Alias, error) {
	line, column := nodeLocation(ya.node)
	location := ast.Location{File: b.sourcePath, Line: line, Column: column}

	if ya.Name == "" {
		return nil, &cferrors.Error{
			Type:       cferrors.ErrorTypeStructural,
			Message:    "Alias is missing required field 'name'",
			Location:   location,
			Suggestion: cferrors.SuggestMissingField("name", "my_alias"),
		}
	}

	if ya.When == "" {
		return nil, &cferrors.Error{
			Type:       cferrors.ErrorTypeStructural,
			Message:    fmt.Sprintf("Alias %q is missing required field 'when'", ya.Name),
			Location:   location,
			Suggestion: cferrors.SuggestMissingField("when", `"all(feature_a, not(feature_b))"`),
		}
	}

	body, err := b.buildExpr(ya.When, fieldNode(ya.node, "when"))
	if err != nil {
		return nil, err
	}

	return &ast.Alias{
		Name:     ya.Name,
		Exported: ya.Exported,
		Body:     body,
		Location: location,
	}, nil
}

// buildSwitch transforms a yamlSwitch into an ast.SwitchNode.
// topLevel switches require name and target; nested switches carry neither.
func (b *builder) buildSwitch(ys *yamlSwitch, topLevel bool) (*ast.SwitchNode, error) {
	line, column := nodeLocation(ys.node)
	location := ast.Location{File: b.sourcePath, Line: line, Column: column}

	if topLevel && ys.Name == "" {
		return nil, &cferrors.Error{
			Type:       cferrors.ErrorTypeStructural,
			Message:    "Switch is missing required field 'name'",
			Location:   location,
			Suggestion: cferrors.SuggestMissingField("name", "my-switch"),
		}
	}
	if topLevel && ys.Target == "" {
		return nil, &cferrors.Error{
			Type:       cferrors.ErrorTypeStructural,
			Message:    fmt.Sprintf("Switch %q is missing required field 'target'", ys.Name),
			Location:   location,
			Suggestion: cferrors.SuggestMissingField("target", "output_gen.go"),
		}
	}
	if !topLevel && (ys.Name != "" || ys.Target != "") {
		return nil, &cferrors.Error{
			Type:       cferrors.ErrorTypeStructural,
			Message:    "Nested switches must not declare 'name' or 'target'",
			Location:   location,
			Suggestion: "Nested switches write into the enclosing switch's target",
		}
	}

	sw := &ast.SwitchNode{
		Name:     ys.Name,
		Target:   ys.Target,
		Arms:     make([]*ast.SwitchArm, 0, len(ys.Arms)+1),
		Location: location,
	}

	hasWildcardArm := false
	for i, ya := range ys.Arms {
		arm, err := b.buildArm(&ya)
		if err != nil {
			return nil, fmt.Errorf("invalid arm at index %d: %w", i, err)
		}
		if arm.IsWildcard() {
			hasWildcardArm = true
		}
		sw.Arms = append(sw.Arms, arm)
	}

	// The `default` key is sugar for a trailing wildcard arm.
	if ys.Default != nil {
		if hasWildcardArm {
			return nil, &cferrors.Error{
				Type:       cferrors.ErrorTypeStructural,
				Message:    fmt.Sprintf("Switch %q has both a %q arm and a 'default' key", ys.Name, wildcardPattern),
				Location:   location,
				Suggestion: "A switch has at most one wildcard; remove one of the two",
			}
		}
		defLine, defColumn := nodeLocation(fieldNode(ys.node, "default"))
		defLoc := ast.Location{File: b.sourcePath, Line: defLine, Column: defColumn}
		sw.Arms = append(sw.Arms, &ast.SwitchArm{
			Expr: nil,
			Fragment: &ast.Fragment{
				Kind:     ast.FragmentKindText,
				Text:     *ys.Default,
				Location: defLoc,
			},
			Location: defLoc,
		})
	}

	return sw, nil
}

// buildArm transforms a yamlArm into an ast.SwitchArm.
func (b *builder) buildArm(ya *yamlArm) (*ast.SwitchArm, error) {
	line, column := nodeLocation(ya.node)
	location := ast.Location{File: b.sourcePath, Line: line, Column: column}

	if ya.When == "" {
		return nil, &cferrors.Error{
			Type:       cferrors.ErrorTypeStructural,
			Message:    "Arm is missing required field 'when'",
			Location:   location,
			Suggestion: cferrors.SuggestMissingField("when", `"my_predicate" (or "_" for the wildcard arm)`),
		}
	}

	fragment, err := b.buildFragment(ya, location)
	if err != nil {
		return nil, err
	}

	arm := &ast.SwitchArm{
		Fragment: fragment,
		Location: location,
	}

	// `when: "_"` marks the wildcard arm; its Expr stays nil.
	if ya.When != wildcardPattern {
		expr, err := b.buildExpr(ya.When, fieldNode(ya.node, "when"))
		if err != nil {
			return nil, err
		}
		arm.Expr = expr
	}

	return arm, nil
}

// buildFragment converts an arm payload. Exactly one of fragment and switch
// must be present.
func (b *builder) buildFragment(ya *yamlArm, location ast.Location) (*ast.Fragment, error) {
	if ya.Fragment != nil && ya.Switch != nil {
		return nil, &cferrors.Error{
			Type:       cferrors.ErrorTypeStructural,
			Message:    "Arm has both 'fragment' and 'switch' payloads",
			Location:   location,
			Suggestion: "An arm carries exactly one payload; remove one of the two",
		}
	}

	if ya.Switch != nil {
		nested, err := b.buildSwitch(ya.Switch, false)
		if err != nil {
			return nil, err
		}
		return &ast.Fragment{
			Kind:     ast.FragmentKindSwitch,
			Switch:   nested,
			Location: location,
		}, nil
	}

	if ya.Fragment == nil {
		return nil, &cferrors.Error{
			Type:       cferrors.ErrorTypeStructural,
			Message:    "Arm is missing a 'fragment' or 'switch' payload",
			Location:   location,
			Suggestion: cferrors.SuggestMissingField("fragment", "|\n      // code"),
		}
	}

	return &ast.Fragment{
		Kind:     ast.FragmentKindText,
		Text:     *ya.Fragment,
		Location: location,
	}, nil
}

// buildExpr parses an inline expression string, anchoring error locations at
// the `when` field's YAML node.
func (b *builder) buildExpr(input string, whenNode *yaml.Node) (*ast.ExprNode, error) {
	line, column := nodeLocation(whenNode)
	base := ast.Location{
		File:   b.sourcePath,
		Line:   line,
		Column: column,
	}
	return parseExpr(input, b.unitName, b.localAliases, base)
}

// addBuildError records a build failure, wrapping plain errors in a
// structural error at the node's location.
func (b *builder) addBuildError(err error, context string, node *yaml.Node) {
	if cfErr, ok := err.(*cferrors.Error); ok {
		b.errors.Add(cfErr)
		return
	}
	if list, ok := err.(*cferrors.ErrorList); ok {
		for _, e := range list.Errors {
			b.errors.Add(e)
		}
		return
	}

	line, column := nodeLocation(node)
	b.errors.AddError(cferrors.ErrorTypeStructural,
		fmt.Sprintf("%s: %v", context, err),
		ast.Location{File: b.sourcePath, Line: line, Column: column})
}
