package parser

import (
	"fmt"
	"strings"

	"mercator-hq/prism/pkg/condexpr/ast"
	cferrors "mercator-hq/prism/pkg/condexpr/errors"
)

// exprParser is a recursive-descent parser for the inline condition
// expression grammar:
//
//	expr  := 'all' '(' args ')' | 'any' '(' args ')' | 'not' '(' expr ')' | path
//	args  := [ expr { ',' expr } [ ',' ] ]
//	path  := ident [ '.' ident ]
//	ident := letter-or-underscore { letter | digit | '_' | '-' }
//
// A bare identifier resolves to a locally defined alias if the current unit
// declares one with that name, otherwise to a predicate. A dotted path always
// resolves to an alias in the named unit. The parser only builds the tree;
// whether referenced aliases exist and are visible is the semantic
// validator's concern.
type exprParser struct {
	input string
	pos   int

	// Resolution context
	unitName     string
	localAliases map[string]bool

	// Base location of the expression string within the manifest,
	// used to compute absolute error locations.
	base ast.Location
}

// parseExpr parses a single condition expression string into an AST.
// unitName and localAliases provide the resolution context for bare
// identifiers; base is the manifest location of the expression string.
func parseExpr(input, unitName string, localAliases map[string]bool, base ast.Location) (*ast.ExprNode, error) {
	p := &exprParser{
		input:        input,
		unitName:     unitName,
		localAliases: localAliases,
		base:         base,
	}

	p.skipSpaces()
	if p.eof() {
		return nil, p.errorf(p.pos, "Empty condition expression", "Write a predicate name, alias path, or all(...)/any(...)/not(...)")
	}

	expr, err := p.parse()
	if err != nil {
		return nil, err
	}

	p.skipSpaces()
	if !p.eof() {
		return nil, p.errorf(p.pos, fmt.Sprintf("Unexpected trailing input %q", p.remainder()), "Remove the trailing text after the expression")
	}

	return expr, nil
}

// parse parses one expression starting at the current position.
func (p *exprParser) parse() (*ast.ExprNode, error) {
	p.skipSpaces()
	start := p.pos

	ident, err := p.ident()
	if err != nil {
		return nil, err
	}

	p.skipSpaces()

	// Operator form: ident followed by '('
	if p.peek() == '(' {
		switch ident {
		case "all", "any":
			return p.parseList(ident, start)
		case "not":
			return p.parseNot(start)
		default:
			return nil, p.errorf(start,
				fmt.Sprintf("Unknown operator %q", ident),
				cferrors.SuggestOperator(ident))
		}
	}

	// Dotted alias path: unit.alias
	if p.peek() == '.' {
		p.pos++
		aliasName, err := p.ident()
		if err != nil {
			return nil, err
		}
		if p.peek() == '.' {
			return nil, p.errorf(p.pos,
				fmt.Sprintf("Alias path %q has too many segments", ident+"."+aliasName+"."),
				"Alias paths have exactly two segments: 'unit.alias'")
		}
		return &ast.ExprNode{
			Kind:      ast.ExprKindAlias,
			AliasUnit: ident,
			AliasName: aliasName,
			Location:  p.locationAt(start),
		}, nil
	}

	// Bare identifier: local alias if one is declared, predicate otherwise.
	if p.localAliases[ident] {
		return &ast.ExprNode{
			Kind:      ast.ExprKindAlias,
			AliasUnit: p.unitName,
			AliasName: ident,
			Location:  p.locationAt(start),
		}, nil
	}

	return &ast.ExprNode{
		Kind:      ast.ExprKindPredicate,
		Predicate: ident,
		Location:  p.locationAt(start),
	}, nil
}

// parseList parses the argument list of all(...) or any(...).
// An empty argument list is valid: all() is vacuously true, any() vacuously
// false.
func (p *exprParser) parseList(op string, start int) (*ast.ExprNode, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}

	kind := ast.ExprKindAll
	if op == "any" {
		kind = ast.ExprKindAny
	}

	node := &ast.ExprNode{
		Kind:     kind,
		Location: p.locationAt(start),
	}

	p.skipSpaces()
	if p.peek() == ')' {
		p.pos++
		return node, nil
	}

	for {
		child, err := p.parse()
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)

		p.skipSpaces()
		switch p.peek() {
		case ',':
			p.pos++
			p.skipSpaces()
			// Trailing comma before the closing paren is allowed.
			if p.peek() == ')' {
				p.pos++
				return node, nil
			}
		case ')':
			p.pos++
			return node, nil
		default:
			return nil, p.errorf(p.pos,
				fmt.Sprintf("Expected ',' or ')' in %s(...), got %q", op, p.currentChar()),
				"Separate operands with commas and close the operator with ')'")
		}
	}
}

// parseNot parses not(expr). Negation takes exactly one operand.
func (p *exprParser) parseNot(start int) (*ast.ExprNode, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}

	p.skipSpaces()
	if p.peek() == ')' {
		return nil, p.errorf(p.pos, "not() requires exactly one operand", "Write not(expression)")
	}

	child, err := p.parse()
	if err != nil {
		return nil, err
	}

	p.skipSpaces()
	if p.peek() == ',' {
		return nil, p.errorf(p.pos, "not(...) takes a single operand", "Wrap multiple operands in all(...) or any(...)")
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}

	return &ast.ExprNode{
		Kind:     ast.ExprKindNot,
		Children: []*ast.ExprNode{child},
		Location: p.locationAt(start),
	}, nil
}

// ident consumes an identifier at the current position.
func (p *exprParser) ident() (string, error) {
	p.skipSpaces()
	start := p.pos

	if p.eof() || !isIdentStart(p.input[p.pos]) {
		return "", p.errorf(p.pos,
			fmt.Sprintf("Expected identifier, got %q", p.currentChar()),
			"Identifiers start with a letter or underscore")
	}

	for !p.eof() && isIdentChar(p.input[p.pos]) {
		p.pos++
	}

	return p.input[start:p.pos], nil
}

func (p *exprParser) expect(c byte) error {
	p.skipSpaces()
	if p.eof() || p.input[p.pos] != c {
		return p.errorf(p.pos,
			fmt.Sprintf("Expected %q, got %q", string(c), p.currentChar()),
			"")
	}
	p.pos++
	return nil
}

func (p *exprParser) skipSpaces() {
	for !p.eof() {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *exprParser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *exprParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) currentChar() string {
	if p.eof() {
		return "end of expression"
	}
	return string(p.input[p.pos])
}

func (p *exprParser) remainder() string {
	rest := p.input[p.pos:]
	if len(rest) > 20 {
		rest = rest[:20] + "..."
	}
	return rest
}

// locationAt computes the absolute manifest location for an offset within the
// expression string, accounting for newlines in multi-line expressions.
func (p *exprParser) locationAt(offset int) ast.Location {
	line := p.base.Line
	column := p.base.Column + offset

	if idx := strings.LastIndexByte(p.input[:offset], '\n'); idx >= 0 {
		line += strings.Count(p.input[:offset], "\n")
		column = offset - idx
	}

	return ast.Location{
		File:   p.base.File,
		Line:   line,
		Column: column,
	}
}

// errorf builds a syntax error pointing at the given offset.
func (p *exprParser) errorf(offset int, message, suggestion string) error {
	return &cferrors.Error{
		Type:       cferrors.ErrorTypeSyntax,
		Message:    fmt.Sprintf("%s (in expression %q)", message, p.input),
		Location:   p.locationAt(offset),
		Suggestion: suggestion,
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || c == '-' || (c >= '0' && c <= '9')
}
