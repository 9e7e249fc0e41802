package parser

import (
	"strings"
	"testing"

	"mercator-hq/prism/pkg/condexpr/ast"
	cferrors "mercator-hq/prism/pkg/condexpr/errors"
)

func parseTestExpr(t *testing.T, input string) (*ast.ExprNode, error) {
	t.Helper()
	base := ast.Location{File: "test.yaml", Line: 1, Column: 1}
	return parseExpr(input, "test-unit", map[string]bool{"local-alias": true}, base)
}

func TestParseExpr_Predicate(t *testing.T) {
	expr, err := parseTestExpr(t, "tls")
	if err != nil {
		t.Fatalf("parseExpr() failed: %v", err)
	}

	if expr.Kind != ast.ExprKindPredicate {
		t.Errorf("Kind = %q, want %q", expr.Kind, ast.ExprKindPredicate)
	}
	if expr.Predicate != "tls" {
		t.Errorf("Predicate = %q, want %q", expr.Predicate, "tls")
	}
}

func TestParseExpr_LocalAlias(t *testing.T) {
	expr, err := parseTestExpr(t, "local-alias")
	if err != nil {
		t.Fatalf("parseExpr() failed: %v", err)
	}

	if expr.Kind != ast.ExprKindAlias {
		t.Fatalf("Kind = %q, want %q", expr.Kind, ast.ExprKindAlias)
	}
	if expr.AliasUnit != "test-unit" {
		t.Errorf("AliasUnit = %q, want %q", expr.AliasUnit, "test-unit")
	}
	if expr.AliasName != "local-alias" {
		t.Errorf("AliasName = %q, want %q", expr.AliasName, "local-alias")
	}
}

func TestParseExpr_DottedAliasPath(t *testing.T) {
	expr, err := parseTestExpr(t, "net-stack.secure-transport")
	if err != nil {
		t.Fatalf("parseExpr() failed: %v", err)
	}

	if expr.Kind != ast.ExprKindAlias {
		t.Fatalf("Kind = %q, want %q", expr.Kind, ast.ExprKindAlias)
	}
	if got := expr.AliasPath(); got != "net-stack.secure-transport" {
		t.Errorf("AliasPath() = %q, want %q", got, "net-stack.secure-transport")
	}
}

func TestParseExpr_Compound(t *testing.T) {
	expr, err := parseTestExpr(t, "all(tls, any(http2, http3), not(legacy))")
	if err != nil {
		t.Fatalf("parseExpr() failed: %v", err)
	}

	if expr.Kind != ast.ExprKindAll {
		t.Fatalf("Kind = %q, want %q", expr.Kind, ast.ExprKindAll)
	}
	if len(expr.Children) != 3 {
		t.Fatalf("len(Children) = %d, want 3", len(expr.Children))
	}

	if expr.Children[1].Kind != ast.ExprKindAny {
		t.Errorf("Children[1].Kind = %q, want %q", expr.Children[1].Kind, ast.ExprKindAny)
	}
	if expr.Children[2].Kind != ast.ExprKindNot {
		t.Errorf("Children[2].Kind = %q, want %q", expr.Children[2].Kind, ast.ExprKindNot)
	}
	if len(expr.Children[2].Children) != 1 {
		t.Errorf("not() operand count = %d, want 1", len(expr.Children[2].Children))
	}
}

func TestParseExpr_EmptyOperandLists(t *testing.T) {
	tests := []struct {
		input string
		kind  ast.ExprKind
	}{
		{"all()", ast.ExprKindAll},
		{"any()", ast.ExprKindAny},
		{"all( )", ast.ExprKindAll},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := parseTestExpr(t, tt.input)
			if err != nil {
				t.Fatalf("parseExpr(%q) failed: %v", tt.input, err)
			}
			if expr.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", expr.Kind, tt.kind)
			}
			if len(expr.Children) != 0 {
				t.Errorf("len(Children) = %d, want 0", len(expr.Children))
			}
		})
	}
}

func TestParseExpr_TrailingComma(t *testing.T) {
	expr, err := parseTestExpr(t, "all(a, b,)")
	if err != nil {
		t.Fatalf("parseExpr() failed: %v", err)
	}
	if len(expr.Children) != 2 {
		t.Errorf("len(Children) = %d, want 2", len(expr.Children))
	}
}

func TestParseExpr_Builtins(t *testing.T) {
	for _, input := range []string{"enabled", "disabled"} {
		expr, err := parseTestExpr(t, input)
		if err != nil {
			t.Fatalf("parseExpr(%q) failed: %v", input, err)
		}
		if expr.Kind != ast.ExprKindPredicate {
			t.Errorf("Kind = %q, want %q", expr.Kind, ast.ExprKindPredicate)
		}
		if !ast.IsBuiltinPredicate(expr.Predicate) {
			t.Errorf("IsBuiltinPredicate(%q) = false, want true", expr.Predicate)
		}
	}
}

func TestParseExpr_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"empty", "", "Empty condition expression"},
		{"not zero operands", "not()", "exactly one operand"},
		{"not two operands", "not(a, b)", "single operand"},
		{"unknown operator", "nand(a, b)", "Unknown operator"},
		{"unclosed list", "all(a, b", "Expected ',' or ')'"},
		{"trailing input", "a b", "Unexpected trailing input"},
		{"three segments", "a.b.c", "too many segments"},
		{"bad start", "1tls", "Expected identifier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTestExpr(t, tt.input)
			if err == nil {
				t.Fatalf("parseExpr(%q) succeeded, want error", tt.input)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}

			var cfErr *cferrors.Error
			if perr, ok := err.(*cferrors.Error); ok {
				cfErr = perr
			} else {
				t.Fatalf("error type = %T, want *cferrors.Error", err)
			}
			if cfErr.Type != cferrors.ErrorTypeSyntax {
				t.Errorf("error Type = %q, want %q", cfErr.Type, cferrors.ErrorTypeSyntax)
			}
		})
	}
}

func TestParseExpr_MultilineLocation(t *testing.T) {
	base := ast.Location{File: "test.yaml", Line: 10, Column: 5}
	input := "all(a,\n  b"

	_, err := parseExpr(input, "u", nil, base)
	if err == nil {
		t.Fatal("parseExpr() succeeded, want error")
	}

	perr, ok := err.(*cferrors.Error)
	if !ok {
		t.Fatalf("error type = %T, want *cferrors.Error", err)
	}
	if perr.Location.Line != 11 {
		t.Errorf("error Line = %d, want 11", perr.Location.Line)
	}
}

func TestParseExpr_StringRoundTrip(t *testing.T) {
	inputs := []string{
		"tls",
		"not(tls)",
		"all(a, b, c)",
		"any()",
		"all(tls, any(http2, http3), not(legacy))",
		"net-stack.secure-transport",
	}

	for _, input := range inputs {
		expr, err := parseTestExpr(t, input)
		if err != nil {
			t.Fatalf("parseExpr(%q) failed: %v", input, err)
		}

		rendered := expr.String()
		reparsed, err := parseTestExpr(t, rendered)
		if err != nil {
			t.Fatalf("re-parse of %q failed: %v", rendered, err)
		}
		if reparsed.String() != rendered {
			t.Errorf("String() not stable: %q -> %q", rendered, reparsed.String())
		}
	}
}
