package ast

import (
	"fmt"
	"strings"
)

// ExprKind represents the kind of a condition expression node.
type ExprKind string

const (
	ExprKindPredicate ExprKind = "predicate" // Opaque named toggle, answered by the oracle
	ExprKindNot       ExprKind = "not"       // Negation of a single child
	ExprKindAll       ExprKind = "all"       // AND of children; vacuously true when empty
	ExprKindAny       ExprKind = "any"       // OR of children; vacuously false when empty
	ExprKindAlias     ExprKind = "alias"     // Reference to a named alias, evaluated in its defining unit
)

// Builtin predicate names. These are reserved and always resolve to the same
// value regardless of oracle state.
const (
	PredicateEnabled  = "enabled"
	PredicateDisabled = "disabled"
)

// ExprNode represents a condition expression in the AST.
// Expressions are boolean formulas over named predicates, negation,
// conjunction, disjunction, and alias references. Trees are finite and
// acyclic; cycles through alias bodies are rejected by the semantic
// validator before any evaluation takes place.
type ExprNode struct {
	Kind      ExprKind    // Kind of expression
	Predicate string      // Predicate name (for Predicate nodes)
	AliasUnit string      // Defining unit name (for Alias nodes)
	AliasName string      // Alias name within the defining unit (for Alias nodes)
	Children  []*ExprNode // Child expressions (for Not/All/Any)
	Location  Location    // Source location
}

// IsLeaf returns true if this node has no children (predicate or alias reference).
func (e *ExprNode) IsLeaf() bool {
	return e.Kind == ExprKindPredicate || e.Kind == ExprKindAlias
}

// IsLogical returns true if this is a logical operator (not/all/any).
func (e *ExprNode) IsLogical() bool {
	return e.Kind == ExprKindNot || e.Kind == ExprKindAll || e.Kind == ExprKindAny
}

// AliasPath returns the dotted "unit.alias" path for an alias reference node.
func (e *ExprNode) AliasPath() string {
	if e.AliasUnit == "" {
		return e.AliasName
	}
	return e.AliasUnit + "." + e.AliasName
}

// String renders the expression back in the inline text grammar.
// The output re-parses to an equivalent tree; it is used in error messages
// and decision reports.
func (e *ExprNode) String() string {
	switch e.Kind {
	case ExprKindPredicate:
		return e.Predicate
	case ExprKindAlias:
		return e.AliasPath()
	case ExprKindNot:
		if len(e.Children) != 1 {
			return "not(?)"
		}
		return "not(" + e.Children[0].String() + ")"
	case ExprKindAll, ExprKindAny:
		parts := make([]string, 0, len(e.Children))
		for _, child := range e.Children {
			parts = append(parts, child.String())
		}
		return string(e.Kind) + "(" + strings.Join(parts, ", ") + ")"
	default:
		return fmt.Sprintf("<%s>", e.Kind)
	}
}

// Walk visits the expression tree depth-first, calling fn for every node.
// Traversal stops at the first node for which fn returns false.
func (e *ExprNode) Walk(fn func(*ExprNode) bool) bool {
	if e == nil {
		return true
	}
	if !fn(e) {
		return false
	}
	for _, child := range e.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// Predicates returns the set of predicate names referenced anywhere in the
// expression, excluding builtins. The result order is the depth-first
// encounter order with duplicates removed.
func (e *ExprNode) Predicates() []string {
	seen := make(map[string]bool)
	var names []string
	e.Walk(func(n *ExprNode) bool {
		if n.Kind == ExprKindPredicate && !IsBuiltinPredicate(n.Predicate) && !seen[n.Predicate] {
			seen[n.Predicate] = true
			names = append(names, n.Predicate)
		}
		return true
	})
	return names
}

// AliasRefs returns all alias reference nodes in the expression in
// depth-first encounter order.
func (e *ExprNode) AliasRefs() []*ExprNode {
	var refs []*ExprNode
	e.Walk(func(n *ExprNode) bool {
		if n.Kind == ExprKindAlias {
			refs = append(refs, n)
		}
		return true
	})
	return refs
}

// IsBuiltinPredicate returns true if name is one of the reserved builtin
// predicates (enabled/disabled).
func IsBuiltinPredicate(name string) bool {
	return name == PredicateEnabled || name == PredicateDisabled
}
