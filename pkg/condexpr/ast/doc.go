// Package ast provides Abstract Syntax Tree (AST) definitions for Prism
// condition expressions and unit manifests.
//
// The AST represents the parsed structure of a unit manifest, enabling
// validation, evaluation, and code generation. All AST nodes preserve source
// location information for precise error reporting.
//
// # Core Types
//
// Unit: Root AST node containing metadata, predicate declarations, aliases,
// and switches
//
// Alias: Named, optionally exported binding of an identifier to an expression
//
// ExprNode: Condition expression (predicate, not, all, any, alias reference)
//
// SwitchNode: Ordered list of (expression, fragment) arms plus an optional
// trailing wildcard arm
//
// Fragment: Opaque payload content (literal text or a nested switch)
//
// Location: Source location (file, line, column)
//
// # AST Structure
//
// The AST mirrors the manifest YAML structure:
//
//	Unit
//	├── Metadata (name, description, manifest version)
//	├── Predicates ([]string)
//	├── Aliases ([]*Alias)
//	│   └── Body (*ExprNode)
//	└── Switches ([]*SwitchNode)
//	    └── Arms ([]*SwitchArm)
//	        ├── Expr (*ExprNode; nil for the wildcard arm)
//	        └── Fragment (text or nested SwitchNode)
//
// # Immutability
//
// AST nodes should be treated as immutable after construction. The parser
// builds the AST once; validators and the engine inspect it without
// modification, which is what allows independent units to be evaluated in
// parallel without synchronization.
package ast
