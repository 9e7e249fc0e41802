// Package condexpr provides parsing and validation for Prism unit manifests.
//
// A unit manifest is a declarative YAML file that describes one compilation
// unit: the predicates (build toggles) the unit may consult, the aliases it
// defines over them, and the switches that select code fragments at build
// time.
//
// # Architecture
//
// The package is organized into subpackages:
//
// - ast: Abstract Syntax Tree definitions for parsed manifests
// - parser: YAML parsing, inline expression parsing, and AST construction
// - validator: Manifest validation (structural, semantic)
// - errors: Rich error types with location and suggestions
//
// # Basic Usage
//
// Parse and validate a set of manifests:
//
//	units, err := condexpr.ParseAndValidate([]string{
//	    "units/core.yaml",
//	    "units/render.yaml",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Manifest Structure
//
// A unit manifest consists of:
//
//	manifest_version: "1.0"
//	unit: core-runtime
//	description: "Threading primitives for the runtime"
//
//	predicates:
//	  - multi_threading
//	  - web
//
//	aliases:
//	  - name: threads
//	    exported: true
//	    when: "all(multi_threading, not(web))"
//
//	switches:
//	  - name: pool-impl
//	    target: pool_gen.go
//	    arms:
//	      - when: "threads"
//	        fragment: |
//	          // parallel pool
//	      - when: "_"
//	        fragment: |
//	          // single-threaded fallback
//
// # Expression Grammar
//
// Arm and alias conditions use a small inline grammar:
//
//	all(a, b, ...)   conjunction; all() is vacuously true
//	any(a, b, ...)   disjunction; any() is vacuously false
//	not(a)           negation (exactly one operand)
//	name             predicate, or local alias if the unit defines one
//	unit.name        alias defined in another unit
//	enabled          builtin, always true
//	disabled         builtin, always false
//	_                wildcard (switch arms only, must be last)
//
// # Validation
//
// The validator performs two passes:
//
// 1. Structural: required fields, naming conventions, nesting depth, and the
// arm-ordering invariant (no arm may follow the wildcard arm)
//
// 2. Semantic: predicate declarations, alias resolution and visibility
// across units, and rejection of circular alias definitions
//
// All failures surface here, at definition time. Evaluation of a validated
// unit set is total and cannot fail.
//
// # Error Handling
//
// Parsing and validation return rich errors with location and suggestions:
//
//	if err := condexpr.Validate(units); err != nil {
//	    if errList, ok := err.(*errors.ErrorList); ok {
//	        for _, e := range errList.Errors {
//	            fmt.Println(e.Error())
//	        }
//	    }
//	}
//
// Error format:
//
//	[semantic] Undeclared predicate 'multi_threadng' in unit 'core-runtime'
//	  --> units/core.yaml:12:11
//	  |
//	  -> 12 |     when: "all(multi_threadng, not(web))"
//	  |
//	  = suggestion: Did you mean 'multi_threading'?
package condexpr
