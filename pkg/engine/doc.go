// Package engine evaluates condition expressions and selects switch arms
// against an immutable oracle snapshot.
//
// The engine is the middle of the Prism pipeline: pkg/condexpr parses and
// validates unit manifests into ASTs, this package reduces their expressions
// to booleans and picks winning fragments, and pkg/generate writes the
// winners out.
//
// # Components
//
// Oracle: answers "is predicate P true?" for toolchain-supplied toggles.
// Oracles are leaves; the engine only consults them.
//
// Registry: binds each unit's aliases to the defining unit's oracle
// snapshot. Consumers of an alias hold a reference, never a copy of its
// body, preserving definition-site evaluation across units.
//
// Evaluator: reduces expression trees to booleans with short-circuiting
// all/any, vacuous truth for all() and vacuous falsehood for any(), and
// definition-site alias binding. Results are memoized per alias; with an
// immutable oracle this is a pure optimization.
//
// Selector: walks switch arms in written order and commits to the first
// matching arm. Arms after the commit point are never evaluated and their
// fragments are never materialized, which is what keeps rejected code out
// of the surrounding toolchain entirely.
//
// # Failure model
//
// Malformed manifests are rejected by pkg/condexpr before an Engine exists.
// Evaluating a validated unit set is total: the error returns in this
// package only fire for trees handed to the engine without validation.
//
// # Concurrency
//
// An Engine is built once per pass from immutable inputs. Independent units
// may be evaluated from separate engines in parallel without coordination;
// alias definitions resolve by static path, not through shared mutable
// state.
package engine
