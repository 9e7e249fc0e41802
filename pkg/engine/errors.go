package engine

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNoUnitsLoaded indicates no units are loaded in the engine.
	ErrNoUnitsLoaded = errors.New("no units loaded")

	// ErrDuplicateUnit indicates a unit name was registered twice.
	ErrDuplicateUnit = errors.New("duplicate unit")

	// ErrDuplicateAlias indicates an alias name was defined twice in one unit.
	ErrDuplicateAlias = errors.New("duplicate alias")
)

// UnknownUnitError indicates a reference to a unit the registry does not hold.
// With validated input this can only happen when callers bypass validation.
type UnknownUnitError struct {
	Unit string
}

// Error returns the error message.
func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown unit %q", e.Unit)
}

// UnknownAliasError indicates an alias path that does not resolve.
type UnknownAliasError struct {
	Unit  string
	Alias string
}

// Error returns the error message.
func (e *UnknownAliasError) Error() string {
	return fmt.Sprintf("unit %q defines no alias %q", e.Unit, e.Alias)
}

// EvaluationError is the base error type for evaluation failures.
// Evaluation of a validated tree is total; this surfaces only malformed
// trees handed to the engine directly.
type EvaluationError struct {
	Unit    string
	Message string
	Cause   error
}

// Error returns the error message.
func (e *EvaluationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unit %s: %s: %v", e.Unit, e.Message, e.Cause)
	}
	return fmt.Sprintf("unit %s: %s", e.Unit, e.Message)
}

// Unwrap returns the underlying cause.
func (e *EvaluationError) Unwrap() error {
	return e.Cause
}
