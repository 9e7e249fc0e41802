package validator

import (
	"mercator-hq/prism/pkg/condexpr/ast"
	cferrors "mercator-hq/prism/pkg/condexpr/errors"
)

// Validator is the main validator that orchestrates all validation passes.
// It runs structural validation per unit, then semantic validation across
// the whole unit set.
type Validator struct {
	structural *StructuralValidator
	semantic   *SemanticValidator
}

// NewValidator creates a new validator with all validation passes.
func NewValidator() *Validator {
	return &Validator{
		structural: NewStructuralValidator(),
		semantic:   NewSemanticValidator(),
	}
}

// WithMaxDepth sets the nesting depth limit for the structural pass.
func (v *Validator) WithMaxDepth(depth int) *Validator {
	v.structural.WithMaxDepth(depth)
	return v
}

// Validate runs all validation passes on a set of units.
// It accumulates errors from all passes and returns them together.
func (v *Validator) Validate(units []*ast.Unit) error {
	errors := cferrors.NewErrorList()

	for _, unit := range units {
		if err := v.structural.Validate(unit); err != nil {
			if errList, ok := err.(*cferrors.ErrorList); ok {
				errors.Errors = append(errors.Errors, errList.Errors...)
			}
		}
	}

	// Run semantic validation only if structural validation passed.
	// This prevents cascading errors.
	if !errors.HasErrorType(cferrors.ErrorTypeStructural) {
		if err := v.semantic.Validate(units); err != nil {
			if errList, ok := err.(*cferrors.ErrorList); ok {
				errors.Errors = append(errors.Errors, errList.Errors...)
			}
		}
	}

	return errors.ToError()
}

// ValidateStructural runs only structural validation on a single unit.
func (v *Validator) ValidateStructural(unit *ast.Unit) error {
	return v.structural.Validate(unit)
}

// ValidateSemantic runs only semantic validation across units.
func (v *Validator) ValidateSemantic(units []*ast.Unit) error {
	return v.semantic.Validate(units)
}
