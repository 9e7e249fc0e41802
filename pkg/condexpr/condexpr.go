package condexpr

import (
	"mercator-hq/prism/pkg/condexpr/ast"
	"mercator-hq/prism/pkg/condexpr/parser"
	"mercator-hq/prism/pkg/condexpr/validator"
)

// ParseAndValidate is a convenience function that parses and validates a set
// of unit manifests. It returns the parsed ASTs if successful, or an error if
// parsing or validation fails.
func ParseAndValidate(paths []string) ([]*ast.Unit, error) {
	p := parser.NewParser()
	units, err := p.ParseMulti(paths)
	if err != nil {
		return nil, err
	}

	v := validator.NewValidator()
	if err := v.Validate(units); err != nil {
		return nil, err
	}

	return units, nil
}

// ParseAndValidateBytes is a convenience function that parses and validates a
// single unit manifest from bytes.
func ParseAndValidateBytes(data []byte, sourcePath string) (*ast.Unit, error) {
	p := parser.NewParser()
	unit, err := p.ParseBytes(data, sourcePath)
	if err != nil {
		return nil, err
	}

	v := validator.NewValidator()
	if err := v.Validate([]*ast.Unit{unit}); err != nil {
		return nil, err
	}

	return unit, nil
}

// Parse parses a unit manifest without validation.
// Use this if you want to inspect the AST before validation.
func Parse(path string) (*ast.Unit, error) {
	p := parser.NewParser()
	return p.Parse(path)
}

// Validate validates a set of parsed units.
func Validate(units []*ast.Unit) error {
	v := validator.NewValidator()
	return v.Validate(units)
}
