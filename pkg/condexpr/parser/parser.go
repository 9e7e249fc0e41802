package parser

import (
	"fmt"
	"os"

	"mercator-hq/prism/pkg/condexpr/ast"
	cferrors "mercator-hq/prism/pkg/condexpr/errors"
)

// Parser parses unit manifest files into Abstract Syntax Trees.
// It handles YAML parsing, inline expression parsing, AST construction, and
// basic structural validation.
type Parser struct {
	// Configuration
	maxFileSize int64 // Maximum manifest size in bytes (default: 10MB)
	maxDepth    int   // Maximum expression/switch nesting depth (default: 32)
	strictMode  bool  // Strict validation mode (warnings become errors)
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: 10 * 1024 * 1024, // 10MB
		maxDepth:    32,
		strictMode:  false,
	}
}

// WithMaxFileSize sets the maximum manifest size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// WithMaxDepth sets the maximum expression and switch nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// WithStrictMode enables strict validation (warnings become errors).
func (p *Parser) WithStrictMode(strict bool) *Parser {
	p.strictMode = strict
	return p
}

// MaxDepth returns the configured nesting depth limit.
func (p *Parser) MaxDepth() int {
	return p.maxDepth
}

// Parse parses a unit manifest at the given path and returns the AST.
// It returns an error if the file cannot be read, has invalid YAML or
// expression syntax, or contains structural errors.
func (p *Parser) Parse(path string) (*ast.Unit, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, &cferrors.Error{
			Type:    cferrors.ErrorTypeIO,
			Message: fmt.Sprintf("Failed to access file: %v", err),
			Location: ast.Location{
				File: path,
			},
		}
	}

	if fileInfo.Size() > p.maxFileSize {
		return nil, &cferrors.Error{
			Type:    cferrors.ErrorTypeIO,
			Message: fmt.Sprintf("File size %d exceeds maximum %d bytes", fileInfo.Size(), p.maxFileSize),
			Location: ast.Location{
				File: path,
			},
		}
	}

	yamlUnit, err := parseYAMLFile(path)
	if err != nil {
		return nil, &cferrors.Error{
			Type:    cferrors.ErrorTypeSyntax,
			Message: fmt.Sprintf("YAML parsing failed: %v", err),
			Location: ast.Location{
				File: path,
				Line: 1,
			},
			Suggestion: "Check YAML syntax (indentation, colons, quotes)",
		}
	}

	// Build AST
	builder := newBuilder(path)
	unit, err := builder.buildUnit(yamlUnit)
	if err != nil {
		// Add context to errors
		if errList, ok := err.(*cferrors.ErrorList); ok {
			for i, e := range errList.Errors {
				errList.Errors[i] = cferrors.AddContextToError(e)
			}
		}
		return nil, err
	}

	return unit, nil
}

// ParseBytes parses manifest YAML from a byte slice.
// This is useful for testing or parsing manifests from memory.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*ast.Unit, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &cferrors.Error{
			Type:    cferrors.ErrorTypeIO,
			Message: fmt.Sprintf("Data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
			Location: ast.Location{
				File: sourcePath,
			},
		}
	}

	yamlUnit, err := parseYAMLBytes(data, sourcePath)
	if err != nil {
		return nil, &cferrors.Error{
			Type:    cferrors.ErrorTypeSyntax,
			Message: fmt.Sprintf("YAML parsing failed: %v", err),
			Location: ast.Location{
				File:   sourcePath,
				Line:   1,
				Column: 1,
			},
			Suggestion: "Check YAML syntax (indentation, colons, quotes)",
		}
	}

	// Build AST
	builder := newBuilder(sourcePath)
	unit, err := builder.buildUnit(yamlUnit)
	if err != nil {
		// Context extraction is a no-op for in-memory data, but safe to call.
		if errList, ok := err.(*cferrors.ErrorList); ok {
			for i, e := range errList.Errors {
				errList.Errors[i] = cferrors.AddContextToError(e)
			}
		}
		return nil, err
	}

	return unit, nil
}

// ParseMulti parses multiple unit manifests. Each file defines one unit;
// units keep their own scope, so there is no merging beyond collecting them
// in order.
func (p *Parser) ParseMulti(paths []string) ([]*ast.Unit, error) {
	if len(paths) == 0 {
		return nil, &cferrors.Error{
			Type:    cferrors.ErrorTypeIO,
			Message: "No unit manifests provided",
		}
	}

	units := make([]*ast.Unit, 0, len(paths))
	for _, path := range paths {
		unit, err := p.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		units = append(units, unit)
	}

	return units, nil
}

// ParseExpression parses a standalone inline expression string, as used by
// the CLI `query` subcommand. Bare identifiers resolve against the given
// unit's local aliases when unit is non-nil.
func (p *Parser) ParseExpression(input string, unit *ast.Unit) (*ast.ExprNode, error) {
	unitName := ""
	localAliases := map[string]bool{}
	if unit != nil {
		unitName = unit.Name
		for _, alias := range unit.Aliases {
			localAliases[alias.Name] = true
		}
	}
	base := ast.Location{File: "<query>", Line: 1, Column: 1}
	return parseExpr(input, unitName, localAliases, base)
}
