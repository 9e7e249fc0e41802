package engine

import (
	"fmt"
	"strings"

	"mercator-hq/prism/pkg/condexpr/ast"
)

// Registry holds the loaded units and their alias definitions, each bound to
// the oracle snapshot of its defining unit. The registry is built once per
// evaluation pass and never mutated afterwards, so units can be evaluated in
// parallel without synchronization.
type Registry struct {
	units map[string]*unitScope
}

// unitScope binds a unit's AST to the oracle it evaluates against.
type unitScope struct {
	unit    *ast.Unit
	oracle  Oracle
	aliases map[string]*Alias
}

// Alias is a defined alias: a name bound to an expression body together with
// the scope of its defining unit. Consumers hold references to the Alias,
// never copies of the body, which is what preserves definition-site binding.
type Alias struct {
	Name     string
	Unit     string
	Exported bool

	body  *ast.ExprNode
	scope *unitScope
}

// Path returns the canonical "unit.alias" path of the alias.
func (a *Alias) Path() string {
	return a.Unit + "." + a.Name
}

// Body returns the bound expression. The body is owned by the defining unit
// and must not be modified.
func (a *Alias) Body() *ast.ExprNode {
	return a.body
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		units: make(map[string]*unitScope),
	}
}

// AddUnit registers a unit and defines all of its aliases against the given
// oracle. The oracle becomes the unit's evaluation context for the whole
// build.
func (r *Registry) AddUnit(unit *ast.Unit, oracle Oracle) error {
	if _, ok := r.units[unit.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateUnit, unit.Name)
	}

	scope := &unitScope{
		unit:    unit,
		oracle:  oracle,
		aliases: make(map[string]*Alias, len(unit.Aliases)),
	}
	r.units[unit.Name] = scope

	for _, alias := range unit.Aliases {
		if _, err := r.define(scope, alias.Name, alias.Exported, alias.Body); err != nil {
			return err
		}
	}

	return nil
}

// define binds a name to an expression body inside the given scope.
func (r *Registry) define(scope *unitScope, name string, exported bool, body *ast.ExprNode) (*Alias, error) {
	if _, ok := scope.aliases[name]; ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateAlias, scope.unit.Name, name)
	}

	alias := &Alias{
		Name:     name,
		Unit:     scope.unit.Name,
		Exported: exported,
		body:     body,
		scope:    scope,
	}
	scope.aliases[name] = alias
	return alias, nil
}

// Unit returns the AST of a registered unit.
func (r *Registry) Unit(name string) (*ast.Unit, error) {
	scope, ok := r.units[name]
	if !ok {
		return nil, &UnknownUnitError{Unit: name}
	}
	return scope.unit, nil
}

// Units returns the names of all registered units.
func (r *Registry) Units() []string {
	names := make([]string, 0, len(r.units))
	for name := range r.units {
		names = append(names, name)
	}
	return names
}

// Lookup resolves a (unit, alias) pair to its definition.
func (r *Registry) Lookup(unit, alias string) (*Alias, error) {
	scope, ok := r.units[unit]
	if !ok {
		return nil, &UnknownUnitError{Unit: unit}
	}
	def, ok := scope.aliases[alias]
	if !ok {
		return nil, &UnknownAliasError{Unit: unit, Alias: alias}
	}
	return def, nil
}

// Resolve resolves a dotted "unit.alias" path to its definition.
func (r *Registry) Resolve(path string) (*Alias, error) {
	parts := strings.SplitN(path, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid alias path %q: want 'unit.alias'", path)
	}
	return r.Lookup(parts[0], parts[1])
}

// scope returns the evaluation scope of a unit.
func (r *Registry) scope(name string) (*unitScope, error) {
	scope, ok := r.units[name]
	if !ok {
		return nil, &UnknownUnitError{Unit: name}
	}
	return scope, nil
}
