package ast

// Unit represents the root AST node for a unit manifest.
// A unit is the scope in which predicates are declared, aliases are defined,
// and switches select fragments. Alias bodies are owned exclusively by their
// defining unit; other units hold only name references, which is what makes
// definition-site evaluation possible.
type Unit struct {
	// Metadata
	ManifestVersion string // Manifest format version (e.g., "1.0")
	Name            string // Unit name (kebab-case, unique across the build)
	Description     string // Human-readable description

	// Content
	Predicates []string      // Predicate names this unit's expressions may consult
	Aliases    []*Alias      // Alias definitions (declaration order preserved)
	Switches   []*SwitchNode // Switch declarations (declaration order preserved)

	// Source tracking
	SourceFile string   // Path to the manifest file
	Location   Location // Source location
}

// Alias represents a named binding of an identifier to a condition
// expression, declared once in its defining unit. When Exported is true the
// alias is part of the unit's public contract and may be referenced by any
// other unit; otherwise only expressions within the defining unit may
// reference it.
type Alias struct {
	Name     string    // Alias name (identifier, unique within the unit)
	Exported bool      // Visible to other units?
	Body     *ExprNode // Bound expression, owned by the defining unit
	Location Location  // Source location
}

// GetAlias returns the alias with the given name, or nil if not found.
func (u *Unit) GetAlias(name string) *Alias {
	for _, alias := range u.Aliases {
		if alias.Name == name {
			return alias
		}
	}
	return nil
}

// HasAlias returns true if the unit defines an alias with the given name.
func (u *Unit) HasAlias(name string) bool {
	return u.GetAlias(name) != nil
}

// GetSwitch returns the switch with the given name, or nil if not found.
func (u *Unit) GetSwitch(name string) *SwitchNode {
	for _, sw := range u.Switches {
		if sw.Name == name {
			return sw
		}
	}
	return nil
}

// DeclaresPredicate returns true if the unit declares the given predicate.
// Builtin predicates are implicitly declared by every unit.
func (u *Unit) DeclaresPredicate(name string) bool {
	if IsBuiltinPredicate(name) {
		return true
	}
	for _, p := range u.Predicates {
		if p == name {
			return true
		}
	}
	return false
}
