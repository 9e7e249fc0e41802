package ast

// FragmentKind distinguishes the two payload shapes a switch arm can carry.
type FragmentKind string

const (
	FragmentKindText   FragmentKind = "text"   // Literal source text, emitted verbatim
	FragmentKindSwitch FragmentKind = "switch" // Nested switch, resolved after the outer arm commits
)

// Fragment is an opaque unit of payload content attached to a switch arm.
// The engine never inspects fragment text; it only decides which fragment
// wins. A fragment may itself be a nested switch, in which case its own
// selection is deferred until the enclosing arm has committed.
type Fragment struct {
	Kind     FragmentKind
	Text     string      // Payload text (for Text fragments)
	Switch   *SwitchNode // Nested switch (for Switch fragments)
	Location Location    // Source location
}

// IsText returns true if the fragment is literal source text.
func (f *Fragment) IsText() bool {
	return f != nil && f.Kind == FragmentKindText
}

// IsSwitch returns true if the fragment is a nested switch.
func (f *Fragment) IsSwitch() bool {
	return f != nil && f.Kind == FragmentKindSwitch
}

// SwitchArm is an ordered pair of condition expression and fragment.
// A nil Expr marks the wildcard arm.
type SwitchArm struct {
	Expr     *ExprNode // Condition; nil for the wildcard arm
	Fragment *Fragment // Payload selected when the condition holds
	Location Location  // Source location
}

// IsWildcard returns true if this arm is the wildcard (always-matching) arm.
func (a *SwitchArm) IsWildcard() bool {
	return a.Expr == nil
}

// SwitchNode represents a switch declaration: an ordered sequence of arms,
// optionally terminated by a wildcard arm. Arms are tried strictly in
// written order and the first arm whose condition holds wins. The validator
// rejects any arm written after a wildcard before evaluation begins.
type SwitchNode struct {
	Name     string       // Switch name (kebab-case, unique within the unit)
	Target   string       // Output file the selected fragment is written to
	Arms     []*SwitchArm // Ordered arms; wildcard, if present, is last
	Location Location     // Source location
}

// Wildcard returns the wildcard arm, or nil if the switch has none.
// It assumes a validated switch, where the wildcard can only be last.
func (s *SwitchNode) Wildcard() *SwitchArm {
	if len(s.Arms) == 0 {
		return nil
	}
	last := s.Arms[len(s.Arms)-1]
	if last.IsWildcard() {
		return last
	}
	return nil
}

// ConditionalArms returns the arms preceding the wildcard, in order.
func (s *SwitchNode) ConditionalArms() []*SwitchArm {
	if s.Wildcard() != nil {
		return s.Arms[:len(s.Arms)-1]
	}
	return s.Arms
}

// IsConstant returns true if the switch consists solely of a wildcard arm.
// A constant switch is equivalent to its wildcard fragment and consults no
// predicate during selection.
func (s *SwitchNode) IsConstant() bool {
	return len(s.Arms) == 1 && s.Arms[0].IsWildcard()
}
