package engine

// Oracle answers "is predicate P currently true?" for primitive, toolchain
// supplied predicates. The engine only consults it, never redefines it; an
// oracle's answers are fixed for the duration of one build.
type Oracle interface {
	// Lookup returns the predicate's value and whether the oracle knows
	// the predicate at all. Unknown predicates read as false.
	Lookup(name string) (value, known bool)
}

// MapOracle is an Oracle backed by a plain toggle map, as supplied by the
// build configuration.
type MapOracle map[string]bool

// Lookup implements Oracle.
func (o MapOracle) Lookup(name string) (bool, bool) {
	value, known := o[name]
	return value, known
}

// builtinOracle answers the reserved enabled/disabled predicates.
type builtinOracle struct{}

func (builtinOracle) Lookup(name string) (bool, bool) {
	switch name {
	case "enabled":
		return true, true
	case "disabled":
		return false, true
	default:
		return false, false
	}
}

// Builtins returns the oracle for the reserved builtin predicates:
// enabled is always true, disabled is always false.
func Builtins() Oracle {
	return builtinOracle{}
}

// chainOracle consults a list of oracles in order; the first one that knows
// the predicate wins.
type chainOracle []Oracle

func (c chainOracle) Lookup(name string) (bool, bool) {
	for _, o := range c {
		if value, known := o.Lookup(name); known {
			return value, true
		}
	}
	return false, false
}

// Chain combines oracles with earlier entries taking precedence.
// A typical unit oracle is Chain(Builtins(), unitToggles, globalToggles).
func Chain(oracles ...Oracle) Oracle {
	return chainOracle(oracles)
}

// UnitOracle builds the standard oracle for one unit: builtins first, then
// unit-specific toggle overrides, then the global toggle map.
func UnitOracle(unitToggles, globalToggles map[string]bool) Oracle {
	return Chain(Builtins(), MapOracle(unitToggles), MapOracle(globalToggles))
}
