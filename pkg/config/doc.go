// Package config loads and validates Prism's YAML configuration.
//
// Configuration is loaded in layers: defaults first, then the YAML
// file, then PRISM_* environment variable overrides, with validation
// after each layer that can change values. Toggle state lives here
// too: the toggles map feeds the condition oracle, and per-unit
// overrides let two units see different answers for the same
// predicate name.
package config
