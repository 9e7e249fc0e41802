package parser

import (
	"os"

	"gopkg.in/yaml.v3"
)

// yamlUnit represents the intermediate structure for parsing unit manifests.
// It matches the YAML structure before transformation to AST.
type yamlUnit struct {
	ManifestVersion string       `yaml:"manifest_version"`
	Unit            string       `yaml:"unit"`
	Description     string       `yaml:"description"`
	Predicates      []string     `yaml:"predicates"`
	Aliases         []yamlAlias  `yaml:"aliases"`
	Switches        []yamlSwitch `yaml:"switches"`

	// Internal tracking
	node *yaml.Node // Original YAML node for line numbers
}

// yamlAlias represents an intermediate alias declaration.
type yamlAlias struct {
	Name     string `yaml:"name"`
	Exported bool   `yaml:"exported"`
	When     string `yaml:"when"`

	// Internal tracking
	node *yaml.Node
}

// UnmarshalYAML decodes the alias and captures its YAML node for line numbers.
func (a *yamlAlias) UnmarshalYAML(value *yaml.Node) error {
	type plain yamlAlias
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*a = yamlAlias(p)
	a.node = value
	return nil
}

// yamlSwitch represents an intermediate switch declaration.
// Top-level switches carry a name and target; nested switches (inside arms)
// carry neither.
type yamlSwitch struct {
	Name    string    `yaml:"name"`
	Target  string    `yaml:"target"`
	Arms    []yamlArm `yaml:"arms"`
	Default *string   `yaml:"default"` // Pointer to distinguish unset from empty fragment

	// Internal tracking
	node *yaml.Node
}

// UnmarshalYAML decodes the switch and captures its YAML node for line numbers.
func (s *yamlSwitch) UnmarshalYAML(value *yaml.Node) error {
	type plain yamlSwitch
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*s = yamlSwitch(p)
	s.node = value
	return nil
}

// yamlArm represents an intermediate switch arm. The wildcard arm is written
// as `when: "_"`. Exactly one of fragment and switch must be set.
type yamlArm struct {
	When     string      `yaml:"when"`
	Fragment *string     `yaml:"fragment"` // Pointer to distinguish unset from empty fragment
	Switch   *yamlSwitch `yaml:"switch"`   // Nested switch payload

	// Internal tracking
	node *yaml.Node
}

// UnmarshalYAML decodes the arm and captures its YAML node for line numbers.
func (a *yamlArm) UnmarshalYAML(value *yaml.Node) error {
	type plain yamlArm
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*a = yamlArm(p)
	a.node = value
	return nil
}

// parseYAMLFile reads and parses a YAML file into the intermediate structure.
// It preserves line numbers from the YAML parser for error reporting.
func parseYAMLFile(path string) (*yamlUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parseYAMLBytes(data, path)
}

// parseYAMLBytes parses YAML bytes into the intermediate structure.
func parseYAMLBytes(data []byte, sourcePath string) (*yamlUnit, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}

	var unit yamlUnit
	if err := node.Decode(&unit); err != nil {
		return nil, err
	}

	unit.node = &node
	return &unit, nil
}

// fieldNode returns the value node for the given mapping key, or nil.
// This is used to recover precise locations for scalar fields like `when`.
func fieldNode(node *yaml.Node, key string) *yaml.Node {
	if node == nil {
		return nil
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		return fieldNode(node.Content[0], key)
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// nodeLocation extracts line and column from a YAML node, falling back to the
// start of the file when the node is unavailable.
func nodeLocation(node *yaml.Node) (int, int) {
	if node == nil {
		return 1, 1
	}
	return node.Line, node.Column
}
