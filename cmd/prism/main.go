// Prism is a build-time code generation tool driven by boolean toggle
// expressions.
//
// Manifest files declare predicates, aliases, and switches; prism
// evaluates them against a toggle configuration and emits only the
// fragments whose conditions hold.
//
// Usage:
//
//	# Generate output from the configured manifests
//	prism generate
//
//	# Generate with toggle overrides
//	prism generate --set tracing=true --set async-runtime=false
//
//	# Validate manifests without generating
//	prism validate manifests/*.yaml
//
//	# Evaluate a single expression
//	prism query --unit net-stack 'all(tls, not(legacy))'
//
//	# Regenerate on every manifest edit
//	prism watch
//
//	# Inspect past runs
//	prism report list
//
// For complete documentation, see: https://github.com/mercator-hq/prism
package main

func main() {
	Execute()
}
