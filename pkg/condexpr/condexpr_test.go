package condexpr

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/prism/pkg/condexpr/ast"
)

const benchManifest = `
manifest_version: "1.0"
unit: bench-unit
predicates: [tls, http2, tracing]
aliases:
  - name: secure
    exported: true
    when: "all(tls, not(tracing))"
  - name: modern
    when: "any(http2, bench-unit.secure)"
switches:
  - name: transport
    target: transport_gen.go
    arms:
      - when: "all(tls, http2)"
        fragment: "const transport = \"h2\"\n"
      - when: "tls"
        fragment: "const transport = \"h1-tls\"\n"
    default: "const transport = \"h1\"\n"
`

func TestParseAndValidateBytes(t *testing.T) {
	unit, err := ParseAndValidateBytes([]byte(benchManifest), "bench.yaml")
	if err != nil {
		t.Fatalf("ParseAndValidateBytes() failed: %v", err)
	}

	if unit.Name != "bench-unit" {
		t.Errorf("unit name = %q, want %q", unit.Name, "bench-unit")
	}
	if len(unit.Aliases) != 2 {
		t.Errorf("alias count = %d, want 2", len(unit.Aliases))
	}
	if len(unit.Switches) != 1 {
		t.Errorf("switch count = %d, want 1", len(unit.Switches))
	}
}

func TestParseAndValidateBytes_InvalidManifest(t *testing.T) {
	bad := strings.Replace(benchManifest, `when: "tls"`, `when: "tls("`, 1)

	_, err := ParseAndValidateBytes([]byte(bad), "bench.yaml")
	if err == nil {
		t.Fatal("expected parse error for malformed condition")
	}
}

func TestParseAndValidate_Files(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	if err := os.WriteFile(path, []byte(benchManifest), 0o644); err != nil {
		t.Fatal(err)
	}

	units, err := ParseAndValidate([]string{path})
	if err != nil {
		t.Fatalf("ParseAndValidate() failed: %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("unit count = %d, want 1", len(units))
	}
}

func BenchmarkParse(b *testing.B) {
	data := []byte(benchManifest)
	for i := 0; i < b.N; i++ {
		unit, err := ParseAndValidateBytes(data, "bench.yaml")
		if err != nil {
			b.Fatal(err)
		}
		_ = unit
	}
}

func BenchmarkValidate(b *testing.B) {
	parsed, err := ParseAndValidateBytes([]byte(benchManifest), "bench.yaml")
	if err != nil {
		b.Fatal(err)
	}

	units := []*ast.Unit{parsed}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Validate(units); err != nil {
			b.Fatal(err)
		}
	}
}
