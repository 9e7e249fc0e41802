package generate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// header returns the generated-file banner for a target, using the
// comment syntax its extension implies.
func header(target, version, runID string) string {
	prefix := commentPrefix(target)
	return fmt.Sprintf("%s Code generated by prism %s. DO NOT EDIT.\n%s run: %s\n\n",
		prefix, version, prefix, runID)
}

// commentPrefix picks a line-comment marker for the target file.
func commentPrefix(target string) string {
	switch strings.ToLower(filepath.Ext(target)) {
	case ".go", ".c", ".h", ".cpp", ".hpp", ".js", ".ts", ".rs", ".java", ".proto":
		return "//"
	case ".sql", ".lua":
		return "--"
	default:
		return "#"
	}
}

// writeOutputs writes every target under the output directory. Targets
// escaping the output directory are rejected.
func writeOutputs(outputDir string, result *Result) error {
	for _, target := range result.Files {
		path, err := resolveTarget(outputDir, target)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create output directory for %s: %w", target, err)
		}

		if err := atomicWrite(path, []byte(result.Outputs[target])); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
	}
	return nil
}

// resolveTarget joins a relative target with the output directory and
// rejects absolute paths and ".." traversal.
func resolveTarget(outputDir, target string) (string, error) {
	if filepath.IsAbs(target) {
		return "", fmt.Errorf("target %q must be relative", target)
	}

	clean := filepath.Clean(target)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("target %q escapes the output directory", target)
	}

	return filepath.Join(outputDir, clean), nil
}

// atomicWrite writes content to a temp file and renames it into place,
// so readers never observe a half-written target.
func atomicWrite(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return nil
}
