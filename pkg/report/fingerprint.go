package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint computes a stable hash of a toggle configuration.
// Global toggles and per-unit overrides hash to the same value
// regardless of map iteration order, so equal configurations always
// produce equal fingerprints.
func Fingerprint(toggles map[string]bool, unitToggles map[string]map[string]bool) string {
	var lines []string

	for name, value := range toggles {
		lines = append(lines, fmt.Sprintf("%s=%t", name, value))
	}
	for unit, overrides := range unitToggles {
		for name, value := range overrides {
			lines = append(lines, fmt.Sprintf("%s/%s=%t", unit, name, value))
		}
	}

	sort.Strings(lines)

	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}
