package errors

import (
	"fmt"
	"strings"
)

// SuggestName suggests possible names when an unknown predicate or alias is
// referenced. It uses Levenshtein distance to find similar names.
func SuggestName(unknown string, validNames []string) string {
	if len(validNames) == 0 {
		return ""
	}

	// Find the closest match
	minDistance := 1000
	var bestMatch string

	for _, name := range validNames {
		dist := levenshteinDistance(unknown, name)
		if dist < minDistance {
			minDistance = dist
			bestMatch = name
		}
	}

	// Only suggest if the distance is reasonable (< 5 edits)
	if minDistance < 5 {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}

	// If no close match, list a few valid names
	if len(validNames) > 5 {
		return fmt.Sprintf("Valid names include: %s, ...", strings.Join(validNames[:5], ", "))
	}
	return fmt.Sprintf("Valid names: %s", strings.Join(validNames, ", "))
}

// SuggestOperator suggests the valid expression operators when an unknown
// operator is used.
func SuggestOperator(unknown string) string {
	valid := []string{"all", "any", "not"}
	suggestion := SuggestName(unknown, valid)
	if suggestion != "" {
		return suggestion
	}
	return "Valid operators: all(...), any(...), not(...)"
}

// SuggestMissingField suggests adding a required field.
func SuggestMissingField(fieldName string, exampleValue string) string {
	if exampleValue != "" {
		return fmt.Sprintf("Add '%s: %s' to the manifest", fieldName, exampleValue)
	}
	return fmt.Sprintf("Add '%s' field to the manifest", fieldName)
}

// levenshteinDistance computes the Levenshtein distance between two strings.
// This is used for finding similar predicate/alias names for suggestions.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}

	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = min3(
				matrix[i-1][j]+1,      // Deletion
				matrix[i][j-1]+1,      // Insertion
				matrix[i-1][j-1]+cost, // Substitution
			)
		}
	}

	return matrix[len1][len2]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
