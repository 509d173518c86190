// Package identity derives stable node identifiers from human-readable labels.
package identity

import "strings"

var separators = strings.NewReplacer(" ", "_", "/", "_", "-", "_")

// Normalize maps a label to its node id: surrounding whitespace is trimmed,
// the text is lowercased and spaces, slashes and hyphens become underscores.
//
// Normalize is idempotent. Distinct labels can collide ("Foo Bar" and
// "foo-bar" both yield "foo_bar"); callers that care must check.
func Normalize(label string) string {
	return separators.Replace(strings.ToLower(strings.TrimSpace(label)))
}

// Equal reports whether two labels normalize to the same id.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
