// Package normalize canonicalizes user-supplied identity fields before
// they are stored or compared.
package normalize

import "strings"

// Email trims surrounding whitespace and lower-cases the address.
func Email(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// DisplayName trims the name and collapses runs of inner whitespace to a
// single space.
func DisplayName(n string) string {
	return strings.Join(strings.Fields(n), " ")
}
