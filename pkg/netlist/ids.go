package netlist

import "strings"

// Name prefixes. Public names carry a backslash, generated internal names
// a dollar sign. Escaping keeps user-supplied names from colliding with
// generated ones.
const (
	publicPrefix   = '\\'
	internalPrefix = '$'
)

// EscapeID converts a document name into its internal form by prefixing a
// backslash, unless the name is already escaped or uses the internal
// dollar namespace. Empty names are returned unchanged.
func EscapeID(name string) string {
	if name == "" {
		return ""
	}
	if name[0] == publicPrefix || name[0] == internalPrefix {
		return name
	}
	return string(publicPrefix) + name
}

// UnescapeID strips the public-name prefix for display purposes.
// Internal ($-prefixed) names are returned unchanged.
func UnescapeID(name string) string {
	return strings.TrimPrefix(name, string(publicPrefix))
}

// IsPublicID reports whether the name is an escaped public name.
func IsPublicID(name string) bool {
	return len(name) > 0 && name[0] == publicPrefix
}
