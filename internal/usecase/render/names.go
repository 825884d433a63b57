package render

import "strings"

// JoinNames joins recipient names for prose: names are comma-separated
// with " and " before the last name when there is more than one.
//
//	["Alice"]               -> "Alice"
//	["Alice","Bob"]         -> "Alice and Bob"
//	["Alice","Bob","Cara"]  -> "Alice, Bob and Cara"
func JoinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
