package tasks

import "regexp"

var matriculePattern = regexp.MustCompile(`^[0-9]{6}[A-Z]$`)

// ValidateMatricule reports whether s is six ASCII digits followed by one uppercase ASCII letter.
//
// Lowercase letters are rejected, so callers upper-case first (see [ResolveMatricule]).
func ValidateMatricule(s string) bool {
	return matriculePattern.MatchString(s)
}
