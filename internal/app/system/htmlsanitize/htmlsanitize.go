// Package htmlsanitize strips markup from user-supplied free-text fields
// (task titles, descriptions, display names, team names) before storage.
// The dashboard renders these values in HTML, so they must never carry
// script or markup of their own.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var strict = bluemonday.StrictPolicy()

// Strict removes all HTML, leaving plain text.
func Strict(s string) string {
	return strict.Sanitize(s)
}
