package filestore

import (
	"regexp"
	"strings"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_.]`)

// SanitizeName reduces an arbitrary client-supplied filename to letters, digits,
// underscores and dots. Surrounding whitespace is trimmed, interior spaces become
// underscores and everything else outside the allowed set is dropped. The result
// may be empty.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	return unsafeNameChars.ReplaceAllString(name, "")
}
