package mysql

import "strings"

// stringOrDash returns "-" when the input is empty/whitespace. Applied to
// tenant on both write and read so the two paths address the same row.
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
