// Package utils provides tiny cross-layer helpers with no domain knowledge.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or not a
// number. Query parameters like page and page_size go through this so that
// junk input degrades to the documented defaults instead of erroring.
func AtoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
