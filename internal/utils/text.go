package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Fold returns a normalized, case-folded form of s suitable for
// case-insensitive prefix matching. It is applied both when storing the
// search column and when building the query, so Cyrillic and Latin names
// compare the same way on every database driver.
func Fold(s string) string {
	return folder.String(norm.NFC.String(strings.TrimSpace(s)))
}

// LikePrefix escapes the LIKE wildcards in s and appends a trailing %.
// Use together with `ESCAPE '\'`.
func LikePrefix(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s) + "%"
}
