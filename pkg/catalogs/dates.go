package catalogs

import "strings"

// dateStripper removes the separators that appear in source documents.
var dateStripper = strings.NewReplacer("-", "", ".", "")

// NormalizeDate reduces a literal date form to the 8-digit YYYYMMDD
// string by stripping hyphens and periods. No calendar validation is
// performed. Normalizing an already-normalized date is the identity
// function.
func NormalizeDate(s string) string {
	return dateStripper.Replace(strings.TrimSpace(s))
}
