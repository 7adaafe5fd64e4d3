package annotated

import "strings"

// Escape quotes a label for an output data row.
//
// Contract: a value containing a comma or a space character is wrapped in
// double quotes verbatim; anything else is returned unchanged. Embedded
// double quotes are not escaped, so a value containing '"' together with a
// comma or space produces a line the importer may reject.
func Escape(s string) string {
	if strings.ContainsAny(s, ", ") {
		return `"` + s + `"`
	}
	return s
}
