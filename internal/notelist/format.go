// Package notelist derives list rows from stored notes and holds the list
// view state: day grouping, search filtering and debounced queries.
package notelist

import (
	"strings"
)

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// DeriveTitleAndDescription splits text on its first line break. The title is
// the first line trimmed; the description is the remaining lines joined with
// "\n" and trimmed.
func DeriveTitleAndDescription(text string) (title, description string) {
	text = newlines.Replace(text)
	first, rest, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(first), strings.TrimSpace(rest)
}
