package notelist

import "strings"

// Filter returns the notes whose title or description contains query,
// ignoring case. A blank query returns notes unchanged.
func Filter(notes []NoteModel, query string) []NoteModel {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return notes
	}
	out := make([]NoteModel, 0, len(notes))
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Description), q) {
			out = append(out, n)
		}
	}
	return out
}
