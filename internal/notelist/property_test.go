package notelist

import (
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func drawNotes(t *rapid.T) []NoteModel {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	n := rapid.IntRange(0, 20).Draw(t, "n")
	notes := make([]NoteModel, n)
	for i := range notes {
		notes[i] = NoteModel{
			ID:          rapid.StringMatching(`[a-f0-9]{8}`).Draw(t, "id"),
			CreatedAt:   base.Add(time.Duration(rapid.Int64Range(0, 90*24*3600).Draw(t, "sec")) * time.Second),
			Title:       rapid.StringMatching(`[A-Za-z ]{0,12}`).Draw(t, "title"),
			Description: rapid.StringMatching(`[A-Za-z \n]{0,24}`).Draw(t, "desc"),
		}
	}
	return notes
}

func TestProperty_FilterIsIdempotentSubsequence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		notes := drawNotes(t)
		q := rapid.StringMatching(`[A-Za-z ]{0,3}`).Draw(t, "q")

		once := Filter(notes, q)
		twice := Filter(once, q)
		if len(once) != len(twice) {
			t.Fatalf("not idempotent: %d then %d", len(once), len(twice))
		}

		needle := strings.ToLower(strings.TrimSpace(q))
		j := 0
		for _, n := range notes {
			match := needle == "" ||
				strings.Contains(strings.ToLower(n.Title), needle) ||
				strings.Contains(strings.ToLower(n.Description), needle)
			if !match {
				continue
			}
			if j >= len(once) || once[j].ID != n.ID || !once[j].CreatedAt.Equal(n.CreatedAt) {
				t.Fatalf("filter result diverges from expected subsequence at %d", j)
			}
			j++
		}
		if j != len(once) {
			t.Fatalf("filter returned %d extra notes", len(once)-j)
		}
	})
}

func TestProperty_GroupByDayPartitions(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		notes := drawNotes(t)
		groups := GroupByDay(notes, time.UTC, "")

		total := 0
		for i, g := range groups {
			if i > 0 && !g.Day.Before(groups[i-1].Day) {
				t.Fatalf("group %d (%s) not older than group %d", i, g.Label, i-1)
			}
			for _, n := range g.Notes {
				y, m, d := n.CreatedAt.In(time.UTC).Date()
				gy, gm, gd := g.Day.Date()
				if y != gy || m != gm || d != gd {
					t.Fatalf("note %s on %v placed in group %s", n.ID, n.CreatedAt, g.Label)
				}
			}
			total += len(g.Notes)
		}
		if total != len(notes) {
			t.Fatalf("grouped %d notes, want %d", total, len(notes))
		}
	})
}

func TestProperty_TitleSplitRoundTrips(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		first := rapid.StringMatching(`[A-Za-z][A-Za-z ]{0,10}[A-Za-z]`).Draw(t, "first")
		rest := rapid.StringMatching(`[a-z][a-z \n]{0,20}[a-z]`).Draw(t, "rest")

		title, desc := DeriveTitleAndDescription(first + "\n" + rest)
		if title != first || desc != rest {
			t.Fatalf("split(%q, %q) = (%q, %q)", first, rest, title, desc)
		}
		title2, desc2 := DeriveTitleAndDescription(title + "\n" + desc)
		if title2 != title || desc2 != desc {
			t.Fatalf("split is not stable: (%q, %q)", title2, desc2)
		}
	})
}
