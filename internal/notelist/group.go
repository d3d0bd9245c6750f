package notelist

import (
	"sort"
	"time"
)

// DefaultDayLayout renders days as "Apr 9, 2025".
const DefaultDayLayout = "Jan 2, 2006"

// DayGroup is one section of the note list.
type DayGroup struct {
	Label string      `json:"label"`
	Day   time.Time   `json:"day"`
	Notes []NoteModel `json:"notes"`
}

// GroupByDay buckets notes by the calendar day of CreatedAt in loc. Groups
// come most recent day first; notes keep their input order within a group.
func GroupByDay(notes []NoteModel, loc *time.Location, layout string) []DayGroup {
	if loc == nil {
		loc = time.Local
	}
	if layout == "" {
		layout = DefaultDayLayout
	}

	index := make(map[time.Time]int)
	var groups []DayGroup
	for _, n := range notes {
		t := n.CreatedAt.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Label: day.Format(layout), Day: day})
		}
		groups[i].Notes = append(groups[i].Notes, n)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Day.After(groups[j].Day)
	})
	return groups
}
