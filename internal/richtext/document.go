// Package richtext models a note body as styled text runs and inline
// checkbox markers, and provides pure edit transitions over it.
package richtext

import "strings"

// Marker is the rune a checkbox occupies in String output and cursor math.
const Marker = '\uFFFC'

// Style describes how a text run is rendered.
type Style struct {
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	Underline bool    `json:"underline,omitempty"`
	Size      float64 `json:"size,omitempty"`
}

// Checkbox is an inline checklist marker.
type Checkbox struct {
	Checked bool `json:"checked"`
}

// Run is either styled text or, when Checkbox is set, a single marker.
type Run struct {
	Text     string    `json:"text,omitempty"`
	Style    Style     `json:"style"`
	Checkbox *Checkbox `json:"checkbox,omitempty"`
}

// IsMarker reports whether the run is a checkbox marker.
func (r Run) IsMarker() bool { return r.Checkbox != nil }

// Document is an ordered sequence of runs.
type Document struct {
	Runs []Run `json:"runs"`
}

// New returns an empty document.
func New() *Document {
	return &Document{}
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	if d == nil {
		return New()
	}
	return fromCells(d.cells())
}

// Len returns the number of cursor positions in d. Markers count as one.
func (d *Document) Len() int {
	n := 0
	for _, r := range d.Runs {
		if r.IsMarker() {
			n++
			continue
		}
		n += len([]rune(r.Text))
	}
	return n
}

// String renders d with every marker replaced by Marker.
func (d *Document) String() string {
	var b strings.Builder
	for _, r := range d.Runs {
		if r.IsMarker() {
			b.WriteRune(Marker)
			continue
		}
		b.WriteString(r.Text)
	}
	return b.String()
}

// PlainText renders d without markers.
func (d *Document) PlainText() string {
	var b strings.Builder
	for _, r := range d.Runs {
		if !r.IsMarker() {
			b.WriteString(r.Text)
		}
	}
	return b.String()
}

// Line describes one line of a document in position space.
type Line struct {
	// Start and End bound the line; End excludes the trailing newline.
	Start, End int
	// Text is the line's plain text with markers removed.
	Text string
	// Checklist is set when the line begins with a marker.
	Checklist bool
	// Checked is the state of that leading marker.
	Checked bool
}

// Lines splits d into lines.
func (d *Document) Lines() []Line {
	cs := d.cells()
	var out []Line
	start := 0
	for {
		end := lineEnd(cs, start)
		out = append(out, describeLine(cs, start, end))
		if end >= len(cs) {
			return out
		}
		start = end + 1
	}
}

// LineAt returns the line containing position pos.
func (d *Document) LineAt(pos int) Line {
	cs := d.cells()
	pos = clamp(pos, 0, len(cs))
	start := lineStart(cs, pos)
	return describeLine(cs, start, lineEnd(cs, start))
}

// CellAt exposes the run data at a position: the text rune (or Marker),
// its style and, for markers, the checkbox state.
func (d *Document) CellAt(pos int) (r rune, style Style, box *Checkbox, ok bool) {
	cs := d.cells()
	if pos < 0 || pos >= len(cs) {
		return 0, Style{}, nil, false
	}
	c := cs[pos]
	return c.r, c.style, c.box, true
}

func describeLine(cs []cell, start, end int) Line {
	l := Line{Start: start, End: end}
	var b strings.Builder
	for _, c := range cs[start:end] {
		if c.box == nil {
			b.WriteRune(c.r)
		}
	}
	l.Text = b.String()
	if start < end && cs[start].box != nil {
		l.Checklist = true
		l.Checked = cs[start].box.Checked
	}
	return l
}
