package richtext

import "strings"

// cell is one cursor position: a text rune or a marker.
type cell struct {
	r     rune
	style Style
	box   *Checkbox
}

func (d *Document) cells() []cell {
	if d == nil {
		return nil
	}
	out := make([]cell, 0, d.Len())
	for _, run := range d.Runs {
		if run.IsMarker() {
			out = append(out, markerCell(run.Checkbox.Checked, run.Style))
			continue
		}
		for _, r := range run.Text {
			out = append(out, cell{r: r, style: run.Style})
		}
	}
	return out
}

// fromCells folds cells back into runs, merging neighbours with equal style.
func fromCells(cs []cell) *Document {
	d := &Document{}
	var text []rune
	var style Style
	flush := func() {
		if len(text) > 0 {
			d.Runs = append(d.Runs, Run{Text: string(text), Style: style})
			text = text[:0]
		}
	}
	for _, c := range cs {
		if c.box != nil {
			flush()
			d.Runs = append(d.Runs, Run{Style: c.style, Checkbox: &Checkbox{Checked: c.box.Checked}})
			continue
		}
		if len(text) > 0 && c.style != style {
			flush()
		}
		style = c.style
		text = append(text, c.r)
	}
	flush()
	return d
}

func markerCell(checked bool, style Style) cell {
	return cell{r: Marker, style: style, box: &Checkbox{Checked: checked}}
}

// newlines is the line-break normalisation applied to all incoming text:
// CRLF and lone CR both become LF.
var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func textCells(s string, style Style) []cell {
	out := make([]cell, 0, len(s))
	for _, r := range s {
		out = append(out, cell{r: r, style: style})
	}
	return out
}

// lineStart returns the first position of the line holding pos.
func lineStart(cs []cell, pos int) int {
	for i := pos - 1; i >= 0; i-- {
		if cs[i].box == nil && cs[i].r == '\n' {
			return i + 1
		}
	}
	return 0
}

// lineEnd returns the position of the newline ending the line that starts
// at or before start, or len(cs).
func lineEnd(cs []cell, start int) int {
	for i := start; i < len(cs); i++ {
		if cs[i].box == nil && cs[i].r == '\n' {
			return i
		}
	}
	return len(cs)
}

func isChecklistLine(cs []cell, pos int) bool {
	start := lineStart(cs, pos)
	return start < len(cs) && cs[start].box != nil
}

// splice replaces cs[from:to] with ins and returns a new slice.
func splice(cs []cell, from, to int, ins []cell) []cell {
	out := make([]cell, 0, len(cs)-(to-from)+len(ins))
	out = append(out, cs[:from]...)
	out = append(out, ins...)
	out = append(out, cs[to:]...)
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
