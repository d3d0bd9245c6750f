package richtext

import (
	"strings"
	"unicode"
)

// ApplyTitleStyle returns a copy of doc where the first line is bold at the
// title size (or plain base style when it holds no visible text) and every
// other character keeps its traits at the base size.
func ApplyTitleStyle(doc *Document, th Theme) *Document {
	cs := doc.cells()
	end := lineEnd(cs, 0)

	hasTitle := false
	for _, c := range cs[:end] {
		if c.box == nil && !unicode.IsSpace(c.r) {
			hasTitle = true
			break
		}
	}

	for i := range cs {
		switch {
		case i >= end:
			cs[i].style.Size = th.BaseSize
		case cs[i].box != nil:
			cs[i].style = Style{Size: th.BaseSize}
		case hasTitle:
			cs[i].style = Style{Bold: true, Size: th.TitleSize}
		default:
			cs[i].style = Style{Size: th.BaseSize}
		}
	}
	return fromCells(cs)
}

// Title returns the trimmed plain text of the first line.
func (d *Document) Title() string {
	text := d.PlainText()
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}
