package richtext

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/starford/notebook/internal/apperr"
)

// Frontmatter holds the optional YAML header of an imported Markdown note.
type Frontmatter struct {
	Created time.Time `yaml:"created,omitempty"`
	Updated time.Time `yaml:"updated,omitempty"`
	ID      string    `yaml:"id,omitempty"`
}

// A checkbox is written as "[ ]" or "[x]". At the start of a line it is
// preceded by "- " so the line reads as a task list item; the space that
// usually follows it is ordinary text. Literal brackets in text are escaped.
const (
	uncheckedBox = "[ ]"
	checkedBox   = "[x]"
	taskBullet   = "- "
)

// ToMarkdown renders d as Markdown. The title line becomes a level-one
// heading and checklist items become task list entries.
func ToMarkdown(d *Document) []byte {
	cs := d.cells()
	var b bytes.Buffer
	start := 0
	for first := true; ; first = false {
		end := lineEnd(cs, start)
		line := cs[start:end]
		checklist := len(line) > 0 && line[0].box != nil

		switch {
		case first && !checklist && strings.TrimSpace(describeLine(cs, start, end).Text) != "":
			b.WriteString("# ")
			writeInline(&b, line, true)
		case checklist:
			b.WriteString(taskBullet)
			writeInline(&b, line, false)
		default:
			writeInline(&b, line, false)
		}

		if end >= len(cs) {
			break
		}
		b.WriteByte('\n')
		start = end + 1
	}
	b.WriteByte('\n')
	return b.Bytes()
}

// writeInline emits text cells with emphasis markup and checkboxes.
func writeInline(b *bytes.Buffer, line []cell, title bool) {
	var cur Style
	open := func(s Style) {
		if s.Underline {
			b.WriteString("<u>")
		}
		if s.Bold && !title {
			b.WriteString("**")
		}
		if s.Italic && !title {
			b.WriteString("*")
		}
	}
	closeStyle := func(s Style) {
		if s.Italic && !title {
			b.WriteString("*")
		}
		if s.Bold && !title {
			b.WriteString("**")
		}
		if s.Underline {
			b.WriteString("</u>")
		}
	}
	for i, c := range line {
		if c.box != nil {
			closeStyle(cur)
			cur = Style{}
			if c.box.Checked {
				b.WriteString(checkedBox)
			} else {
				b.WriteString(uncheckedBox)
			}
			continue
		}
		s := Style{Bold: c.style.Bold, Italic: c.style.Italic, Underline: c.style.Underline}
		if s != cur {
			closeStyle(cur)
			open(s)
			cur = s
		}
		switch {
		case c.r == '*', c.r == '\\', c.r == '<', c.r == '[':
			b.WriteByte('\\')
		case i == 0 && (c.r == '-' || c.r == '#'):
			b.WriteByte('\\')
		}
		b.WriteRune(c.r)
	}
	closeStyle(cur)
}

// FromMarkdown parses Markdown produced by ToMarkdown (or written by hand in
// the same dialect) into a title-styled document.
func FromMarkdown(data []byte, th Theme) (*Document, Frontmatter, error) {
	if !utf8.Valid(data) {
		return nil, Frontmatter{}, fmt.Errorf("richtext: markdown is not utf-8: %w", apperr.ErrSerialization)
	}
	fm, body := splitFrontmatter(data)

	body = newlines.Replace(body)
	body = strings.TrimSuffix(body, "\n")
	lines := strings.Split(body, "\n")

	base := Style{Size: th.BaseSize}
	var cs []cell
	for i, line := range lines {
		if i > 0 {
			cs = append(cs, cell{r: '\n', style: base})
		}
		if i == 0 {
			if rest, ok := strings.CutPrefix(line, "# "); ok {
				line = rest
			}
		}
		if rest, ok := strings.CutPrefix(line, taskBullet); ok {
			if checked, ok := boxAt(rest); ok {
				cs = append(cs, markerCell(checked, base))
				line = rest[len(uncheckedBox):]
			}
		}
		cs = append(cs, parseInline(line, base)...)
	}
	return ApplyTitleStyle(fromCells(cs), th), fm, nil
}

// boxAt reports whether s starts with a checkbox, and its state.
func boxAt(s string) (checked, ok bool) {
	if len(s) < len(uncheckedBox) || s[0] != '[' || s[2] != ']' {
		return false, false
	}
	switch s[1] {
	case ' ':
		return false, true
	case 'x', 'X':
		return true, true
	}
	return false, false
}

// parseInline understands **bold**, *italic*, <u>underline</u>, checkboxes
// and backslash escapes.
func parseInline(s string, base Style) []cell {
	var out []cell
	style := base
	for i := 0; i < len(s); {
		if checked, ok := boxAt(s[i:]); ok {
			out = append(out, markerCell(checked, base))
			i += len(uncheckedBox)
			continue
		}
		switch {
		case s[i] == '\\' && i+1 < len(s):
			r, size := utf8.DecodeRuneInString(s[i+1:])
			out = append(out, cell{r: r, style: style})
			i += 1 + size
			continue
		case strings.HasPrefix(s[i:], "**"):
			style.Bold = !style.Bold
			i += 2
			continue
		case s[i] == '*':
			style.Italic = !style.Italic
			i++
			continue
		case strings.HasPrefix(s[i:], "<u>"):
			style.Underline = true
			i += 3
			continue
		case strings.HasPrefix(s[i:], "</u>"):
			style.Underline = false
			i += 4
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r != Marker {
			out = append(out, cell{r: r, style: style})
		}
		i += size
	}
	return out
}

// splitFrontmatter separates YAML frontmatter (between leading --- lines)
// from the body. Missing or invalid frontmatter leaves the whole input as body.
func splitFrontmatter(data []byte) (Frontmatter, string) {
	const delim = "---"
	var fm Frontmatter
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return fm, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return fm, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimPrefix(strings.TrimPrefix(string(afterDelim), "\r"), "\n")

	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return Frontmatter{}, string(data)
	}
	return fm, body
}

// MarshalFrontmatter renders fm as a --- delimited YAML header.
func MarshalFrontmatter(fm Frontmatter) ([]byte, error) {
	out, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("richtext: encode frontmatter: %v: %w", err, apperr.ErrSerialization)
	}
	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(out)
	b.WriteString("---\n")
	return b.Bytes(), nil
}
