package richtext

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/starford/notebook/internal/apperr"
)

func TestMarshalUnmarshal(t *testing.T) {
	doc := FromText("Todo\nmilk", th)
	doc, sel := Apply(doc, Caret(5), AddCheckbox{}, th)
	doc, _ = Apply(doc, sel, ToggleCheckbox{}, th)

	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.String() != doc.String() {
		t.Errorf("text = %q, want %q", got.String(), doc.String())
	}
	if !got.Lines()[1].Checked {
		t.Errorf("checkbox state lost")
	}
}

func TestUnmarshal_Rejects(t *testing.T) {
	cases := map[string]string{
		"garbage":       "not json",
		"version":       `{"v":2,"runs":[]}`,
		"marker text":   `{"v":1,"runs":[{"text":"x","style":{},"checkbox":{"checked":false}}]}`,
		"stray marker":  `{"v":1,"runs":[{"text":"a` + "\uFFFC" + `","style":{}}]}`,
		"negative size": `{"v":1,"runs":[{"text":"a","style":{"size":-1}}]}`,
	}
	for name, in := range cases {
		if _, err := Unmarshal([]byte(in)); !errors.Is(err, apperr.ErrSerialization) {
			t.Errorf("%s: err = %v, want ErrSerialization", name, err)
		}
	}
}

func TestMarshal_Rejects(t *testing.T) {
	if _, err := Marshal(nil); !errors.Is(err, apperr.ErrSerialization) {
		t.Errorf("nil doc err = %v", err)
	}
	bad := &Document{Runs: []Run{{Text: "a", Style: Style{Size: math.NaN()}}}}
	if _, err := Marshal(bad); !errors.Is(err, apperr.ErrSerialization) {
		t.Errorf("NaN size err = %v", err)
	}
}

func TestFromText_StripsMarkerRune(t *testing.T) {
	doc := FromText("a\uFFFCb\r\nc", th)
	if doc.String() != "ab\nc" {
		t.Errorf("text = %q", doc.String())
	}
}

func TestMarkdown_RoundTrip(t *testing.T) {
	doc := FromText("Shopping *list*\nmilk\neggs\nplain <tag>", th)
	doc, _ = Apply(doc, Caret(17), AddCheckbox{}, th)
	doc, _ = Apply(doc, Caret(24), AddCheckbox{}, th)
	doc, _ = Apply(doc, Caret(24), ToggleCheckbox{}, th)
	end := doc.Len()
	doc, _ = Apply(doc, Selection{Start: end - 11, End: end - 6}, ApplyStyle{Trait: Bold}, th)

	md := ToMarkdown(doc)
	want := "# Shopping \\*list\\*\n- [ ] milk\n- [x] eggs\n**plain** \\<tag>\n"
	if string(md) != want {
		t.Fatalf("markdown = %q\nwant       %q", md, want)
	}

	back, _, err := FromMarkdown(md, th)
	if err != nil {
		t.Fatalf("FromMarkdown: %v", err)
	}
	if back.String() != doc.String() {
		t.Errorf("text = %q, want %q", back.String(), doc.String())
	}
	lines := back.Lines()
	if !lines[1].Checklist || lines[1].Checked || !lines[2].Checked {
		t.Errorf("checklist lines = %+v", lines[1:3])
	}
	_, s, _, _ := back.CellAt(lines[3].Start)
	if !s.Bold {
		t.Errorf("bold run lost: %+v", s)
	}
}

func TestMarkdown_EscapesLeadingSyntax(t *testing.T) {
	doc := FromText("Title\n- [ ] not a box\n# not a heading", th)
	back, _, err := FromMarkdown(ToMarkdown(doc), th)
	if err != nil {
		t.Fatalf("FromMarkdown: %v", err)
	}
	if back.String() != doc.String() {
		t.Errorf("text = %q, want %q", back.String(), doc.String())
	}
	for _, l := range back.Lines() {
		if l.Checklist {
			t.Errorf("escaped line parsed as checklist: %+v", l)
		}
	}
}

func TestFromMarkdown_Frontmatter(t *testing.T) {
	created := time.Date(2025, 4, 9, 10, 0, 0, 0, time.UTC)
	head, err := MarshalFrontmatter(Frontmatter{Created: created})
	if err != nil {
		t.Fatalf("MarshalFrontmatter: %v", err)
	}
	input := string(head) + "# Trip plan\nBook flights\n"

	doc, fm, err := FromMarkdown([]byte(input), th)
	if err != nil {
		t.Fatalf("FromMarkdown: %v", err)
	}
	if !fm.Created.Equal(created) {
		t.Errorf("created = %v, want %v", fm.Created, created)
	}
	if doc.Title() != "Trip plan" {
		t.Errorf("title = %q", doc.Title())
	}
}

func TestFromMarkdown_InvalidFrontmatterFallback(t *testing.T) {
	doc, fm, err := FromMarkdown([]byte("---\n: invalid: yaml: {{{\n---\nBody\n"), th)
	if err != nil {
		t.Fatalf("FromMarkdown: %v", err)
	}
	if !fm.Created.IsZero() {
		t.Errorf("expected empty frontmatter")
	}
	if !strings.Contains(doc.PlainText(), "Body") {
		t.Errorf("body lost: %q", doc.PlainText())
	}
}

func TestFromMarkdown_InvalidUTF8(t *testing.T) {
	if _, _, err := FromMarkdown([]byte{0xff, 0xfe}, th); !errors.Is(err, apperr.ErrSerialization) {
		t.Errorf("err = %v, want ErrSerialization", err)
	}
}

func markdownRoundTrip(t *testing.T, doc *Document) *Document {
	t.Helper()
	back, _, err := FromMarkdown(ToMarkdown(doc), th)
	if err != nil {
		t.Fatalf("FromMarkdown: %v", err)
	}
	if back.String() != doc.String() {
		t.Fatalf("text = %q, want %q (markdown %q)", back.String(), doc.String(), ToMarkdown(doc))
	}
	return back
}

func TestMarkdown_MarkerWithoutSpace(t *testing.T) {
	doc := FromText("Todo\nmilk", th)
	doc, _ = Apply(doc, Caret(5), AddCheckbox{}, th)
	// Backspace over the space after the checkbox.
	doc, _ = Apply(doc, Caret(7), DeleteBackward{}, th)
	if doc.String() != "Todo\n\uFFFCmilk" {
		t.Fatalf("text = %q", doc.String())
	}
	if md := string(ToMarkdown(doc)); md != "# Todo\n- [ ]milk\n" {
		t.Errorf("markdown = %q", md)
	}
	back := markdownRoundTrip(t, doc)
	if !back.Lines()[1].Checklist {
		t.Errorf("checklist line lost")
	}
}

func TestMarkdown_MidLineMarker(t *testing.T) {
	doc := FromText("Title\nmilk\neggs", th)
	doc, _ = Apply(doc, Caret(11), AddCheckbox{}, th)
	doc, _ = Apply(doc, Caret(11), ToggleCheckbox{}, th)
	// Join the checklist line onto the line above.
	doc, _ = Apply(doc, Caret(11), DeleteBackward{}, th)
	if doc.String() != "Title\nmilk\uFFFC eggs" {
		t.Fatalf("text = %q", doc.String())
	}

	back := markdownRoundTrip(t, doc)
	_, _, box, _ := back.CellAt(10)
	if box == nil || !box.Checked {
		t.Errorf("mid-line checkbox = %+v, want checked", box)
	}
	if back.Lines()[1].Checklist {
		t.Errorf("mid-line marker made the line a checklist item")
	}
}

func TestMarkdown_BareMarkersAndBlankLines(t *testing.T) {
	base := Style{Size: th.BaseSize}
	doc := &Document{Runs: []Run{
		{Style: base, Checkbox: &Checkbox{}},
		{Text: "\n", Style: base},
		{Style: base, Checkbox: &Checkbox{Checked: true}},
		{Text: "  \n\n\n", Style: base},
	}}
	back := markdownRoundTrip(t, doc)
	lines := back.Lines()
	if !lines[0].Checklist || lines[0].Checked || !lines[1].Checked {
		t.Errorf("lines = %+v", lines[:2])
	}
}

func TestMarkdown_LiteralBracketsStayText(t *testing.T) {
	doc := FromText("Title\nsee [ ] and [x] here", th)
	back := markdownRoundTrip(t, doc)
	if strings.ContainsRune(back.String(), Marker) {
		t.Errorf("literal brackets became checkboxes: %q", back.String())
	}
}

func TestFromMarkdown_KeepsBlankFirstLineAfterFrontmatter(t *testing.T) {
	head, err := MarshalFrontmatter(Frontmatter{ID: "x"})
	if err != nil {
		t.Fatalf("MarshalFrontmatter: %v", err)
	}
	doc := FromText("\nbody", th)
	back, _, err := FromMarkdown(append(head, ToMarkdown(doc)...), th)
	if err != nil {
		t.Fatalf("FromMarkdown: %v", err)
	}
	if back.String() != "\nbody" {
		t.Errorf("text = %q", back.String())
	}
}
