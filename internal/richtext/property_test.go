package richtext

import (
	"testing"

	"pgregory.net/rapid"
)

func drawEdit(t *rapid.T) Edit {
	switch rapid.IntRange(0, 5).Draw(t, "kind") {
	case 0:
		return InsertText{Text: rapid.StringMatching(`[a-z *]{0,6}`).Draw(t, "text")}
	case 1:
		return InsertText{Text: "\n"}
	case 2:
		return DeleteBackward{}
	case 3:
		return ToggleCheckbox{}
	case 4:
		return AddCheckbox{}
	default:
		return ApplyStyle{Trait: Trait(rapid.IntRange(1, 3).Draw(t, "trait"))}
	}
}

func drawDocument(t *rapid.T) (*Document, Selection) {
	doc := FromText(rapid.StringMatching(`[A-Za-z ]{0,8}(\n[a-z ]{0,8}){0,3}`).Draw(t, "seed"), th)
	sel := Caret(0)
	steps := rapid.IntRange(0, 12).Draw(t, "steps")
	for i := 0; i < steps; i++ {
		a := rapid.IntRange(0, doc.Len()).Draw(t, "a")
		b := rapid.IntRange(0, doc.Len()).Draw(t, "b")
		doc, sel = Apply(doc, Selection{Start: a, End: b}, drawEdit(t), th)
	}
	return doc, sel
}

func TestProperty_TitleStyleHolds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc, _ := drawDocument(t)
		title := doc.Title() != ""
		inTitle := true
		for i := 0; i < doc.Len(); i++ {
			r, s, box, _ := doc.CellAt(i)
			if r == '\n' && box == nil {
				inTitle = false
			}
			switch {
			case !inTitle || box != nil:
				if s.Size != th.BaseSize {
					t.Fatalf("cell %d size = %v, want base", i, s.Size)
				}
			case title:
				if s != (Style{Bold: true, Size: th.TitleSize}) {
					t.Fatalf("title cell %d style = %+v", i, s)
				}
			default:
				if s != (Style{Size: th.BaseSize}) {
					t.Fatalf("blank title cell %d style = %+v", i, s)
				}
			}
		}
	})
}

func TestProperty_ToggleIsInvolution(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc, _ := drawDocument(t)
		pos := rapid.IntRange(0, doc.Len()).Draw(t, "pos")

		twice, _ := Apply(doc, Caret(pos), ToggleCheckbox{}, th)
		twice, _ = Apply(twice, Caret(pos), ToggleCheckbox{}, th)

		before, after := doc.Lines(), twice.Lines()
		if len(before) != len(after) {
			t.Fatalf("line count changed: %d -> %d", len(before), len(after))
		}
		for i := range before {
			if before[i] != after[i] {
				t.Fatalf("line %d changed: %+v -> %+v", i, before[i], after[i])
			}
		}
	})
}

func TestProperty_CodecPreservesDocument(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc, _ := drawDocument(t)
		data, err := Marshal(doc)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		got, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if got.String() != doc.String() || len(got.Runs) != len(doc.Runs) {
			t.Fatalf("document changed: %q -> %q", doc.String(), got.String())
		}
	})
}

func TestProperty_SelectionStaysInBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc, sel := drawDocument(t)
		if sel.Start < 0 || sel.End > doc.Len() || sel.Start > sel.End {
			t.Fatalf("selection %+v out of bounds for length %d", sel, doc.Len())
		}
	})
}

func TestProperty_MarkdownPreservesDocument(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc, _ := drawDocument(t)
		md := ToMarkdown(doc)
		back, _, err := FromMarkdown(md, th)
		if err != nil {
			t.Fatalf("FromMarkdown: %v", err)
		}
		if back.String() != doc.String() {
			t.Fatalf("text %q -> %q via %q", doc.String(), back.String(), md)
		}
		for i := 0; i < doc.Len(); i++ {
			_, _, want, _ := doc.CellAt(i)
			_, _, got, _ := back.CellAt(i)
			if (want == nil) != (got == nil) || (want != nil && want.Checked != got.Checked) {
				t.Fatalf("checkbox at %d: %+v -> %+v via %q", i, want, got, md)
			}
		}
	})
}
