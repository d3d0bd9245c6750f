package mcpserver

// NoteFormatContract describes the Markdown dialect the notebook tools accept
// and return.
const NoteFormatContract = `# Notebook Note Format

Notes are exchanged as Markdown. The store keeps them as rich text, so only
the constructs below survive a round trip.

## Structure

` + "```" + `markdown
---
id: 0196f3b0-1c2d-7e3f-8a4b-5c6d7e8f9a0b   # present on read, ignored on create
created: 2025-04-09T10:00:00Z            # present on read
updated: 2025-04-09T10:05:00Z            # present on read
---
# Title line

Body text with **bold**, *italic* and <u>underlined</u> spans.
- [ ] an open checklist item
- [x] a finished checklist item
` + "```" + `

## Rules

1. **The first line is the title.** A leading ` + "`" + `# ` + "`" + ` is stripped; the title is
   always shown bold at title size, so emphasis on it is discarded.
2. **The second line is the description** shown in lists and used by search.
3. **Checklist items** are lines starting with ` + "`" + `- [ ]` + "`" + ` or ` + "`" + `- [x]` + "`" + `, usually
   followed by a space. Toggle them with the ` + "`" + `toggle_checkbox` + "`" + ` tool using the
   zero-based line number. A ` + "`" + `[ ]` + "`" + ` or ` + "`" + `[x]` + "`" + ` inside a line is a checkbox too,
   but only a leading one makes the line a checklist item.
4. **Emphasis** is limited to ` + "`" + `**bold**` + "`" + `, ` + "`" + `*italic*` + "`" + ` and ` + "`" + `<u>underline</u>` + "`" + `.
   Other Markdown (links, lists, code) is kept as plain text.
5. **Escapes:** write ` + "`" + `\*` + "`" + `, ` + "`" + `\\` + "`" + `, ` + "`" + `\<` + "`" + ` and ` + "`" + `\[` + "`" + ` for literal characters.
6. **Encoding** is UTF-8.
`
