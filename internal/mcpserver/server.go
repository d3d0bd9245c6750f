// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes notebook tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notebook/internal/apperr"
	"github.com/starford/notebook/internal/editor"
	"github.com/starford/notebook/internal/notelist"
	"github.com/starford/notebook/internal/notestore"
	"github.com/starford/notebook/internal/richtext"
	"github.com/starford/notebook/internal/vault"
)

const formatURI = "notebook://note-format"

// Server wraps the MCP server with notebook tools.
type Server struct {
	mcp   *server.MCPServer
	store notestore.NoteStore
	theme richtext.Theme
	log   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithTheme sets the sizes used when converting Markdown to documents.
func WithTheme(th richtext.Theme) Option {
	return func(s *Server) { s.theme = th }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a new MCP server with all notebook tools registered.
func New(store notestore.NoteStore, version string, opts ...Option) *Server {
	s := &Server{store: store, theme: richtext.DefaultTheme(), log: slog.Default()}
	for _, o := range opts {
		o(s)
	}

	s.mcp = server.NewMCPServer(
		"Notebook",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes grouped by creation day, most recent first."),
		mcp.WithString("query", mcp.Description("Optional case-insensitive filter on title and description")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search note titles and descriptions."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note as Markdown with id and timestamps in frontmatter."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note from Markdown. The first line becomes the title. "+
			"Read the format via the get_note_contract tool or the "+formatURI+" resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content following the note format")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Replace the body of an existing note with Markdown."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content following the note format")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("toggle_checkbox",
		mcp.WithDescription("Flip the checklist item on a line of a note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("Zero-based line number; line 0 is the title")),
	), s.toggleCheckbox)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the Markdown dialect accepted by create_note and update_note."),
	), s.getNoteContract)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Note Format",
			mcp.WithResourceDescription("Markdown dialect used to exchange notes."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// toolError turns a store error into a tool result. Unexpected failures are
// logged and reported without detail.
func (s *Server) toolError(op string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("note not found")
	case errors.Is(err, apperr.ErrSerialization), errors.Is(err, apperr.ErrInvalidInput):
		return mcp.NewToolResultError(err.Error())
	}
	s.log.Error("mcp "+op+" failed", slog.String("error", err.Error()))
	return mcp.NewToolResultError(op + " failed")
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.store.FetchAll(ctx)
	if err != nil {
		return s.toolError("list", err), nil
	}
	models := notelist.Filter(notelist.DecodeAll(notes, s.log), req.GetString("query", ""))
	if len(models) == 0 {
		return mcp.NewToolResultText("no notes"), nil
	}

	var b strings.Builder
	for i, g := range notelist.GroupByDay(models, nil, "") {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "## %s\n", g.Label)
		for _, n := range g.Notes {
			fmt.Fprintf(&b, "- %s %s", n.ID, n.Title)
			if n.Description != "" {
				fmt.Fprintf(&b, ": %s", n.Description)
			}
			b.WriteByte('\n')
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.store.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return s.toolError("search", err), nil
	}
	out, _ := json.MarshalIndent(notelist.DecodeAll(notes, s.log), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.store.FetchByID(ctx, id)
	if err != nil {
		return s.toolError("read", err), nil
	}
	data, err := vault.Render(n)
	if err != nil {
		return s.toolError("read", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, _, err := richtext.FromMarkdown([]byte(content), s.theme)
	if err != nil {
		return s.toolError("create", err), nil
	}
	id, err := s.store.Create(ctx, doc)
	if err != nil {
		return s.toolError("create", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", id)), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, _, err := richtext.FromMarkdown([]byte(content), s.theme)
	if err != nil {
		return s.toolError("update", err), nil
	}
	if err := s.store.Update(ctx, id, doc); err != nil {
		return s.toolError("update", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s", id)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return s.toolError("delete", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) toggleCheckbox(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	line, err := req.RequireInt("line")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	l, err := editor.ToggleLine(ctx, s.store, id, line, editor.WithTheme(s.theme), editor.WithLogger(s.log))
	if err != nil {
		return s.toolError("toggle", err), nil
	}
	state := "unchecked"
	if l.Checked {
		state = "checked"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s", state, strings.TrimSpace(l.Text))), nil
}

func (s *Server) getNoteContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
