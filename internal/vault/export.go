package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/starford/notebook/internal/apperr"
	"github.com/starford/notebook/internal/models"
	"github.com/starford/notebook/internal/richtext"
	"github.com/starford/notebook/internal/storage"
)

// ExportStats summarises an Export run.
type ExportStats struct {
	Written int `json:"written"`
	Skipped int `json:"skipped"`
	Removed int `json:"removed"`
}

// FileName returns the export file name of note id.
func FileName(id string) string {
	return id + ".md"
}

// Render encodes a note as Markdown with a YAML frontmatter header.
func Render(n models.Note) ([]byte, error) {
	doc, err := richtext.Unmarshal(n.Content)
	if err != nil {
		return nil, fmt.Errorf("vault: render %s: %w", n.ID, err)
	}
	head, err := richtext.MarshalFrontmatter(richtext.Frontmatter{
		ID:      n.ID,
		Created: n.CreatedAt,
		Updated: n.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("vault: render %s: %w", n.ID, err)
	}
	return append(head, richtext.ToMarkdown(doc)...), nil
}

// Export writes every note to the export directory, skipping files whose
// content is unchanged, and removes files of notes that no longer exist.
func (v *Vault) Export(ctx context.Context) (ExportStats, error) {
	var stats ExportStats
	if v.export == nil {
		return stats, errors.New("vault: export directory not configured")
	}

	notes, err := v.notes.FetchAll(ctx)
	if err != nil {
		return stats, fmt.Errorf("vault: export: %w", err)
	}
	files, err := v.export.List("", "*.md")
	if err != nil {
		return stats, fmt.Errorf("vault: export: %w", err)
	}
	onDisk := make(map[string]string, len(files))
	for _, f := range files {
		onDisk[f.Path] = f.Checksum
	}

	keep := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		name := FileName(n.ID)
		keep[name] = struct{}{}

		data, err := Render(n)
		if err != nil {
			v.log.Warn("export: skip note", slog.String("id", n.ID), slog.String("error", err.Error()))
			continue
		}
		if onDisk[name] == storage.Checksum(data) {
			stats.Skipped++
			continue
		}
		if err := v.export.Write(name, data); err != nil {
			return stats, fmt.Errorf("vault: export %s: %w", n.ID, err)
		}
		stats.Written++
	}

	for name := range onDisk {
		if _, ok := keep[name]; ok {
			continue
		}
		if err := v.export.Delete(name); err != nil {
			v.log.Warn("export: remove stale", slog.String("path", name), slog.String("error", err.Error()))
			continue
		}
		stats.Removed++
	}

	v.log.Debug("export: done",
		slog.Int("written", stats.Written),
		slog.Int("skipped", stats.Skipped),
		slog.Int("removed", stats.Removed))
	return stats, nil
}

// Mirror applies one store event to the export directory. Its use is
// store.Subscribe(func(ev models.Event) { v.Mirror(ctx, ev) }).
func (v *Vault) Mirror(ctx context.Context, ev models.Event) {
	if v.export == nil {
		return
	}
	name := FileName(ev.ID)
	switch ev.Kind {
	case models.EventDeleted:
		if err := v.export.Delete(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			v.log.Warn("mirror: delete", slog.String("id", ev.ID), slog.String("error", err.Error()))
		}
	case models.EventCreated, models.EventUpdated:
		n, err := v.notes.FetchByID(ctx, ev.ID)
		if errors.Is(err, apperr.ErrNotFound) {
			return
		}
		if err != nil {
			v.log.Warn("mirror: fetch", slog.String("id", ev.ID), slog.String("error", err.Error()))
			return
		}
		data, err := Render(n)
		if err != nil {
			v.log.Warn("mirror: render", slog.String("id", ev.ID), slog.String("error", err.Error()))
			return
		}
		if err := v.export.Write(name, data); err != nil {
			v.log.Warn("mirror: write", slog.String("id", ev.ID), slog.String("error", err.Error()))
		}
	}
}
