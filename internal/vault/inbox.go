package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/starford/notebook/internal/richtext"
)

// ImportStats summarises an ImportDir run.
type ImportStats struct {
	Imported []string `json:"imported"`
	Rejected []string `json:"rejected"`
}

// ImportFile parses Markdown and stores it as a new note. A created time
// in the frontmatter is kept, so exported notes return to their own day.
func (v *Vault) ImportFile(ctx context.Context, data []byte) (string, error) {
	doc, fm, err := richtext.FromMarkdown(data, v.theme)
	if err != nil {
		return "", fmt.Errorf("vault: import: %w", err)
	}
	id, err := v.notes.CreateAt(ctx, doc, fm.Created)
	if err != nil {
		return "", fmt.Errorf("vault: import: %w", err)
	}
	return id, nil
}

// ImportDir imports every inbox file matching the pattern. Imported files
// are removed; files that do not parse are moved under .rejected/. A store
// failure stops the run and leaves the file in place.
func (v *Vault) ImportDir(ctx context.Context) (ImportStats, error) {
	var stats ImportStats
	if v.inbox == nil {
		return stats, errors.New("vault: inbox not configured")
	}

	files, err := v.inbox.List("", v.pattern)
	if err != nil {
		return stats, fmt.Errorf("vault: list inbox: %w", err)
	}

	for _, f := range files {
		if strings.HasPrefix(f.Path, rejectedDir+"/") {
			continue
		}
		data, err := v.inbox.Read(f.Path)
		if err != nil {
			v.log.Warn("inbox: read failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}

		doc, fm, err := richtext.FromMarkdown(data, v.theme)
		if err != nil {
			v.reject(f.Path, err)
			stats.Rejected = append(stats.Rejected, f.Path)
			continue
		}
		id, err := v.notes.CreateAt(ctx, doc, fm.Created)
		if err != nil {
			return stats, fmt.Errorf("vault: import %s: %w", f.Path, err)
		}
		if err := v.inbox.Delete(f.Path); err != nil {
			v.log.Warn("inbox: remove imported file", slog.String("path", f.Path), slog.String("error", err.Error()))
		}
		v.log.Info("inbox: imported", slog.String("path", f.Path), slog.String("id", id))
		stats.Imported = append(stats.Imported, id)
	}
	return stats, nil
}

func (v *Vault) reject(p string, cause error) {
	dest := path.Join(rejectedDir, time.Now().UTC().Format("20060102T150405")+"-"+path.Base(p))
	v.log.Warn("inbox: rejected", slog.String("path", p), slog.String("error", cause.Error()))
	if err := v.inbox.Move(p, dest); err != nil {
		v.log.Error("inbox: move rejected file", slog.String("path", p), slog.String("error", err.Error()))
	}
}
