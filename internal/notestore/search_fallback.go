//go:build !sqlite_fts5

package notestore

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/starford/notebook/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE on the title and description
	// columns, which are stored case-folded.
	return nil
}

func ftsUpsert(_ context.Context, _ *sql.Tx, _, _, _ string) error { return nil }

func ftsDelete(_ context.Context, _ *sql.Tx, _ string) error { return nil }

// Search returns notes whose title or description contains query, newest
// first. Case is folded in Go with strings.ToLower on both sides, so
// matching agrees with notelist.Filter for non-ASCII text.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]models.Note, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	q, args, err := builder.Select(noteColumns...).
		From("notes").
		Where(sq.Or{
			sq.Expr(`title LIKE ? ESCAPE '\'`, like),
			sq.Expr(`description LIKE ? ESCAPE '\'`, like),
		}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, storageErr("build search", err)
	}
	return s.queryNotes(ctx, "search", q, args...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
