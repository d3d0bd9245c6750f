//go:build sqlite_fts5

package notestore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/starford/notebook/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
			id UNINDEXED,
			title,
			description,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(ctx context.Context, tx *sql.Tx, id, title, description string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM notes_fts WHERE id = ?`, id); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO notes_fts (id, title, description) VALUES (?, ?, ?)`,
		id, title, description)
	return err
}

func ftsDelete(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM notes_fts WHERE id = ?`, id)
	return err
}

// Search performs an FTS5 prefix search over titles and descriptions,
// ranked by relevance.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]models.Note, error) {
	if limit <= 0 {
		limit = 20
	}
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}
	return s.queryNotes(ctx, "search", `
		SELECT n.id, n.content, n.created_at, n.updated_at
		FROM notes_fts f
		JOIN notes n ON n.id = f.id
		WHERE notes_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, match, limit)
}

// ftsQuery quotes each term and turns it into a prefix match.
func ftsQuery(q string) string {
	var terms []string
	for _, t := range strings.Fields(q) {
		terms = append(terms, `"`+strings.ReplaceAll(t, `"`, `""`)+`"*`)
	}
	return strings.Join(terms, " ")
}
