package notestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/starford/notebook/internal/apperr"
	"github.com/starford/notebook/internal/models"
	"github.com/starford/notebook/internal/notelist"
	"github.com/starford/notebook/internal/richtext"
)

var noteColumns = []string{"id", "content", "created_at", "updated_at"}

func storageErr(op string, err error) error {
	return fmt.Errorf("notestore: %s: %w: %w", op, apperr.ErrStorage, err)
}

// encoded is a document ready to be written. title and description are
// case-folded search keys; listings re-derive the display text from content.
type encoded struct {
	content     []byte
	title       string
	description string
}

func encode(doc *richtext.Document) (encoded, error) {
	content, err := richtext.Marshal(doc)
	if err != nil {
		return encoded{}, fmt.Errorf("notestore: %w", err)
	}
	title, desc := notelist.DeriveTitleAndDescription(doc.PlainText())
	return encoded{
		content:     content,
		title:       strings.ToLower(title),
		description: strings.ToLower(desc),
	}, nil
}

// Create stores doc as a new note and returns its ID.
func (s *Store) Create(ctx context.Context, doc *richtext.Document) (string, error) {
	return s.CreateAt(ctx, doc, time.Time{})
}

// CreateAt stores doc as a new note created at the given time, as when
// importing a note exported elsewhere. A zero time means now. UpdatedAt is
// now, or created if that lies in the future.
func (s *Store) CreateAt(ctx context.Context, doc *richtext.Document, created time.Time) (string, error) {
	enc, err := encode(doc)
	if err != nil {
		return "", err
	}
	id := s.newID()
	now := s.now()
	if created.IsZero() {
		created = now
	}
	updated := now
	if created.After(updated) {
		updated = created
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", storageErr("begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	query, args, err := builder.Insert("notes").
		Columns("id", "content", "title", "description", "created_at", "updated_at").
		Values(id, enc.content, enc.title, enc.description, created.UnixNano(), updated.UnixNano()).
		ToSql()
	if err != nil {
		return "", storageErr("build insert", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return "", storageErr("insert note", err)
	}
	if err := ftsUpsert(ctx, tx, id, enc.title, enc.description); err != nil {
		return "", storageErr("insert fts", err)
	}
	if err := tx.Commit(); err != nil {
		return "", storageErr("commit", err)
	}

	s.emit(models.EventCreated, id)
	return id, nil
}

// Update replaces the content of note id and refreshes its UpdatedAt.
// CreatedAt is left untouched.
func (s *Store) Update(ctx context.Context, id string, doc *richtext.Document) error {
	enc, err := encode(doc)
	if err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query, args, err := builder.Update("notes").
		Set("content", enc.content).
		Set("title", enc.title).
		Set("description", enc.description).
		Set("updated_at", s.now().UnixNano()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return storageErr("build update", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return storageErr("update note", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return storageErr("update note", err)
	} else if n == 0 {
		return fmt.Errorf("notestore: update %s: %w", id, apperr.ErrNotFound)
	}
	if err := ftsUpsert(ctx, tx, id, enc.title, enc.description); err != nil {
		return storageErr("update fts", err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit", err)
	}

	s.emit(models.EventUpdated, id)
	return nil
}

// FetchAll returns every note, newest first.
func (s *Store) FetchAll(ctx context.Context) ([]models.Note, error) {
	query, args, err := builder.Select(noteColumns...).
		From("notes").
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, storageErr("build list", err)
	}
	return s.queryNotes(ctx, "list notes", query, args...)
}

// FetchByID returns a single note or apperr.ErrNotFound.
func (s *Store) FetchByID(ctx context.Context, id string) (models.Note, error) {
	query, args, err := builder.Select(noteColumns...).
		From("notes").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Note{}, storageErr("build get", err)
	}

	n, err := scanNote(s.conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, fmt.Errorf("notestore: get %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Note{}, storageErr("get note", err)
	}
	return n, nil
}

// DeleteByID removes note id. Unknown IDs yield apperr.ErrNotFound and
// leave the store unchanged.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query, args, err := builder.Delete("notes").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return storageErr("build delete", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return storageErr("delete note", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return storageErr("delete note", err)
	} else if n == 0 {
		return fmt.Errorf("notestore: delete %s: %w", id, apperr.ErrNotFound)
	}
	if err := ftsDelete(ctx, tx, id); err != nil {
		return storageErr("delete fts", err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit", err)
	}

	s.emit(models.EventDeleted, id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(r rowScanner) (models.Note, error) {
	var (
		n                models.Note
		created, updated int64
	)
	if err := r.Scan(&n.ID, &n.Content, &created, &updated); err != nil {
		return models.Note{}, err
	}
	n.CreatedAt = time.Unix(0, created).UTC()
	n.UpdatedAt = time.Unix(0, updated).UTC()
	return n, nil
}

func (s *Store) queryNotes(ctx context.Context, op, query string, args ...any) ([]models.Note, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return out, nil
}
