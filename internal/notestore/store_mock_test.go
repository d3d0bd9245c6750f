package notestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/notebook/internal/apperr"
	"github.com/starford/notebook/internal/models"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, WithIDGenerator(func() string { return "fixed" })), mock
}

var errDisk = errors.New("disk I/O error")

func TestCreate_InsertFailureIsStorageError(t *testing.T) {
	s, mock := newMockStore(t)
	var fired bool
	s.Subscribe(func(models.Event) { fired = true })

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO notes").
		WithArgs("fixed", sqlmock.AnyArg(), "hello", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errDisk)
	mock.ExpectRollback()

	_, err := s.Create(context.Background(), doc("Hello"))
	require.ErrorIs(t, err, apperr.ErrStorage)
	assert.ErrorIs(t, err, errDisk)
	assert.False(t, fired, "subscribers notified about a failed write")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_CommitFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO notes").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errDisk)

	_, err := s.Create(context.Background(), doc("Hello"))
	assert.ErrorIs(t, err, apperr.ErrStorage)
}

func TestUpdate_SerializationFailureTouchesNothing(t *testing.T) {
	s, mock := newMockStore(t)
	err := s.Update(context.Background(), "id", nil)
	require.ErrorIs(t, err, apperr.ErrSerialization)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_ZeroRowsIsNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE notes SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.Update(context.Background(), "ghost", doc("x"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NotErrorIs(t, err, apperr.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchAll_QueryFailure(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT id, content, created_at, updated_at FROM notes ORDER BY").
		WillReturnError(errDisk)

	_, err := s.FetchAll(context.Background())
	assert.ErrorIs(t, err, apperr.ErrStorage)
}

func TestFetchAll_ScansRows(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2025, 4, 9, 8, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "content", "created_at", "updated_at"}).
		AddRow("b", []byte(`{"v":1,"runs":[]}`), created.UnixNano(), created.Add(time.Hour).UnixNano()).
		AddRow("a", []byte(`{"v":1,"runs":[]}`), created.Add(-time.Hour).UnixNano(), created.UnixNano())
	mock.ExpectQuery("SELECT (.+) FROM notes").WillReturnRows(rows)

	all, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)
	assert.True(t, all[0].CreatedAt.Equal(created))
	assert.True(t, all[0].UpdatedAt.Equal(created.Add(time.Hour)))
}

func TestFetchByID_DriverErrorIsNotNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM notes WHERE id = ?").
		WithArgs("x").
		WillReturnError(errDisk)

	_, err := s.FetchByID(context.Background(), "x")
	assert.ErrorIs(t, err, apperr.ErrStorage)
	assert.NotErrorIs(t, err, apperr.ErrNotFound)
}

func TestDelete_ExecFailure(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM notes WHERE id = ?").WithArgs("x").WillReturnError(errDisk)
	mock.ExpectRollback()

	err := s.DeleteByID(context.Background(), "x")
	assert.ErrorIs(t, err, apperr.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}
