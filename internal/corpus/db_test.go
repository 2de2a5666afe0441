package corpus

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votewire/autopost/internal/errors"
)

// newMockStore wires a DBStore to a sqlmock connection.
func newMockStore(t *testing.T) (*DBStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewDBStoreWithDB(sqlx.NewDb(db, "postgres")), mock
}

func TestDBStore_Titles(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"post_title"}).
		AddRow("First Post").
		AddRow("  padded  ").
		AddRow("")
	mock.ExpectQuery("SELECT post_title").WillReturnRows(rows)

	titles, err := store.Titles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"First Post", "padded"}, titles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStore_Candidates(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"meta_value"}).
		AddRow("Ram Chandra Poudel").
		AddRow("Sher Bahadur Deuba")
	mock.ExpectQuery("SELECT pm.meta_value").WillReturnRows(rows)

	candidates, err := store.Candidates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Ram Chandra Poudel", "Sher Bahadur Deuba"}, candidates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStore_NoRows(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT post_title").
		WillReturnRows(sqlmock.NewRows([]string{"post_title"}))

	titles, err := store.Titles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, titles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStore_QueryError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT post_title").WillReturnError(sql.ErrConnDone)

	_, err := store.Titles(context.Background())
	require.ErrorIs(t, err, errors.ErrCorpusUnavailable)
	require.ErrorIs(t, err, sql.ErrConnDone)
	assert.Contains(t, err.Error(), "query post titles")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStore_CanceledContext(t *testing.T) {
	store, _ := newMockStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Titles(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDBStore_Close(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	store := NewDBStoreWithDB(sqlx.NewDb(db, "postgres"))
	require.NoError(t, store.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
