package store

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestPostgresGet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := NewPostgres(db, zap.NewNop())

	rows := sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"team_abbr":"MAK"}`))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_entries WHERE key = $1 LIMIT 1")).
		WithArgs(KeySettings).
		WillReturnRows(rows)

	value := s.Get(context.Background(), KeySettings)
	assert.JSONEq(t, `{"team_abbr":"MAK"}`, string(value))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetMissingKey(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := NewPostgres(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_entries WHERE key = $1 LIMIT 1")).
		WithArgs("makers:absent").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	assert.Nil(t, s.Get(context.Background(), "makers:absent"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSetUpserts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := NewPostgres(db, zap.NewNop())

	mock.ExpectExec("INSERT INTO kv_entries").WillReturnResult(sqlmock.NewResult(0, 1))

	ok := s.Set(context.Background(), KeyMembers, []byte(`[]`))
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSetDegradesOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := NewPostgres(db, zap.NewNop())

	mock.ExpectExec("INSERT INTO kv_entries").WillReturnError(assert.AnError)

	ok := s.Set(context.Background(), KeyMembers, []byte(`[]`))
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClear(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := NewPostgres(db, zap.NewNop())

	mock.ExpectExec("DELETE FROM kv_entries WHERE key LIKE 'makers:%'").WillReturnResult(sqlmock.NewResult(0, 4))

	assert.True(t, s.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
