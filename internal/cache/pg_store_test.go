package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGStore_Set(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPGStoreWithDB(mock)
	value := []byte(`[{"id":"alice"}]`)

	mock.ExpectExec("INSERT INTO cache_entries").
		WithArgs(FacesKey, value).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.Set(context.Background(), FacesKey, value)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_Get(t *testing.T) {
	t.Run("successful get", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		store := NewPGStoreWithDB(mock)
		value := []byte(`[]`)

		rows := pgxmock.NewRows([]string{"value"}).AddRow(value)
		mock.ExpectQuery("SELECT value FROM cache_entries").
			WithArgs(FacesKey).
			WillReturnRows(rows)

		got, err := store.Get(context.Background(), FacesKey)
		require.NoError(t, err)
		assert.Equal(t, value, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cache miss", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		store := NewPGStoreWithDB(mock)

		mock.ExpectQuery("SELECT value FROM cache_entries").
			WithArgs(FacesKey).
			WillReturnError(pgx.ErrNoRows)

		_, err = store.Get(context.Background(), FacesKey)
		assert.ErrorIs(t, err, ErrCacheMiss)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		store := NewPGStoreWithDB(mock)
		dbErr := errors.New("connection reset")

		mock.ExpectQuery("SELECT value FROM cache_entries").
			WithArgs(FacesKey).
			WillReturnError(dbErr)

		_, err = store.Get(context.Background(), FacesKey)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, ErrCacheMiss)
	})
}

func TestPGStore_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPGStoreWithDB(mock)

	mock.ExpectExec("DELETE FROM cache_entries WHERE key").
		WithArgs(FacesKey).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, store.Delete(context.Background(), FacesKey))
	assert.NoError(t, mock.ExpectationsWereMet())
}
