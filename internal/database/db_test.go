package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return Wrap(sqlDB, zerolog.Nop()), mock
}

func TestHealthCheck(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing()

	assert.NoError(t, db.HealthCheck(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck_Down(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	assert.Error(t, db.HealthCheck(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitReady_Retries(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing().WillReturnError(errors.New("starting up"))
	mock.ExpectPing().WillReturnError(errors.New("starting up"))
	mock.ExpectPing()

	require.NoError(t, db.waitReady(3, time.Millisecond))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitReady_GivesUp(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing().WillReturnError(errors.New("starting up"))
	mock.ExpectPing().WillReturnError(errors.New("still down"))

	err := db.waitReady(2, time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still down")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStats(t *testing.T) {
	db, _ := newMockDB(t)
	db.SetMaxOpenConns(7)

	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}
