package database

import (
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm/logger"

	"github.com/cdplates/cdplates/internal/config"
)

func TestHealthCheck(t *testing.T) {
	sqlDB, sqlMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	// gorm.Open pings once on its own.
	sqlMock.ExpectPing()
	db, err := Open(postgres.New(postgres.Config{Conn: sqlDB}), slog.LevelError)
	require.NoError(t, err)

	sqlMock.ExpectPing()
	assert.NoError(t, HealthCheck(db))

	sqlMock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.ErrorContains(t, HealthCheck(db), "database ping failed")

	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHealthCheck_NilDB(t *testing.T) {
	assert.EqualError(t, HealthCheck(nil), "database is nil")
	assert.NoError(t, Close(nil))
}

func TestNew_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "captures.db"),
	}

	db, err := New(cfg, slog.LevelInfo)
	require.NoError(t, err)
	assert.NoError(t, HealthCheck(db))
	assert.NoError(t, Close(db))
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, slog.LevelInfo)
	assert.EqualError(t, err, "database config cannot be nil")

	_, err = New(&config.DatabaseConfig{Driver: "oracle"}, slog.LevelInfo)
	assert.EqualError(t, err, "unsupported database driver: oracle")
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, gormLogLevel(slog.LevelDebug))
	assert.Equal(t, logger.Warn, gormLogLevel(slog.LevelInfo))
	assert.Equal(t, logger.Warn, gormLogLevel(slog.LevelWarn))
	assert.Equal(t, logger.Error, gormLogLevel(slog.LevelError))
}
