package database

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/codecollab/reviewd/internal/database/config"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, closeErr := db.DB(); closeErr == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// unreachableConfig points at a database no test environment runs, so
// connection attempts fail deterministically.
func unreachableConfig() config.Config {
	return config.Config{
		Host:     "localhost",
		User:     "reviewd",
		Password: "shh-secret",
		DBName:   "reviewd",
		Port:     "1",
		SSLMode:  "disable",
		TimeZone: "UTC",
	}
}

func disableRetries(t *testing.T) {
	t.Helper()
	t.Setenv("DB_RETRY_MAX_ATTEMPTS", "1")
	t.Setenv("DB_RETRY_INITIAL_DELAY", "1ms")
}

func TestNewWithConfig(t *testing.T) {
	t.Run("unreachable database fails", func(t *testing.T) {
		disableRetries(t)

		db, err := NewWithConfig(unreachableConfig())
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("connection errors never leak the password", func(t *testing.T) {
		disableRetries(t)

		db, err := NewWithConfig(unreachableConfig())
		require.Error(t, err)
		assert.Nil(t, db)
		assert.NotContains(t, err.Error(), "shh-secret")
	})
}

func TestNew(t *testing.T) {
	t.Run("fails without a reachable database", func(t *testing.T) {
		disableRetries(t)
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_PORT", "1")

		db, err := New()
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy connection", func(t *testing.T) {
		db := openSQLite(t)
		assert.NoError(t, HealthCheck(context.Background(), db))
	})

	t.Run("nil database", func(t *testing.T) {
		err := HealthCheck(context.Background(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database connection is nil")
	})

	t.Run("closed connection", func(t *testing.T) {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		require.NoError(t, err)

		sqlDB, err := db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		err = HealthCheck(context.Background(), db)
		require.Error(t, err)
		assert.True(t,
			strings.Contains(err.Error(), "database ping failed") ||
				strings.Contains(err.Error(), "failed to get underlying sql.DB"),
			"unexpected error: %s", err.Error())
	})
}

func TestClose(t *testing.T) {
	t.Run("close valid connection", func(t *testing.T) {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		require.NoError(t, err)

		require.NoError(t, Close(db))

		sqlDB, err := db.DB()
		require.NoError(t, err)
		assert.Error(t, sqlDB.Ping())
	})

	t.Run("close nil database is a no-op", func(t *testing.T) {
		assert.NoError(t, Close(nil))
	})
}

func TestGetStats(t *testing.T) {
	t.Run("stats from valid connection", func(t *testing.T) {
		db := openSQLite(t)

		stats, err := GetStats(db)
		require.NoError(t, err)
		require.NotNil(t, stats)
		assert.GreaterOrEqual(t, stats.MaxOpenConnections, 0)
	})

	t.Run("stats from nil database", func(t *testing.T) {
		stats, err := GetStats(nil)
		require.Error(t, err)
		assert.Nil(t, stats)
		assert.Contains(t, err.Error(), "database connection is nil")
	})
}
