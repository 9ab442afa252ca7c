// Package dbtest opens throwaway databases for repository tests.
package dbtest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-users-orders/internal/platform/migrations"
	platformpostgres "github.com/Apurer/go-gin-users-orders/internal/platform/postgres"
)

// OpenSQLite returns an in-memory SQLite database with the application schema applied.
// The pool is pinned to one connection so every query sees the same memory database.
func OpenSQLite(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), platformpostgres.Config())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migrations.Run(db))
	return db
}
