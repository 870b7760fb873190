// Package databasetest opens throwaway SQLite-backed databases for tests.
package databasetest

import (
	"path/filepath"
	"testing"

	"github.com/rpupo63/tech-knowledge-api/database"
	"github.com/rpupo63/tech-knowledge-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated Database on a fresh SQLite file with foreign keys enforced.
// The file is removed when the test ends.
func New(t testing.TB) database.Database {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tech_knowledge.db")
	db, err := gorm.Open(sqlite.Open("file:"+path+"?_foreign_keys=1"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection serialises writers, which SQLite needs anyway
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.Migrate(db))
	return database.New(db)
}
