// Package storetest opens throwaway in-memory databases for tests.
package storetest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/suteetoe/inventory-service/pkg/config"
	"github.com/suteetoe/inventory-service/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var nameReplacer = strings.NewReplacer("/", "_", " ", "_", "#", "_")

// Open returns a migrated in-memory SQLite database private to t.
// A single connection keeps every statement on the same memory database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(&config.DBConfig{
		Adapter:      "sqlite",
		DBName:       fmt.Sprintf("file:%s?mode=memory&cache=shared", nameReplacer.Replace(t.Name())),
		MaxOpenConns: 1,
		LogLevel:     logger.Silent,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.Migrate(db))
	return db
}
