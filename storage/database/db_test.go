package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/classtrack/core"
)

func TestDataSourceName(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Database = core.DatabaseConfig{
		Engine:        "postgres",
		Host:          "db",
		Port:          "5432",
		Name:          "classtrack",
		User:          "app",
		Password:      "s3cret",
		AdminUser:     "postgres",
		AdminPassword: "root",
	}

	assert.Equal(t, "postgres://app:s3cret@db:5432/classtrack?sslmode=require&timezone=utc", dataSourceName("classtrack", false, conf))
	assert.Equal(t, "postgres://postgres:root@db:5432/postgres?sslmode=require&timezone=utc", dataSourceName("postgres", true, conf))

	conf.Database.DisableTLS = true
	assert.Contains(t, dataSourceName("classtrack", false, conf), "sslmode=disable")

	conf.Database.Engine = "sqlite3"
	assert.Equal(t, "file:classtrack.db?_busy_timeout=5000&_foreign_keys=on", dataSourceName("classtrack.db", false, conf))
	assert.Equal(t, "file::memory:?cache=shared&_busy_timeout=5000&_foreign_keys=on", dataSourceName(":memory:", false, conf))
}

func TestMigrations(t *testing.T) {
	db, err := OpenTest(t.Name())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var tables []string
	require.NoError(t, db.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'classes', 'attendances') ORDER BY name"))
	assert.Equal(t, []string{"attendances", "classes", "users"}, tables)

	// down then up again
	require.NoError(t, RunMigrations(db, "down"))
	var left []string
	require.NoError(t, db.Select(&left, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'users'"))
	assert.Empty(t, left)
	require.NoError(t, Migrate(db))
}

func TestCreateIfNotExistSQLite(t *testing.T) {
	assert.NoError(t, CreateIfNotExist(core.NewTestConfig()))
}
