package database

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMigrationFiles_SortedSQLOnly(t *testing.T) {
	fsys := fstest.MapFS{
		"002_orders.sql":   {Data: []byte("SELECT 1;")},
		"001_kv_store.sql": {Data: []byte("SELECT 1;")},
		"README.md":        {Data: []byte("notes")},
	}

	files, err := getMigrationFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_kv_store.sql", "002_orders.sql"}, files)
}

func TestMigrations_Embedded(t *testing.T) {
	files, err := getMigrationFiles(Migrations())
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		content, err := fs.ReadFile(Migrations(), name)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(content), "CREATE TABLE"), name)
	}
}
