package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file gives defaults", func(t *testing.T) {
		c, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), c)
	})

	t.Run("file and environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "picklist.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
backend:
  kind: table
  driver: sqlite3
  dsn: /tmp/picklist-backend.db
  timeout: 5s
cache:
  reload_on_write_failure: false
export:
  layout: location
`), 0644))
		t.Setenv("PICKLIST_APP_PORT", "9090")
		t.Setenv("PICKLIST_CACHE_REDIS_ADDR", "localhost:6379")

		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 9090, c.App.Port)
		assert.Equal(t, "table", c.Backend.Kind)
		assert.Equal(t, "sqlite3", c.Backend.Driver)
		assert.Equal(t, 5*time.Second, c.Backend.Timeout)
		assert.False(t, c.Cache.ReloadOnWriteFailure)
		assert.Equal(t, "localhost:6379", c.Cache.RedisAddr)
		assert.Equal(t, "location", c.Export.Layout)
		assert.Equal(t, "item_notes", c.Backend.NotesTable)
	})

	t.Run("invalid settings", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("backend:\n  kind: ftp\n"), 0644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	c := Default()
	assert.NoError(t, c.Validate())

	c.Backend.Kind = "table"
	assert.Error(t, c.Validate(), "table backend needs a driver")
	c.Backend.Driver = "postgres"
	assert.Error(t, c.Validate(), "and a DSN")
	c.Backend.DSN = "postgres://localhost/picklist"
	assert.NoError(t, c.Validate())

	c.App.Port = 0
	assert.Error(t, c.Validate())
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "picklist.yaml")
	_, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, Path())

	next := GetConfig()
	next.Import.WatchFolder = "/srv/picklists"
	next.Cache.WriteTimeout = 45 * time.Second
	require.NoError(t, SaveConfig(next))
	assert.Equal(t, "/srv/picklists", GetConfig().Import.WatchFolder)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, next, reloaded)

	bad := next
	bad.Export.Layout = "sideways"
	assert.Error(t, SaveConfig(bad))
	assert.Equal(t, next, GetConfig())

	SetConfig(Default())
}
