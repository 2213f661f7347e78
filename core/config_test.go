package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("ENV", "test")

	t.Run("defaults", func(t *testing.T) {
		conf := NewConfig()
		assert.True(t, conf.TestMode)
		assert.Equal(t, "test", conf.Env)
		assert.Equal(t, RemoteDemo, conf.Remote.Mode)
		assert.Equal(t, "sqlite", conf.Database.Engine)
		assert.False(t, conf.Cache.HealCorrupt)
		assert.Equal(t, "cache.db", filepath.Base(conf.Cache.Path))
		assert.Equal(t, 10*time.Second, conf.Server.ShutdownTimeout)
	})

	t.Run("env and dotenv", func(t *testing.T) {
		dotEnv := "TEST_DATABASE_ENGINE=postgres\nTEST_REMOTE_URL=http://copilot.test/\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte(dotEnv), 0o600))
		t.Cleanup(func() {
			_ = os.Unsetenv("TEST_DATABASE_ENGINE")
			_ = os.Unsetenv("TEST_REMOTE_URL")
		})
		t.Setenv("TEST_REMOTE_MODE", "HTTP")
		t.Setenv("TEST_CACHE_HEALCORRUPT", "true")
		t.Setenv("TEST_SERVER_JWTEXPIRATIONDELTA", "1h")

		conf := NewConfig()
		assert.Equal(t, RemoteHTTP, conf.Remote.Mode)
		assert.Equal(t, "http://copilot.test", conf.Remote.URL)
		assert.Equal(t, "postgres", conf.Database.Engine)
		assert.True(t, conf.Cache.HealCorrupt)
		assert.Equal(t, time.Hour, conf.Server.JWTExpirationDelta)
	})
}
