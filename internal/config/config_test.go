package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every search location at an empty temp dir
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, ".config"))
	t.Setenv(EnvConfigFile, "")
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return tmpDir
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, "text", cfg.Format)
	assert.False(t, cfg.Quiet)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.Equal(t, "127.0.0.1:9001", cfg.IDE)
	assert.Equal(t, 5*time.Second, cfg.DialTimeoutDuration())
	assert.Empty(t, cfg.Mappings)
}

func TestLoad(t *testing.T) {
	t.Run("returns defaults when no config file exists", func(t *testing.T) {
		isolate(t)

		cfg, err := Load()
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "text", cfg.Format)
		assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	})

	t.Run("reads dbgpmap.yaml from current directory", func(t *testing.T) {
		tmpDir := isolate(t)
		err := os.WriteFile(filepath.Join(tmpDir, "dbgpmap.yaml"), []byte("ide: 10.0.0.2:9003\n"), 0644)
		require.NoError(t, err)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.2:9003", cfg.IDE)
	})

	t.Run("explicit file from environment", func(t *testing.T) {
		tmpDir := isolate(t)
		configPath := filepath.Join(tmpDir, "custom.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("listen: 127.0.0.1:9100\n"), 0644))
		t.Setenv(EnvConfigFile, configPath)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:9100", cfg.Listen)
		assert.Equal(t, configPath, ConfigFile())
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		tmpDir := isolate(t)
		err := os.WriteFile(filepath.Join(tmpDir, "dbgpmap.yaml"), []byte("listen: [\n"), 0644)
		require.NoError(t, err)

		_, err = Load()
		assert.Error(t, err)
	})
}

func TestLoadFromFile(t *testing.T) {
	t.Run("returns error for non-existent file", func(t *testing.T) {
		cfg, err := LoadFromFile("/nonexistent/path/config.yaml")
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "bad.yaml")
		err := os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644)
		require.NoError(t, err)

		cfg, err := LoadFromFile(configPath)
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("parses all config fields", func(t *testing.T) {
		tmpDir := t.TempDir()
		configContent := `
format: ndjson
quiet: true
verbose: true
listen: 0.0.0.0:9010
ide: 192.168.1.20:9001
dial_timeout: 2s
map_file: /etc/dbgpmap/map.yaml
watch: true
contexts:
  - Development/Staging
mappings:
  - logical: /Users/dev/project
    physical: /var/www/project
  - logical: /Users/dev/lib
    physical: /usr/share/php/lib
`
		configPath := filepath.Join(tmpDir, "dbgpmap.yaml")
		err := os.WriteFile(configPath, []byte(configContent), 0644)
		require.NoError(t, err)

		cfg, err := LoadFromFile(configPath)
		require.NoError(t, err)

		assert.Equal(t, "ndjson", cfg.Format)
		assert.True(t, cfg.Quiet)
		assert.True(t, cfg.Verbose)
		assert.Equal(t, "0.0.0.0:9010", cfg.Listen)
		assert.Equal(t, "192.168.1.20:9001", cfg.IDE)
		assert.Equal(t, 2*time.Second, cfg.DialTimeoutDuration())
		assert.Equal(t, "/etc/dbgpmap/map.yaml", cfg.MapFile)
		assert.True(t, cfg.Watch)
		assert.Equal(t, []string{"Development/Staging"}, cfg.Contexts)
		require.Len(t, cfg.Mappings, 2)
		assert.Equal(t, Mapping{Logical: "/Users/dev/project", Physical: "/var/www/project"}, cfg.Mappings[0])
	})
}

func TestConfigEnvironmentVariables(t *testing.T) {
	isolate(t)
	t.Setenv("DBGPMAP_FORMAT", "ndjson")
	t.Setenv("DBGPMAP_IDE", "10.1.1.1:9001")
	t.Setenv("DBGPMAP_DIAL_TIMEOUT", "750ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ndjson", cfg.Format)
	assert.Equal(t, "10.1.1.1:9001", cfg.IDE)
	assert.Equal(t, 750*time.Millisecond, cfg.DialTimeoutDuration())
}

func TestDialTimeoutFallback(t *testing.T) {
	cfg := Default()
	cfg.DialTimeout = "soon"
	assert.Equal(t, 5*time.Second, cfg.DialTimeoutDuration())
	cfg.DialTimeout = "-1s"
	assert.Equal(t, 5*time.Second, cfg.DialTimeoutDuration())
}

func TestConfigFile(t *testing.T) {
	t.Run("finds dbgpmap.yaml in current directory", func(t *testing.T) {
		tmpDir := isolate(t)
		configPath := filepath.Join(tmpDir, "dbgpmap.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("format: text"), 0644))

		found := ConfigFile()
		// Resolve symlinks for comparison (macOS /var -> /private/var)
		expectedPath, _ := filepath.EvalSymlinks(configPath)
		foundPath, _ := filepath.EvalSymlinks(found)
		assert.Equal(t, expectedPath, foundPath)
	})

	t.Run("finds .dbgpmap.yaml in home directory", func(t *testing.T) {
		tmpDir := isolate(t)
		home := filepath.Join(tmpDir, "home")
		require.NoError(t, os.MkdirAll(home, 0755))
		t.Setenv("HOME", home)
		configPath := filepath.Join(home, ".dbgpmap.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("format: text"), 0644))

		found := ConfigFile()
		expectedPath, _ := filepath.EvalSymlinks(configPath)
		foundPath, _ := filepath.EvalSymlinks(found)
		assert.Equal(t, expectedPath, foundPath)
	})

	t.Run("empty when nothing exists", func(t *testing.T) {
		isolate(t)
		if _, err := os.Stat("/etc/dbgpmap/dbgpmap.yaml"); err == nil {
			t.Skip("system config present")
		}
		assert.Empty(t, ConfigFile())
	})
}
