// FILE: lixenwraith/topl/config_test.go
package topl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolvedFixture(t *testing.T) *Config {
	t.Helper()
	data := map[string]any{
		"name": "service-{{env}}",
		"server": map[string]any{
			"host":    "localhost",
			"port":    int64(8080),
			"debug":   true,
			"ratio":   0.75,
			"timeout": "30s",
			"tags":    []any{"a", "b"},
		},
	}
	cfg, err := Resolve(data, map[string]string{"env": "prod"})
	require.NoError(t, err)
	return cfg
}

// TestConfigGet tests dotted-path access over the resolved document
func TestConfigGet(t *testing.T) {
	cfg := resolvedFixture(t)

	name, found := cfg.Get("name")
	require.True(t, found)
	assert.Equal(t, "service-prod", name)

	_, found = cfg.Get("server.missing")
	assert.False(t, found)

	_, found = cfg.Get("")
	assert.False(t, found)
}

// TestConfigTypedGetters tests conversions on the typed accessors
func TestConfigTypedGetters(t *testing.T) {
	cfg := resolvedFixture(t)

	t.Run("String", func(t *testing.T) {
		s, err := cfg.String("server.host")
		require.NoError(t, err)
		assert.Equal(t, "localhost", s)

		// Conversion from numeric value
		s, err = cfg.String("server.port")
		require.NoError(t, err)
		assert.Equal(t, "8080", s)

		_, err = cfg.String("server.nope")
		assert.Error(t, err)
	})

	t.Run("Int64", func(t *testing.T) {
		i, err := cfg.Int64("server.port")
		require.NoError(t, err)
		assert.Equal(t, int64(8080), i)

		// Truncating float conversion
		i, err = cfg.Int64("server.ratio")
		require.NoError(t, err)
		assert.Equal(t, int64(0), i)

		_, err = cfg.Int64("server.host")
		assert.Error(t, err)
	})

	t.Run("Bool", func(t *testing.T) {
		b, err := cfg.Bool("server.debug")
		require.NoError(t, err)
		assert.True(t, b)

		// Numeric interpretation: non-zero is true
		b, err = cfg.Bool("server.port")
		require.NoError(t, err)
		assert.True(t, b)
	})

	t.Run("Float64", func(t *testing.T) {
		f, err := cfg.Float64("server.ratio")
		require.NoError(t, err)
		assert.Equal(t, 0.75, f)

		f, err = cfg.Float64("server.port")
		require.NoError(t, err)
		assert.Equal(t, 8080.0, f)
	})
}

// TestConfigUnresolvedIsCopy verifies callers cannot mutate the result state
func TestConfigUnresolvedIsCopy(t *testing.T) {
	cfg, err := Resolve(map[string]any{"a": "{{gone}}"}, nil)
	require.NoError(t, err)

	first := cfg.Unresolved()
	require.Equal(t, []string{"{{gone}}"}, first)
	first[0] = "tampered"

	assert.Equal(t, []string{"{{gone}}"}, cfg.Unresolved())
}

// TestConfigToMapIsCopy verifies ToMap returns an independent tree
func TestConfigToMapIsCopy(t *testing.T) {
	cfg := resolvedFixture(t)

	m := cfg.ToMap()
	m["server"].(map[string]any)["host"] = "tampered"

	host, err := cfg.String("server.host")
	require.NoError(t, err)
	assert.Equal(t, "localhost", host)
}

// TestConfigScan tests mapstructure decoding of the resolved document
func TestConfigScan(t *testing.T) {
	type ServerConfig struct {
		Host    string        `toml:"host"`
		Port    int           `toml:"port"`
		Debug   bool          `toml:"debug"`
		Timeout time.Duration `toml:"timeout"`
		Tags    []string      `toml:"tags"`
	}

	cfg := resolvedFixture(t)

	t.Run("Subtree", func(t *testing.T) {
		var server ServerConfig
		require.NoError(t, cfg.Scan("server", &server))

		assert.Equal(t, "localhost", server.Host)
		assert.Equal(t, 8080, server.Port)
		assert.True(t, server.Debug)
		assert.Equal(t, 30*time.Second, server.Timeout)
		assert.Equal(t, []string{"a", "b"}, server.Tags)
	})

	t.Run("WholeDocument", func(t *testing.T) {
		var whole struct {
			Name   string       `toml:"name"`
			Server ServerConfig `toml:"server"`
		}
		require.NoError(t, cfg.Scan("", &whole))
		assert.Equal(t, "service-prod", whole.Name)
		assert.Equal(t, "localhost", whole.Server.Host)
	})

	t.Run("AbsentPathZeroValues", func(t *testing.T) {
		var server ServerConfig
		require.NoError(t, cfg.Scan("does.not.exist", &server))
		assert.Equal(t, ServerConfig{}, server)
	})

	t.Run("NonTablePath", func(t *testing.T) {
		var server ServerConfig
		err := cfg.Scan("server.host", &server)
		assert.ErrorIs(t, err, ErrNotTable)
	})

	t.Run("NonPointerTarget", func(t *testing.T) {
		var server ServerConfig
		assert.Error(t, cfg.Scan("server", server))
	})
}
