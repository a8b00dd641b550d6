package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/parseas"
	"github.com/reoring/parseas/internal/config"
)

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`
cache_size: "64"
fail_fast: true
type_name: Payload
log:
  level: debug
load:
  protocol: yaml
  encoding: latin1
`))
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.CacheSize)
	assert.True(t, cfg.FailFast)
	assert.Equal(t, "Payload", cfg.TypeName)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Log.MaxBackups, "unset nested keys keep defaults")
	assert.Equal(t, "yaml", cfg.Load.Protocol)
	assert.Equal(t, "latin1", cfg.Load.Encoding)
	assert.Equal(t, 4, cfg.Jobs)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "cache_sise: 10"},
		{"bad protocol", "load: {protocol: pickle}"},
		{"bad decoder", "load: {json_decoder: simdjson}"},
		{"zero cache", "cache_size: 0"},
		{"not yaml", "cache_size: [1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestFile(t *testing.T) {
	cfg, err := config.File("")
	require.NoError(t, err)
	assert.Equal(t, parseas.DefaultCacheSize, cfg.CacheSize)

	path := filepath.Join(t.TempDir(), "parseas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jobs: 2\n"), 0o644))
	cfg, err = config.File(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Jobs)

	_, err = config.File(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOptions_AppliedToValidation(t *testing.T) {
	cfg, err := config.Parse([]byte("load: {protocol: yaml}\nfail_fast: true\n"))
	require.NoError(t, err)

	got, err := parseas.ValidateStringAs[[]int](context.Background(), "- 1\n- '2'\n", cfg.Options()...)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)

	_, err = parseas.ValidateStringAs[[]int](context.Background(), "[a, b]", cfg.Options()...)
	var iss parseas.Issues
	require.True(t, errors.As(err, &iss))
	assert.Len(t, iss, 1, "fail-fast stops after the first issue")
}

func TestOptions_UnsafeNeedsOptIn(t *testing.T) {
	cfg, err := config.Parse([]byte("load: {protocol: gob}\n"))
	require.NoError(t, err)
	_, err = parseas.ValidateStringAs[any](context.Background(), "", cfg.Options()...)
	assert.ErrorIs(t, err, parseas.ErrUnsafeProtocol)
}
