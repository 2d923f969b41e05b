package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cperrors "github.com/opal-lang/colorprop/core/errors"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.Themeable)
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{"version": "1.2.0", "strict": true}`))
	require.NoError(t, err)

	want := Config{Version: "1.2.0", Themeable: true, Strict: true}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		errContains string
	}{
		{"not json", `{`, "not valid JSON"},
		{"missing version", `{"strict": true}`, "version"},
		{"bad semver", `{"version": "one"}`, "semver"},
		{"unknown key", `{"version": "1.0.0", "colour": true}`, "colour"},
		{"wrong type", `{"version": "1.0.0", "themeable": "yes"}`, "/themeable"},
		{"bad variable name", `{"version": "1.0.0", "variables": {"a b": "red"}}`, "variables"},
		{"empty variable value", `{"version": "1.0.0", "variables": {"a": ""}}`, "/variables/a"},
		{"future major", `{"version": "2.0.0"}`, "unsupported configuration version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, cperrors.IsKind(err, cperrors.ConfigError), "got %v", err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg := Default()
	cfg.Output = "dist/site.css"
	cfg.Manifest = "dist/site.cpm"
	cfg.Variables = map[string]string{"@brand": "#08c"}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestSaveRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := Default()
	cfg.Version = "not-a-version"

	err := Save(path, cfg)
	require.Error(t, err)
	assert.True(t, cperrors.IsKind(err, cperrors.ConfigError))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoadReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 1}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)

	var e *cperrors.Error
	require.ErrorAs(t, err, &e)
	got, ok := e.Value("path")
	require.True(t, ok)
	assert.Equal(t, path, got)
}
