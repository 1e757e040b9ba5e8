package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.Nil(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvVar, "")
	cfg, err := Load("")
	require.Nil(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "%H:%M:%S", cfg.Format)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "annotate.yml", `format: "%T.%L"
color: always
log_file: /tmp/annotate.log
log_level: debug
envs:
  - local.env
env:
  DEBUG: "1"
`)
	cfg, err := Load(path)
	require.Nil(t, err)
	assert.Equal(t, "%T.%L", cfg.Format)
	assert.Equal(t, ColorAlways, cfg.Color)
	assert.Equal(t, "/tmp/annotate.log", cfg.LogFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{filepath.Join(dir, "local.env")}, cfg.Envfiles)
	assert.Equal(t, map[string]string{"DEBUG": "1"}, cfg.Env)
}

func TestLoadFromEnvVar(t *testing.T) {
	path := writeFile(t, t.TempDir(), "annotate.yml", "format: \"%s\"\n")
	t.Setenv(EnvVar, path)
	cfg, err := Load("")
	require.Nil(t, err)
	assert.Equal(t, "%s", cfg.Format)
	assert.Equal(t, path, cfg.Filepath)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, t.TempDir(), "annotate.yml", "formt: \"%s\"\n")
	_, err := Load(path)
	assert.NotNil(t, err)
}

func TestLoadRejectsBadColor(t *testing.T) {
	path := writeFile(t, t.TempDir(), "annotate.yml", "color: sometimes\n")
	_, err := Load(path)
	assert.NotNil(t, err)
}

func TestUseColor(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.UseColor(true))
	assert.False(t, cfg.UseColor(false))
	cfg.Color = ColorAlways
	assert.True(t, cfg.UseColor(false))
	cfg.Color = ColorNever
	assert.False(t, cfg.UseColor(true))
}

func TestEnviron(t *testing.T) {
	cfg := Default()
	env, err := cfg.Environ()
	require.Nil(t, err)
	assert.Nil(t, env)

	dir := t.TempDir()
	cfg.Envfiles = []string{writeFile(t, dir, "a.env", "FROM_FILE=1\n")}
	cfg.Env = map[string]string{"ZED": "z", "ALPHA": "a"}
	t.Setenv("ANNOTATE_TEST_INHERITED", "yes")

	env, err = cfg.Environ()
	require.Nil(t, err)
	assert.Contains(t, env, "ANNOTATE_TEST_INHERITED=yes")
	assert.Equal(t, []string{"FROM_FILE=1", "ALPHA=a", "ZED=z"}, env[len(env)-3:])
}
