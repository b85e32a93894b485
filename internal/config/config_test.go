package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, StyleGoogle, cfg.Format.Style)
	assert.Equal(t, 88, cfg.Format.MaxLineLen)
	assert.True(t, cfg.Processing.BackupFiles)
	assert.True(t, cfg.Processing.SkipPrivate)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docstringinator.yaml")
	yamlBody := `llm:
  provider: ollama
  model: llama3
  base_url: http://127.0.0.1:11434
format:
  style: numpy
  max_line_length: 100
processing:
  dry_run: true
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, StyleNumPy, cfg.Format.Style)
	assert.Equal(t, 100, cfg.Format.MaxLineLen)
	assert.True(t, cfg.Processing.DryRun)
	// Unset fields keep their defaults.
	assert.Equal(t, 20, cfg.Format.MinDocLen)
	assert.True(t, cfg.Processing.BackupFiles)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCSTRINGINATOR_PROVIDER", "anthropic")
	t.Setenv("DOCSTRINGINATOR_MODEL", "claude-3-haiku")
	t.Setenv("ANTHROPIC_API_KEY", "ak-env")
	t.Setenv("DOCSTRINGINATOR_API_KEY", "")

	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "claude-3-haiku", cfg.LLM.Model)
	assert.Equal(t, "ak-env", cfg.LLM.APIKey)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.LLM.APIKey = "sk-test"
	assert.NoError(t, Validate(cfg))

	t.Run("missing api key", func(t *testing.T) {
		cfg := Default()
		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api key required")
	})

	t.Run("ollama needs no key", func(t *testing.T) {
		cfg := Default()
		cfg.LLM.Provider = "ollama"
		cfg.LLM.Model = "llama3"
		assert.NoError(t, Validate(cfg))
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := Default()
		cfg.LLM.Provider = "dummy"
		assert.Error(t, Validate(cfg))
	})

	t.Run("unknown style", func(t *testing.T) {
		cfg := Default()
		cfg.LLM.APIKey = "sk-test"
		cfg.Format.Style = "epytext"
		assert.Error(t, Validate(cfg))
	})

	t.Run("zero line length", func(t *testing.T) {
		cfg := Default()
		cfg.LLM.APIKey = "sk-test"
		cfg.Format.MaxLineLen = 0
		assert.Error(t, Validate(cfg))
	})
}

func TestWriteDefault(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	path := filepath.Join(t.TempDir(), "docstringinator.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Format.Style, cfg.Format.Style)

	err = WriteDefault(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
