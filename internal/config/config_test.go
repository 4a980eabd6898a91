package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "data/askpilot.db", cfg.Database.Path)
	assert.Equal(t, "gemini-embedding-001", cfg.Embedding.Model)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 2*time.Minute, cfg.StageTimeout())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "askpilot.yaml")
	content := `
server:
  addr: ":9090"
database:
  path: /tmp/custom.db
llm:
  api_key: file-key
  stage_timeout: 30s
  research_model: gemini-2.5-pro
logging:
  level: debug
  format: text
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/tmp/custom.db", cfg.Database.Path)
	assert.Equal(t, "file-key", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.ResearchModel)
	assert.Equal(t, 30*time.Second, cfg.StageTimeout())
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Sections absent from the file keep their defaults.
	assert.Equal(t, "gemini-embedding-001", cfg.Embedding.Model)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "askpilot.yaml")
	content := `
server:
  addr: ":9090"
llm:
  api_key: file-key
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("ASKPILOT_ADDR", ":7070")
	t.Setenv("ASKPILOT_DB", "/tmp/env.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.LLM.APIKey)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestStageTimeout_Fallback(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"valid", "45s", 45 * time.Second},
		{"empty", "", 2 * time.Minute},
		{"malformed", "soon", 2 * time.Minute},
		{"negative", "-10s", 2 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LLM.StageTimeout = tt.value
			assert.Equal(t, tt.want, cfg.StageTimeout())
		})
	}
}
