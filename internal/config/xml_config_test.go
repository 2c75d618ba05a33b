package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/circuit-designer/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "EDITOR_MODE", "PIN_POLICY"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), FileName)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, models.ModeGeneral, cfg.EditorMode())
	assert.Equal(t, models.PinPolicy(""), cfg.PinPolicy())
	assert.Equal(t, 30*time.Minute, cfg.SessionTimeout())
	assert.True(t, cfg.Journal.Enabled)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<CircuitDesigner>")
	assert.Contains(t, string(data), "<DefaultMode>general</DefaultMode>")
}

func TestLoadConfigFileAndOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), FileName)
	xmlDoc := `<CircuitDesigner>
  <Server><Port>9000</Port><BindAddress>127.0.0.1</BindAddress></Server>
  <Editor><DefaultMode>Constrained</DefaultMode></Editor>
  <Sessions><CleanupIntervalMinutes>0</CleanupIntervalMinutes></Sessions>
</CircuitDesigner>`
	require.NoError(t, os.WriteFile(path, []byte(xmlDoc), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.GetServerAddr())
	assert.Equal(t, models.ModeConstrained, cfg.EditorMode())
	assert.Equal(t, 5*time.Minute, cfg.CleanupInterval())
	// Sections missing from the file keep their defaults.
	assert.Equal(t, "info", cfg.Advanced.LogLevel)

	t.Setenv("PORT", "9100")
	t.Setenv("PIN_POLICY", "permissive")
	t.Setenv("LOG_LEVEL", "debug")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, models.PinPolicyPermissive, cfg.PinPolicy())
	assert.Equal(t, "debug", cfg.Advanced.LogLevel)
}

func TestLoadConfigRejectsUnknownEditorSettings(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, DefaultConfig().Save(path))

	t.Setenv("EDITOR_MODE", "sandbox")
	_, err := LoadConfig(path)
	assert.Error(t, err)

	t.Setenv("EDITOR_MODE", "")
	t.Setenv("PIN_POLICY", "loose")
	_, err = LoadConfig(path)
	assert.Error(t, err)
}
