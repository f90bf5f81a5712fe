package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  environment: test\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Environment)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, "*", cfg.Server.CORSOrigins)
	assert.Equal(t, 0.0, cfg.Budget.MinLPA)
	assert.Equal(t, 200.0, cfg.Budget.MaxLPA)
	assert.False(t, cfg.Camunda.Enabled)
	assert.Equal(t, "check-ctc-budget", cfg.Camunda.TaskType)
	assert.Equal(t, "/metrics", cfg.Observability.MetricsPath)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_FileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  cors_origins: "https://agent.example.com"
budget:
  min_lpa: 1
  max_lpa: 150
camunda:
  enabled: true
  broker_address: zeebe:26500
logging:
  level: debug
  format: console
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://agent.example.com", cfg.Server.CORSOrigins)
	assert.Equal(t, 1.0, cfg.Budget.MinLPA)
	assert.Equal(t, 150.0, cfg.Budget.MaxLPA)
	assert.True(t, cfg.Camunda.Enabled)
	assert.Equal(t, "zeebe:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile_PortEnvOverride(t *testing.T) {
	t.Setenv("PORT", "8123")
	path := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8123, cfg.Server.Port)
}

func TestLoadFromFile_InvalidPortEnv(t *testing.T) {
	t.Setenv("PORT", "eighty")
	path := writeConfig(t, "{}\n")

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadFromFile_EnvKeyOverride(t *testing.T) {
	t.Setenv("LOGGING_LEVEL", "warn")
	path := writeConfig(t, "logging:\n  level: debug\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("ZEEBE_ADDR", "broker.internal:26500")
	path := writeConfig(t, "camunda:\n  broker_address: ${ZEEBE_ADDR}\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "broker.internal:26500", cfg.Camunda.BrokerAddress)
}

func TestLoadFromFile_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative min", "budget:\n  min_lpa: -1\n"},
		{"max not above min", "budget:\n  min_lpa: 50\n  max_lpa: 50\n"},
		{"port out of range", "server:\n  port: 70000\n"},
		{"camunda without task type", "camunda:\n  enabled: true\n  task_type: \"\"\n"},
		{"relative metrics path", "observability:\n  metrics_path: metrics\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

func TestLoadFromFile_SampleConfig(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join("..", "..", "..", "configs", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "ctc-budget-checker", cfg.App.Name)
	assert.Equal(t, 200.0, cfg.Budget.MaxLPA)
	assert.Equal(t, "check-ctc-budget", cfg.Camunda.TaskType)
	assert.False(t, cfg.Camunda.Enabled)
}
