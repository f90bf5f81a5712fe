// internal/common/config/loader.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads config.yaml (and config.<APP_ENVIRONMENT>.yaml when present) from
// the usual search paths. A missing file is not an error: defaults apply.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // env overlay is optional

	return finalize(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finalize(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	// SERVER_PORT, CAMUNDA_ENABLED, ... override file values
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func finalize(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := overridePort(&cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ctc-budget-checker")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 15000)
	v.SetDefault("server.write_timeout", 15000)
	v.SetDefault("server.idle_timeout", 60000)
	v.SetDefault("server.shutdown_timeout", 30000)
	v.SetDefault("server.max_body_bytes", 64<<10)
	v.SetDefault("server.cors_origins", "*")

	v.SetDefault("budget.min_lpa", 0.0)
	v.SetDefault("budget.max_lpa", 200.0)

	v.SetDefault("camunda.enabled", false)
	v.SetDefault("camunda.broker_address", "localhost:26500")
	v.SetDefault("camunda.use_plaintext", true)
	v.SetDefault("camunda.task_type", "check-ctc-budget")
	v.SetDefault("camunda.max_jobs_active", 10)
	v.SetDefault("camunda.timeout", 30000)
	v.SetDefault("camunda.request_timeout", 10000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("observability.service_name", "ctc-budget-checker")
	v.SetDefault("observability.metrics_path", "/metrics")
	v.SetDefault("observability.jaeger_endpoint", "")
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() string {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overridePort honours the PORT variable set by hosting platforms.
func overridePort(cfg *Config) error {
	val := os.Getenv("PORT")
	if val == "" {
		return nil
	}
	port, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("invalid PORT %q: %w", val, err)
	}
	cfg.Server.Port = port
	return nil
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Budget.MinLPA < 0 {
		return fmt.Errorf("budget.min_lpa must not be negative")
	}
	if cfg.Budget.MaxLPA <= cfg.Budget.MinLPA {
		return fmt.Errorf("budget.max_lpa must be greater than budget.min_lpa")
	}
	if cfg.Camunda.Enabled {
		if cfg.Camunda.BrokerAddress == "" {
			return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
		}
		if cfg.Camunda.TaskType == "" {
			return fmt.Errorf("camunda.task_type is required when camunda is enabled")
		}
	}
	if !strings.HasPrefix(cfg.Observability.MetricsPath, "/") {
		return fmt.Errorf("observability.metrics_path must start with /")
	}
	return nil
}
