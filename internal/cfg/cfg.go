package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	ModelPath        string
	StatsPath        string
	DataPath         string
	Port             int
	RemoteModelURL   string
	RESTTimeout      time.Duration
	DefaultThreshold float64
	TruthColumn      string
	ShutdownGrace    time.Duration
	LogLevel         string
}

type ConfigFile struct {
	Model struct {
		Path             string  `yaml:"path"`
		StatsPath        string  `yaml:"statsPath"`
		RemoteURL        string  `yaml:"remoteURL"`
		DefaultThreshold float64 `yaml:"defaultThreshold"`
	} `yaml:"model"`

	Eval struct {
		TruthColumn string `yaml:"truthColumn"`
	} `yaml:"eval"`

	System struct {
		DataPath      string `yaml:"dataPath"`
		Port          int    `yaml:"port"`
		RESTTimeout   string `yaml:"restTimeout"`
		ShutdownGrace string `yaml:"shutdownGrace"`
		LogLevel      string `yaml:"logLevel"`
	} `yaml:"system"`
}

// Load reads settings from a YAML file named by CONFIG_FILE, falling back to
// environment variables. A .env file in the working directory is applied
// first so local runs need no exported shell state.
func Load() (Settings, error) {
	_ = godotenv.Load() // absent .env is fine

	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}

	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	restTimeout, err := time.ParseDuration(config.System.RESTTimeout)
	if err != nil {
		restTimeout = 5 * time.Second
	}

	shutdownGrace, err := time.ParseDuration(config.System.ShutdownGrace)
	if err != nil {
		shutdownGrace = 10 * time.Second
	}

	// Environment variables override file values.
	settings := Settings{
		ModelPath:        getEnvOrDefault("MODEL_PATH", config.Model.Path),
		StatsPath:        getEnvOrDefault("STATS_PATH", config.Model.StatsPath),
		DataPath:         getEnvOrDefault("DATA_PATH", config.System.DataPath),
		Port:             getIntFromEnvOrConfig("PORT", config.System.Port),
		RemoteModelURL:   getEnvOrDefault("REMOTE_MODEL_URL", config.Model.RemoteURL),
		RESTTimeout:      getDurationOrDefault("REST_TIMEOUT", restTimeout),
		DefaultThreshold: getFloatFromEnvOrConfig("DEFAULT_THRESHOLD", config.Model.DefaultThreshold),
		TruthColumn:      getEnvOrDefault("TRUTH_COLUMN", config.Eval.TruthColumn),
		ShutdownGrace:    shutdownGrace,
		LogLevel:         getEnvOrDefault("LOG_LEVEL", config.System.LogLevel),
	}

	applyDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ModelPath:        getEnvOrDefault("MODEL_PATH", "artifacts/model.json"),
		StatsPath:        getEnvOrDefault("STATS_PATH", "artifacts/feature_stats.json"),
		DataPath:         getEnvOrDefault("DATA_PATH", "artifacts"),
		Port:             getIntOrDefault("PORT", 8000),
		RemoteModelURL:   os.Getenv("REMOTE_MODEL_URL"), // optional
		RESTTimeout:      getDurationOrDefault("REST_TIMEOUT", 5*time.Second),
		DefaultThreshold: getFloatOrDefault("DEFAULT_THRESHOLD", 0.5),
		TruthColumn:      getEnvOrDefault("TRUTH_COLUMN", "Class"),
		ShutdownGrace:    getDurationOrDefault("SHUTDOWN_GRACE", 10*time.Second),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func applyDefaults(s *Settings) {
	if s.ModelPath == "" {
		s.ModelPath = "artifacts/model.json"
	}
	if s.StatsPath == "" {
		s.StatsPath = "artifacts/feature_stats.json"
	}
	if s.DataPath == "" {
		s.DataPath = "artifacts"
	}
	if s.Port == 0 {
		s.Port = 8000
	}
	if s.TruthColumn == "" {
		s.TruthColumn = "Class"
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	return configValue
}

func getFloatFromEnvOrConfig(key string, configValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	return configValue
}

// validateSettings performs validation of configuration values.
func validateSettings(settings *Settings) error {
	if settings.StatsPath == "" {
		return fmt.Errorf("feature stats path cannot be empty")
	}

	if settings.Port < 1 || settings.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", settings.Port)
	}

	if settings.RESTTimeout < time.Second || settings.RESTTimeout > time.Minute {
		return fmt.Errorf("REST timeout must be between 1s and 1m, got %v", settings.RESTTimeout)
	}

	if settings.ShutdownGrace < time.Second || settings.ShutdownGrace > 5*time.Minute {
		return fmt.Errorf("shutdown grace must be between 1s and 5m, got %v", settings.ShutdownGrace)
	}

	if settings.DefaultThreshold < 0 || settings.DefaultThreshold > 1 {
		return fmt.Errorf("default threshold must be between 0 and 1, got %f", settings.DefaultThreshold)
	}

	switch settings.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", settings.LogLevel)
	}

	return nil
}
