package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		wantErr  bool
		validate func(t *testing.T, settings Settings)
	}{
		{
			name:    "defaults with no environment",
			envVars: map[string]string{},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.ModelPath != "artifacts/model.json" {
					t.Errorf("expected default ModelPath, got %s", settings.ModelPath)
				}
				if settings.StatsPath != "artifacts/feature_stats.json" {
					t.Errorf("expected default StatsPath, got %s", settings.StatsPath)
				}
				if settings.Port != 8000 {
					t.Errorf("expected default port 8000, got %d", settings.Port)
				}
				if settings.DefaultThreshold != 0.5 {
					t.Errorf("expected default threshold 0.5, got %f", settings.DefaultThreshold)
				}
				if settings.TruthColumn != "Class" {
					t.Errorf("expected default truth column Class, got %s", settings.TruthColumn)
				}
				if settings.RESTTimeout != 5*time.Second {
					t.Errorf("expected default REST timeout 5s, got %v", settings.RESTTimeout)
				}
			},
		},
		{
			name: "custom settings",
			envVars: map[string]string{
				"MODEL_PATH":        "/models/fraud.json",
				"STATS_PATH":        "/models/stats.json",
				"PORT":              "9090",
				"DEFAULT_THRESHOLD": "0.7",
				"REST_TIMEOUT":      "10s",
				"REMOTE_MODEL_URL":  "http://scorer:8000",
				"TRUTH_COLUMN":      "is_fraud",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.ModelPath != "/models/fraud.json" {
					t.Errorf("expected ModelPath /models/fraud.json, got %s", settings.ModelPath)
				}
				if settings.Port != 9090 {
					t.Errorf("expected port 9090, got %d", settings.Port)
				}
				if settings.DefaultThreshold != 0.7 {
					t.Errorf("expected threshold 0.7, got %f", settings.DefaultThreshold)
				}
				if settings.RESTTimeout != 10*time.Second {
					t.Errorf("expected REST timeout 10s, got %v", settings.RESTTimeout)
				}
				if settings.RemoteModelURL != "http://scorer:8000" {
					t.Errorf("expected remote URL, got %s", settings.RemoteModelURL)
				}
				if settings.TruthColumn != "is_fraud" {
					t.Errorf("expected truth column is_fraud, got %s", settings.TruthColumn)
				}
			},
		},
		{
			name: "invalid port",
			envVars: map[string]string{
				"PORT": "70000",
			},
			wantErr: true,
		},
		{
			name: "threshold out of range",
			envVars: map[string]string{
				"DEFAULT_THRESHOLD": "1.5",
			},
			wantErr: true,
		},
		{
			name: "unknown log level",
			envVars: map[string]string{
				"LOG_LEVEL": "loud",
			},
			wantErr: true,
		},
		{
			name: "timeout too long",
			envVars: map[string]string{
				"REST_TIMEOUT": "5m",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			settings, err := loadFromEnv()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	content := `
model:
  path: /opt/models/fraud.json
  statsPath: /opt/models/feature_stats.json
  defaultThreshold: 0.65
eval:
  truthColumn: Class
system:
  dataPath: /var/lib/fraudsvc
  port: 8443
  restTimeout: 3s
  logLevel: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	settings, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settings.ModelPath != "/opt/models/fraud.json" {
		t.Errorf("expected YAML ModelPath, got %s", settings.ModelPath)
	}
	if settings.Port != 8443 {
		t.Errorf("expected port 8443, got %d", settings.Port)
	}
	if settings.DefaultThreshold != 0.65 {
		t.Errorf("expected threshold 0.65, got %f", settings.DefaultThreshold)
	}
	if settings.RESTTimeout != 3*time.Second {
		t.Errorf("expected REST timeout 3s, got %v", settings.RESTTimeout)
	}
	if settings.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", settings.LogLevel)
	}
}

func TestLoadFromYAML_EnvOverrides(t *testing.T) {
	content := `
model:
  defaultThreshold: 0.65
system:
  port: 8443
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9999")
	t.Setenv("DEFAULT_THRESHOLD", "0.8")

	settings, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settings.Port != 9999 {
		t.Errorf("environment should override YAML port, got %d", settings.Port)
	}
	if settings.DefaultThreshold != 0.8 {
		t.Errorf("environment should override YAML threshold, got %f", settings.DefaultThreshold)
	}
}

func TestLoadFromYAML_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadFromYAML_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("model: [not: valid"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
