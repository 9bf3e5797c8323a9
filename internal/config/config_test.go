package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "Bahnhofstrasse (Nord)", cfg.Dataset.ExcludedLocation)
	assert.Equal(t, 2022, cfg.Dataset.LastYearStart)
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, DefaultSourcePath, cfg.Dataset.SourcePath)
			},
		},
		{
			name: "file overrides defaults",
			yaml: `
server:
  port: 9000
dataset:
  source_path: data/bahnhofstrasse.xlsx
  last_year_start: 2023
cache:
  ttl: 1m
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, "data/bahnhofstrasse.xlsx", cfg.Dataset.SourcePath)
				assert.Equal(t, 2023, cfg.Dataset.LastYearStart)
				assert.Equal(t, time.Minute, cfg.Cache.TTL)
				// untouched keys keep their defaults
				assert.Equal(t, DefaultExcludedLocation, cfg.Dataset.ExcludedLocation)
			},
		},
		{
			name: "env overrides file",
			yaml: "server:\n  port: 9000\n",
			env: map[string]string{
				"STREETPULSE_SERVER_PORT":               "9100",
				"STREETPULSE_DATASET_DELIMITER":         ";",
				"STREETPULSE_SECURITY_ALLOWED_ORIGINS":  "http://a.test,http://b.test",
				"STREETPULSE_SECURITY_RATE_LIMIT_RPS":   "5.5",
				"STREETPULSE_LOGGING_LEVEL":             "debug",
				"STREETPULSE_DATASET_EXCLUDED_LOCATION": "Bahnhofstrasse (Süd)",
				"STREETPULSE_TELEMETRY_TRACING_ENABLED": "true",
				"STREETPULSE_TELEMETRY_TRACE_EXPORTER":  "stdout",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9100, cfg.Server.Port)
				assert.Equal(t, ';', cfg.Dataset.DelimiterRune())
				assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, 5.5, cfg.Security.RateLimit.RPS)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "Bahnhofstrasse (Süd)", cfg.Dataset.ExcludedLocation)
				assert.True(t, cfg.Telemetry.TracingEnabled)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"STREETPULSE_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "invalid log level",
			yaml:    "logging:\n  level: loud\n",
			wantErr: true,
		},
		{
			name:    "multi character delimiter",
			env:     map[string]string{"STREETPULSE_DATASET_DELIMITER": ";;"},
			wantErr: true,
		},
		{
			name:    "unknown timezone",
			env:     map[string]string{"STREETPULSE_DATASET_TIMEZONE": "Mars/Olympus_Mons"},
			wantErr: true,
		},
		{
			name:    "malformed env value",
			env:     map[string]string{"STREETPULSE_CACHE_TTL": "soon"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "server: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeFile(t, t.TempDir(), "config.yaml", tt.yaml)
			}

			cfg, err := LoadFile(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_ValidationErrors(t *testing.T) {
	t.Setenv("STREETPULSE_LOGGING_OUTPUT", "syslog")

	_, err := LoadFile("")
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "Output", verrs[0].Field())
}

func TestLoad_DotEnvAndConfigFileEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "STREETPULSE_DATASET_SOURCE_PATH=from-dotenv.csv\n")
	cfgPath := writeFile(t, dir, "custom.yaml", "cache:\n  enabled: false\n")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		os.Chdir(wd)
		os.Unsetenv("STREETPULSE_DATASET_SOURCE_PATH")
	})
	t.Setenv("STREETPULSE_CONFIG_FILE", cfgPath)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.csv", cfg.Dataset.SourcePath)
	assert.False(t, cfg.Cache.Enabled)
}

func TestServerConfig_Addr(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8050", ServerConfig{Host: "127.0.0.1", Port: 8050}.Addr())
	assert.Equal(t, ":9000", ServerConfig{Port: 9000}.Addr())
}

func TestDatasetConfig_Location(t *testing.T) {
	loc, err := DatasetConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = DatasetConfig{Timezone: "Europe/Zurich"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Zurich", loc.String())

	assert.Equal(t, rune(0), DatasetConfig{}.DelimiterRune())
}
