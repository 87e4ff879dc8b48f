package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/edifact", cfg.Server.BasePath)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 24*time.Hour, cfg.Intake.DuplicateWindow)
	assert.Equal(t, 10<<20, cfg.Intake.MaxSize)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	assert.Equal(t, "edifact", cfg.Storage.MongoDB.Database)
	assert.Equal(t, "interchanges", cfg.Storage.MongoDB.Collection)
	assert.True(t, cfg.Intake.Delimiters().IsDefault())

	assert.Equal(t, cfg, Default())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestParse_Full(t *testing.T) {
	t.Setenv("TEST_MONGODB_URI", "mongodb://db.example.com:27017")

	cfg, err := Parse([]byte(`
logging:
  level: debug
  format: json
intake:
  duplicateWindow: 48h
  maxSize: 2048
  una: "UNA|^.?@~"
storage:
  type: mongodb
  mongodb:
    uri: ${TEST_MONGODB_URI}
    database: orders
    timeout: 3s
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 48*time.Hour, cfg.Intake.DuplicateWindow)
	assert.Equal(t, 2048, cfg.Intake.MaxSize)
	assert.Equal(t, '^', cfg.Intake.Delimiters().Data)
	assert.Equal(t, "mongodb://db.example.com:27017", cfg.Storage.MongoDB.URI)
	assert.Equal(t, "orders", cfg.Storage.MongoDB.Database)
	assert.Equal(t, "interchanges", cfg.Storage.MongoDB.Collection)
	assert.Equal(t, 3*time.Second, cfg.Storage.MongoDB.Timeout)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad yaml", "logging: [", "parsing config file"},
		{"bad port", "server:\n  port: 70000\n", "server.port"},
		{"tls without files", "server:\n  tls:\n    enabled: true\n", "server.tls"},
		{"bad level", "logging:\n  level: loud\n", "logging.level"},
		{"bad format", "logging:\n  format: xml\n", "logging.format"},
		{"negative window", "intake:\n  duplicateWindow: -1h\n", "intake.duplicateWindow"},
		{"short una", "intake:\n  una: \"UNA:+\"\n", "intake.una"},
		{"unknown storage", "storage:\n  type: sqlite\n", "storage.type"},
		{"mongodb without uri", "storage:\n  type: mongodb\n", "storage.mongodb.uri"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoggingConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := LoggingConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "control_ref", "REF123")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"control_ref":"REF123"`)

	_, err = LoggingConfig{Level: "nope", Format: "text"}.NewLogger(&buf)
	assert.Error(t, err)
}
