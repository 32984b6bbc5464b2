package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 30, cfg.AI.TimeoutSeconds)
	assert.Equal(t, 18, cfg.Pipeline.MinAge)
	assert.Equal(t, 100, cfg.Pipeline.MaxAge)
	assert.InDelta(t, 0.65, cfg.Pipeline.ApproveThreshold, 1e-9)
	assert.InDelta(t, 0.35, cfg.Pipeline.RejectThreshold, 1e-9)
	assert.Contains(t, cfg.Pipeline.AllowedEmployment, "self_employed")
}

func TestLoadExplicitValuesWin(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
database:
  driver: memory
pipeline:
  minAge: 21
  approveThreshold: 0.8
  rejectThreshold: 0.2
`))
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 21, cfg.Pipeline.MinAge)
	assert.InDelta(t, 0.8, cfg.Pipeline.ApproveThreshold, 1e-9)
	assert.InDelta(t, 0.2, cfg.Pipeline.RejectThreshold, 1e-9)
}

func TestLoadRejectsInvertedThresholds(t *testing.T) {
	_, err := Load(writeConfig(t, `
pipeline:
  approveThreshold: 0.3
  rejectThreshold: 0.6
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejectThreshold")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [not a map"))
	assert.Error(t, err)
}

func TestDSNHelpers(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
database:
  driver: postgres
  host: db.local
  port: 5432
  user: intake
  password: secret
  name: social_intake
  sslMode: require
`))
	require.NoError(t, err)

	assert.Equal(t,
		"host=db.local port=5432 user=intake password=secret dbname=social_intake sslmode=require",
		cfg.PostgresDSN())

	cfg.Database.Port = 3306
	assert.Equal(t,
		"intake:secret@tcp(db.local:3306)/social_intake?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.MySQLDSN())
}
