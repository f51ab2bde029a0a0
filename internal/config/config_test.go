package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8000
  allowedOrigins:
    - "http://localhost:5173"

database:
  host: "localhost"
  port: 3306
  user: "root"
  password: "secret"
  name: "rbi_data"

ai:
  baseURL: "http://llm.internal:8001/v1"
  apiKey: "EMPTY"
  model: "mistralai/Mistral-7B-Instruct-v0.3"

archive:
  backend: "local"
  localPath: "/var/lib/regdesk/archive"

rateLimit:
  capacity: 20
  refillRate: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "mysql", cfg.Database.Driver, "driver defaults to mysql")
	assert.Equal(t, "local", cfg.Archive.Backend)
	assert.Equal(t, "mistralai/Mistral-7B-Instruct-v0.3", cfg.AI.Model)
	assert.Equal(t, 20, cfg.RateLimit.Capacity)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	path := writeConfig(t, `
database:
  host: "db.internal"
  port: 3306
  user: "regdesk"
  password: "pw"
  name: "rbi_data"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t,
		"regdesk:pw@tcp(db.internal:3306)/rbi_data?charset=utf8mb4&loc=UTC",
		cfg.MySQLDSN())
}

func TestPostgresDSN(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: "postgres"
  host: "db.internal"
  port: 5432
  user: "regdesk"
  password: "pw"
  name: "rbi_data"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t,
		"host=db.internal port=5432 user=regdesk password=pw dbname=rbi_data sslmode=disable",
		cfg.PostgresDSN())
}
