package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Import.Sheet = "STOCK"
	cfg.Import.InboundMarkers = []string{"OPEN", "IN", "RECEIVED"}
	cfg.Sink.Kind = "postgres"
	cfg.Catalog.Source = "postgres"

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "Stock import", cfg.Import.Note)
	assert.Equal(t, []string{"OPEN", "IN"}, cfg.Import.InboundMarkers)
	assert.Equal(t, 100, cfg.Import.BatchSize)
	assert.Equal(t, "csv", cfg.Catalog.Source)
	assert.Equal(t, "catalog/products.csv", cfg.Catalog.Path)
	assert.Equal(t, "script", cfg.Sink.Kind)
	assert.Equal(t, "out", cfg.Sink.OutDir)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("sink:\n  kind: csv\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Sink.Kind)
	assert.Equal(t, "out", cfg.Sink.OutDir)
	assert.Equal(t, "Stock import", cfg.Import.Note)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("sink:\n  kind: mysql\ncatalog:\n  source: ldap\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink.kind")
	assert.Contains(t, err.Error(), "catalog.source")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "note: Stock import")
	assert.Contains(t, contents, "kind: script")
	assert.Contains(t, contents, "batch_size: 100")
	assert.NotContains(t, contents, "url:")
}

func TestApplyEnv_DatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app@db/stock")
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(t.TempDir()))
	assert.Equal(t, "postgres://app@db/stock", cfg.Database.URL)
}

func TestApplyEnv_DotEnvFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATABASE_URL=postgres://env@file/stock\n"), 0o644))

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(dir))
	assert.Equal(t, "postgres://env@file/stock", cfg.Database.URL)
}

func TestApplyEnv_NoEnvKeepsFileValue(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	cfg := Default()
	cfg.Database.URL = "postgres://from/yaml"
	require.NoError(t, cfg.ApplyEnv(t.TempDir()))
	assert.Equal(t, "postgres://from/yaml", cfg.Database.URL)
}
