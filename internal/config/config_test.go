package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "postgres", cfg.Records.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Records.CacheTTL)
	assert.Equal(t, "cloudinary", cfg.Media.Provider)
	assert.Equal(t, "summit-2027", cfg.Media.DefaultFolder)
	assert.Equal(t, 300, cfg.Presentation.ColumnWidth)
	assert.Equal(t, 200, cfg.Presentation.MinHeight)
	assert.Equal(t, 600, cfg.Presentation.MaxHeight)

	require.Contains(t, cfg.Collections, "speakers")
	assert.Equal(t, "summit-2027/speakers", cfg.Collections["speakers"].Folder)
	assert.Equal(t, "New Speaker", cfg.Collections["speakers"].Defaults["name"])
}

func TestLoadConfigFromYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
app:
  port: "9090"
records:
  driver: memory
collections:
  sponsors:
    folder: summit-2027/sponsors
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("MEDIA_PROVIDER", "s3")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "memory", cfg.Records.Driver)
	assert.Equal(t, "s3", cfg.Media.Provider)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "summit-2027/sponsors", cfg.Collections["sponsors"].Folder)
}
