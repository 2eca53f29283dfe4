package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/summit-cms/internal/config"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

func TestCatalog(t *testing.T) {
	cfg := config.Config{}
	cfg.Media.DefaultFolder = "summit-2027"
	cfg.Collections = map[string]config.CollectionConfig{
		"speakers": {Folder: "summit-2027/speakers", Defaults: map[string]any{"name": "New Speaker"}},
		"sponsors": {},
	}

	cat := Catalog(cfg)

	assert.Equal(t, []string{"speakers", "sponsors"}, cat.Keys())
	sponsors, ok := cat.Lookup("sponsors")
	require.True(t, ok)
	assert.Equal(t, "summit-2027/sponsors", sponsors.Folder)
	speakers, _ := cat.Lookup("Speakers")
	assert.Equal(t, "New Speaker", speakers.Defaults["name"])
}

func TestNew_MemoryDriver(t *testing.T) {
	cfg := config.Config{}
	cfg.Records.Driver = DriverMemory
	cfg.Media.Provider = ProviderCloudinary
	cfg.Cloudinary.CloudName = "demo"
	cfg.Cloudinary.ApiKey = "key"
	cfg.Cloudinary.ApiSecret = "secret"
	cfg.Collections = map[string]config.CollectionConfig{"gallery": {Folder: "summit-2027/gallery"}}

	app, err := New(context.Background(), cfg, logger.NewNopLogger())
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Items)
	assert.NotNil(t, app.Reconciler)
	items, err := app.Items.List(context.Background(), "gallery")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNew_UnknownDrivers(t *testing.T) {
	cfg := config.Config{}
	cfg.Media.Provider = "dropbox"
	_, err := New(context.Background(), cfg, logger.NewNopLogger())
	assert.Error(t, err)

	cfg.Media.Provider = ProviderCloudinary
	cfg.Cloudinary.CloudName = "demo"
	cfg.Records.Driver = "sqlite"
	_, err = New(context.Background(), cfg, logger.NewNopLogger())
	assert.Error(t, err)
}
