package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metastore-scraper/config"
	"metastore-scraper/utils"
)

func TestRootCommandFlagsOverrideConfig(t *testing.T) {
	cfg := config.Load()
	cmd := newRootCommand(cfg)

	require.NoError(t, cmd.ParseFlags([]string{
		"--max-apps", "5",
		"--output", "out/apps.json",
		"--chromedriver", "/opt/chrome/chrome",
		"--api-url", "http://api:5000/api/import",
		"--skip-api",
		"--clear=false",
		"--engine", "rod",
		"--store", "memory",
		"--sync-demo",
	}))

	assert.Equal(t, 5, cfg.MaxApps)
	assert.Equal(t, "out/apps.json", cfg.OutputPath)
	assert.Equal(t, "/opt/chrome/chrome", cfg.ChromeBin)
	assert.Equal(t, "http://api:5000/api/import", cfg.APIURL)
	assert.True(t, cfg.SkipAPI)
	assert.False(t, cfg.ClearBeforeSync)
	assert.Equal(t, config.EngineRod, cfg.Engine)
	assert.Equal(t, config.StoreMemory, cfg.StoreBackend)
	assert.True(t, cfg.SyncDemo)
}

func TestRootCommandDefaults(t *testing.T) {
	t.Setenv("MAX_APPS", "")
	t.Setenv("API_URL", "")
	t.Setenv("CLEAR_BEFORE_SYNC", "")
	t.Setenv("SKIP_API", "")
	cfg := config.Load()
	cmd := newRootCommand(cfg)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, 20, cfg.MaxApps)
	assert.Equal(t, "http://localhost:5000/api/import", cfg.APIURL)
	assert.True(t, cfg.ClearBeforeSync)
	assert.False(t, cfg.SkipAPI)
}

func TestRootCommandReportsErrorsOnce(t *testing.T) {
	cmd := newRootCommand(config.Load())

	assert.True(t, cmd.SilenceErrors, "run already logs the failure")
	assert.True(t, cmd.SilenceUsage)
}

func TestRunRejectsInvalidConfigBeforeLaunching(t *testing.T) {
	cfg := config.Load()
	cfg.Engine = "selenium"

	err := run(context.Background(), cfg, utils.NewNopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser engine")
}
