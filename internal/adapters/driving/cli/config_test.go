package cli

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/services"
)

func memorySettings() *services.SettingsService {
	return services.NewSettingsService(memory.NewConfigStore(), nil)
}

func TestConfigShowCmd_TOML(t *testing.T) {
	resetGlobals(t)
	svc := memorySettings()
	settings := domain.DefaultSettings()
	settings.Store.Token = "secret-token"
	require.NoError(t, svc.Save(settings))
	settingsService = svc

	out, err := execute(t, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[engine]")
	assert.Contains(t, out, "docsearchdemo")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "secret-token")
}

func TestConfigShowCmd_AppliesFlags(t *testing.T) {
	resetGlobals(t)
	settingsService = memorySettings()

	out, err := execute(t, "config", "show", "--format", "json", "--index", "reports", "--workers", "4")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	engine, ok := got["Engine"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "reports", engine["Index"])
	syncSettings, ok := got["Sync"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 4, syncSettings["Workers"], 0)
}

func TestConfigShowCmd_InvalidFlag(t *testing.T) {
	resetGlobals(t)
	settingsService = memorySettings()

	_, err := execute(t, "config", "show", "--store", "ftp")

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestConfigShowCmd_UnknownFormat(t *testing.T) {
	resetGlobals(t)
	settingsService = memorySettings()

	_, err := execute(t, "config", "show", "--format", "ini")

	assert.ErrorContains(t, err, "unknown format")
}

func TestConfigPathCmd(t *testing.T) {
	resetGlobals(t)
	dir := t.TempDir()
	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	settingsService = services.NewSettingsService(store, nil)

	out, err := execute(t, "config", "path")

	require.NoError(t, err)
	assert.Contains(t, out, dir)
	assert.Contains(t, out, file.ConfigFileName)
}

func TestConfigPathCmd_InMemory(t *testing.T) {
	resetGlobals(t)
	settingsService = memorySettings()

	out, err := execute(t, "config", "path")

	require.NoError(t, err)
	assert.Contains(t, out, "(in memory)")
}

func TestConfigInitCmd(t *testing.T) {
	resetGlobals(t)
	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	settingsService = services.NewSettingsService(store, nil)

	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default settings")

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "docsearchdemo")

	_, err = execute(t, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestConfigInitCmd_IgnoresBrokenConfig(t *testing.T) {
	resetGlobals(t)
	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), []byte("not = [valid"), 0600))
	settingsService = services.NewSettingsService(store, nil)

	_, err = execute(t, "config", "init", "--force")

	assert.NoError(t, err)
}

func TestConfigWizardCmd(t *testing.T) {
	resetGlobals(t)
	svc := memorySettings()
	settingsService = svc

	// store: filesystem, directory, tika url, engine: bleve, index, workers
	input := "4\n/srv/docs\n\n2\nreports\n3\n"
	rootCmd.SetIn(strings.NewReader(input))
	t.Cleanup(func() { rootCmd.SetIn(nil) })

	out, err := execute(t, "config", "wizard")
	require.NoError(t, err)
	assert.Contains(t, out, "Settings saved.")

	saved, err := svc.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.StoreFilesystem, saved.Store.Type)
	assert.Equal(t, "/srv/docs", saved.Store.Container)
	assert.Equal(t, "http://localhost:9998/tika", saved.Extractor.URL)
	assert.Equal(t, domain.EngineBleve, saved.Engine.Type)
	assert.Equal(t, "reports", saved.Engine.Index)
	assert.Equal(t, 3, saved.Sync.Workers)
}

func TestParseChoice(t *testing.T) {
	assert.Equal(t, 2, parseChoice("", 3, 2))
	assert.Equal(t, 3, parseChoice("3", 3, 1))
	assert.Equal(t, 1, parseChoice("9", 3, 1))
	assert.Equal(t, 1, parseChoice("x", 3, 1))
}
