package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FACTORIO_CONFIG", "FACTORIO_DATA_DIR", "FACTORIO_CSV_FILE", "FACTORIO_JSON_DIR",
		"FACTORIO_LOCALE", "FACTORIO_GAME_MODE", "FACTORIO_LOG_LEVEL", "FACTORIO_WIKI_BASE_URL",
		"FACTORIO_WIKI_MATERIALS_PAGE", "FACTORIO_DB_FILE", "FACTORIO_OUTPUT_DIR",
		"FACTORIO_FETCH_TIMEOUT_MS", "FACTORIO_FETCH_RATE_LIMIT_RPS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	require.Equal(t, "data", cfg.DataDir)
	require.Equal(t, "ja", cfg.Locale)
	require.Equal(t, "SpaceAge", cfg.GameMode)
	require.Empty(t, cfg.File)
	require.NoError(t, cfg.Validate())
	require.Equal(t, filepath.Join("data", "factorio_items.csv"), cfg.CSVPath())
	require.Equal(t, filepath.Join("data", "json"), cfg.JSONPath())
}

func TestLoadFileLocalOverrideAndEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "factorio_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// comments are allowed
		data_dir: "store",
		locale: "en",
		game_mode: "Base",
	}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "factorio_config.local.json"), []byte(`{"game_mode": "SpaceAge"}`), 0o644))
	t.Setenv("FACTORIO_FETCH_TIMEOUT_MS", "500")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, cfg.File)
	require.Equal(t, "store", cfg.DataDir)
	require.Equal(t, "en", cfg.Locale)
	require.Equal(t, "SpaceAge", cfg.GameMode)
	require.Equal(t, 500, cfg.FetchTimeoutMs)
	require.Equal(t, "factorio_items.csv", cfg.CSVFile)
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	cfg := Defaults()
	cfg.Locale = "fr"
	require.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg = Defaults()
	cfg.GameMode = "Modded"
	require.ErrorIs(t, cfg.Validate(), ErrInvalid)
}

func TestMaterialsURL(t *testing.T) {
	cfg := Defaults()
	got, err := cfg.MaterialsURL()
	require.NoError(t, err)
	require.Equal(t, "https://wiki.factorio.com/Materials_and_recipes/ja", got)
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "factorio_config.json")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	want := Defaults()
	want.File = path
	require.Equal(t, want, cfg)
}
