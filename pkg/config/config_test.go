package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avsandbox/spotkit/pkg/config"
)

func TestLoadDefaultsWhenNoFilesExist(t *testing.T) {
	dir := t.TempDir()

	cfg, sources, err := config.Load("spot", ".spotrc.json", dir, "", config.Config{}, nil)
	require.NoError(t, err)
	require.Empty(t, sources.Global)
	require.Empty(t, sources.Project)
	require.Equal(t, 8, cfg.TabWidth)
	require.NotEmpty(t, cfg.ScratchDir)
}

func TestLoadProjectConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	rc := filepath.Join(dir, ".spotrc.json")

	require.NoError(t, os.WriteFile(rc, []byte(`{
		// trailing-comma JSONC is fine
		"tab_width": 4,
		"editor": "vim",
	}`), 0o644))

	cfg, sources, err := config.Load("spot", ".spotrc.json", dir, "", config.Config{}, nil)
	require.NoError(t, err)
	require.Equal(t, rc, sources.Project)
	require.Equal(t, 4, cfg.TabWidth)
	require.Equal(t, "vim", cfg.Editor)
}

func TestLoadCLIOverrideWins(t *testing.T) {
	dir := t.TempDir()
	rc := filepath.Join(dir, ".spotrc.json")

	require.NoError(t, os.WriteFile(rc, []byte(`{"tab_width": 4}`), 0o644))

	cfg, _, err := config.Load("spot", ".spotrc.json", dir, "", config.Config{TabWidth: 2}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.TabWidth)
}

func TestLoadExplicitConfigPathMustExist(t *testing.T) {
	dir := t.TempDir()

	_, _, err := config.Load("spot", ".spotrc.json", dir, "missing.json", config.Config{}, nil)
	require.ErrorIs(t, err, config.ErrFileNotFound)
}

func TestLoadEmptyScratchDirIsInvalid(t *testing.T) {
	dir := t.TempDir()
	rc := filepath.Join(dir, ".spotrc.json")

	require.NoError(t, os.WriteFile(rc, []byte(`{"scratch_dir": ""}`), 0o644))

	_, _, err := config.Load("spot", ".spotrc.json", dir, "", config.Config{}, nil)
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestFormatIncludesTabWidth(t *testing.T) {
	cfg := config.Defaults()

	out, err := config.Format(cfg)
	require.NoError(t, err)
	require.Contains(t, out, "tab_width")
}
