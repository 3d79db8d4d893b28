// Package config loads per-tool JSONC configuration files with a fixed
// precedence chain: built-in defaults, then a global user config under
// $XDG_CONFIG_HOME, then a project-local config file, then explicit CLI
// overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

var (
	ErrFileNotFound = errors.New("config file not found")
	ErrFileRead     = errors.New("cannot read config file")
	ErrInvalid      = errors.New("invalid config file")
)

// Config holds the per-tool settings: scratch directory, editor and tab
// width. No command in this module loads it. Fields left at their zero value
// are not applied; a config file may still set a field to its explicit zero
// (detected by parse), which is an error for ScratchDir since an empty
// scratch directory is never valid.
type Config struct {
	ScratchDir string `json:"scratch_dir,omitempty"`
	Editor     string `json:"editor,omitempty"`
	TabWidth   int    `json:"tab_width,omitempty"`
}

// Defaults returns the built-in configuration before any file is applied.
func Defaults() Config {
	return Config{
		ScratchDir: os.TempDir(),
		TabWidth:   8,
	}
}

// Sources records which config files, if any, contributed to a Load.
type Sources struct {
	Global  string
	Project string
}

// globalConfigPath returns $XDG_CONFIG_HOME/<appName>/config.json, falling
// back to ~/.config/<appName>/config.json, or "" if no home can be found.
func globalConfigPath(appName string, env []string) string {
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "XDG_CONFIG_HOME="); ok {
			return filepath.Join(after, appName, "config.json")
		}
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, "config.json")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", appName, "config.json")
}

// Load applies the full precedence chain: defaults -> global config ->
// project config (rcFileName in workDir, or configPath if non-empty and
// must exist) -> cliOverrides (applied field by field, only where non-zero).
func Load(appName, rcFileName, workDir, configPath string, cliOverrides Config, env []string) (Config, Sources, error) {
	cfg := Defaults()

	var sources Sources

	globalCfg, globalPath, err := loadGlobal(appName, env)
	if err != nil {
		return Config{}, Sources{}, err
	}

	sources.Global = globalPath
	cfg = merge(cfg, globalCfg)

	projectCfg, projectPath, err := loadProject(rcFileName, workDir, configPath)
	if err != nil {
		return Config{}, Sources{}, err
	}

	sources.Project = projectPath
	cfg = merge(cfg, projectCfg)

	cfg = merge(cfg, cliOverrides)

	if cfg.ScratchDir == "" {
		return Config{}, Sources{}, fmt.Errorf("%w: scratch_dir cannot be empty", ErrInvalid)
	}

	return cfg, sources, nil
}

func loadGlobal(appName string, env []string) (Config, string, error) {
	path := globalConfigPath(appName, env)
	if path == "" {
		return Config{}, "", nil
	}

	cfg, explicitEmpty, loaded, err := loadFile(path, false)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["scratch_dir"] {
		return Config{}, "", fmt.Errorf("%w %s: scratch_dir cannot be empty", ErrInvalid, path)
	}

	return cfg, path, nil
}

func loadProject(rcFileName, workDir, configPath string) (Config, string, error) {
	cfgFile := filepath.Join(workDir, rcFileName)
	mustExist := false

	if configPath != "" {
		cfgFile = configPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}

		mustExist = true

		if _, err := os.Stat(cfgFile); err != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrFileNotFound, configPath)
		}
	}

	cfg, explicitEmpty, loaded, err := loadFile(cfgFile, mustExist)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["scratch_dir"] {
		return Config{}, "", fmt.Errorf("%w %s: scratch_dir cannot be empty", ErrInvalid, cfgFile)
	}

	return cfg, cfgFile, nil
}

// loadFile reads path as JSONC and unmarshals it. If the file is absent and
// mustExist is false, it returns a zero Config with loaded=false rather
// than an error.
func loadFile(path string, mustExist bool) (cfg Config, explicitEmpty map[string]bool, loaded bool, err error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) && !mustExist {
			return Config{}, nil, false, nil
		}

		if mustExist {
			return Config{}, nil, false, fmt.Errorf("%w: %s", ErrFileRead, path)
		}

		return Config{}, nil, false, nil
	}

	cfg, explicitEmpty, parseErr := parse(data)
	if parseErr != nil {
		return Config{}, nil, false, fmt.Errorf("%w %s: %w", ErrInvalid, path, parseErr)
	}

	return cfg, explicitEmpty, true, nil
}

// parse standardizes JSONC to JSON and unmarshals it, additionally
// reporting which known fields were explicitly set to their zero value
// (as opposed to simply absent) via a second untyped unmarshal.
func parse(data []byte) (Config, map[string]bool, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSON: %w", err)
	}

	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	explicitEmpty := make(map[string]bool)

	if val, exists := raw["scratch_dir"]; exists {
		if str, ok := val.(string); ok && str == "" {
			explicitEmpty["scratch_dir"] = true
		}
	}

	return cfg, explicitEmpty, nil
}

func merge(base, overlay Config) Config {
	if overlay.ScratchDir != "" {
		base.ScratchDir = overlay.ScratchDir
	}

	if overlay.Editor != "" {
		base.Editor = overlay.Editor
	}

	if overlay.TabWidth != 0 {
		base.TabWidth = overlay.TabWidth
	}

	return base
}

// Format returns cfg as indented JSON, for a --show-config style diagnostic.
func Format(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("format config: %w", err)
	}

	return string(data), nil
}
