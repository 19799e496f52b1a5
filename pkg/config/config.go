package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	envConfigPath   = "WEBFRAME_CONFIG"
	envHandlerPath  = "WEBFRAME_HANDLER"
	envHandlerEntry = "WEBFRAME_HANDLER_ENTRY"
)

// Config is the root runtime configuration loaded from config.json.
type Config struct {
	Frame   FrameConfig   `json:"frame"`
	Logging LoggingConfig `json:"logging,omitempty"`
}

// FrameConfig describes the frame to create: its surface and the scripting
// handler that answers its IPC requests.
type FrameConfig struct {
	Title        string `json:"title"`
	ContentPath  string `json:"content_path"`
	HandlerPath  string `json:"handler_path"`
	HandlerEntry string `json:"handler_entry"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty"`
	Level     string `json:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Frame: FrameConfig{
			Title:        "WebFrame",
			HandlerEntry: "onIpc",
		},
	}
}

// LoadConfig resolves config.json, unmarshals it, and applies environment
// overrides. A missing file falls back to defaults; a broken file does not.
func LoadConfig() (*Config, error) {
	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if path := strings.TrimSpace(os.Getenv(envHandlerPath)); path != "" {
		cfg.Frame.HandlerPath = path
	}
	if entry := strings.TrimSpace(os.Getenv(envHandlerEntry)); entry != "" {
		cfg.Frame.HandlerEntry = entry
	}
}

// findConfigPath resolves the active config file location.
//
// Precedence is WEBFRAME_CONFIG first, then cwd-local fallback paths. An
// empty result with a nil error means "no file, use defaults".
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv(envConfigPath)); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("WEBFRAME_CONFIG does not point to a file: %s", value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, "config.json"),
		filepath.Join(cwd, "config", "config.json"),
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", nil
}
