package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the settings channelsync reads from its TOML file.
type Config struct {
	APIURL                  string
	APIToken                string
	Collection              string
	PageSize                int
	LogFile                 string
	LogLevel                string
	RequestTimeout          time.Duration
	RetryMax                int
	MaxInFlight             int
	RefreshInterval         time.Duration
	RevalidateOnMoveFailure bool
	MetricsAddr             string
}

const (
	defaultConfigPath     = "~/.config/channelsync/config.toml"
	defaultLogFile        = "~/.local/state/channelsync/channelsync.log"
	defaultAPIURL         = "http://127.0.0.1:3000"
	defaultPageSize       = 24
	defaultLogLevel       = "info"
	defaultRequestTimeout = 10 * time.Second
	defaultRetryMax       = 4
	defaultMaxInFlight    = 4
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		PageSize:       defaultPageSize,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
		RequestTimeout: defaultRequestTimeout,
		RetryMax:       defaultRetryMax,
		MaxInFlight:    defaultMaxInFlight,
	}
}

// Load locates and parses the config file, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL                  string `toml:"api_url"`
		APIToken                string `toml:"api_token"`
		Collection              string `toml:"collection"`
		PageSize                int    `toml:"page_size"`
		LogFile                 string `toml:"log_file"`
		LogLevel                string `toml:"log_level"`
		RequestTimeoutSeconds   int    `toml:"request_timeout_seconds"`
		RetryMax                *int   `toml:"retry_max"`
		MaxInFlight             int    `toml:"max_in_flight"`
		RefreshSeconds          int    `toml:"refresh_seconds"`
		RevalidateOnMoveFailure bool   `toml:"revalidate_on_move_failure"`
		MetricsAddr             string `toml:"metrics_addr"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	cfg.APIToken = strings.TrimSpace(raw.APIToken)
	cfg.Collection = strings.TrimSpace(raw.Collection)
	if raw.PageSize > 0 {
		cfg.PageSize = raw.PageSize
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if raw.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeoutSeconds) * time.Second
	}
	if raw.RetryMax != nil && *raw.RetryMax >= 0 {
		cfg.RetryMax = *raw.RetryMax
	}
	if raw.MaxInFlight > 0 {
		cfg.MaxInFlight = raw.MaxInFlight
	}
	if raw.RefreshSeconds > 0 {
		cfg.RefreshInterval = time.Duration(raw.RefreshSeconds) * time.Second
	}
	cfg.RevalidateOnMoveFailure = raw.RevalidateOnMoveFailure
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
