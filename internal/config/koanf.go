// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where a scenario config file is
// searched in order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"scenario.yaml",
	"scenario.yml",
	"/etc/simcore/scenario.yaml",
}

// ConfigPathEnvVar overrides the scenario config file path.
const ConfigPathEnvVar = "SIMCORE_CONFIG_PATH"

// defaultConfig returns a Config with sensible defaults, applied before the
// config file and environment variable layers.
func defaultConfig() *Config {
	return &Config{
		Scenario: ScenarioConfig{
			Timeline:     TimelineConfig{TimeScaleSecondsPerTick: 1},
			RoundTimeout: 30 * time.Second,
		},
		NATS: NATSConfig{
			URL:            "nats://127.0.0.1:4222",
			EmbeddedServer: true,
			StoreDir:       "/data/nats",
			RequestTimeout: 30 * time.Second,
		},
		UpdateData: UpdateDataConfig{
			BadgerPath: "", // in-memory by default
		},
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			TokenTTL:        1 * time.Hour,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: an optional YAML scenario file
//  3. Environment variables: override any setting
//
// Precedence is ENV > file > defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("SIMCORE_", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a scenario config file in the default paths.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are koanf paths that arrive as comma-separated strings
// from the environment but must unmarshal as string slices.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields set via environment variables.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc maps SIMCORE_-prefixed environment variable names to
// koanf config paths.
//
// Examples:
//   - SIMCORE_NATS_URL -> nats.url
//   - SIMCORE_SERVER_PORT -> server.port
//   - SIMCORE_SECURITY_JWT_SECRET -> security.jwt_secret
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"scenario_name":         "scenario.name",
		"scenario_datasets_dir": "scenario.datasets_dir",

		"nats_url":             "nats.url",
		"nats_embedded_server": "nats.embedded_server",
		"nats_store_dir":       "nats.store_dir",
		"nats_request_timeout": "nats.request_timeout",

		"update_data_badger_path": "update_data.badger_path",

		"server_port":        "server.port",
		"server_host":        "server.host",
		"server_timeout":     "server.timeout",
		"server_environment": "server.environment",

		"security_jwt_secret":          "security.jwt_secret",
		"security_token_ttl":           "security.token_ttl",
		"security_rate_limit_reqs":     "security.rate_limit_reqs",
		"security_rate_limit_window":   "security.rate_limit_window",
		"security_cors_origins":        "security.cors_origins",

		"logging_level":  "logging.level",
		"logging_format": "logging.format",
		"logging_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped so stray environment variables don't
	// pollute the configuration.
	return ""
}

// GetKoanfInstance returns a new Koanf instance for advanced usage
// (tests, custom sources).
func GetKoanfInstance() *koanf.Koanf {
	return koanf.New(".")
}
