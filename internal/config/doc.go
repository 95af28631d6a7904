// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

/*
Package config provides centralized configuration management for the
simulation core.

This package handles loading, validation, and parsing of scenario
configuration: which models to run, how they reach the NATS transport, how
the Init-Data and Update-Data services are backed, and the status API's
listen address and bearer-auth secret.

# Configuration Sources

The package reads configuration, in increasing priority, from:
  - Built-in defaults
  - An optional YAML scenario file (scenario.yaml, or SIMCORE_CONFIG_PATH)
  - Environment variables prefixed SIMCORE_

# Configuration Structure

  - ScenarioConfig: model registrations and the datasets directory
  - NATSConfig: transport connection, or embedded single-host server
  - UpdateDataConfig: badger backing store path (empty = in-memory only)
  - ServerConfig: status API listen address and environment mode
  - SecurityConfig: status API bearer-auth secret, rate limiting, CORS
  - LoggingConfig: zerolog level/format/caller settings

# Usage Example

	import "github.com/movici/simulation-core/internal/config"

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatalf("failed to load config: %v", err)
	}

	fmt.Printf("running scenario %q with %d models\n", cfg.Scenario.Name, len(cfg.Scenario.Models))

# Model Config Secrets

A ModelConfig's Config map may carry plaintext-looking values that were
actually encrypted at rest with CredentialEncryptor (keyed off
Security.JWTSecret). The entrypoint decrypts "_secret"/"_token"-suffixed
keys via CredentialEncryptor.DecryptModelConfig just before the model's
Factory call, so they never sit in scenario.yaml or process memory in
plaintext for longer than necessary. With no JWT secret configured,
these values are passed through undecrypted.

# Validation

Validate() checks required fields via struct tags (github.com/go-playground/validator/v10)
plus two cross-field invariants: model ids must be unique within a
scenario, and a production environment must set security.jwt_secret.

# Thread Safety

A *Config returned by LoadWithKoanf is not mutated afterward by this
package, so it is safe to share across goroutines without synchronization.
*/
package config
