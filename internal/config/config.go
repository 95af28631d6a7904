// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

// Package config provides layered configuration loading (defaults -> YAML
// file -> environment variables) for the simulation core, plus credential
// encryption for model config secrets.
package config

import "time"

// Config is the root configuration for a simulation run.
type Config struct {
	Scenario   ScenarioConfig   `koanf:"scenario" validate:"required"`
	NATS       NATSConfig       `koanf:"nats"`
	UpdateData UpdateDataConfig `koanf:"update_data"`
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ScenarioConfig describes the models and datasets that make up a run.
type ScenarioConfig struct {
	// Name identifies the scenario, used as a log/metric label and as the
	// default NATS subject namespace prefix.
	Name string `koanf:"name" validate:"required"`

	// DatasetsDir is the root directory the Init-Data Service resolves
	// dataset paths against.
	DatasetsDir string `koanf:"datasets_dir" validate:"required"`

	// Models lists the models to register with the orchestrator, in the
	// order they should receive their initial Setup call.
	Models []ModelConfig `koanf:"models" validate:"required,min=1,dive"`

	// EndTime stops the run once every model's next wake time exceeds it.
	// Nil means run until every model signals it has no next wake time.
	EndTime *int64 `koanf:"end_time"`

	// Timeline calibrates discrete ticks to wall-clock time for the
	// Moment passed to every model's Update call.
	Timeline TimelineConfig `koanf:"timeline"`

	// RoundTimeout bounds how long the Orchestrator waits for a given
	// model's ACK or RESULT before treating it as failed.
	RoundTimeout time.Duration `koanf:"round_timeout"`
}

// ModelConfig describes a single model registration.
type ModelConfig struct {
	// ID uniquely identifies the model within the scenario; used as the
	// NATS subject suffix and as the Timeline's heap key.
	ID string `koanf:"id" validate:"required"`

	// Type names the factory registered in the model connector Registry.
	Type string `koanf:"type" validate:"required"`

	// Config is passed to the model's Factory. Values under keys ending
	// in "_secret" or "_token" are decrypted with CredentialEncryptor
	// (keyed off Security.JWTSecret) before the Factory call.
	Config map[string]any `koanf:"config"`

	// Dataset names the dataset this model's tracked state and data mask
	// belong to.
	Dataset string `koanf:"dataset" validate:"required"`

	// AutoResetPubOnly, when true, makes the Connector reset only PUB
	// change flags after each generate_update; SUB flags are left for the
	// model to manage itself.
	AutoResetPubOnly bool `koanf:"auto_reset_pub_only"`
}

// TimelineConfig calibrates a scenario's discrete ticks to wall-clock
// time, carried verbatim into every Moment a model's Update receives.
type TimelineConfig struct {
	ReferenceEpochSeconds   int64   `koanf:"reference_epoch_seconds"`
	TimeScaleSecondsPerTick float64 `koanf:"time_scale_seconds_per_tick" validate:"required"`
	Start                   int64   `koanf:"start"`
	Duration                int64   `koanf:"duration"`
}

// NATSConfig configures the transport layer shared by the orchestrator,
// model connectors, and the Init-Data/Update-Data services.
type NATSConfig struct {
	// URL is the NATS server to connect to. Ignored when EmbeddedServer is true.
	URL string `koanf:"url"`

	// EmbeddedServer starts an in-process nats-server instead of dialing URL.
	EmbeddedServer bool `koanf:"embedded_server"`

	// StoreDir is the embedded server's JetStream storage directory.
	// Unused when the run has no persisted streams.
	StoreDir string `koanf:"store_dir"`

	// RequestTimeout bounds synchronous Request/Reply calls to the
	// Init-Data and Update-Data services.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// UpdateDataConfig configures the Update-Data Service's backing store.
type UpdateDataConfig struct {
	// BadgerPath is the on-disk path for the badger store. Empty means
	// run fully in-memory (the default; state does not survive a restart).
	BadgerPath string `koanf:"badger_path"`
}

// ServerConfig configures the status HTTP/WebSocket API.
type ServerConfig struct {
	Port    int           `koanf:"port" validate:"min=0,max=65535"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`

	// Environment selects stricter validation (e.g. requiring a non-empty
	// JWT secret) when set to "production".
	Environment string `koanf:"environment"`
}

// SecurityConfig configures the status API's bearer authentication and the
// encryption of model config secrets.
type SecurityConfig struct {
	JWTSecret       string        `koanf:"jwt_secret"`
	TokenTTL        time.Duration `koanf:"token_ttl"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig configures the global zerolog logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
