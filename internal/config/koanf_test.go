// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWithKoanf_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("SIMCORE_SCENARIO_NAME", "smoke-test")
	t.Setenv("SIMCORE_SCENARIO_DATASETS_DIR", t.TempDir())

	cfg, err := LoadWithKoanf()
	if err == nil {
		t.Fatalf("expected validation error for missing models, got nil (cfg=%+v)", cfg)
	}
}

func TestLoadWithKoanf_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	yaml := `
scenario:
  name: two-model-run
  datasets_dir: ` + dir + `
  models:
    - id: a
      type: increment
    - id: b
      type: increment
nats:
  embedded_server: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Scenario.Name != "two-model-run" {
		t.Errorf("Scenario.Name = %q, want two-model-run", cfg.Scenario.Name)
	}
	if len(cfg.Scenario.Models) != 2 {
		t.Fatalf("len(Models) = %d, want 2", len(cfg.Scenario.Models))
	}
	if !cfg.NATS.EmbeddedServer {
		t.Error("expected NATS.EmbeddedServer = true")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestLoadWithKoanf_DuplicateModelIDs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	yaml := `
scenario:
  name: dup-run
  datasets_dir: ` + dir + `
  models:
    - id: a
      type: increment
    - id: a
      type: increment
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected error for duplicate model ids, got nil")
	}
}

func TestValidate_ProductionRequiresJWTSecret(t *testing.T) {
	cfg := defaultConfig()
	cfg.Scenario = ScenarioConfig{
		Name:        "prod-run",
		DatasetsDir: t.TempDir(),
		Models:      []ModelConfig{{ID: "a", Type: "increment", Dataset: "sim"}},
		Timeline:    TimelineConfig{TimeScaleSecondsPerTick: 1},
	}
	cfg.Server.Environment = "production"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for production without jwt secret, got nil")
	}

	cfg.Security.JWTSecret = "a-sufficiently-long-secret-value"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error after setting jwt secret: %v", err)
	}
}
