// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks struct tags via validator/v10 and a handful of
// cross-field invariants the tags can't express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if err := c.validateModelIDs(); err != nil {
		return err
	}

	return c.validateSecurity()
}

// validateModelIDs ensures model ids are non-empty and unique, since the
// Timeline's heap key and the NATS subject suffix are both derived from them.
func (c *Config) validateModelIDs() error {
	seen := make(map[string]bool, len(c.Scenario.Models))
	for _, m := range c.Scenario.Models {
		if seen[m.ID] {
			return fmt.Errorf("duplicate model id %q in scenario %q", m.ID, c.Scenario.Name)
		}
		seen[m.ID] = true
	}
	return nil
}

// validateSecurity requires a non-empty JWT secret in production, where a
// default or missing secret would let anyone mint a valid bearer token.
func (c *Config) validateSecurity() error {
	if c.Server.Environment == "production" && c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret is required when server.environment=production")
	}
	return nil
}
