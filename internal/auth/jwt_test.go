// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package auth

import (
	"testing"
	"time"
)

func TestJWTManager_IssueAndValidate(t *testing.T) {
	manager, err := NewJWTManager("a-sufficiently-long-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	token, err := manager.IssueToken("operator")
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Subject != "operator" {
		t.Errorf("claims.Subject = %q, want %q", claims.Subject, "operator")
	}
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	manager, err := NewJWTManager("a-sufficiently-long-test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	token, err := manager.IssueToken("operator")
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	if _, err := manager.ValidateToken(token); err == nil {
		t.Error("ValidateToken() error = nil, want expired-token error")
	}
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	issuer, _ := NewJWTManager("secret-one-is-long-enough", time.Hour)
	verifier, _ := NewJWTManager("secret-two-is-long-enough", time.Hour)

	token, err := issuer.IssueToken("operator")
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	if _, err := verifier.ValidateToken(token); err == nil {
		t.Error("ValidateToken() error = nil, want signature mismatch error")
	}
}

func TestNewJWTManager_RejectsEmptySecret(t *testing.T) {
	if _, err := NewJWTManager("", time.Hour); err == nil {
		t.Error("NewJWTManager() error = nil, want error for empty secret")
	}
}
