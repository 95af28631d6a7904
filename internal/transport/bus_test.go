// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package transport

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/movici/simulation-core/internal/config"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	bus := NewBus(config.NATSConfig{EmbeddedServer: true, RequestTimeout: 2 * time.Second}, zerolog.Nop())
	if err := bus.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		bus.Shutdown(context.Background())
	})
	return bus
}

func TestBus_PublishSubscribe(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan []byte, 1)
	sub, err := bus.Subscribe("simcore.test.subject", func(msg *nats.Msg) {
		received <- msg.Data
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Unsubscribe()

	if err := bus.Publish("simcore.test.subject", []byte("hello")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-received:
		if string(got) != "hello" {
			t.Errorf("received = %q, want %q", got, "hello")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestBus_Request(t *testing.T) {
	bus := newTestBus(t)

	sub, err := bus.Subscribe("simcore.test.echo", func(msg *nats.Msg) {
		msg.Respond(msg.Data)
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Unsubscribe()

	reply, err := bus.Request(context.Background(), "simcore.test.echo", []byte("ping"))
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if string(reply) != "ping" {
		t.Errorf("reply = %q, want %q", reply, "ping")
	}
}

func TestBus_IsRunning(t *testing.T) {
	bus := newTestBus(t)
	if !bus.IsRunning() {
		t.Error("IsRunning() = false after successful Start")
	}
}

func TestBus_PublishBeforeStartFails(t *testing.T) {
	bus := NewBus(config.NATSConfig{}, zerolog.Nop())
	if err := bus.Publish("simcore.test.subject", []byte("x")); err == nil {
		t.Error("Publish() before Start should error")
	}
}
