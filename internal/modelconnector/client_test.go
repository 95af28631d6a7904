// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package modelconnector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/movici/simulation-core/internal/config"
	"github.com/movici/simulation-core/internal/initdata"
	"github.com/movici/simulation-core/internal/transport"
	"github.com/movici/simulation-core/internal/updatedata"
)

func newTestBus(t *testing.T) *transport.Bus {
	t.Helper()
	bus := transport.NewBus(config.NATSConfig{EmbeddedServer: true, RequestTimeout: 0}, zerolog.Nop())
	if err := bus.Start(context.Background()); err != nil {
		t.Fatalf("bus.Start() error = %v", err)
	}
	t.Cleanup(func() { bus.Shutdown(context.Background()) })
	return bus
}

func TestUpdateDataClient_PutGetClear(t *testing.T) {
	bus := newTestBus(t)

	store, err := updatedata.NewStore()
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := updatedata.NewService(store, bus, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go svc.Serve(ctx)

	client := NewUpdateDataClient(bus, "traffic")
	if err := client.Put(context.Background(), "traffic/10/1", []byte(`{"hello":"world"}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := client.Get(context.Background(), "traffic/10/1", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `{"hello":"world"}` {
		t.Errorf("Get() = %s, want original blob", got)
	}

	if err := client.Clear(context.Background(), "traffic/"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := client.Get(context.Background(), "traffic/10/1", nil); err == nil {
		t.Error("Get() should fail after Clear removed the key")
	}
}

func TestInitDataClient_Resolve(t *testing.T) {
	bus := newTestBus(t)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "roads.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	resolver := initdata.NewResolver(dir)
	svc := initdata.NewService(resolver, bus, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go svc.Serve(ctx)

	client := NewInitDataClient(bus, "traffic")
	path, found, err := client.Resolve(context.Background(), "roads.json")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !found || path != filepath.Join(dir, "roads.json") {
		t.Errorf("Resolve() = (%q, %v), want (%q, true)", path, found, filepath.Join(dir, "roads.json"))
	}

	_, found, err = client.Resolve(context.Background(), "missing.json")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if found {
		t.Error("Resolve() found = true for a nonexistent dataset")
	}
}

func TestUpdateDataClient_GetMissingKeyIsAnError(t *testing.T) {
	bus := newTestBus(t)

	store, err := updatedata.NewStore()
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := updatedata.NewService(store, bus, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go svc.Serve(ctx)

	client := NewUpdateDataClient(bus, "traffic")
	if _, err := client.Get(context.Background(), "missing", nil); err == nil {
		t.Error("Get() should fail for a missing key")
	} else if errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want a resource error, not a context error", err)
	}
}
