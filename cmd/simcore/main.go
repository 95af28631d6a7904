// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/movici/simulation-core/internal/api"
	"github.com/movici/simulation-core/internal/auth"
	"github.com/movici/simulation-core/internal/config"
	"github.com/movici/simulation-core/internal/fixturemodels"
	"github.com/movici/simulation-core/internal/initdata"
	"github.com/movici/simulation-core/internal/logging"
	"github.com/movici/simulation-core/internal/modelconnector"
	"github.com/movici/simulation-core/internal/orchestrator"
	"github.com/movici/simulation-core/internal/simerrors"
	"github.com/movici/simulation-core/internal/supervisor"
	"github.com/movici/simulation-core/internal/supervisor/services"
	"github.com/movici/simulation-core/internal/transport"
	"github.com/movici/simulation-core/internal/updatedata"
	"github.com/movici/simulation-core/internal/websocket"
)

//nolint:gocyclo // sequential wiring, mirrors the teacher's entrypoint shape
func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("scenario", cfg.Scenario.Name).Msg("starting simulation core")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slogLogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create supervisor tree")
	}

	logger := logging.Logger()

	bus := transport.NewBus(cfg.NATS, logger)
	tree.AddTransportService(services.NewNATSTransportService(bus))

	resolver := initdata.NewResolver(cfg.Scenario.DatasetsDir)
	tree.AddTransportService(initdata.NewService(resolver, bus, logger))

	store, err := updatedata.NewStore()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open update-data store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing update-data store")
		}
	}()
	tree.AddTransportService(updatedata.NewService(store, bus, logger))

	registry := modelconnector.NewRegistry()
	registry.Register("arithmetic_square", fixturemodels.NewArithmeticSquareModel)
	registry.Register("self_incrementing", fixturemodels.NewSelfIncrementingModel)

	connectorRegistry, err := supervisor.NewConnectorRegistry(tree)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create connector registry")
	}

	timeline := modelconnector.TimelineInfo{
		ReferenceEpochSeconds:   cfg.Scenario.Timeline.ReferenceEpochSeconds,
		TimeScaleSecondsPerTick: cfg.Scenario.Timeline.TimeScaleSecondsPerTick,
		Start:                   cfg.Scenario.Timeline.Start,
		Duration:                cfg.Scenario.Timeline.Duration,
	}

	var credentialEncryptor *config.CredentialEncryptor
	if cfg.Security.JWTSecret != "" {
		credentialEncryptor, err = config.NewCredentialEncryptor(cfg.Security.JWTSecret)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to configure model config credential encryption")
		}
	} else {
		logging.Warn().Msg("no JWT secret configured: model config \"_secret\"/\"_token\" values are passed through undecrypted")
	}

	expected := make([]simerrors.ModelID, 0, len(cfg.Scenario.Models))
	for _, m := range cfg.Scenario.Models {
		modelConfig := m.Config
		if credentialEncryptor != nil {
			modelConfig, err = credentialEncryptor.DecryptModelConfig(m.Config)
			if err != nil {
				logging.Fatal().Err(err).Str("model_id", m.ID).Msg("failed to decrypt model config secrets")
			}
		}
		model, err := registry.New(m.Type, modelConfig)
		if err != nil {
			logging.Fatal().Err(err).Str("model_id", m.ID).Str("type", m.Type).Msg("failed to construct model")
		}
		modelID := simerrors.ModelID(m.ID)
		connector, err := modelconnector.NewConnector(modelID, m.Dataset, model, bus, timeline, m.AutoResetPubOnly, logger)
		if err != nil {
			logging.Fatal().Err(err).Str("model_id", m.ID).Msg("failed to build model connector")
		}
		if err := connectorRegistry.Add(m.ID, connector); err != nil {
			logging.Fatal().Err(err).Str("model_id", m.ID).Msg("failed to register connector")
		}
		expected = append(expected, modelID)
		logging.Info().Str("model_id", m.ID).Str("type", m.Type).Msg("model connector registered")
	}

	orch := orchestrator.NewOrchestrator(cfg.Scenario.Name, expected, bus, cfg.Scenario.RoundTimeout, cfg.Scenario.EndTime, logger)
	tree.AddOrchestratorService(orch)

	wsHub := websocket.NewHub()
	tree.AddTransportService(services.NewWebSocketHubService(wsHub))
	bridge := websocket.NewBridge(wsHub, bus, logger)
	tree.AddTransportService(bridge)

	var jwtManager *auth.JWTManager
	if cfg.Security.JWTSecret != "" {
		jwtManager, err = auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to configure operator authentication")
		}
	} else {
		logging.Warn().Msg("no JWT secret configured: status API authentication and the dashboard feed are disabled")
	}

	handler := api.NewHandler(bus, wsHub, jwtManager, connectorRegistry, cfg, logger)
	router := api.NewRouter(handler, cfg.Security)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}
	tree.AddTransportService(services.NewHTTPServerService(httpServer, 10*time.Second))
	logging.Info().Str("addr", httpServer.Addr).Msg("status API service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service failed to stop")
		}
	}

	logging.Info().Msg("simulation core stopped gracefully")
}
