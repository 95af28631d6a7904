// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

// Package transport wraps the NATS core client, optionally over an
// embedded in-process nats-server, as the wire transport shared by the
// orchestrator, the model connectors, and the Init-Data/Update-Data
// services. Every message is async publish/subscribe except the two
// request-reply services, which ride NATS's native Request.
package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/movici/simulation-core/internal/config"
	"github.com/movici/simulation-core/internal/metrics"
)

// Bus owns the connection to NATS (embedded or remote) for one
// simulation run's transport layer. It satisfies the TransportRunner
// interface NATSTransportService expects.
type Bus struct {
	cfg    config.NATSConfig
	logger zerolog.Logger

	embedded *server.Server
	conn     *nats.Conn
}

// NewBus creates a Bus bound to cfg. The embedded server or remote
// connection is not established until Start.
func NewBus(cfg config.NATSConfig, logger zerolog.Logger) *Bus {
	return &Bus{cfg: cfg, logger: logger.With().Str("component", "transport").Logger()}
}

// Start brings up the embedded NATS server (if configured) and
// connects the client. Idempotent only in the sense suture expects: a
// fresh Bus per Serve call.
func (b *Bus) Start(ctx context.Context) error {
	url := b.cfg.URL
	if b.cfg.EmbeddedServer {
		ns, err := b.startEmbedded()
		if err != nil {
			return fmt.Errorf("start embedded NATS server: %w", err)
		}
		b.embedded = ns
		url = ns.ClientURL()
	}

	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				b.logger.Warn().Err(err).Msg("NATS connection lost")
			}
		}),
		nats.ReconnectHandler(func(*nats.Conn) {
			b.logger.Info().Msg("NATS connection restored")
		}),
	)
	if err != nil {
		if b.embedded != nil {
			b.embedded.Shutdown()
		}
		return fmt.Errorf("connect to NATS: %w", err)
	}
	b.conn = conn
	b.logger.Info().Str("url", url).Bool("embedded", b.cfg.EmbeddedServer).Msg("transport connected")
	return nil
}

func (b *Bus) startEmbedded() (*server.Server, error) {
	opts := &server.Options{
		ServerName: "simcore",
		Host:       "127.0.0.1",
		Port:       server.RANDOM_PORT,
		JetStream:  false,
		StoreDir:   b.cfg.StoreDir,
		DontListen: false,
		MaxPayload: 8 * 1024 * 1024,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}
	ns.ConfigureLogger()

	go ns.Start()

	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within timeout")
	}
	return ns, nil
}

// Shutdown drains the client connection and, if owned, stops the
// embedded server. Best-effort: errors are logged, not returned, since
// callers are already tearing down.
func (b *Bus) Shutdown(ctx context.Context) {
	if b.conn != nil {
		if err := b.conn.Drain(); err != nil {
			b.logger.Warn().Err(err).Msg("error draining NATS connection")
			b.conn.Close()
		}
	}
	if b.embedded != nil {
		b.embedded.Shutdown()
		select {
		case <-ctx.Done():
		default:
			b.embedded.WaitForShutdown()
		}
	}
}

// IsRunning reports whether the client connection is currently up.
func (b *Bus) IsRunning() bool {
	return b.conn != nil && b.conn.IsConnected()
}

// Publish fires-and-forgets data on subject.
func (b *Bus) Publish(subject string, data []byte) error {
	if b.conn == nil {
		return fmt.Errorf("transport: not started")
	}
	if err := b.conn.Publish(subject, data); err != nil {
		return err
	}
	metrics.RecordPublish(subject)
	return nil
}

// Subscribe registers an async handler for every message on subject.
func (b *Bus) Subscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error) {
	if b.conn == nil {
		return nil, fmt.Errorf("transport: not started")
	}
	return b.conn.Subscribe(subject, countingHandler(subject, handler))
}

// QueueSubscribe registers a load-balanced handler within queue group
// queue, used by the Init-Data and Update-Data services so multiple
// instances can share one subject's request load.
func (b *Bus) QueueSubscribe(subject, queue string, handler nats.MsgHandler) (*nats.Subscription, error) {
	if b.conn == nil {
		return nil, fmt.Errorf("transport: not started")
	}
	return b.conn.QueueSubscribe(subject, queue, countingHandler(subject, handler))
}

// countingHandler wraps handler to record a consume count per subject
// before dispatching to the caller's logic.
func countingHandler(subject string, handler nats.MsgHandler) nats.MsgHandler {
	return func(msg *nats.Msg) {
		metrics.RecordConsume(subject)
		handler(msg)
	}
}

// Request performs a synchronous request-reply call bounded by the
// configured RequestTimeout, used for GET/PUT/CLEAR against the
// Init-Data and Update-Data services.
func (b *Bus) Request(ctx context.Context, subject string, data []byte) ([]byte, error) {
	if b.conn == nil {
		return nil, fmt.Errorf("transport: not started")
	}
	timeout := b.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg, err := b.conn.RequestWithContext(reqCtx, subject, data)
	if err != nil {
		return nil, fmt.Errorf("transport: request %q: %w", subject, err)
	}
	return msg.Data, nil
}
