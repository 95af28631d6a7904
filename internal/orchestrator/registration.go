// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/movici/simulation-core/internal/datamask"
	"github.com/movici/simulation-core/internal/metrics"
	"github.com/movici/simulation-core/internal/simerrors"
	"github.com/movici/simulation-core/internal/wire"
)

// awaitRegistration blocks until every expected model has sent READY,
// or until roundTimeout elapses without forward progress. It returns
// the observed catalog (used to expand any wildcard mask entries) and
// the per-model masks, ready for buildMatrix.
func (o *Orchestrator) awaitRegistration(ctx context.Context) (map[simerrors.ModelID]datamask.Mask, error) {
	remaining := toSet(o.expected)
	masks := make(map[simerrors.ModelID]datamask.Mask, len(o.expected))

	deadline := time.Now().Add(o.roundTimeout)
	for len(remaining) > 0 {
		wait := time.Until(deadline)
		if wait <= 0 {
			return nil, &simerrors.TimeoutError{Waiting: "READY"}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case msg := <-o.events:
			env, err := wire.Unmarshal(msg.Data)
			if err != nil {
				o.logger.Warn().Err(err).Msg("dropping malformed envelope during registration")
				continue
			}
			if env.Kind != wire.KindReady {
				o.logger.Warn().Str("kind", string(env.Kind)).Msg("unexpected message before registration closed")
				continue
			}
			var ready wire.Ready
			if err := env.Decode(&ready); err != nil {
				return nil, fmt.Errorf("orchestrator: decode READY: %w", err)
			}
			id := simerrors.ModelID(ready.ModelID)
			if _, expected := remaining[id]; !expected {
				o.logger.Warn().Str("model_id", ready.ModelID).Msg("READY from an unregistered model id")
				continue
			}
			pub := datamask.Tree(ready.Pub)
			sub := datamask.Tree(ready.Sub)
			masks[id] = datamask.Mask{Pub: &pub, Sub: &sub}
			delete(remaining, id)
			deadline = time.Now().Add(o.roundTimeout)
			o.logger.Info().Str("model_id", ready.ModelID).Int("remaining", len(remaining)).Msg("model registered")
		case <-time.After(wait):
			return nil, &simerrors.TimeoutError{Waiting: "READY"}
		}
	}
	return masks, nil
}

// buildMatrix normalizes every registered mask against the observed
// catalog and builds the immutable PubSub Matrix.
func (o *Orchestrator) buildMatrix(masks map[simerrors.ModelID]datamask.Mask) error {
	trees := make([]*datamask.Tree, 0, len(masks)*2)
	observed := buildCatalog(masks)
	for _, mask := range masks {
		trees = append(trees, mask.Pub, mask.Sub)
	}
	if err := datamask.Normalize(trees, observed); err != nil {
		return fmt.Errorf("orchestrator: normalize masks: %w", err)
	}

	matrix, err := datamask.BuildMatrix(masks)
	if err != nil {
		return fmt.Errorf("orchestrator: build matrix: %w", err)
	}
	if n := matrix.MultiPublished(); n > 0 {
		metrics.RecordMaskWarning("multi_publisher")
		o.logger.Warn().Int("cells", n).Msg("more than one model publishes the same attribute cell")
	}
	o.matrix = matrix
	return nil
}

// buildCatalog unions every concretely-declared (dataset, group,
// attribute) triple across every mask, giving datamask.Normalize the
// observed set it needs to expand any wildcard entry.
func buildCatalog(masks map[simerrors.ModelID]datamask.Mask) datamask.Catalog {
	catalog := datamask.Catalog{}
	add := func(tree *datamask.Tree) {
		if tree == nil {
			return
		}
		for dataset, groups := range *tree {
			if groups == nil {
				continue
			}
			if catalog[dataset] == nil {
				catalog[dataset] = map[string][]string{}
			}
			for group, attrs := range groups {
				if attrs == nil {
					if _, ok := catalog[dataset][group]; !ok {
						catalog[dataset][group] = nil
					}
					continue
				}
				catalog[dataset][group] = mergeUnique(catalog[dataset][group], attrs)
			}
		}
	}
	for _, mask := range masks {
		add(mask.Pub)
		add(mask.Sub)
	}
	return catalog
}

func mergeUnique(existing, add []string) []string {
	seen := make(map[string]bool, len(existing))
	out := append([]string(nil), existing...)
	for _, s := range existing {
		seen[s] = true
	}
	for _, s := range add {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
