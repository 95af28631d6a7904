// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package wire

import "fmt"

// Subject name conventions for the embedded NATS transport.
//
// Each model has its own command subject for orchestrator->model
// traffic; all model->orchestrator traffic (READY, RESULT, ERROR)
// shares one event subject, tagged by model id inside the envelope
// rather than by subject, since NATS pub/sub carries no
// request/response coupling of its own.
const (
	OrchestratorEventsSubject = "simcore.orchestrator.events"
	InitDataSubject           = "simcore.initdata"
	UpdateDataSubject         = "simcore.updatedata"
	modelCommandPrefix        = "simcore.model."

	// StatusSubject carries dashboard-only observability events
	// (currently QUIESCENT) published by the Orchestrator. No
	// Connector subscribes to it.
	StatusSubject = "simcore.orchestrator.status"
)

// ModelCommandSubject returns the subject a model subscribes to for
// orchestrator-issued commands (NEW_TIME, UPDATE, UPDATE_SERIES, END).
func ModelCommandSubject(modelID string) string {
	return fmt.Sprintf("%s%s.cmd", modelCommandPrefix, modelID)
}
