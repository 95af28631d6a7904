// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordStep(t *testing.T) {
	StepsCompleted.Reset()
	RecordStep("s1", 10*time.Millisecond)

	if got := testutil.ToFloat64(StepsCompleted.WithLabelValues("s1")); got != 1 {
		t.Errorf("StepsCompleted = %v, want 1", got)
	}
}

func TestSetTimelineDepth(t *testing.T) {
	SetTimelineDepth("s1", 3)
	if got := testutil.ToFloat64(TimelineDepth.WithLabelValues("s1")); got != 3 {
		t.Errorf("TimelineDepth = %v, want 3", got)
	}
}

func TestSetQuiescent(t *testing.T) {
	SetQuiescent("s1", true)
	if got := testutil.ToFloat64(RunQuiescent.WithLabelValues("s1")); got != 1 {
		t.Errorf("RunQuiescent = %v, want 1", got)
	}

	SetQuiescent("s1", false)
	if got := testutil.ToFloat64(RunQuiescent.WithLabelValues("s1")); got != 0 {
		t.Errorf("RunQuiescent = %v, want 0", got)
	}
}

func TestRecordModelCall(t *testing.T) {
	ModelCallErrors.Reset()

	RecordModelCall("traffic", "update", 5*time.Millisecond, nil)
	if got := testutil.ToFloat64(ModelCallErrors.WithLabelValues("traffic", "update")); got != 0 {
		t.Errorf("ModelCallErrors = %v, want 0", got)
	}

	RecordModelCall("traffic", "update", 5*time.Millisecond, errors.New("boom"))
	if got := testutil.ToFloat64(ModelCallErrors.WithLabelValues("traffic", "update")); got != 1 {
		t.Errorf("ModelCallErrors = %v, want 1", got)
	}
}

func TestRecordFanout(t *testing.T) {
	RecordFanout("traffic", 4)
	if got := testutil.ToFloat64(PubSubFanout.WithLabelValues("traffic")); got != 4 {
		t.Errorf("PubSubFanout = %v, want 4", got)
	}
}

func TestRecordMaskWarning(t *testing.T) {
	MaskNormalizeWarnings.Reset()
	RecordMaskWarning("multi_publisher")
	if got := testutil.ToFloat64(MaskNormalizeWarnings.WithLabelValues("multi_publisher")); got != 1 {
		t.Errorf("MaskNormalizeWarnings = %v, want 1", got)
	}
}

func TestSetUpdateDataSize(t *testing.T) {
	SetUpdateDataSize(1024, 10)
	if got := testutil.ToFloat64(UpdateDataStoreSize); got != 1024 {
		t.Errorf("UpdateDataStoreSize = %v, want 1024", got)
	}
	if got := testutil.ToFloat64(UpdateDataKeys); got != 10 {
		t.Errorf("UpdateDataKeys = %v, want 10", got)
	}
}

func TestRecordInitDataResolve(t *testing.T) {
	InitDataResolveErrors.Reset()

	RecordInitDataResolve("roads", time.Millisecond, "")
	if got := testutil.ToFloat64(InitDataResolveErrors.WithLabelValues("roads", "not_found")); got != 0 {
		t.Errorf("InitDataResolveErrors = %v, want 0", got)
	}

	RecordInitDataResolve("roads", time.Millisecond, "not_found")
	if got := testutil.ToFloat64(InitDataResolveErrors.WithLabelValues("roads", "not_found")); got != 1 {
		t.Errorf("InitDataResolveErrors = %v, want 1", got)
	}
}

func TestRecordPublishConsume(t *testing.T) {
	TransportPublished.Reset()
	TransportConsumed.Reset()

	RecordPublish("simcore.model.traffic.cmd")
	RecordConsume("simcore.model.traffic.cmd")

	if got := testutil.ToFloat64(TransportPublished.WithLabelValues("simcore.model.traffic.cmd")); got != 1 {
		t.Errorf("TransportPublished = %v, want 1", got)
	}
	if got := testutil.ToFloat64(TransportConsumed.WithLabelValues("simcore.model.traffic.cmd")); got != 1 {
		t.Errorf("TransportConsumed = %v, want 1", got)
	}
}

func TestRecordProtocolViolationAndTimeout(t *testing.T) {
	TransportProtocolViolations.Reset()
	TransportTimeouts.Reset()

	RecordProtocolViolation("traffic")
	RecordTimeout("traffic", "RESULT")

	if got := testutil.ToFloat64(TransportProtocolViolations.WithLabelValues("traffic")); got != 1 {
		t.Errorf("TransportProtocolViolations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(TransportTimeouts.WithLabelValues("traffic", "RESULT")); got != 1 {
		t.Errorf("TransportTimeouts = %v, want 1", got)
	}
}

func TestSetSupervisedServicesAndRestarts(t *testing.T) {
	ServiceRestarts.Reset()

	SetSupervisedServices("orchestrator", 1)
	RecordServiceRestart("orchestrator", "runner")

	if got := testutil.ToFloat64(SupervisedServices.WithLabelValues("orchestrator")); got != 1 {
		t.Errorf("SupervisedServices = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ServiceRestarts.WithLabelValues("orchestrator", "runner")); got != 1 {
		t.Errorf("ServiceRestarts = %v, want 1", got)
	}
}

func TestRecordStatusAPIRequest(t *testing.T) {
	StatusAPIRequestsTotal.Reset()

	RecordStatusAPIRequest("GET", "/status", "200", 2*time.Millisecond)
	if got := testutil.ToFloat64(StatusAPIRequestsTotal.WithLabelValues("GET", "/status", "200")); got != 1 {
		t.Errorf("StatusAPIRequestsTotal = %v, want 1", got)
	}
}

func TestTrackWebsocketClient(t *testing.T) {
	before := testutil.ToFloat64(StatusAPIActiveWebsocketClients)
	TrackWebsocketClient(true)
	if got := testutil.ToFloat64(StatusAPIActiveWebsocketClients); got != before+1 {
		t.Errorf("StatusAPIActiveWebsocketClients = %v, want %v", got, before+1)
	}
	TrackWebsocketClient(false)
	if got := testutil.ToFloat64(StatusAPIActiveWebsocketClients); got != before {
		t.Errorf("StatusAPIActiveWebsocketClients = %v, want %v", got, before)
	}
}
