package animation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Faultbox/offshore-diorama/internal/engine/animation"

func meter(mp metric.MeterProvider) metric.Meter {
	if mp == nil {
		return otel.Meter(instrumentationName)
	}
	return mp.Meter(instrumentationName)
}

// instruments are the manager's counters. The global provider is a no-op
// unless the binary installs one.
type instruments struct {
	frames          metric.Int64Counter
	sessionsStarted metric.Int64Counter
	sessionsStopped metric.Int64Counter
	sessionFailures metric.Int64Counter
	cameraIssued    metric.Int64Counter
	cameraCancelled metric.Int64Counter
	active          metric.Int64ObservableGauge

	activeReg metric.Registration
}

func newInstruments(m *Manager) (*instruments, error) {
	mt := meter(m.meterProvider)
	ins := &instruments{}

	var err error
	if ins.frames, err = mt.Int64Counter(
		"animation.frames.written",
		metric.WithDescription("Transform writes performed by animation sessions"),
	); err != nil {
		return nil, fmt.Errorf("creating frames counter: %w", err)
	}
	if ins.sessionsStarted, err = mt.Int64Counter(
		"animation.sessions.started",
		metric.WithDescription("Animation sessions started"),
	); err != nil {
		return nil, fmt.Errorf("creating started counter: %w", err)
	}
	if ins.sessionsStopped, err = mt.Int64Counter(
		"animation.sessions.stopped",
		metric.WithDescription("Animation sessions stopped or superseded"),
	); err != nil {
		return nil, fmt.Errorf("creating stopped counter: %w", err)
	}
	if ins.sessionFailures, err = mt.Int64Counter(
		"animation.sessions.failed",
		metric.WithDescription("Animation sessions ended by a transform write error"),
	); err != nil {
		return nil, fmt.Errorf("creating failures counter: %w", err)
	}
	if ins.cameraIssued, err = mt.Int64Counter(
		"animation.camera.transitions",
		metric.WithDescription("Camera transitions requested"),
	); err != nil {
		return nil, fmt.Errorf("creating camera counter: %w", err)
	}
	if ins.cameraCancelled, err = mt.Int64Counter(
		"animation.camera.cancelled",
		metric.WithDescription("Camera transitions cancelled by a newer request"),
	); err != nil {
		return nil, fmt.Errorf("creating camera cancel counter: %w", err)
	}

	if ins.active, err = mt.Int64ObservableGauge(
		"animation.sessions.active",
		metric.WithDescription("Running animation sessions"),
	); err != nil {
		return nil, fmt.Errorf("creating active gauge: %w", err)
	}
	if ins.activeReg, err = mt.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			for _, k := range m.ActiveSessions() {
				o.ObserveInt64(ins.active, 1, metric.WithAttributes(kindAttr(k)))
			}
			return nil
		},
		ins.active,
	); err != nil {
		return nil, fmt.Errorf("registering active callback: %w", err)
	}

	return ins, nil
}

// close unregisters the gauge callback so the provider drops the manager.
func (ins *instruments) close() error {
	if ins.activeReg == nil {
		return nil
	}
	reg := ins.activeReg
	ins.activeReg = nil
	return reg.Unregister()
}

func kindAttr(k Kind) attribute.KeyValue {
	return attribute.String("kind", k.String())
}

func (ins *instruments) add(c metric.Int64Counter, k Kind) {
	c.Add(context.Background(), 1, metric.WithAttributes(kindAttr(k)))
}
