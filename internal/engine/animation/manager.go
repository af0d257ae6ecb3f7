// Package animation orchestrates the diorama's per-entity animation
// sessions on top of the frame scheduler, and the single in-flight camera
// transition.
package animation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/Faultbox/offshore-diorama/internal/engine/frame"
	"github.com/Faultbox/offshore-diorama/internal/engine/path"
	"github.com/Faultbox/offshore-diorama/internal/engine/scene"
	"github.com/Faultbox/offshore-diorama/internal/engine/spin"
	"github.com/Faultbox/offshore-diorama/internal/engine/wave"
	"github.com/Faultbox/offshore-diorama/pkg/geo"
	"github.com/Faultbox/offshore-diorama/pkg/interp"
	dmath "github.com/Faultbox/offshore-diorama/pkg/math"
)

var (
	// ErrSubmarineNotConfigured is returned by AnimateSubmarine before SetupSubmarine.
	ErrSubmarineNotConfigured = errors.New("animation: submarine route not configured")
	// ErrMissingWindSpeed is returned when a turbine carries no wind speed attribute.
	ErrMissingWindSpeed = errors.New("animation: turbine has no wind speed")
	// ErrNoHeadingSource is returned when the camera cannot report its heading.
	ErrNoHeadingSource = errors.New("animation: camera does not report its pose")
)

// SubmarineParams tunes the path follower.
type SubmarineParams struct {
	// Speed along the route in scene units per second.
	Speed float64 `yaml:"speed"`
}

// Params groups the tuning of every animation kind.
type Params struct {
	Boat      wave.Params        `yaml:"boat"`
	Turbine   spin.TurbineParams `yaml:"turbine"`
	Submarine SubmarineParams    `yaml:"submarine"`
}

// DefaultParams returns the tuning used by the offshore scene.
func DefaultParams() Params {
	return Params{
		Boat:      wave.DefaultParams(),
		Turbine:   spin.DefaultTurbineParams(),
		Submarine: SubmarineParams{Speed: 20},
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithMeterProvider reports metrics to mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(m *Manager) { m.meterProvider = mp }
}

// WithParams replaces the default tuning.
func WithParams(p Params) Option {
	return func(m *Manager) { m.params = p }
}

// Manager owns at most one running session per Kind. Sessions run on the
// scheduler's goroutine; the Animate and Stop methods may be called from
// any goroutine.
type Manager struct {
	sched   *frame.Scheduler
	camera  scene.Camera
	params  Params
	log     *zap.Logger
	metrics *instruments

	meterProvider metric.MeterProvider
	closeOnce     sync.Once

	mu        sync.Mutex
	sessions  map[Kind]*session
	submarine *submarineRoute

	camMu     sync.Mutex
	camCancel context.CancelFunc
	camSeq    uint64

	followMu      sync.Mutex
	followTarget  scene.Entity
	followWired   bool
	followHeading float64
	followKnown   bool
}

type submarineRoute struct {
	sampler *path.Sampler
	entity  scene.Entity
}

// New creates a manager scheduling its sessions on sched and sending
// camera transitions to camera.
func New(sched *frame.Scheduler, camera scene.Camera, opts ...Option) (*Manager, error) {
	m := &Manager{
		sched:    sched,
		camera:   camera,
		params:   DefaultParams(),
		log:      zap.NewNop(),
		sessions: make(map[Kind]*session),
	}
	for _, opt := range opts {
		opt(m)
	}

	ins, err := newInstruments(m)
	if err != nil {
		return nil, err
	}
	m.metrics = ins
	return m, nil
}

// Params returns the manager's tuning.
func (m *Manager) Params() Params { return m.params }

// start installs a new session for kind, superseding any running one.
func (m *Manager) start(kind Kind, step stepFunc) {
	s := newSession(m, kind, step)

	m.mu.Lock()
	prev := m.sessions[kind]
	m.sessions[kind] = s
	m.mu.Unlock()

	if prev != nil && prev.stop() {
		m.metrics.add(m.metrics.sessionsStopped, kind)
		m.log.Debug("session superseded", zap.Stringer("kind", kind))
	}
	m.sched.Add(kind.String(), s)
	m.metrics.add(m.metrics.sessionsStarted, kind)
	m.log.Info("animation started", zap.Stringer("kind", kind))
}

// stop clears the running flag of the session for kind, if any.
func (m *Manager) stop(kind Kind) {
	m.mu.Lock()
	s := m.sessions[kind]
	delete(m.sessions, kind)
	m.mu.Unlock()

	if s != nil && s.stop() {
		m.metrics.add(m.metrics.sessionsStopped, kind)
		m.log.Info("animation stopped", zap.Stringer("kind", kind))
	}
}

func (m *Manager) sessionFailed(s *session, err error) {
	m.mu.Lock()
	if m.sessions[s.kind] == s {
		delete(m.sessions, s.kind)
	}
	m.mu.Unlock()

	m.metrics.add(m.metrics.sessionFailures, s.kind)
	m.log.Warn("animation session ended", zap.Stringer("kind", s.kind), zap.Error(err))
}

// Running reports whether a session of kind is active.
func (m *Manager) Running(kind Kind) bool {
	m.mu.Lock()
	s := m.sessions[kind]
	m.mu.Unlock()
	return s != nil && s.isRunning()
}

// ActiveSessions lists the running kinds in Kinds order.
func (m *Manager) ActiveSessions() []Kind {
	var active []Kind
	for _, k := range Kinds() {
		if m.Running(k) {
			active = append(active, k)
		}
	}
	return active
}

// StopAll stops every session and cancels the camera transition.
func (m *Manager) StopAll() {
	for _, k := range Kinds() {
		m.stop(k)
	}
	m.StopCamera()
}

// Close stops everything and detaches the manager's metrics. The manager
// must not be used afterwards.
func (m *Manager) Close() error {
	m.StopAll()
	var err error
	m.closeOnce.Do(func() {
		if cerr := m.metrics.close(); cerr != nil {
			err = fmt.Errorf("unregistering metrics: %w", cerr)
		}
	})
	return err
}

// AnimateBoat rocks entity on the wave. The motion eases out of the
// entity's current rotation.
func (m *Manager) AnimateBoat(entity scene.Entity) {
	synth := wave.New(m.params.Boat, entity.Transform().Rotation)
	m.start(KindBoat, func(now, _ time.Duration) error {
		f := synth.Step(now)
		return entity.SetTransform(f.Apply(entity.Transform()))
	})
}

// StopBoat stops the boat session.
func (m *Manager) StopBoat() { m.stop(KindBoat) }

type rotor struct {
	entity  scene.Entity
	spinner spin.Spinner
}

// AnimateTurbines spins every entity's rotor at the rate given by its wind
// speed attribute, read once here. A turbine whose transform write fails
// is dropped; the others keep turning.
func (m *Manager) AnimateTurbines(entities []scene.Entity) error {
	rotors := make([]rotor, 0, len(entities))
	attr := m.params.Turbine.SpeedAttribute
	for _, e := range entities {
		a, ok := e.(scene.Attributed)
		if !ok {
			return fmt.Errorf("turbine %s: %w", e.ID(), ErrMissingWindSpeed)
		}
		wind, ok := a.Attribute(attr)
		if !ok {
			return fmt.Errorf("turbine %s attribute %q: %w", e.ID(), attr, ErrMissingWindSpeed)
		}
		rpm := spin.RPMFromWindSpeed(wind, m.params.Turbine)
		rotors = append(rotors, rotor{entity: e, spinner: spin.Spinner{RPM: rpm}})
		m.log.Debug("turbine rotor", zap.String("id", e.ID()), zap.Float64("wind", wind), zap.Float64("rpm", rpm))
	}

	m.start(KindTurbine, func(_, elapsed time.Duration) error {
		live := rotors[:0]
		for _, r := range rotors {
			t := r.entity.Transform()
			t.Rotation = r.spinner.Rotation(elapsed)
			if err := r.entity.SetTransform(t); err != nil {
				m.log.Warn("turbine dropped", zap.String("id", r.entity.ID()), zap.Error(err))
				continue
			}
			live = append(live, r)
		}
		rotors = live
		if len(rotors) == 0 {
			return fmt.Errorf("no turbines left: %w", scene.ErrDetached)
		}
		return nil
	})
	return nil
}

// StopTurbines stops the turbine session.
func (m *Manager) StopTurbines() { m.stop(KindTurbine) }

// SetupSubmarine builds the route the submarine follows. The entity's
// mesh is expected to be anchored at route[0].
func (m *Manager) SetupSubmarine(route []dmath.Vec3, entity scene.Entity) error {
	sampler, err := path.New(route, m.params.Submarine.Speed)
	if err != nil {
		return fmt.Errorf("submarine route: %w", err)
	}

	m.mu.Lock()
	m.submarine = &submarineRoute{sampler: sampler, entity: entity}
	m.mu.Unlock()

	lon, lat := geo.LonLatFromWebMercator(route[0].X, route[0].Y)
	m.log.Info("submarine route ready",
		zap.Int("points", len(route)),
		zap.Float64("start_lon", lon),
		zap.Float64("start_lat", lat),
		zap.Float64("length", sampler.TotalLength()),
		zap.Duration("period", sampler.Period()))
	return nil
}

// AnimateSubmarine moves the submarine along its route, looping forever.
func (m *Manager) AnimateSubmarine() error {
	m.mu.Lock()
	sub := m.submarine
	m.mu.Unlock()
	if sub == nil {
		return ErrSubmarineNotConfigured
	}

	seed := sub.entity.Transform()
	seed.Rotation = headingRotation(sub.sampler.InitialHeading())
	if err := sub.entity.SetTransform(seed); err != nil {
		return fmt.Errorf("seeding submarine heading: %w", err)
	}

	m.start(KindSubmarine, func(_, elapsed time.Duration) error {
		s := sub.sampler.PositionAt(elapsed)
		t := sub.entity.Transform()
		t.Translation = s.Translation
		t.Rotation = headingRotation(s.Heading)
		return sub.entity.SetTransform(t)
	})
	return nil
}

// StopSubmarine stops the submarine session.
func (m *Manager) StopSubmarine() { m.stop(KindSubmarine) }

func headingRotation(heading float64) scene.Rotation {
	return scene.Rotation{Axis: spin.PinAxis, AngleDegrees: geo.CompassToMeshRotation(heading)}
}

// AnimatePinpoint pulses the pinpoint's scale.
func (m *Manager) AnimatePinpoint(entity scene.Entity) {
	m.start(KindPinpoint, func(_, elapsed time.Duration) error {
		return entity.SetTransform(spin.PulseTransform(entity.Transform(), elapsed))
	})
}

// StopPinpoint stops the pinpoint pulse.
func (m *Manager) StopPinpoint() { m.stop(KindPinpoint) }

// FollowCameraHeading keeps entity turned towards the camera. It reacts to
// camera heading changes at whole-degree resolution rather than running
// every frame. A later call retargets the follow; nil stops it.
func (m *Manager) FollowCameraHeading(entity scene.Entity) error {
	w, ok := m.camera.(scene.PoseWatcher)
	if !ok {
		return ErrNoHeadingSource
	}

	m.followMu.Lock()
	m.followTarget = entity
	wired := m.followWired
	m.followWired = true
	heading, known := m.followHeading, m.followKnown
	m.followMu.Unlock()

	if wired {
		if known && entity != nil {
			m.faceHeading(entity, heading)
		}
		return nil
	}

	watcher := spin.NewHeadingWatcher(func(heading float64) {
		m.followMu.Lock()
		target := m.followTarget
		m.followHeading, m.followKnown = heading, true
		m.followMu.Unlock()
		if target != nil {
			m.faceHeading(target, heading)
		}
	})
	w.Watch(func(p interp.CameraPose) { watcher.Observe(p.Heading) })
	return nil
}

func (m *Manager) faceHeading(entity scene.Entity, heading float64) {
	t := entity.Transform()
	t.Rotation = spin.FollowHeading(heading)
	if err := entity.SetTransform(t); err != nil {
		m.log.Warn("heading follow write failed", zap.String("id", entity.ID()), zap.Error(err))
	}
}

// AnimateCamera flies the camera to pose. Any transition still in flight is
// cancelled first. A transition cancelled by a newer request, or by ctx, is
// not an error; it is logged and nil is returned.
func (m *Manager) AnimateCamera(ctx context.Context, pose interp.CameraPose, speedFactor float64) error {
	return m.IssueCamera(ctx, pose, speedFactor)()
}

// IssueCamera cancels the transition in flight and registers one towards
// pose, then returns a function that flies it with AnimateCamera's
// semantics. Supersession follows the order of IssueCamera calls, so a
// caller may run the returned function on another goroutine. It must be
// called exactly once.
func (m *Manager) IssueCamera(ctx context.Context, pose interp.CameraPose, speedFactor float64) func() error {
	cctx, cancel := context.WithCancel(ctx)

	m.camMu.Lock()
	if m.camCancel != nil {
		m.camCancel()
		m.metrics.cameraCancelled.Add(ctx, 1)
	}
	m.camCancel = cancel
	m.camSeq++
	seq := m.camSeq
	m.camMu.Unlock()

	m.metrics.cameraIssued.Add(ctx, 1)

	return func() error {
		err := m.camera.GoTo(cctx, pose, speedFactor)

		m.camMu.Lock()
		if m.camSeq == seq {
			m.camCancel = nil
		}
		m.camMu.Unlock()
		cancel()

		if errors.Is(err, context.Canceled) {
			m.log.Debug("camera transition cancelled", zap.Float64("heading", pose.Heading))
			return nil
		}
		if err != nil {
			return fmt.Errorf("camera transition: %w", err)
		}
		return nil
	}
}

// StopCamera cancels the in-flight camera transition, if any.
func (m *Manager) StopCamera() {
	m.camMu.Lock()
	cancel := m.camCancel
	m.camCancel = nil
	m.camMu.Unlock()
	if cancel != nil {
		cancel()
	}
}
