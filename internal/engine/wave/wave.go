// Package wave synthesizes the rocking motion of a floating object from a
// damped sum of non-harmonic sines.
package wave

import (
	gomath "math"
	"time"

	"github.com/Faultbox/offshore-diorama/internal/engine/scene"
	"github.com/Faultbox/offshore-diorama/pkg/math"
)

// Params tunes the motion. The defaults are eyeballed, not derived.
type Params struct {
	// Factor is the angular advance of the wave phase, in radians per millisecond.
	Factor float64 `yaml:"factor"`
	// Damping scales every wave component.
	Damping float64 `yaml:"damping"`
	// AmplitudeX weights sin(a+φ) and cos(a) of the roll about X.
	AmplitudeX [2]float64 `yaml:"amplitude_x,flow"`
	// AmplitudeY weights sin(a) and sin(a+φ/2) of the yaw about Y.
	AmplitudeY [2]float64 `yaml:"amplitude_y,flow"`

	// Bob enables the vertical offset; when off, translation is left alone.
	Bob          bool    `yaml:"bob"`
	BobAmplitude float64 `yaml:"bob_amplitude"`
	BobOffset    float64 `yaml:"bob_offset"`
	// BobBase is added after damping, sinking the hull into the water.
	BobBase float64 `yaml:"bob_base"`

	// SeedBlend is how long the motion takes to ease out of the entity's
	// rotation at session start.
	SeedBlend time.Duration `yaml:"seed_blend"`
}

// DefaultParams returns the tuning used by the sailing boat.
func DefaultParams() Params {
	return Params{
		Factor:       0.0006,
		Damping:      0.7,
		AmplitudeX:   [2]float64{0.05, 0.02},
		AmplitudeY:   [2]float64{0.03, 0.05},
		Bob:          true,
		BobAmplitude: 0.3,
		BobOffset:    0.5,
		BobBase:      -1,
		SeedBlend:    500 * time.Millisecond,
	}
}

// Frame is one synthesized pose.
type Frame struct {
	Rotation scene.Rotation
	// Bob is the Z translation; meaningful only when HasBob is set.
	Bob    float64
	HasBob bool
}

// Synth accumulates wave phase across frames. It is not safe for
// concurrent use; one synth belongs to one animation session.
type Synth struct {
	params Params
	seed   math.Quat

	started bool
	startMs float64
	prevMs  float64
	angle   float64
	phase   float64
}

// New creates a synth that starts from the entity's current rotation.
func New(params Params, seed scene.Rotation) *Synth {
	return &Synth{params: params, seed: seed.Quat()}
}

// Step advances to frame time now and returns the pose. The first call
// sets the time origin (dt = 0).
func (s *Synth) Step(now time.Duration) Frame {
	ms := float64(now) / float64(time.Millisecond)
	if !s.started {
		s.started = true
		s.startMs = ms
		s.prevMs = ms
	}
	dt := ms - s.prevMs
	s.prevMs = ms

	s.angle += s.params.Factor * dt
	s.phase += s.params.Factor * dt

	waveX, waveY, waveZ := s.components()

	// Yaw first, then roll about the yawed X axis.
	q := math.QuatIdentity().RotateY(waveY).RotateX(waveX)
	if blend := s.params.SeedBlend; blend > 0 {
		if elapsed := ms - s.startMs; elapsed < float64(blend)/float64(time.Millisecond) {
			q = s.seed.Slerp(q, elapsed/(float64(blend)/float64(time.Millisecond)))
		}
	}

	f := Frame{Rotation: scene.RotationFromQuat(q)}
	if s.params.Bob {
		f.Bob = waveZ + s.params.BobBase
		f.HasBob = true
	}
	return f
}

// components returns the damped roll, yaw (radians) and bob for the
// current phase.
func (s *Synth) components() (x, y, z float64) {
	p := s.params
	a, ph := s.angle, s.phase
	y = gomath.Sin(a)*p.AmplitudeY[0] + gomath.Sin(a+ph/2)*p.AmplitudeY[1]
	x = gomath.Sin(a+ph)*p.AmplitudeX[0] + gomath.Cos(a)*p.AmplitudeX[1]
	z = gomath.Sin(a+ph)*p.BobAmplitude + p.BobOffset
	return x * p.Damping, y * p.Damping, z * p.Damping
}

// Apply writes the frame into t. Translation is only touched when the
// frame carries a bob.
func (f Frame) Apply(t scene.Transform) scene.Transform {
	t.Rotation = f.Rotation
	if f.HasBob {
		t.Translation = math.Vec3{Z: f.Bob}
	}
	return t
}
