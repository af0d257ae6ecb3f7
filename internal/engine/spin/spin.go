// Package spin holds the time-driven rotations and scalings of the scene:
// turbine rotors, the pinpoint pulse and the pinpoint's camera-facing turn.
package spin

import (
	gomath "math"
	"sync"
	"time"

	"github.com/Faultbox/offshore-diorama/internal/engine/scene"
	"github.com/Faultbox/offshore-diorama/pkg/math"
)

// RotorAxis is the axis turbine blades spin around in their model space.
var RotorAxis = math.Vec3{Y: 1}

// PinAxis is the vertical axis the pinpoint turns around.
var PinAxis = math.Vec3{Z: 1}

// TurbineParams describes the rotor model.
type TurbineParams struct {
	// TipSpeedRatio is blade tip speed over wind speed.
	TipSpeedRatio float64 `yaml:"tip_speed_ratio"`
	// BladeRadius in the same length unit as the wind speed.
	BladeRadius float64 `yaml:"blade_radius"`
	// SpeedAttribute names the feature attribute holding the wind speed.
	SpeedAttribute string `yaml:"speed_attribute"`
}

// DefaultTurbineParams returns the rotor used by the offshore turbines:
// 55 scene units of blade, scaled down by 100.
func DefaultTurbineParams() TurbineParams {
	return TurbineParams{
		TipSpeedRatio:  6.0,
		BladeRadius:    0.55,
		SpeedAttribute: "Speed",
	}
}

// RPMFromWindSpeed converts a wind speed into rotor revolutions per minute:
// rpm = 60·v·TSR / (2π·r).
func RPMFromWindSpeed(windSpeed float64, p TurbineParams) float64 {
	if p.BladeRadius <= 0 {
		return 0
	}
	return (60 * windSpeed * p.TipSpeedRatio) / (2 * gomath.Pi * p.BladeRadius)
}

// Spinner turns at a constant rate.
type Spinner struct {
	RPM float64
}

// AngleAt returns the accumulated rotation after elapsed time: (s/60)·rpm.
// The value grows without bound.
func (s Spinner) AngleAt(elapsed time.Duration) float64 {
	return (elapsed.Seconds() / 60) * s.RPM
}

// WrappedAngleAt is AngleAt reduced into [0, 360).
func (s Spinner) WrappedAngleAt(elapsed time.Duration) float64 {
	return math.NormalizeDegrees(s.AngleAt(elapsed))
}

// Rotation returns the rotor rotation at elapsed time.
func (s Spinner) Rotation(elapsed time.Duration) scene.Rotation {
	return scene.Rotation{Axis: RotorAxis, AngleDegrees: s.WrappedAngleAt(elapsed)}
}

// PulseScale returns the uniform pulse factor 1 + |sin(2·s)|, in [1, 2].
func PulseScale(elapsed time.Duration) float64 {
	return 1 + gomath.Abs(gomath.Sin(2*elapsed.Seconds()))
}

// PulseTransform applies the pulse to all three scale axes of t.
func PulseTransform(t scene.Transform, elapsed time.Duration) scene.Transform {
	s := PulseScale(elapsed)
	t.Scale = math.Vec3{X: s, Y: s, Z: s}
	return t
}

// FollowHeading returns the rotation that keeps the pinpoint facing a camera
// looking along heading (degrees).
func FollowHeading(cameraHeading float64) scene.Rotation {
	return scene.Rotation{Axis: PinAxis, AngleDegrees: math.NormalizeDegrees(180 - cameraHeading)}
}

// HeadingWatcher reports camera heading changes at whole-degree
// resolution, so listeners run on change rather than every frame. Observe
// may be called from several goroutines; handler calls are serialized.
type HeadingWatcher struct {
	mu      sync.Mutex
	last    int
	primed  bool
	handler func(heading float64)
}

// NewHeadingWatcher creates a watcher calling fn with the rounded heading.
func NewHeadingWatcher(fn func(heading float64)) *HeadingWatcher {
	return &HeadingWatcher{handler: fn}
}

// Observe feeds a raw heading; fn fires on the first observation and
// whenever the rounded heading differs from the last one seen. It reports
// whether fn was called.
func (w *HeadingWatcher) Observe(heading float64) bool {
	rounded := int(gomath.Round(heading))

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.primed && rounded == w.last {
		return false
	}
	w.primed = true
	w.last = rounded
	w.handler(float64(rounded))
	return true
}
