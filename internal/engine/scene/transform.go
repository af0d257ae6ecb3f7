// Package scene defines the contracts between the animation core and the
// rendering side: mesh transforms, animated entities and the camera.
package scene

import (
	"context"
	"errors"

	"github.com/Faultbox/offshore-diorama/pkg/interp"
	"github.com/Faultbox/offshore-diorama/pkg/math"
)

// ErrDetached is returned when writing to an entity whose mesh has been
// removed from the scene.
var ErrDetached = errors.New("scene: entity transform is detached")

// Rotation is an axis-angle rotation. The angle is in degrees.
type Rotation struct {
	Axis         math.Vec3 `json:"axis"`
	AngleDegrees float64   `json:"angle"`
}

// Quat converts the rotation to a quaternion. A zero axis yields identity.
func (r Rotation) Quat() math.Quat {
	axis := r.Axis.Normalize()
	if axis == (math.Vec3{}) {
		return math.QuatIdentity()
	}
	return math.QuatFromAxisAngle(axis, math.DegToRad(r.AngleDegrees))
}

// RotationFromQuat extracts the axis-angle form of q.
func RotationFromQuat(q math.Quat) Rotation {
	axis, angle := q.Normalize().AxisAngle()
	return Rotation{Axis: axis, AngleDegrees: math.RadToDeg(angle)}
}

// Transform is the mutable placement of a mesh relative to its anchor.
type Transform struct {
	Translation math.Vec3 `json:"translation"`
	Rotation    Rotation  `json:"rotation"`
	Scale       math.Vec3 `json:"scale"`
}

// IdentityTransform returns a transform that leaves the mesh untouched.
func IdentityTransform() Transform {
	return Transform{
		Rotation: Rotation{Axis: math.Vec3{Z: 1}},
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// Entity is an animated mesh handle. The core never owns its lifetime; it
// only reads the current transform and overwrites it.
type Entity interface {
	ID() string
	Transform() Transform
	SetTransform(Transform) error
}

// Camera is the viewport's "go to" primitive. GoTo returns nil once the
// camera settles on pose and ctx.Err() if the transition was cancelled.
type Camera interface {
	GoTo(ctx context.Context, pose interp.CameraPose, speedFactor float64) error
}

// PoseWatcher is implemented by cameras that report every pose they take.
type PoseWatcher interface {
	Watch(fn func(interp.CameraPose))
}

// Attributed exposes the static numeric attributes of a scene feature.
type Attributed interface {
	Attribute(name string) (float64, bool)
}
