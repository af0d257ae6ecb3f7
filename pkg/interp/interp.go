// Package interp provides linear interpolation of scalars, points and camera
// poses, with optional circular (modulo) wraparound for angles.
package interp

import (
	"errors"
	"fmt"
	"math"

	dmath "github.com/Faultbox/offshore-diorama/pkg/math"
)

var (
	// ErrDivisionByZero is returned when the interpolation span is zero.
	ErrDivisionByZero = errors.New("interp: cannot interpolate over a zero-length span")

	// ErrIncompatibleTypes is returned when interpolating between values of different kinds.
	ErrIncompatibleTypes = errors.New("interp: values do not have compatible types for interpolation")
)

// HeadingModulo is the wraparound used for compass headings.
const HeadingModulo = 360.0

// Delta returns b - a. When modulo > 0 the difference is wrapped into
// (-modulo/2, modulo/2] so that it describes the shorter way around the
// circle.
func Delta(a, b, modulo float64) float64 {
	d := b - a
	if modulo <= 0 {
		return d
	}
	d = math.Mod(d, modulo)
	if d > modulo/2 {
		d -= modulo
	} else if d <= -modulo/2 {
		d += modulo
	}
	return d
}

// Lerp interpolates from a to b at position t of a span of length total,
// returning a + d*(t/total) where d = Delta(a, b, modulo). A modulo of 0
// disables wraparound. The result is not reduced into [0, modulo): halfway
// from 350 to 10 over 360 is 360. t == 0 yields a and t == total yields b.
func Lerp(a, b, t, total, modulo float64) (float64, error) {
	if total == 0 {
		return 0, ErrDivisionByZero
	}
	// Endpoints are returned as-is: a + (b-a) does not round-trip in floating point.
	switch s := t / total; s {
	case 0:
		return a, nil
	case 1:
		return b, nil
	default:
		return a + Delta(a, b, modulo)*s, nil
	}
}

// LerpPoint interpolates two points component-wise, each component with
// the same modulo.
func LerpPoint(a, b dmath.Vec3, t, total, modulo float64) (dmath.Vec3, error) {
	if total == 0 {
		return dmath.Vec3{}, ErrDivisionByZero
	}
	x, _ := Lerp(a.X, b.X, t, total, modulo)
	y, _ := Lerp(a.Y, b.Y, t, total, modulo)
	z, _ := Lerp(a.Z, b.Z, t, total, modulo)
	return dmath.Vec3{X: x, Y: y, Z: z}, nil
}

// LerpCamera interpolates two camera poses: position component-wise,
// heading the short way around the compass, tilt linearly. Unlike Lerp, the
// heading is normalized into [0, 360) since it is handed to the camera.
func LerpCamera(a, b CameraPose, t, total float64) (CameraPose, error) {
	pos, err := LerpPoint(a.Position, b.Position, t, total, 0)
	if err != nil {
		return CameraPose{}, err
	}
	heading, _ := Lerp(a.Heading, b.Heading, t, total, HeadingModulo)
	tilt, _ := Lerp(a.Tilt, b.Tilt, t, total, 0)
	return CameraPose{Position: pos, Heading: dmath.NormalizeDegrees(heading), Tilt: tilt}, nil
}

// LerpValue interpolates two values of the same kind. Camera poses ignore
// modulo; their heading always wraps at 360.
func LerpValue(a, b Value, t, total, modulo float64) (Value, error) {
	if a.kind != b.kind {
		return Value{}, fmt.Errorf("%w: %s and %s", ErrIncompatibleTypes, a.kind, b.kind)
	}
	switch a.kind {
	case KindScalar:
		v, err := Lerp(a.scalar, b.scalar, t, total, modulo)
		if err != nil {
			return Value{}, err
		}
		return Scalar(v), nil
	case KindPoint:
		p, err := LerpPoint(a.point, b.point, t, total, modulo)
		if err != nil {
			return Value{}, err
		}
		return Point(p), nil
	case KindCamera:
		c, err := LerpCamera(a.camera, b.camera, t, total)
		if err != nil {
			return Value{}, err
		}
		return Camera(c), nil
	}
	return Value{}, fmt.Errorf("%w: unknown kind %d", ErrIncompatibleTypes, a.kind)
}

// Progress returns elapsed/duration clamped to [0, 1]. A non-positive
// duration is treated as already complete.
func Progress(elapsed, duration float64) float64 {
	if duration <= 0 {
		return 1
	}
	p := elapsed / duration
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
