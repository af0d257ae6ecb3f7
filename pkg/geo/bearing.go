// Package geo holds the map-plane helpers of the diorama: compass bearings,
// Web Mercator projection and route parsing.
package geo

import (
	dmath "github.com/Faultbox/offshore-diorama/pkg/math"
)

// Bearing returns the compass heading in degrees from p1 towards p2:
// 0 is north (+Y), 90 is east (+X), increasing clockwise, range [0, 360).
// Coincident points yield 0.
func Bearing(p1, p2 dmath.Vec2) float64 {
	d := p2.Sub(p1)
	if d.IsZero() {
		return 0
	}
	// Angle is counter-clockwise from east; compass is clockwise from north.
	return dmath.NormalizeDegrees(90 - dmath.RadToDeg(d.Angle()))
}

// Bearing3 is Bearing on the map-plane projection of two 3D points.
func Bearing3(p1, p2 dmath.Vec3) float64 {
	return Bearing(p1.XY(), p2.XY())
}

// CompassToMeshRotation converts a clockwise compass heading into the
// counter-clockwise rotation, in degrees about +Z, that turns a north-facing
// model to face that heading.
func CompassToMeshRotation(heading float64) float64 {
	return dmath.NormalizeDegrees(-heading)
}
