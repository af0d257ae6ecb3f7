// Package math provides vector, quaternion and angle helpers for scene animation.
package math

import "math"

// Vec2 is a point or direction on the map plane: X east, Y north.
type Vec2 struct {
	X, Y float64
}

// Sub returns the direction from other to v.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// IsZero reports whether v has no direction.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Angle returns the math-convention angle of v in radians: 0 is east,
// counter-clockwise positive.
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}
