package math

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// axisEpsilon is the sin(angle/2) below which a rotation is treated as
// identity when extracting its axis.
const axisEpsilon = 1e-6

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	s, c := math.Sincos(angle / 2)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: c,
	}
}

func (q Quat) number() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

func fromNumber(n quat.Number) Quat {
	return Quat{X: n.Imag, Y: n.Jmag, Z: n.Kmag, W: n.Real}
}

// Length returns the quaternion modulus.
func (q Quat) Length() float64 {
	return quat.Abs(q.number())
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := q.Length()
	if length < 0.0001 {
		return QuatIdentity()
	}
	return fromNumber(quat.Scale(1/length, q.number()))
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float64 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Mul multiplies two quaternions (combines rotations). The result applies
// other first, then q.
func (q Quat) Mul(other Quat) Quat {
	return fromNumber(quat.Mul(q.number(), other.number()))
}

// RotateX returns q rotated by rad around its local X axis.
func (q Quat) RotateX(rad float64) Quat {
	return q.Mul(QuatFromAxisAngle(Vec3{X: 1}, rad))
}

// RotateY returns q rotated by rad around its local Y axis.
func (q Quat) RotateY(rad float64) Quat {
	return q.Mul(QuatFromAxisAngle(Vec3{Y: 1}, rad))
}

// RotateZ returns q rotated by rad around its local Z axis.
func (q Quat) RotateZ(rad float64) Quat {
	return q.Mul(QuatFromAxisAngle(Vec3{Z: 1}, rad))
}

// AxisAngle decomposes a unit quaternion into a rotation axis and an angle
// in radians within [0, 2π]. For a rotation too small to carry an axis the
// X axis is returned with the (near zero) angle.
func (q Quat) AxisAngle() (Vec3, float64) {
	w := math.Max(-1, math.Min(1, q.W))
	angle := 2 * math.Acos(w)
	s := math.Sin(angle / 2)
	if s <= axisEpsilon {
		return Vec3{X: 1}, angle
	}
	return Vec3{X: q.X / s, Y: q.Y / s, Z: q.Z / s}, angle
}

// Slerp performs spherical linear interpolation between two quaternions.
// t should be in range [0, 1].
func (q Quat) Slerp(other Quat, t float64) Quat {
	// Compute cos of angle between quaternions
	dot := q.Dot(other)

	// If dot is negative, negate one quaternion to take the shorter path
	if dot < 0 {
		other = fromNumber(quat.Scale(-1, other.number()))
		dot = -dot
	}

	// Nearly parallel: fall back to normalized lerp
	if dot > 0.9995 {
		return q.Lerp(other, t)
	}

	theta0 := math.Acos(dot)
	theta := theta0 * t
	sinTheta := math.Sin(theta)
	sinTheta0 := math.Sin(theta0)

	s0 := math.Cos(theta) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0

	return fromNumber(quat.Add(quat.Scale(s0, q.number()), quat.Scale(s1, other.number())))
}

// Lerp performs linear interpolation between two quaternions.
// Use Slerp for rotation interpolation; this is for simple blending.
func (q Quat) Lerp(other Quat, t float64) Quat {
	return Quat{
		X: q.X + t*(other.X-q.X),
		Y: q.Y + t*(other.Y-q.Y),
		Z: q.Z + t*(other.Z-q.Z),
		W: q.W + t*(other.W-q.W),
	}.Normalize()
}
