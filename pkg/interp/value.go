package interp

import (
	dmath "github.com/Faultbox/offshore-diorama/pkg/math"
)

// CameraPose is a viewpoint: position in scene coordinates, compass heading
// in degrees [0, 360) and tilt in degrees (0 looks straight down).
type CameraPose struct {
	Position dmath.Vec3 `json:"position" yaml:"position"`
	Heading  float64    `json:"heading" yaml:"heading"`
	Tilt     float64    `json:"tilt" yaml:"tilt"`
}

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindScalar Kind = iota
	KindPoint
	KindCamera
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindPoint:
		return "point"
	case KindCamera:
		return "camera"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the interpolable kinds.
type Value struct {
	kind   Kind
	scalar float64
	point  dmath.Vec3
	camera CameraPose
}

// Scalar wraps a number.
func Scalar(v float64) Value { return Value{kind: KindScalar, scalar: v} }

// Point wraps a 3D point.
func Point(p dmath.Vec3) Value { return Value{kind: KindPoint, point: p} }

// Camera wraps a camera pose.
func Camera(c CameraPose) Value { return Value{kind: KindCamera, camera: c} }

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// AsScalar returns the number held by v.
func (v Value) AsScalar() (float64, bool) { return v.scalar, v.kind == KindScalar }

// AsPoint returns the point held by v.
func (v Value) AsPoint() (dmath.Vec3, bool) { return v.point, v.kind == KindPoint }

// AsCamera returns the camera pose held by v.
func (v Value) AsCamera() (CameraPose, bool) { return v.camera, v.kind == KindCamera }
