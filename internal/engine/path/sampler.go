// Package path moves an entity along a polyline at constant speed, looping
// forever, using an arc-length table over the route's vertices.
package path

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/Faultbox/offshore-diorama/pkg/geo"
	"github.com/Faultbox/offshore-diorama/pkg/interp"
	dmath "github.com/Faultbox/offshore-diorama/pkg/math"
)

// ErrInvalidPath is returned when a polyline cannot be sampled.
var ErrInvalidPath = errors.New("invalid path")

// Sample is the state of the moving entity at one instant.
type Sample struct {
	// Position is the absolute point on the route.
	Position dmath.Vec3
	// Translation is Position relative to the first vertex, where the
	// entity's mesh is anchored.
	Translation dmath.Vec3
	// Heading is the compass bearing of the current segment in degrees.
	Heading float64
	// Segment is the index of the segment's start vertex.
	Segment int
	// Distance travelled along the route in the current loop.
	Distance float64
}

// Sampler is immutable after construction and safe for concurrent use.
type Sampler struct {
	points   []dmath.Vec3
	cum      []float64
	headings []float64
	speed    float64
}

// New builds a sampler over points travelled at speed units per second.
// Consecutive duplicate vertices are rejected, so every segment has a
// positive length and queries never divide by zero.
func New(points []dmath.Vec3, speed float64) (*Sampler, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidPath, len(points))
	}
	if !(speed > 0) || math.IsInf(speed, 0) {
		return nil, fmt.Errorf("%w: speed must be positive, got %v", ErrInvalidPath, speed)
	}

	lengths := make([]float64, len(points))
	headings := make([]float64, len(points)-1)
	for i := 1; i < len(points); i++ {
		d := points[i-1].Distance(points[i])
		if d == 0 {
			return nil, fmt.Errorf("%w: points %d and %d coincide", ErrInvalidPath, i-1, i)
		}
		lengths[i] = d
		headings[i-1] = geo.Bearing3(points[i-1], points[i])
	}
	cum := floats.CumSum(make([]float64, len(lengths)), lengths)

	total := cum[len(cum)-1]
	if total == 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		return nil, fmt.Errorf("%w: total length %v", ErrInvalidPath, total)
	}

	pts := make([]dmath.Vec3, len(points))
	copy(pts, points)
	return &Sampler{points: pts, cum: cum, headings: headings, speed: speed}, nil
}

// Points returns a copy of the route vertices.
func (s *Sampler) Points() []dmath.Vec3 {
	out := make([]dmath.Vec3, len(s.points))
	copy(out, s.points)
	return out
}

// CumulativeDistances returns a copy of the arc-length table; entry i is
// the distance from the first vertex to vertex i.
func (s *Sampler) CumulativeDistances() []float64 {
	out := make([]float64, len(s.cum))
	copy(out, s.cum)
	return out
}

// TotalLength returns the route length.
func (s *Sampler) TotalLength() float64 { return s.cum[len(s.cum)-1] }

// Speed returns the travel speed in units per second.
func (s *Sampler) Speed() float64 { return s.speed }

// Period returns the time needed to travel the whole route once.
func (s *Sampler) Period() time.Duration {
	return time.Duration(s.TotalLength() / s.speed * float64(time.Second))
}

// InitialHeading is the bearing of the first segment.
func (s *Sampler) InitialHeading() float64 { return s.headings[0] }

// DistanceAt returns the distance travelled within the current loop after
// elapsed time, in [0, TotalLength).
func (s *Sampler) DistanceAt(elapsed time.Duration) float64 {
	total := s.TotalLength()
	d := math.Mod(elapsed.Seconds()*s.speed, total)
	if d < 0 {
		d += total
	}
	return d
}

// PositionAt samples the route after elapsed time. Motion loops: the
// sample at elapsed and at elapsed + Period() are the same.
func (s *Sampler) PositionAt(elapsed time.Duration) Sample {
	return s.SampleDistance(s.DistanceAt(elapsed))
}

// SampleDistance samples the route at a distance in [0, TotalLength).
// Out-of-range distances are clamped to the route.
func (s *Sampler) SampleDistance(distance float64) Sample {
	distance = math.Max(0, math.Min(distance, s.TotalLength()))
	i := s.segmentAt(distance)
	t := distance - s.cum[i]
	dx := s.cum[i+1] - s.cum[i]

	// dx > 0 is guaranteed by New.
	pos, _ := interp.LerpPoint(s.points[i], s.points[i+1], t, dx, 0)
	return Sample{
		Position:    pos,
		Translation: pos.Sub(s.points[0]),
		Heading:     s.headings[i],
		Segment:     i,
		Distance:    distance,
	}
}

// segmentAt finds i with cum[i] <= d < cum[i+1]. The end of the route
// belongs to the last segment.
func (s *Sampler) segmentAt(d float64) int {
	if d <= 0 {
		return 0
	}
	if i := floats.Within(s.cum, d); i >= 0 {
		return i
	}
	return len(s.cum) - 2
}
