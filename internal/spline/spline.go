// Package spline provides the curve collaborator used by the segment builder:
// an arc-length parameterised piecewise-linear spline and a stateless sampler
// over any Curve.
package spline

import (
	"sort"

	"github.com/Faultbox/pcgextras/pkg/math"
)

// Space selects the coordinate space of a sampled value.
type Space uint8

const (
	// Local is relative to the spline's component transform.
	Local Space = iota
	// World applies the component transform.
	World
)

func (s Space) String() string {
	if s == World {
		return "world"
	}
	return "local"
}

// Curve is the read/write surface the segment builder needs from a spline.
// Distances are measured along the curve in local space.
type Curve interface {
	Length() float32
	NumPoints() int
	IsClosedLoop() bool
	ComponentTransform() math.Transform

	LocationAtDistance(distance float32, space Space) math.Vec3
	TangentAtDistance(distance float32, space Space) math.Vec3
	UpVectorAtDistance(distance float32, space Space) math.Vec3
	RotationAtDistance(distance float32, space Space) math.Rotator

	LocationAtPoint(index int, space Space) math.Vec3
	// RotationAtPoint returns the authored local rotation of a control point.
	RotationAtPoint(index int) math.Quat
	SetRotationAtPoint(index int, rot math.Rotator)
}

// Point is an authored control point in local space.
type Point struct {
	Location math.Vec3    `yaml:"location" toml:"location"`
	Rotation math.Rotator `yaml:"rotation" toml:"rotation"`
}

// Spline is a piecewise-linear curve through its control points. Positions
// are interpolated linearly by arc length, authored rotations are slerped
// across each span.
type Spline struct {
	points    []Point
	closed    bool
	transform math.Transform
	owner     any

	// dist[i] is the arc length at the start of span i; the last entry is the
	// total length. Rebuilt lazily after edits.
	dist  []float32
	dirty bool
}

// New creates a spline through the given local-space points.
func New(points ...Point) *Spline {
	s := &Spline{
		points:    append([]Point(nil), points...),
		transform: math.TransformIdentity(),
		dirty:     true,
	}
	return s
}

// SetOwner records the actor owning this spline.
func (s *Spline) SetOwner(owner any) { s.owner = owner }

// Owner returns the actor owning this spline, or nil.
func (s *Spline) Owner() any { return s.owner }

// Points returns a copy of the control points.
func (s *Spline) Points() []Point {
	return append([]Point(nil), s.points...)
}

// SetPoints replaces all control points.
func (s *Spline) SetPoints(points []Point) {
	s.points = append(s.points[:0], points...)
	s.dirty = true
}

// AddPoint appends a control point.
func (s *Spline) AddPoint(p Point) {
	s.points = append(s.points, p)
	s.dirty = true
}

// RemovePoint deletes the control point at index. Out-of-range indices are ignored.
func (s *Spline) RemovePoint(index int) {
	if index < 0 || index >= len(s.points) {
		return
	}
	s.points = append(s.points[:index], s.points[index+1:]...)
	s.dirty = true
}

// SetLocationAtPoint moves a control point. Out-of-range indices are ignored.
func (s *Spline) SetLocationAtPoint(index int, loc math.Vec3) {
	if index < 0 || index >= len(s.points) {
		return
	}
	s.points[index].Location = loc
	s.dirty = true
}

// SetRotationAtPoint sets the authored rotation of a control point.
func (s *Spline) SetRotationAtPoint(index int, rot math.Rotator) {
	if index < 0 || index >= len(s.points) {
		return
	}
	s.points[index].Rotation = rot
}

// SetClosedLoop toggles the closing span from the last point to the first.
func (s *Spline) SetClosedLoop(closed bool) {
	s.closed = closed
	s.dirty = true
}

// SetTransform sets the component transform.
func (s *Spline) SetTransform(t math.Transform) { s.transform = t }

// ComponentTransform returns the component transform.
func (s *Spline) ComponentTransform() math.Transform { return s.transform }

// IsClosedLoop reports whether the spline closes back on its first point.
func (s *Spline) IsClosedLoop() bool { return s.closed }

// NumPoints returns the number of control points.
func (s *Spline) NumPoints() int { return len(s.points) }

// Length returns the total arc length.
func (s *Spline) Length() float32 {
	s.rebuild()
	if len(s.dist) == 0 {
		return 0
	}
	return s.dist[len(s.dist)-1]
}

func (s *Spline) numSpans() int {
	n := len(s.points)
	switch {
	case n < 2:
		return 0
	case s.closed:
		return n
	default:
		return n - 1
	}
}

func (s *Spline) rebuild() {
	if !s.dirty {
		return
	}
	spans := s.numSpans()
	s.dist = s.dist[:0]
	var total float32
	for i := 0; i < spans; i++ {
		s.dist = append(s.dist, total)
		a, b := s.spanEnds(i)
		total += a.Location.Distance(b.Location)
	}
	s.dist = append(s.dist, total)
	s.dirty = false
}

func (s *Spline) spanEnds(span int) (Point, Point) {
	return s.points[span], s.points[(span+1)%len(s.points)]
}

// locate returns the span containing distance and the fraction along it.
// Distances outside [0, Length] are clamped.
func (s *Spline) locate(distance float32) (int, float32) {
	s.rebuild()
	spans := s.numSpans()
	if spans == 0 {
		return 0, 0
	}
	total := s.dist[spans]
	if distance <= 0 {
		return 0, 0
	}
	if distance >= total {
		return spans - 1, 1
	}

	// First span whose end lies beyond distance.
	i := sort.Search(spans, func(i int) bool { return s.dist[i+1] > distance })
	spanLen := s.dist[i+1] - s.dist[i]
	if spanLen == 0 {
		return i, 0
	}
	return i, (distance - s.dist[i]) / spanLen
}

func (s *Spline) localLocation(distance float32) math.Vec3 {
	switch len(s.points) {
	case 0:
		return math.Vec3{}
	case 1:
		return s.points[0].Location
	}
	span, frac := s.locate(distance)
	a, b := s.spanEnds(span)
	return a.Location.Lerp(b.Location, frac)
}

func (s *Spline) localTangent(distance float32) math.Vec3 {
	if len(s.points) < 2 {
		return math.Vec3{}
	}
	span, _ := s.locate(distance)
	a, b := s.spanEnds(span)
	return b.Location.Sub(a.Location)
}

func (s *Spline) authoredRotation(distance float32) math.Quat {
	switch len(s.points) {
	case 0:
		return math.QuatIdentity()
	case 1:
		return s.points[0].Rotation.Quat()
	}
	span, frac := s.locate(distance)
	a, b := s.spanEnds(span)
	return a.Rotation.Quat().Slerp(b.Rotation.Quat(), frac)
}

func (s *Spline) localRotation(distance float32) math.Quat {
	authored := s.authoredRotation(distance)
	tangent := s.localTangent(distance)
	if tangent.IsZero() {
		return authored
	}
	return math.QuatFromXZ(tangent, authored.AxisZ())
}

// LocationAtDistance samples the position at a distance along the curve.
func (s *Spline) LocationAtDistance(distance float32, space Space) math.Vec3 {
	loc := s.localLocation(distance)
	if space == World {
		return s.transform.TransformPosition(loc)
	}
	return loc
}

// TangentAtDistance samples the tangent (the chord of the containing span).
func (s *Spline) TangentAtDistance(distance float32, space Space) math.Vec3 {
	tangent := s.localTangent(distance)
	if space == World {
		return s.transform.TransformVector(tangent)
	}
	return tangent
}

// UpVectorAtDistance samples the unit up axis of the curve frame.
func (s *Spline) UpVectorAtDistance(distance float32, space Space) math.Vec3 {
	q := s.localRotation(distance)
	if space == World {
		q = s.transform.TransformRotation(q)
	}
	return q.AxisZ()
}

// RotationAtDistance samples the curve frame as Euler angles.
func (s *Spline) RotationAtDistance(distance float32, space Space) math.Rotator {
	q := s.localRotation(distance)
	if space == World {
		q = s.transform.TransformRotation(q)
	}
	return q.Rotator()
}

// LocationAtPoint returns a control point position. Out-of-range indices
// are clamped; an empty spline returns the origin.
func (s *Spline) LocationAtPoint(index int, space Space) math.Vec3 {
	if len(s.points) == 0 {
		return math.Vec3{}
	}
	index = clampIndex(index, len(s.points))
	loc := s.points[index].Location
	if space == World {
		return s.transform.TransformPosition(loc)
	}
	return loc
}

// RotationAtPoint returns the authored rotation of a control point.
func (s *Spline) RotationAtPoint(index int) math.Quat {
	if len(s.points) == 0 {
		return math.QuatIdentity()
	}
	return s.points[clampIndex(index, len(s.points))].Rotation.Quat()
}

func clampIndex(index, n int) int {
	if index < 0 {
		return 0
	}
	if index >= n {
		return n - 1
	}
	return index
}
