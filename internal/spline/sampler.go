package spline

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/pcgextras/pkg/math"
)

// NoIndex is returned by NearestControlPointIndex for a curve without points.
const NoIndex = -1

// Sampler adapts a Curve for the segment builder. It holds no state of its
// own beyond the curve reference.
type Sampler struct {
	curve Curve
}

// NewSampler wraps curve.
func NewSampler(curve Curve) Sampler {
	return Sampler{curve: curve}
}

// Curve returns the wrapped curve.
func (s Sampler) Curve() Curve { return s.curve }

// LocationAt samples the position at distance.
func (s Sampler) LocationAt(distance float32, space Space) math.Vec3 {
	return s.curve.LocationAtDistance(distance, space)
}

// TangentAt samples the tangent at distance.
func (s Sampler) TangentAt(distance float32, space Space) math.Vec3 {
	return s.curve.TangentAtDistance(distance, space)
}

// UpVectorAt samples the up axis at distance.
func (s Sampler) UpVectorAt(distance float32, space Space) math.Vec3 {
	return s.curve.UpVectorAtDistance(distance, space)
}

// RotationAt samples the rotation at distance.
func (s Sampler) RotationAt(distance float32, space Space) math.Rotator {
	return s.curve.RotationAtDistance(distance, space)
}

// NearestControlPointIndex returns the control point closest to the curve
// position at distance, comparing squared world distances. Ties keep the
// lowest index. Returns NoIndex when the curve has no points.
func (s Sampler) NearestControlPointIndex(distance float32) int {
	target := s.curve.LocationAtDistance(distance, World)

	closest := NoIndex
	closestDistSq := float32(math32.MaxFloat32)
	for i := 0; i < s.curve.NumPoints(); i++ {
		d := s.curve.LocationAtPoint(i, World).DistanceSquared(target)
		if d < closestDistSq {
			closestDistSq = d
			closest = i
		}
	}
	return closest
}

// ControlPointRotation returns the authored rotation of a control point.
// The index is clamped into range; on a closed loop an index past the last
// point wraps to the first. A curve without points yields the identity.
func (s Sampler) ControlPointRotation(index int) math.Quat {
	n := s.curve.NumPoints()
	if n == 0 {
		return math.QuatIdentity()
	}
	switch {
	case s.curve.IsClosedLoop() && index >= n:
		index = 0
	case index < 0:
		index = 0
	case index > n-1:
		index = n - 1
	}
	return s.curve.RotationAtPoint(index)
}
