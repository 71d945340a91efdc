package physics

import "github.com/Faultbox/pcgextras/pkg/math"

// Tracer is the physics query the snapper wraps.
type Tracer interface {
	LineTraceSingle(start, end math.Vec3, ignore IgnoreSet) Hit
}

// Snapper issues ground traces for segment endpoints. It does no caching;
// it only counts the traces it issues.
type Snapper struct {
	tracer Tracer
	traces int
}

// NewSnapper wraps tracer. A nil tracer never hits.
func NewSnapper(tracer Tracer) *Snapper {
	return &Snapper{tracer: tracer}
}

// Trace casts a single nearest-hit ray from origin to target. A miss is a
// valid result meaning the caller keeps its unsnapped geometry.
func (s *Snapper) Trace(origin, target math.Vec3, ignore IgnoreSet) Hit {
	s.traces++
	if s.tracer == nil {
		return Hit{}
	}
	return s.tracer.LineTraceSingle(origin, target, ignore)
}

// Traces returns how many traces have been issued.
func (s *Snapper) Traces() int { return s.traces }

// ResetTraces zeroes the trace counter.
func (s *Snapper) ResetTraces() { s.traces = 0 }
