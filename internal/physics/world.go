package physics

import (
	"slices"

	"github.com/Faultbox/pcgextras/pkg/math"
)

// Hit is the result of a single line trace.
type Hit struct {
	Blocking    bool
	ImpactPoint math.Vec3
	Normal      math.Vec3
	Distance    float32
	Owner       uint64
}

// IgnoreSet lists actor ids whose colliders a trace skips.
type IgnoreSet []uint64

// Contains reports whether id is ignored.
func (s IgnoreSet) Contains(id uint64) bool {
	return slices.Contains(s, id)
}

// Collider is anything a ray can hit.
type Collider interface {
	// Owner returns the id of the actor the collider belongs to (0 = none).
	Owner() uint64
	Raycast(r Ray, maxDist float32) (t float32, normal math.Vec3, hit bool)
}

// ColliderSource supplies colliders that change over time, such as the
// mesh segments placed in a scene.
type ColliderSource interface {
	Colliders() []Collider
}

// BoxCollider is a static axis-aligned blocking volume.
type BoxCollider struct {
	Box     math.Box
	OwnerID uint64
}

// Owner returns the owning actor id.
func (b BoxCollider) Owner() uint64 { return b.OwnerID }

// Raycast intersects the ray with the box.
func (b BoxCollider) Raycast(r Ray, maxDist float32) (float32, math.Vec3, bool) {
	t, n, ok := r.IntersectBox(b.Box)
	if !ok || t > maxDist {
		return 0, math.Vec3{}, false
	}
	return t, n, true
}

// World is the collision scene traced against.
type World struct {
	colliders []Collider
	sources   []ColliderSource
}

// NewWorld creates an empty collision world.
func NewWorld() *World {
	return &World{}
}

// Add registers a static collider.
func (w *World) Add(c Collider) {
	w.colliders = append(w.colliders, c)
}

// AddSource registers a dynamic collider provider queried on every trace.
func (w *World) AddSource(src ColliderSource) {
	w.sources = append(w.sources, src)
}

// LineTraceSingle returns the nearest blocking hit along start→end,
// skipping colliders owned by ignored actors.
func (w *World) LineTraceSingle(start, end math.Vec3, ignore IgnoreSet) Hit {
	ray, length := NewRay(start, end)
	if length == 0 {
		return Hit{}
	}

	best := Hit{Distance: length}
	test := func(c Collider) {
		if ignore.Contains(c.Owner()) {
			return
		}
		t, n, ok := c.Raycast(ray, length)
		if !ok || t > best.Distance || (best.Blocking && t == best.Distance) {
			return
		}
		best = Hit{
			Blocking:    true,
			ImpactPoint: ray.At(t),
			Normal:      n,
			Distance:    t,
			Owner:       c.Owner(),
		}
	}

	for _, c := range w.colliders {
		test(c)
	}
	for _, src := range w.sources {
		for _, c := range src.Colliders() {
			test(c)
		}
	}

	if !best.Blocking {
		return Hit{}
	}
	return best
}
