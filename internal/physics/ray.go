// Package physics provides the line-trace collaborator used for ground
// snapping: a collision world of heightfields and boxes, and the Snapper
// that the segment builder calls.
package physics

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/pcgextras/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// NewRay builds a ray from start toward end and returns the segment length.
func NewRay(start, end math.Vec3) (Ray, float32) {
	d := end.Sub(start)
	length := d.Length()
	if length == 0 {
		return Ray{Origin: start}, 0
	}
	return Ray{Origin: start, Direction: d.Scale(1 / length)}, length
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectBox tests ray intersection with an axis-aligned box using the
// slab method. It returns the entry distance and the surface normal of the
// entry face. A ray starting inside the box hits at t=0 with the normal
// facing back along the ray.
func (r Ray) IntersectBox(box math.Box) (t float32, normal math.Vec3, hit bool) {
	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)
	entryAxis := -1
	var entrySign float32

	origin := [3]float32{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float32{r.Direction.X, r.Direction.Y, r.Direction.Z}
	lo := [3]float32{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float32{box.Max.X, box.Max.Y, box.Max.Z}

	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, math.Vec3{}, false
			}
			continue
		}
		t1 := (lo[axis] - origin[axis]) / dir[axis]
		t2 := (hi[axis] - origin[axis]) / dir[axis]
		sign := float32(-1) // entering through the min face
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tmin {
			tmin = t1
			entryAxis = axis
			entrySign = sign
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, math.Vec3{}, false
	}

	if tmin < 0 || entryAxis < 0 {
		return 0, r.Direction.Negate(), true
	}

	var n [3]float32
	n[entryAxis] = entrySign
	return tmin, math.Vec3{X: n[0], Y: n[1], Z: n[2]}, true
}
