// Package pcg provides the exclusion graph node and the generator component
// that runs graph nodes for an actor.
package pcg

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/pcgextras/pkg/math"
)

// Point is one emitted point. Bounds are relative to the transform.
type Point struct {
	Transform math.Transform `yaml:"-"`
	BoundsMin math.Vec3      `yaml:"bounds_min"`
	BoundsMax math.Vec3      `yaml:"bounds_max"`
	Density   float32        `yaml:"density"`
	Steepness float32        `yaml:"steepness"`
	Seed      int32          `yaml:"seed"`
}

// Location returns the point position.
func (p Point) Location() math.Vec3 { return p.Transform.Translation }

// ComputeSeed mixes three integers into a seed.
func ComputeSeed(a, b, c int32) int32 {
	return int32((uint32(a)*196314165 + 907633515) ^
		(uint32(b)*73148459 + 453816763) ^
		(uint32(c)*34731343 + 260470533))
}

// SeedFromPosition derives a seed from the floored world position, so
// points at the same place always get the same seed.
func SeedFromPosition(p math.Vec3) int32 {
	return ComputeSeed(
		int32(math32.Floor(p.X)),
		int32(math32.Floor(p.Y)),
		int32(math32.Floor(p.Z)),
	)
}
