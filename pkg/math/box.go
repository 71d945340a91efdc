package math

import "github.com/chewxy/math32"

// Box is an axis-aligned bounding box.
type Box struct {
	Min Vec3
	Max Vec3
}

// EmptyBox returns an inverted box that any Expand call will replace.
func EmptyBox() Box {
	return Box{
		Min: Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32},
		Max: Vec3{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32},
	}
}

// NewBox creates a box from two corners, ordering each axis.
func NewBox(a, b Vec3) Box {
	return Box{Min: a.Min(b), Max: a.Max(b)}
}

// BoxFromCenterExtent creates a box from its center and half-size.
func BoxFromCenterExtent(center, extent Vec3) Box {
	return Box{Min: center.Sub(extent), Max: center.Add(extent)}
}

// IsValid reports whether the box contains at least one point.
func (b Box) IsValid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// Expand grows the box to contain p.
func (b Box) Expand(p Vec3) Box {
	return Box{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// ExpandBy grows the box by d on every side.
func (b Box) ExpandBy(d Vec3) Box {
	return Box{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

// Union returns the smallest box containing b and other.
func (b Box) Union(other Box) Box {
	if !other.IsValid() {
		return b
	}
	if !b.IsValid() {
		return other
	}
	return Box{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Center returns the box midpoint.
func (b Box) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Extent returns the half-size of the box.
func (b Box) Extent() Vec3 {
	return b.Max.Sub(b.Min).Scale(0.5)
}

// Intersects reports whether the two boxes overlap, touching included.
func (b Box) Intersects(other Box) bool {
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Min.Y <= other.Max.Y && b.Max.Y >= other.Min.Y &&
		b.Min.Z <= other.Max.Z && b.Max.Z >= other.Min.Z
}

// IsInsideOrOn reports whether b lies entirely within other.
func (b Box) IsInsideOrOn(other Box) bool {
	return b.Min.X >= other.Min.X && b.Max.X <= other.Max.X &&
		b.Min.Y >= other.Min.Y && b.Max.Y <= other.Max.Y &&
		b.Min.Z >= other.Min.Z && b.Max.Z <= other.Max.Z
}

// Contains reports whether p lies inside or on the box.
func (b Box) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// TransformBy returns the axis-aligned box around the eight transformed corners.
func (b Box) TransformBy(m Mat4) Box {
	if !b.IsValid() {
		return b
	}
	out := EmptyBox()
	for i := 0; i < 8; i++ {
		corner := Vec3{b.Min.X, b.Min.Y, b.Min.Z}
		if i&1 != 0 {
			corner.X = b.Max.X
		}
		if i&2 != 0 {
			corner.Y = b.Max.Y
		}
		if i&4 != 0 {
			corner.Z = b.Max.Z
		}
		out = out.Expand(m.TransformVec3(corner))
	}
	return out
}
