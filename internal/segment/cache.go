// Package segment turns a spline into a chain of mesh segments snapped to
// the ground, keeping a per-segment cache so unchanged segments are neither
// recomputed nor re-traced.
package segment

import (
	"github.com/Faultbox/pcgextras/internal/scene"
	"github.com/Faultbox/pcgextras/pkg/math"
)

// Record is the geometry of one mesh segment. Snapped fields equal the raw
// ones unless snapping hit the ground at that end.
type Record struct {
	Start         math.Vec3    `yaml:"start"`
	End           math.Vec3    `yaml:"end"`
	StartTangent  math.Vec3    `yaml:"start_tangent"`
	EndTangent    math.Vec3    `yaml:"end_tangent"`
	StartRotation math.Rotator `yaml:"start_rotation"`
	EndRotation   math.Rotator `yaml:"end_rotation"`

	RawStart         math.Vec3    `yaml:"raw_start"`
	RawEnd           math.Vec3    `yaml:"raw_end"`
	RawStartTangent  math.Vec3    `yaml:"raw_start_tangent"`
	RawEndTangent    math.Vec3    `yaml:"raw_end_tangent"`
	RawStartRotation math.Rotator `yaml:"raw_start_rotation"`
	RawEndRotation   math.Rotator `yaml:"raw_end_rotation"`

	// Mesh is a weak handle to the scene object in this slot.
	Mesh scene.Handle `yaml:"-"`
}

// sameRaw reports whether the curve-only geometry of both records matches
// exactly.
func (r Record) sameRaw(o Record) bool {
	return r.RawStart == o.RawStart &&
		r.RawEnd == o.RawEnd &&
		r.RawStartTangent == o.RawStartTangent &&
		r.RawEndTangent == o.RawEndTangent &&
		r.RawStartRotation == o.RawStartRotation &&
		r.RawEndRotation == o.RawEndRotation
}

// Cache is the ordered list of segment records. Index i is the i-th segment
// along the spline; records are appended, updated in place or truncated
// from the tail, never reordered.
type Cache struct {
	records []Record
}

// Count returns the number of records.
func (c *Cache) Count() int { return len(c.records) }

// Get returns record i. Out-of-range reads report false.
func (c *Cache) Get(i int) (Record, bool) {
	if i < 0 || i >= len(c.records) {
		return Record{}, false
	}
	return c.records[i], true
}

// Set stores rec at i. Setting i == Count appends; indices further out
// are ignored.
func (c *Cache) Set(i int, rec Record) {
	switch {
	case i >= 0 && i < len(c.records):
		c.records[i] = rec
	case i == len(c.records):
		c.records = append(c.records, rec)
	}
}

// TruncateTo drops every record at index >= n, handing each dropped mesh
// handle to release. It returns how many records were dropped.
func (c *Cache) TruncateTo(n int, release func(scene.Handle)) int {
	if n < 0 {
		n = 0
	}
	if n >= len(c.records) {
		return 0
	}
	dropped := c.records[n:]
	if release != nil {
		for _, rec := range dropped {
			if rec.Mesh != 0 {
				release(rec.Mesh)
			}
		}
	}
	c.records = c.records[:n:n]
	return len(dropped)
}

// Reset empties the cache, releasing every handle.
func (c *Cache) Reset(release func(scene.Handle)) int {
	return c.TruncateTo(0, release)
}

// ClearHandle nulls any record pointing at h. It is called when the scene
// object was destroyed from outside.
func (c *Cache) ClearHandle(h scene.Handle) {
	if h == 0 {
		return
	}
	for i := range c.records {
		if c.records[i].Mesh == h {
			c.records[i].Mesh = 0
		}
	}
}

// Records returns a copy of the records.
func (c *Cache) Records() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}
