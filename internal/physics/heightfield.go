package physics

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/pcgextras/pkg/math"
)

// Heightfield is a regular grid of terrain heights. Heights are stored row by
// row, Heights[y*Cols+x], with vertex (0,0) at Origin.
type Heightfield struct {
	Origin   math.Vec3
	CellSize float32
	Cols     int
	Rows     int
	Heights  []float32
	OwnerID  uint64
}

// NewHeightfield creates a flat heightfield of cols x rows vertices.
func NewHeightfield(origin math.Vec3, cellSize float32, cols, rows int) *Heightfield {
	return &Heightfield{
		Origin:   origin,
		CellSize: cellSize,
		Cols:     cols,
		Rows:     rows,
		Heights:  make([]float32, cols*rows),
	}
}

// Owner returns the id of the actor owning the terrain.
func (h *Heightfield) Owner() uint64 { return h.OwnerID }

// Set sets the height of vertex (x, y). Out-of-range vertices are ignored.
func (h *Heightfield) Set(x, y int, height float32) {
	if x < 0 || y < 0 || x >= h.Cols || y >= h.Rows {
		return
	}
	h.Heights[y*h.Cols+x] = height
}

func (h *Heightfield) at(x, y int) float32 {
	return h.Heights[y*h.Cols+x]
}

// Bounds returns the world box covering the grid and its height range.
func (h *Heightfield) Bounds() math.Box {
	lo, hi := float32(0), float32(0)
	for i, v := range h.Heights {
		if i == 0 || v < lo {
			lo = v
		}
		if i == 0 || v > hi {
			hi = v
		}
	}
	return math.Box{
		Min: math.Vec3{X: h.Origin.X, Y: h.Origin.Y, Z: h.Origin.Z + lo},
		Max: math.Vec3{
			X: h.Origin.X + float32(h.Cols-1)*h.CellSize,
			Y: h.Origin.Y + float32(h.Rows-1)*h.CellSize,
			Z: h.Origin.Z + hi,
		},
	}
}

// HeightAt returns the bilinearly interpolated world height at (wx, wy) and
// whether the position lies over the grid.
func (h *Heightfield) HeightAt(wx, wy float32) (float32, bool) {
	if h.Cols < 2 || h.Rows < 2 || h.CellSize <= 0 {
		return 0, false
	}

	fx := (wx - h.Origin.X) / h.CellSize
	fy := (wy - h.Origin.Y) / h.CellSize
	if fx < 0 || fy < 0 || fx > float32(h.Cols-1) || fy > float32(h.Rows-1) {
		return 0, false
	}

	cellX := int(fx)
	cellY := int(fy)
	if cellX >= h.Cols-1 {
		cellX = h.Cols - 2
	}
	if cellY >= h.Rows-1 {
		cellY = h.Rows - 2
	}

	fracX := clampf(fx-float32(cellX), 0, 1)
	fracY := clampf(fy-float32(cellY), 0, 1)

	// South edge (lower Y) then north edge, then blend across Y.
	south := h.at(cellX, cellY)*(1-fracX) + h.at(cellX+1, cellY)*fracX
	north := h.at(cellX, cellY+1)*(1-fracX) + h.at(cellX+1, cellY+1)*fracX
	return h.Origin.Z + south*(1-fracY) + north*fracY, true
}

// NormalAt returns the surface normal at (wx, wy) from central differences.
func (h *Heightfield) NormalAt(wx, wy float32) math.Vec3 {
	d := h.CellSize * 0.5
	sample := func(x, y, fallback float32) float32 {
		if v, ok := h.HeightAt(x, y); ok {
			return v
		}
		return fallback
	}
	center := sample(wx, wy, 0)
	dx := (sample(wx+d, wy, center) - sample(wx-d, wy, center)) / (2 * d)
	dy := (sample(wx, wy+d, center) - sample(wx, wy-d, center)) / (2 * d)
	return math.Vec3{X: -dx, Y: -dy, Z: 1}.Normalize()
}

// Raycast marches the ray over the grid and refines the first crossing from
// above the surface to below it. Rays that start under the surface pass
// through, matching a one-sided terrain collider.
func (h *Heightfield) Raycast(r Ray, maxDist float32) (float32, math.Vec3, bool) {
	step := h.CellSize * 0.5
	if step <= 0 || maxDist <= 0 {
		return 0, math.Vec3{}, false
	}

	above := func(t float32) (bool, bool) {
		p := r.At(t)
		height, ok := h.HeightAt(p.X, p.Y)
		if !ok {
			return false, false
		}
		return p.Z >= height, true
	}

	prevT := float32(0)
	prevAbove, prevOK := above(0)
	for t := step; ; t += step {
		if t > maxDist {
			t = maxDist
		}
		curAbove, curOK := above(t)
		if prevOK && curOK && prevAbove && !curAbove {
			lo, hi := prevT, t
			for i := 0; i < 24; i++ {
				mid := (lo + hi) / 2
				if a, _ := above(mid); a {
					lo = mid
				} else {
					hi = mid
				}
			}
			p := r.At(hi)
			return hi, h.NormalAt(p.X, p.Y), true
		}
		if t >= maxDist {
			return 0, math.Vec3{}, false
		}
		prevT, prevAbove, prevOK = t, curAbove, curOK
	}
}

func clampf(v, min, max float32) float32 {
	return math32.Max(min, math32.Min(max, v))
}
