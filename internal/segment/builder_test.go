package segment

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/pcgextras/internal/assets"
	"github.com/Faultbox/pcgextras/internal/physics"
	"github.com/Faultbox/pcgextras/internal/scene"
	"github.com/Faultbox/pcgextras/internal/spline"
	"github.com/Faultbox/pcgextras/pkg/math"
)

// groundTracer hits a horizontal plane at height z and counts its calls.
type groundTracer struct {
	z     float32
	calls int
}

func (g *groundTracer) LineTraceSingle(start, end math.Vec3, _ physics.IgnoreSet) physics.Hit {
	g.calls++
	if (start.Z-g.z)*(end.Z-g.z) > 0 || start.Z == end.Z {
		return physics.Hit{}
	}
	p := start.Lerp(end, (start.Z-g.z)/(start.Z-end.Z))
	return physics.Hit{Blocking: true, ImpactPoint: p, Normal: math.Vec3Up, Distance: start.Distance(p)}
}

type fixture struct {
	scene   *scene.Scene
	tracer  *groundTracer
	builder *Builder
	curve   *spline.Spline
	cache   Cache
	state   State
	in      Input
}

func newFixture(t *testing.T, snap bool, points ...spline.Point) *fixture {
	t.Helper()
	sc := scene.New(nil)
	owner := scene.NewBase("road")
	id := sc.Spawn(owner)

	f := &fixture{
		scene:  sc,
		tracer: &groundTracer{z: 0},
		curve:  spline.New(points...),
	}
	f.builder = NewBuilder(sc, physics.NewSnapper(f.tracer), id, "Spline")
	f.in = Input{
		Curve:         f.curve,
		Mesh:          &assets.Mesh{Path: "/Game/Road", Extent: math.V3(200, 50, 50)},
		Snap:          snap,
		ZOffset:       0.25,
		TraceDistance: 200,
		Transform:     math.TransformIdentity(),
	}
	return f
}

func (f *fixture) build() Stats {
	return f.builder.Build(f.in, &f.state, &f.cache)
}

func pt(x, y, z float32) spline.Point {
	return spline.Point{Location: math.V3(x, y, z)}
}

func TestSegmentCount(t *testing.T) {
	tests := []struct {
		length, mesh float32
		want         int
	}{
		{1000, 200, 4},
		{1200, 200, 5},
		{1100, 200, 5}, // 5.5 rounds up
		{1090, 200, 4},
		{200, 200, 0},
		{50, 200, 0},
		{0, 200, 0},
		{1000, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SegmentCount(tt.length, tt.mesh), "length %v mesh %v", tt.length, tt.mesh)
	}
}

func TestMeshLength(t *testing.T) {
	mesh := &assets.Mesh{Extent: math.V3(50, 50, 50)}
	assert.Equal(t, float32(100), MeshLength(mesh, math.V3(2, 1, 1)))
	assert.Equal(t, DefaultMeshLength, MeshLength(mesh, math.V3(0, 1, 1)))
	assert.Equal(t, DefaultMeshLength, MeshLength(&assets.Mesh{}, math.Vec3One))
	assert.Equal(t, DefaultMeshLength, MeshLength(nil, math.Vec3One))
}

func TestStraightCurveWithoutSnapping(t *testing.T) {
	f := newFixture(t, false, pt(0, 0, 0), pt(1000, 0, 0))

	stats := f.build()
	assert.Equal(t, 4, stats.Segments)
	assert.Equal(t, 4, stats.Created)
	assert.Zero(t, stats.Traces)
	assert.Zero(t, f.tracer.calls)

	require.Equal(t, 4, f.cache.Count())
	for i, rec := range f.cache.Records() {
		assert.True(t, rec.Start.NearlyEqual(math.V3(float32(i)*200, 0, 0), 1e-3), "start %v", rec.Start)
		assert.True(t, rec.End.NearlyEqual(math.V3(float32(i+1)*200, 0, 0), 1e-3), "end %v", rec.End)

		assert.Equal(t, rec.RawStart, rec.Start)
		assert.Equal(t, rec.RawEnd, rec.End)
		assert.Equal(t, rec.RawStartTangent, rec.StartTangent)
		assert.Equal(t, rec.RawEndTangent, rec.EndTangent)
		assert.Equal(t, rec.RawStartRotation, rec.StartRotation)
		assert.Equal(t, rec.RawEndRotation, rec.EndRotation)

		seg, ok := f.scene.Segment(rec.Mesh)
		require.True(t, ok)
		assert.Equal(t, rec.Start, seg.StartPos)
		assert.Equal(t, rec.End, seg.EndPos)
		assert.Equal(t, scene.QueryAndPhysics, seg.Collision)
		assert.Equal(t, scene.ProfileBlockAll, seg.Profile)
		assert.Equal(t, scene.Movable, seg.Mobility)
		assert.Equal(t, "Spline", seg.Parent)
	}
}

func TestRebuildWithoutChangesIsIdempotent(t *testing.T) {
	for _, snap := range []bool{false, true} {
		f := newFixture(t, snap, pt(0, 0, 100), pt(1000, 0, 100))

		first := f.build()
		before := f.cache.Records()
		if snap {
			assert.Equal(t, 8, first.Traces)
		}

		second := f.build()
		assert.Zero(t, second.Traces, "snap=%v", snap)
		assert.Zero(t, second.Recomputed)
		assert.Equal(t, 4, second.Skipped)
		assert.Zero(t, second.Created)
		assert.Zero(t, second.Destroyed)
		assert.Equal(t, before, f.cache.Records())
	}
}

func TestAddingControlPointRecreatesEverySegment(t *testing.T) {
	f := newFixture(t, false, pt(0, 0, 0), pt(1000, 0, 0))
	f.build()
	old := f.cache.Records()

	f.curve.AddPoint(pt(1200, 0, 0))
	stats := f.build()

	assert.Equal(t, 4, stats.Destroyed)
	assert.Equal(t, 5, stats.Created)
	assert.Equal(t, 5, stats.Segments)
	assert.Equal(t, 5, f.scene.SegmentCount())
	for _, rec := range old {
		_, ok := f.scene.Segment(rec.Mesh)
		assert.False(t, ok)
	}
}

func TestRemovingControlPointRecreatesEverySegment(t *testing.T) {
	f := newFixture(t, false, pt(0, 0, 0), pt(600, 0, 0), pt(1200, 0, 0))
	f.build()
	require.Equal(t, 5, f.cache.Count())

	f.curve.RemovePoint(1)
	stats := f.build()
	assert.Equal(t, 5, stats.Destroyed)
	assert.Equal(t, 5, stats.Created)
	assert.Equal(t, 5, f.scene.SegmentCount())
}

func TestShrinkingCurveTruncatesTail(t *testing.T) {
	f := newFixture(t, false, pt(0, 0, 0), pt(1000, 0, 0))
	f.build()
	require.Equal(t, 4, f.scene.SegmentCount())

	f.curve.SetLocationAtPoint(1, math.V3(600, 0, 0))
	stats := f.build()

	assert.Equal(t, 2, stats.Destroyed)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 2, f.cache.Count())
	assert.Equal(t, 2, f.scene.SegmentCount())
}

func TestShrinkingToZeroEmptiesCache(t *testing.T) {
	f := newFixture(t, false, pt(0, 0, 0), pt(1000, 0, 0))
	f.build()

	f.curve.SetLocationAtPoint(1, math.V3(250, 0, 0))
	stats := f.build()
	assert.Zero(t, stats.Segments)
	assert.Equal(t, 4, stats.Destroyed)
	assert.Zero(t, f.scene.SegmentCount())
}

func TestTangentsAreClampedToMeshLength(t *testing.T) {
	f := newFixture(t, true, pt(0, 0, 100), pt(700, 300, 100), pt(1500, -200, 120))
	f.build()
	require.NotZero(t, f.cache.Count())

	for _, rec := range f.cache.Records() {
		for _, v := range []math.Vec3{rec.StartTangent, rec.EndTangent, rec.RawStartTangent, rec.RawEndTangent} {
			l := v.Length()
			assert.GreaterOrEqual(t, l, float32(0))
			assert.LessOrEqual(t, l, float32(200)+1e-3)
		}
	}
}

func TestSnappingToFlatGround(t *testing.T) {
	f := newFixture(t, true, pt(0, 0, 100), pt(1000, 0, 100))
	stats := f.build()
	assert.Equal(t, 8, stats.Traces)

	for _, rec := range f.cache.Records() {
		// Impact at z=0 lifted by extent.Z * scale.Z * ZOffset.
		assert.InDelta(t, 12.5, rec.Start.Z, 1e-3)
		assert.InDelta(t, 12.5, rec.End.Z, 1e-3)
		assert.InDelta(t, 100, rec.RawStart.Z, 1e-3)

		assert.InDelta(t, 0, rec.StartRotation.Roll, 1e-3)
		up := rec.StartRotation.Quat().AxisZ()
		assert.True(t, up.NearlyEqual(math.Vec3Up, 1e-3), "up %v", up)
	}
}

func TestSnappingOnHeightfield(t *testing.T) {
	f := newFixture(t, true, pt(0, 0, 100), pt(1000, 0, 100))
	ground := physics.NewHeightfield(math.V3(-100, -100, 0), 50, 40, 8)
	world := physics.NewWorld()
	world.Add(ground)
	f.builder = NewBuilder(f.scene, physics.NewSnapper(world), f.builder.owner, "Spline")

	f.build()
	for _, rec := range f.cache.Records() {
		assert.InDelta(t, 12.5, rec.Start.Z, 0.5)
		assert.InDelta(t, 0, rec.StartRotation.Roll, 1e-2)
	}
}

func TestSnappingMissKeepsRawGeometry(t *testing.T) {
	f := newFixture(t, true, pt(0, 0, 100), pt(1000, 0, 100))
	f.tracer.z = -1000

	stats := f.build()
	assert.Equal(t, 8, stats.Traces)
	for _, rec := range f.cache.Records() {
		assert.Equal(t, rec.RawStart, rec.Start)
		assert.Equal(t, rec.RawEnd, rec.End)
		assert.Equal(t, rec.RawStartRotation, rec.StartRotation)
	}
}

func TestSnappingIgnoresOwnSegments(t *testing.T) {
	f := newFixture(t, true, pt(0, 0, 100), pt(1000, 0, 100))
	world := physics.NewWorld()
	world.AddSource(f.scene)
	world.Add(physics.NewHeightfield(math.V3(-100, -100, 0), 50, 40, 8))
	f.builder = NewBuilder(f.scene, physics.NewSnapper(world), f.builder.owner, "Spline")

	f.build()
	// Moving the actor forces a re-trace with the segments now in the world.
	f.in.Transform = math.NewTransform(math.Rotator{}, math.V3(0, 0, 1), math.Vec3One)
	f.build()
	for _, rec := range f.cache.Records() {
		assert.InDelta(t, 12.5, rec.Start.Z, 0.5)
	}
}

func TestAuthoredRotationIsBlended(t *testing.T) {
	first := pt(0, 0, 0)
	first.Rotation = math.Rotator{Roll: 30}
	f := newFixture(t, false, first, pt(1000, 0, 0))
	f.build()

	rec, ok := f.cache.Get(0)
	require.True(t, ok)
	// Curve roll at the point plus the authored roll.
	assert.InDelta(t, 60, rec.StartRotation.Roll, 0.1)
	assert.InDelta(t, 30, rec.RawStartRotation.Roll, 0.1)
	// Snapping is off: only the rotation departs from the raw sample.
	assert.Equal(t, rec.RawStart, rec.Start)
	assert.Equal(t, rec.RawEnd, rec.End)
	assert.Equal(t, rec.RawStartTangent, rec.StartTangent)
	assert.Equal(t, rec.RawEndTangent, rec.EndTangent)
	assert.Zero(t, f.tracer.calls)

	seg, _ := f.scene.Segment(rec.Mesh)
	assert.InDelta(t, 60, seg.StartRoll, 0.1)

	// Nearest point to distance 800 is the identity end point.
	last, _ := f.cache.Get(3)
	assert.InDelta(t, 6, last.EndRotation.Roll, 0.1)
	assert.Equal(t, last.RawEndRotation, last.EndRotation)
}

func TestTransformChangeForcesRecompute(t *testing.T) {
	f := newFixture(t, true, pt(0, 0, 100), pt(1000, 0, 100))
	f.build()

	f.in.Transform = math.NewTransform(math.Rotator{Yaw: 10}, math.Vec3Zero, math.Vec3One)
	stats := f.build()
	assert.Equal(t, 4, stats.Recomputed)
	assert.Zero(t, stats.Skipped)
	assert.Equal(t, 8, stats.Traces)
	assert.Zero(t, stats.Created)
}

func TestDestroyedObjectIsRecreatedFromCache(t *testing.T) {
	f := newFixture(t, true, pt(0, 0, 100), pt(1000, 0, 100))
	f.build()
	rec, _ := f.cache.Get(1)
	f.scene.DestroySegment(rec.Mesh)

	stats := f.build()
	assert.Zero(t, stats.Traces)
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 4, f.scene.SegmentCount())

	again, _ := f.cache.Get(1)
	seg, ok := f.scene.Segment(again.Mesh)
	require.True(t, ok)
	assert.Equal(t, rec.Start, seg.StartPos)
}

func TestPointRemovalWithSnappingZeroesLastRotation(t *testing.T) {
	points := []spline.Point{pt(0, 0, 100), pt(400, 0, 100), pt(800, 0, 100), pt(1200, 0, 100)}
	points[2].Rotation = math.Rotator{Roll: 45}

	for _, snap := range []bool{true, false} {
		f := newFixture(t, snap, points...)
		f.build()
		f.curve.RemovePoint(3)
		f.build()

		identity := f.curve.RotationAtPoint(2).IsIdentity(1e-6)
		assert.Equal(t, snap, identity, "snap=%v", snap)
	}
}

func TestMissingMeshIsNoop(t *testing.T) {
	f := newFixture(t, true, pt(0, 0, 0), pt(1000, 0, 0))
	f.in.Mesh = nil
	stats := f.build()
	assert.Equal(t, Stats{}, stats)
	assert.Zero(t, f.cache.Count())
	assert.Zero(t, f.state.PointCount)
}

func TestMaterialsApplied(t *testing.T) {
	f := newFixture(t, false, pt(0, 0, 0), pt(1000, 0, 0))
	lib := assets.NewLibrary()
	mat, err := lib.LoadMaterial(assets.BasicShapeMaterialPath)
	require.NoError(t, err)
	f.in.Materials = []*assets.Material{mat}

	f.build()
	for _, seg := range f.scene.SegmentsOf(f.builder.owner) {
		assert.Same(t, mat, seg.Material(0))
	}
}

func TestRestoreRecreatesSegments(t *testing.T) {
	f := newFixture(t, false, pt(0, 0, 0), pt(1000, 0, 0))
	f.build()
	for _, rec := range f.cache.Records() {
		f.scene.DestroySegment(rec.Mesh)
	}
	require.Zero(t, f.scene.SegmentCount())

	stats := f.builder.Restore(f.in, &f.cache)
	assert.Equal(t, 4, stats.Created)
	assert.Equal(t, 4, f.scene.SegmentCount())
	assert.Zero(t, f.tracer.calls)

	// Live objects are reused.
	stats = f.builder.Restore(f.in, &f.cache)
	assert.Zero(t, stats.Created)
}

func TestScaledActorUsesLongerSegments(t *testing.T) {
	f := newFixture(t, false, pt(0, 0, 0), pt(2000, 0, 0))
	f.in.Mesh = &assets.Mesh{Extent: math.V3(100, 50, 50)}
	f.in.Transform.Scale3D = math.V3(2, 1, 1)
	f.build()
	assert.Equal(t, 9, f.cache.Count())

	rec, _ := f.cache.Get(8)
	assert.InDelta(t, 1800, rec.End.X, 1e-2)
	assert.False(t, math32.IsNaN(rec.StartTangent.X))
}
