package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/pcgextras/internal/assets"
	"github.com/Faultbox/pcgextras/internal/event"
	"github.com/Faultbox/pcgextras/internal/physics"
	"github.com/Faultbox/pcgextras/internal/scene"
	"github.com/Faultbox/pcgextras/internal/spline"
	"github.com/Faultbox/pcgextras/pkg/math"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type countingGenerator struct {
	cleanups, generates int
}

func (g *countingGenerator) Cleanup() { g.cleanups++ }
func (g *countingGenerator) Generate() error { g.generates++; return nil }

func TestDebounce(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	d := Debounce{Interval: DefaultRefreshInterval, Now: clock.Now}

	assert.True(t, d.Allow(false))
	assert.False(t, d.Allow(false))
	clock.Advance(200 * time.Millisecond)
	assert.False(t, d.Allow(false))
	assert.True(t, d.Allow(true))
	assert.Equal(t, clock.t.Add(DefaultRefreshInterval), d.NextAllowed())

	clock.Advance(301 * time.Millisecond)
	assert.True(t, d.Allow(false))
}

type world struct {
	scene  *scene.Scene
	events *event.Dispatcher
	clock  *fakeClock
	lib    *assets.Library
	ground *physics.World
}

func newWorld() *world {
	events := event.NewDispatcher()
	w := &world{
		scene:  scene.New(events),
		events: events,
		clock:  &fakeClock{t: time.Unix(1000, 0)},
		lib:    assets.NewLibrary(),
		ground: physics.NewWorld(),
	}
	w.ground.Add(physics.NewHeightfield(math.V3(-500, -500, 0), 100, 30, 10))
	w.ground.AddSource(w.scene)
	return w
}

func (w *world) road(points ...float32) *SnapToSplineMesh {
	a := NewSnapToSplineMesh("road", w.lib, w.ground)
	a.SetClock(w.clock.Now)
	a.Curve.Mesh = &assets.Mesh{Path: "/Game/Road", Extent: math.V3(200, 50, 10)}
	var pts []spline.Point
	for _, x := range points {
		pts = append(pts, spline.Point{Location: math.V3(x, 0, 100)})
	}
	a.Spline.SetPoints(pts)
	w.scene.Spawn(a)
	a.OnConstruction()
	return a
}

func TestNewSnapToSplineMeshDefaults(t *testing.T) {
	a := NewSnapToSplineMesh("road", assets.NewLibrary(), nil)
	assert.True(t, a.HasTag(Tag))
	assert.True(t, a.Curve.SnappingOn)
	assert.True(t, a.AutoRefresh)
	assert.Equal(t, DefaultZOffset, a.Curve.ZOffset)
	assert.Equal(t, DefaultTraceDistance, a.Curve.TraceDistance)
	require.NotNil(t, a.Curve.Mesh)
	assert.Equal(t, assets.CubePath, a.Curve.Mesh.Path)
	require.Len(t, a.Curve.Materials, 1)
	assert.Equal(t, float32(1), a.PCGSteepness())
	assert.Equal(t, float32(1), a.PCGMinBoundsMultiplier())
	assert.Equal(t, float32(1), a.PCGMaxBoundsMultiplier())
	assert.Same(t, a, a.Spline.Owner())

	// Not spawned: nothing to build.
	assert.Equal(t, 0, a.MakeSplineMesh().Segments)
}

func TestActorsSpawnAsSceneActors(t *testing.T) {
	w := newWorld()
	road := NewSnapToSplineMesh("road", w.lib, w.ground)
	pond := NewExcluder("pond", w.lib)

	for _, a := range []scene.Actor{road, pond} {
		id := w.scene.Spawn(a)
		got, ok := w.scene.Actor(id)
		require.True(t, ok)
		assert.Same(t, a.ActorBase(), got.ActorBase())
	}
	assert.Same(t, road.Base, road.ActorBase())
	assert.Len(t, w.scene.ActorsWithTag(Tag), 2)
}

func TestConstructionBuildsAndSnaps(t *testing.T) {
	w := newWorld()
	a := w.road(0, 1000)

	assert.Equal(t, 4, a.Cache.Count())
	assert.Len(t, w.scene.SegmentsOf(a.ID()), 4)
	assert.Equal(t, 8, a.Snapper().Traces())
	for _, rec := range a.Cache.Records() {
		assert.InDelta(t, 2.5, rec.Start.Z, 0.5)
	}
}

func TestConstructionFromLoadedCache(t *testing.T) {
	w := newWorld()
	a := w.road(0, 1000)
	saved := a.Cache.Records()
	state := a.Curve.State

	b := NewSnapToSplineMesh("copy", w.lib, w.ground)
	b.Curve.Mesh = a.Curve.Mesh
	b.Spline.SetPoints(a.Spline.Points())
	b.Curve.State = state
	for i, rec := range saved {
		rec.Mesh = 0
		b.Cache.Set(i, rec)
	}
	w.scene.Spawn(b)
	b.OnConstruction()

	assert.Zero(t, b.Snapper().Traces())
	assert.Len(t, w.scene.SegmentsOf(b.ID()), 4)
}

func TestTransformUpdateForcesRebuild(t *testing.T) {
	w := newWorld()
	a := w.road(0, 1000)
	traces := a.Snapper().Traces()

	a.SetTransform(math.NewTransform(math.Rotator{}, math.V3(0, 100, 0), math.Vec3One))
	assert.Equal(t, traces+8, a.Snapper().Traces())

	// Forced refreshes ignore the debounce window.
	a.SetTransform(math.NewTransform(math.Rotator{}, math.V3(0, 200, 0), math.Vec3One))
	assert.Equal(t, traces+16, a.Snapper().Traces())

	seg := w.scene.SegmentsOf(a.ID())[0]
	assert.InDelta(t, 200, seg.StartPos.Y, 1e-3)
}

func TestRefreshEditorDebounce(t *testing.T) {
	w := newWorld()
	a := w.road(0, 1000)

	assert.True(t, a.RefreshEditor(false))
	assert.False(t, a.RefreshEditor(false))
	assert.True(t, a.RefreshEditor(true))
	w.clock.Advance(time.Second)
	assert.True(t, a.RefreshEditor(false))
}

func TestExternallyDestroyedSegmentClearsHandle(t *testing.T) {
	w := newWorld()
	a := w.road(0, 1000)
	rec, _ := a.Cache.Get(2)

	w.scene.DestroySegment(rec.Mesh)
	after, _ := a.Cache.Get(2)
	assert.Zero(t, after.Mesh)

	stats := a.MakeSplineMesh()
	assert.Equal(t, 1, stats.Created)
	assert.Zero(t, stats.Traces)
}

func TestDestroyUnsubscribes(t *testing.T) {
	w := newWorld()
	a := w.road(0, 1000)
	require.Equal(t, 1, w.events.Count(event.TransformUpdated))

	w.scene.Destroy(a.ID())
	assert.Zero(t, w.events.Count(event.TransformUpdated))
	assert.Zero(t, w.events.Count(event.SegmentDestroyed))
	assert.Zero(t, w.scene.SegmentCount())
}

func TestOnConstructionSubscribesOnce(t *testing.T) {
	w := newWorld()
	a := w.road(0, 1000)
	a.OnConstruction()
	a.OnConstruction()
	assert.Equal(t, 1, w.events.Count(event.TransformUpdated))
}

func TestBeginPlayRecreatesInGameWorld(t *testing.T) {
	w := newWorld()
	a := w.road(0, 1000)
	for _, seg := range w.scene.SegmentsOf(a.ID()) {
		w.scene.DestroySegment(seg.Handle())
	}

	w.events.Emit(event.Event{Kind: event.BeginPlay})
	assert.Empty(t, w.scene.SegmentsOf(a.ID()), "editor world keeps the scene as is")

	w.scene.GameWorld = true
	w.events.Emit(event.Event{Kind: event.BeginPlay})
	assert.Len(t, w.scene.SegmentsOf(a.ID()), 4)
}

func TestRefreshPCGRegeneratesIntersectingGenerators(t *testing.T) {
	w := newWorld()
	a := w.road(0, 1000)

	near := scene.NewBase("near")
	near.LocalBounds = math.BoxFromCenterExtent(math.V3(500, 0, 0), math.V3(100, 100, 100))
	nearGen := &countingGenerator{}
	near.AddGenerator(nearGen)
	w.scene.Spawn(near)

	far := scene.NewBase("far")
	far.LocalBounds = math.BoxFromCenterExtent(math.V3(50000, 0, 0), math.V3(10, 10, 10))
	farGen := &countingGenerator{}
	far.AddGenerator(farGen)
	w.scene.Spawn(far)

	assert.Equal(t, 1, a.RefreshPCG())
	assert.Equal(t, 1, nearGen.cleanups)
	assert.Equal(t, 1, nearGen.generates)
	assert.Zero(t, farGen.generates)

	// Debounced.
	assert.Zero(t, a.RefreshPCG())
	w.clock.Advance(time.Second)
	a.AutoRefresh = false
	assert.Zero(t, a.RefreshPCG())
}

func TestBoundsMultipliersClamp(t *testing.T) {
	a := NewSnapToSplineMesh("road", nil, nil)
	a.SetPCGBoundsMultipliers(-2, 3)
	assert.Zero(t, a.PCGMinBoundsMultiplier())
	assert.Equal(t, float32(3), a.PCGMaxBoundsMultiplier())
	a.SetPCGSteepness(4)
	assert.Equal(t, float32(1), a.PCGSteepness())
	assert.Nil(t, a.Curve.Mesh)
}

func TestExcluder(t *testing.T) {
	w := newWorld()
	ex := NewExcluder("zone", w.lib)
	ex.SetClock(w.clock.Now)
	assert.True(t, ex.HasTag(Tag))
	assert.True(t, ex.HiddenInGame)
	assert.False(t, ex.BlocksTraces)
	assert.Equal(t, float32(50), ex.LocalBounds.Max.X)
	require.NotNil(t, ex.Material)

	w.scene.Spawn(ex)
	ex.OnConstruction()
	ex.OnConstruction()
	assert.Equal(t, 1, w.events.Count(event.TransformUpdated))

	gen := &countingGenerator{}
	host := scene.NewBase("host")
	host.LocalBounds = math.BoxFromCenterExtent(math.Vec3Zero, math.V3(500, 500, 500))
	host.AddGenerator(gen)
	w.scene.Spawn(host)

	ex.SetTransform(math.NewTransform(math.Rotator{}, math.V3(10, 0, 0), math.Vec3One))
	assert.Equal(t, 1, gen.generates)

	// Within the window the second move is coalesced.
	ex.SetTransform(math.NewTransform(math.Rotator{}, math.V3(20, 0, 0), math.Vec3One))
	assert.Equal(t, 1, gen.generates)

	w.scene.Destroy(ex.ID())
	assert.Zero(t, w.events.Count(event.TransformUpdated))
}
