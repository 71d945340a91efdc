package pcg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/pcgextras/internal/actor"
	"github.com/Faultbox/pcgextras/internal/assets"
	"github.com/Faultbox/pcgextras/internal/event"
	"github.com/Faultbox/pcgextras/internal/scene"
	"github.com/Faultbox/pcgextras/internal/spline"
	"github.com/Faultbox/pcgextras/pkg/math"
)

func TestComputeSeed(t *testing.T) {
	assert.Equal(t, int32(580101589), ComputeSeed(0, 0, 0))
	assert.Equal(t, int32(2008396611), ComputeSeed(1, 2, 3))
	assert.Equal(t, int32(680079133), ComputeSeed(-1, 0, 5))
	assert.Equal(t, int32(1957834553), SeedFromPosition(math.V3(100.7, -199.2, 0.4)))
}

// roadScene holds one spline actor with three segments and a plain tagged
// actor.
func roadScene(t *testing.T) (*scene.Scene, *actor.SnapToSplineMesh, *scene.Base) {
	t.Helper()
	sc := scene.New(event.NewDispatcher())

	road := actor.NewSnapToSplineMesh("road", assets.NewLibrary(), nil)
	road.Curve.Mesh = &assets.Mesh{Path: "/Game/Road", Extent: math.V3(200, 50, 10)}
	road.Curve.SnappingOn = false
	road.Spline.SetPoints([]spline.Point{
		{Location: math.V3(0, 0, 0)},
		{Location: math.V3(800, 0, 0)},
	})
	road.SetPCGSteepness(0.4)
	sc.Spawn(road)
	road.OnConstruction()
	require.Len(t, sc.SegmentsOf(road.ID()), 3)

	rock := scene.NewBase("rock", DefaultActorTag)
	rock.LocalBounds = math.BoxFromCenterExtent(math.Vec3Zero, math.V3(10, 20, 30))
	rock.Transform = math.NewTransform(math.Rotator{Yaw: 90}, math.V3(500, 500, 0), math.Vec3One)
	sc.Spawn(rock)

	untagged := scene.NewBase("tree")
	untagged.LocalBounds = math.BoxFromCenterExtent(math.Vec3Zero, math.V3(10, 10, 10))
	sc.Spawn(untagged)

	return sc, road, rock
}

func TestExcludeByTagCollectsSegmentsAndActors(t *testing.T) {
	sc, _, rock := roadScene(t)

	out, err := NewExcludeByTag(DefaultSettings()).Execute(&Context{Scene: sc})
	require.NoError(t, err)
	require.Len(t, out.Points, 4)
	assert.Equal(t, 4, out.Params[AttrExcludePointsNum])

	for _, p := range out.Points[:3] {
		assert.Equal(t, float32(0.4), p.Steepness)
		assert.Equal(t, float32(1), p.Density)
		assert.Equal(t, p.BoundsMin, p.BoundsMax.Scale(-1))
		assert.Equal(t, SeedFromPosition(p.Location()), p.Seed)
	}

	last := out.Points[3]
	assert.Equal(t, float32(1), last.Steepness)
	assert.Equal(t, rock.Transform, last.Transform)
	assert.InDelta(t, -10, last.BoundsMin.X, 1e-4)
	assert.InDelta(t, 30, last.BoundsMax.Z, 1e-4)
	assert.Equal(t, SeedFromPosition(math.V3(500, 500, 0)), last.Seed)
}

func TestExcludeByTagBoundsMultipliers(t *testing.T) {
	sc, road, _ := roadScene(t)
	road.SetPCGBoundsMultipliers(2, -1)

	out, err := NewExcludeByTag(DefaultSettings()).Execute(&Context{Scene: sc})
	require.NoError(t, err)

	seg := sc.SegmentsOf(road.ID())[0]
	_, extent := sc.SegmentBounds(seg)
	assert.Equal(t, extent.Scale(-2), out.Points[0].BoundsMin)
	// Negative multipliers clamp to zero.
	assert.Equal(t, math.Vec3{}, out.Points[0].BoundsMax)
}

func TestExcludeByTagSegmentRotation(t *testing.T) {
	sc, road, _ := roadScene(t)
	seg := sc.SegmentsOf(road.ID())[0]
	seg.SetStartRollDegrees(20)
	seg.SetEndRollDegrees(40)

	out, err := NewExcludeByTag(DefaultSettings()).Execute(&Context{Scene: sc})
	require.NoError(t, err)
	assert.InDelta(t, 30, out.Points[0].Transform.Rotator().Roll, 1e-2)
}

func TestExcludeByTagSkipsDestroyedAndOtherTags(t *testing.T) {
	sc, road, _ := roadScene(t)
	sc.Destroy(road.ID())

	out, err := NewExcludeByTag(Settings{ActorTag: DefaultActorTag}).Execute(&Context{Scene: sc})
	require.NoError(t, err)
	assert.Len(t, out.Points, 1)

	out, err = NewExcludeByTag(Settings{ActorTag: "Nothing"}).Execute(&Context{Scene: sc})
	require.NoError(t, err)
	assert.Empty(t, out.Points)
	assert.Zero(t, out.Params[AttrExcludePointsNum])
}

func TestExcludeByTagSortByPosition(t *testing.T) {
	sc := scene.New(nil)
	for _, x := range []float32{300, -100, 200} {
		b := scene.NewBase("box", DefaultActorTag)
		b.Transform = math.NewTransform(math.Rotator{}, math.V3(x, 0, 0), math.Vec3One)
		sc.Spawn(b)
	}

	out, err := NewExcludeByTag(DefaultSettings()).Execute(&Context{Scene: sc})
	require.NoError(t, err)
	assert.Equal(t, float32(300), out.Points[0].Location().X)

	out, err = NewExcludeByTag(Settings{SortByPosition: true}).Execute(&Context{Scene: sc})
	require.NoError(t, err)
	var xs []float32
	for _, p := range out.Points {
		xs = append(xs, p.Location().X)
	}
	assert.Equal(t, []float32{-100, 200, 300}, xs)
}

func TestExcludeByTagWithoutScene(t *testing.T) {
	_, err := NewExcludeByTag(DefaultSettings()).Execute(&Context{})
	assert.ErrorIs(t, err, ErrNoScene)
	_, err = NewExcludeByTag(DefaultSettings()).Execute(nil)
	assert.ErrorIs(t, err, ErrNoScene)
}

func TestExcluderActorPoint(t *testing.T) {
	sc := scene.New(nil)
	ex := actor.NewExcluder("zone", assets.NewLibrary())
	ex.SetPCGSteepness(0.7)
	ex.Transform = math.NewTransform(math.Rotator{}, math.V3(10, 20, 30), math.V3(2, 2, 2))
	sc.Spawn(ex)

	out, err := NewExcludeByTag(DefaultSettings()).Execute(&Context{Scene: sc})
	require.NoError(t, err)
	require.Len(t, out.Points, 1)
	p := out.Points[0]
	assert.Equal(t, float32(0.7), p.Steepness)
	assert.InDelta(t, -50, p.BoundsMin.X, 1e-4)
	assert.InDelta(t, 50, p.BoundsMax.Y, 1e-4)
	assert.Equal(t, math.V3(2, 2, 2), p.Transform.Scale3D)
}

type failingNode struct{}

func (failingNode) Execute(*Context) (Output, error) { return Output{}, errors.New("boom") }

func TestComponentGenerateAndCleanup(t *testing.T) {
	sc, _, _ := roadScene(t)
	host := scene.NewBase("volume")
	sc.Spawn(host)

	c := Attach(host, NewExcludeByTag(DefaultSettings()))
	require.Len(t, host.Generators(), 1)

	_, ok := c.Output()
	assert.False(t, ok)

	require.NoError(t, c.Generate())
	out, ok := c.Output()
	require.True(t, ok)
	assert.Len(t, out.Points, 4)
	assert.Equal(t, 1, c.Generations())

	c.Cleanup()
	_, ok = c.Output()
	assert.False(t, ok)

	bad := Attach(host, failingNode{})
	err := bad.Generate()
	assert.ErrorContains(t, err, "volume")
	assert.Zero(t, bad.Generations())
}
