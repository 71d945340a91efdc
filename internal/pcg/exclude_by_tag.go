package pcg

import (
	"cmp"
	"errors"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/pcgextras/internal/logger"
	"github.com/Faultbox/pcgextras/internal/scene"
	"github.com/Faultbox/pcgextras/pkg/math"
)

// DefaultActorTag is the tag ExcludeByTag looks for unless configured.
const DefaultActorTag = "PCG_EXCLUDE"

// AttrExcludePointsNum names the point-count attribute of the output.
const AttrExcludePointsNum = "ExcludePointsNum"

// ErrNoScene is returned when a node runs without a scene.
var ErrNoScene = errors.New("pcg: no scene")

// SteepnessSource is implemented by actors that tune their points'
// steepness. Others get 1.
type SteepnessSource interface {
	PCGSteepness() float32
}

// BoundsMultiplierSource is implemented by actors that scale the bounds of
// their per-segment points. Others get 1.
type BoundsMultiplierSource interface {
	PCGMinBoundsMultiplier() float32
	PCGMaxBoundsMultiplier() float32
}

// Context is what a node sees while executing.
type Context struct {
	Scene *scene.Scene
	// Source is the actor whose component runs the node, if any.
	Source scene.Actor
	Seed   int32
}

// Output is the result of a node.
type Output struct {
	Points []Point        `yaml:"points"`
	Params map[string]int `yaml:"params"`
}

// Node is a graph node without inputs.
type Node interface {
	Execute(ctx *Context) (Output, error)
}

// Settings configures ExcludeByTag.
type Settings struct {
	ActorTag string `yaml:"actor_tag" toml:"actor_tag"`
	// SortByPosition orders the points by location instead of scene order.
	SortByPosition bool `yaml:"sort_by_position" toml:"sort_by_position"`
}

// DefaultSettings returns the settings of a freshly placed node.
func DefaultSettings() Settings {
	return Settings{ActorTag: DefaultActorTag}
}

// ExcludeByTag emits one exclusion point per mesh segment of every tagged
// actor, or one per actor when it has no segments.
type ExcludeByTag struct {
	Settings Settings
}

// NewExcludeByTag creates the node.
func NewExcludeByTag(s Settings) *ExcludeByTag {
	if s.ActorTag == "" {
		s.ActorTag = DefaultActorTag
	}
	return &ExcludeByTag{Settings: s}
}

// Execute scans the scene for tagged actors.
func (n *ExcludeByTag) Execute(ctx *Context) (Output, error) {
	if ctx == nil || ctx.Scene == nil {
		return Output{}, ErrNoScene
	}
	sc := ctx.Scene

	var points []Point
	for _, a := range sc.ActorsWithTag(n.Settings.ActorTag) {
		b := a.ActorBase()
		if !b.IsValid() {
			continue
		}

		steepness, minMul, maxMul := float32(1), float32(1), float32(1)
		if s, ok := a.(SteepnessSource); ok {
			steepness = s.PCGSteepness()
		}
		if m, ok := a.(BoundsMultiplierSource); ok {
			minMul, maxMul = m.PCGMinBoundsMultiplier(), m.PCGMaxBoundsMultiplier()
		}

		segments := sc.SegmentsOf(b.ID())
		if len(segments) == 0 {
			bounds := sc.ActorLocalBounds(a)
			points = append(points, Point{
				Transform: b.Transform,
				BoundsMin: bounds.Min,
				BoundsMax: bounds.Max,
				Density:   1,
				Steepness: steepness,
				Seed:      SeedFromPosition(b.Location()),
			})
			continue
		}

		for _, seg := range segments {
			origin, extent := sc.SegmentBounds(seg)
			start := math.Rotator{Roll: seg.StartRoll}.Quat()
			end := math.Rotator{Roll: seg.EndRoll}.Quat()
			points = append(points, Point{
				Transform: math.Transform{
					Translation: origin,
					Rotation:    start.Slerp(end, 0.5),
					Scale3D:     seg.Scale(),
				},
				BoundsMin: extent.Scale(-minMul),
				BoundsMax: extent.Scale(maxMul),
				Density:   1,
				Steepness: steepness,
				Seed:      SeedFromPosition(origin),
			})
		}
	}

	if n.Settings.SortByPosition {
		slices.SortStableFunc(points, func(a, b Point) int {
			pa, pb := a.Location(), b.Location()
			return cmp.Or(cmp.Compare(pa.X, pb.X), cmp.Compare(pa.Y, pb.Y), cmp.Compare(pa.Z, pb.Z))
		})
	}

	logger.Named("pcg").Debug("exclusion points collected",
		zap.String("tag", n.Settings.ActorTag), zap.Int("points", len(points)))

	return Output{
		Points: points,
		Params: map[string]int{AttrExcludePointsNum: len(points)},
	}, nil
}
