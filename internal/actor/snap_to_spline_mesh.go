package actor

import (
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/pcgextras/internal/assets"
	"github.com/Faultbox/pcgextras/internal/event"
	"github.com/Faultbox/pcgextras/internal/logger"
	"github.com/Faultbox/pcgextras/internal/physics"
	"github.com/Faultbox/pcgextras/internal/scene"
	"github.com/Faultbox/pcgextras/internal/segment"
	"github.com/Faultbox/pcgextras/internal/spline"
)

// SplineComponentName is the parent every segment attaches to.
const SplineComponentName = "SplineComp"

// Defaults of a new spline mesh actor.
const (
	DefaultZOffset       float32 = 0.25
	DefaultTraceDistance float32 = 200
)

// CurveState is the per-actor input and memory of the segment builder.
type CurveState struct {
	Mesh       *assets.Mesh
	Materials  []*assets.Material
	SnappingOn bool
	// ZOffset lifts snapped ends by this fraction of the mesh height.
	ZOffset       float32
	TraceDistance float32

	segment.State
}

// SnapToSplineMesh lays a chain of mesh segments along its spline and
// conforms them to the ground beneath.
type SnapToSplineMesh struct {
	*scene.Base
	pcgRefresher

	Spline *spline.Spline
	Curve  CurveState
	Cache  segment.Cache

	steepness     float32
	minBoundsMult float32
	maxBoundsMult float32

	snapper    *physics.Snapper
	builder    *segment.Builder
	editorGate Debounce
}

// NewSnapToSplineMesh creates the actor with the engine cube as its mesh.
// tracer is the physics world used for snapping; nil disables hits.
func NewSnapToSplineMesh(name string, lib *assets.Library, tracer physics.Tracer) *SnapToSplineMesh {
	a := &SnapToSplineMesh{
		Base:         scene.NewBase(name, Tag),
		pcgRefresher: newPCGRefresher(),
		Spline:       spline.New(),
		Curve: CurveState{
			SnappingOn:    true,
			ZOffset:       DefaultZOffset,
			TraceDistance: DefaultTraceDistance,
		},
		steepness:     1,
		minBoundsMult: 1,
		maxBoundsMult: 1,
		snapper:       physics.NewSnapper(tracer),
		editorGate:    Debounce{Interval: DefaultRefreshInterval},
	}
	a.Spline.SetOwner(a)

	if lib != nil {
		if mesh, err := lib.LoadMesh(assets.CubePath); err == nil {
			a.Curve.Mesh = mesh
		}
		if mat, err := lib.LoadMaterial(assets.BasicShapeMaterialPath); err == nil {
			a.Curve.Materials = append(a.Curve.Materials, mat)
		}
	}
	return a
}

// PCGSteepness returns the exclusion falloff for this actor's points.
func (a *SnapToSplineMesh) PCGSteepness() float32 { return a.steepness }

// SetPCGSteepness sets the falloff, clamped into [0, 1].
func (a *SnapToSplineMesh) SetPCGSteepness(v float32) {
	a.steepness = math32.Max(0, math32.Min(1, v))
}

// PCGMinBoundsMultiplier scales the lower corner of each exclusion box.
func (a *SnapToSplineMesh) PCGMinBoundsMultiplier() float32 { return a.minBoundsMult }

// PCGMaxBoundsMultiplier scales the upper corner of each exclusion box.
func (a *SnapToSplineMesh) PCGMaxBoundsMultiplier() float32 { return a.maxBoundsMult }

// SetPCGBoundsMultipliers sets both multipliers, clamping them at zero.
func (a *SnapToSplineMesh) SetPCGBoundsMultipliers(min, max float32) {
	a.minBoundsMult = math32.Max(0, min)
	a.maxBoundsMult = math32.Max(0, max)
}

// Snapper exposes the ground snapper, mostly for its trace count.
func (a *SnapToSplineMesh) Snapper() *physics.Snapper { return a.snapper }

// SetClock replaces the clock of both refresh gates.
func (a *SnapToSplineMesh) SetClock(now func() time.Time) {
	a.gate.Now = now
	a.editorGate.Now = now
}

// SetRefreshInterval replaces the window of both refresh gates.
func (a *SnapToSplineMesh) SetRefreshInterval(d time.Duration) {
	a.gate.Interval = d
	a.editorGate.Interval = d
}

func (a *SnapToSplineMesh) input() segment.Input {
	a.Spline.SetTransform(a.Transform)
	return segment.Input{
		Curve:         a.Spline,
		Mesh:          a.Curve.Mesh,
		Materials:     a.Curve.Materials,
		Snap:          a.Curve.SnappingOn,
		ZOffset:       a.Curve.ZOffset,
		TraceDistance: a.Curve.TraceDistance,
		Transform:     a.Transform,
	}
}

func (a *SnapToSplineMesh) segments() *segment.Builder {
	if a.builder == nil {
		a.builder = segment.NewBuilder(a.Scene(), a.snapper, a.ID(), SplineComponentName)
	}
	return a.builder
}

// MakeSplineMesh rebuilds the segments from the spline. It does nothing
// until the actor is spawned or while it has no mesh.
func (a *SnapToSplineMesh) MakeSplineMesh() segment.Stats {
	if !a.IsValid() {
		return segment.Stats{}
	}
	return a.segments().Build(a.input(), &a.Curve.State, &a.Cache)
}

// Invalidate drops the cached segments after a mesh or snapping change
// and rebuilds.
func (a *SnapToSplineMesh) Invalidate() segment.Stats {
	if !a.IsValid() {
		return segment.Stats{}
	}
	destroyed := a.segments().Discard(&a.Cache)
	stats := a.MakeSplineMesh()
	stats.Destroyed += destroyed
	return stats
}

// CreateFromCache recreates the segment objects from the cache without
// sampling the spline or tracing.
func (a *SnapToSplineMesh) CreateFromCache() segment.Stats {
	if !a.IsValid() {
		return segment.Stats{}
	}
	return a.segments().Restore(a.input(), &a.Cache)
}

// OnConstruction subscribes to scene events once and lays out the
// segments, from the cache when one was loaded.
func (a *SnapToSplineMesh) OnConstruction() {
	if !a.IsValid() {
		return
	}
	if !a.subscribed() {
		a.subscribe()
	}
	if a.Cache.Count() > 0 {
		a.CreateFromCache()
		return
	}
	a.MakeSplineMesh()
}

// BeginPlay recreates the segments in a game world when the cache was
// loaded but no objects exist yet.
func (a *SnapToSplineMesh) BeginPlay() {
	sc := a.Scene()
	if sc == nil || !sc.GameWorld {
		return
	}
	if len(sc.SegmentsOf(a.ID())) == 0 && a.Cache.Count() > 0 {
		a.CreateFromCache()
	}
}

// RefreshEditor rebuilds the segments and refreshes nearby generation.
// Unforced calls inside the debounce window are dropped.
func (a *SnapToSplineMesh) RefreshEditor(force bool) bool {
	if !a.editorGate.Allow(force) {
		logger.Named("actor").Debug("editor refresh skipped", zap.String("actor", a.Name))
		return false
	}
	a.MakeSplineMesh()
	a.RefreshPCG()
	return true
}

// RefreshPCG regenerates the generators whose bounds touch this actor.
func (a *SnapToSplineMesh) RefreshPCG() int {
	return a.refresh(a.Base)
}

func (a *SnapToSplineMesh) subscribe() {
	events := a.Scene().Events()
	if events == nil {
		return
	}
	id := uint64(a.ID())

	a.track(events.Subscribe(event.TransformUpdated, func(e event.Event) {
		if e.Actor == id {
			a.RefreshEditor(true)
		}
	}))
	a.track(events.Subscribe(event.SegmentDestroyed, func(e event.Event) {
		if e.Actor == id {
			a.Cache.ClearHandle(scene.Handle(e.Handle))
		}
	}))
	a.track(events.Subscribe(event.ActorDestroyed, func(e event.Event) {
		if e.Actor == id {
			a.release()
		}
	}))
	a.track(events.Subscribe(event.BeginPlay, func(event.Event) {
		a.BeginPlay()
	}))
}
