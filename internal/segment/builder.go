package segment

import (
	"github.com/chewxy/math32"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/pcgextras/internal/assets"
	"github.com/Faultbox/pcgextras/internal/logger"
	"github.com/Faultbox/pcgextras/internal/physics"
	"github.com/Faultbox/pcgextras/internal/scene"
	"github.com/Faultbox/pcgextras/internal/spline"
	"github.com/Faultbox/pcgextras/pkg/math"
)

// DefaultMeshLength is used when the mesh has no usable forward extent.
const DefaultMeshLength float32 = 200

// TransformTolerance bounds translation, rotation and scale differences
// that still count as an unchanged actor transform.
const TransformTolerance float32 = 1e-4

const identityTolerance float32 = 1e-6

// Input is everything a rebuild reads besides the cache.
type Input struct {
	Curve         spline.Curve
	Mesh          *assets.Mesh
	Materials     []*assets.Material
	Snap          bool
	ZOffset       float32
	TraceDistance float32
	// Transform is the owning actor's current transform.
	Transform math.Transform
}

// State is what a rebuild remembers for the next one.
type State struct {
	PointCount    int            `yaml:"point_count"`
	LastTransform math.Transform `yaml:"-"`
}

// Stats summarises one rebuild.
type Stats struct {
	Segments   int
	Recomputed int
	Skipped    int
	Created    int
	Destroyed  int
	Traces     int
}

// MarshalLogObject lets Stats be logged with zap.Object.
func (s Stats) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("segments", s.Segments)
	enc.AddInt("recomputed", s.Recomputed)
	enc.AddInt("skipped", s.Skipped)
	enc.AddInt("created", s.Created)
	enc.AddInt("destroyed", s.Destroyed)
	enc.AddInt("traces", s.Traces)
	return nil
}

// MeshLength is the distance covered by one segment: the mesh's forward
// extent scaled by the actor, or DefaultMeshLength when that is not positive.
func MeshLength(mesh *assets.Mesh, scale math.Vec3) float32 {
	if mesh == nil {
		return DefaultMeshLength
	}
	l := scale.X * mesh.Extent.X
	if l <= 0 {
		return DefaultMeshLength
	}
	return l
}

// SegmentCount returns max(0, round(curveLength/meshLength) - 1).
func SegmentCount(curveLength, meshLength float32) int {
	if meshLength <= 0 {
		return 0
	}
	n := int(math32.Floor(curveLength/meshLength+0.5)) - 1
	if n < 0 {
		return 0
	}
	return n
}

// Builder places the mesh segments of one actor.
type Builder struct {
	scene   *scene.Scene
	snapper *physics.Snapper
	owner   scene.ID
	parent  string
}

// NewBuilder creates a builder for the segments of owner, attached to the
// named spline component.
func NewBuilder(sc *scene.Scene, snapper *physics.Snapper, owner scene.ID, parent string) *Builder {
	if snapper == nil {
		snapper = physics.NewSnapper(nil)
	}
	return &Builder{scene: sc, snapper: snapper, owner: owner, parent: parent}
}

// Snapper returns the snapper used for ground traces.
func (b *Builder) Snapper() *physics.Snapper { return b.snapper }

// end is one side of a segment while it is being computed.
type end struct {
	distance float32
	pos      math.Vec3
	up       math.Vec3
	tangent  math.Vec3
	rot      math.Rotator
}

// Build recomputes the segments of in.Curve into cache. Segments whose raw
// geometry is unchanged under an unchanged actor transform are skipped
// without tracing. A missing mesh makes the call a no-op.
func (b *Builder) Build(in Input, st *State, cache *Cache) Stats {
	var stats Stats
	if in.Mesh == nil || in.Curve == nil {
		return stats
	}
	log := logger.Named("segment")
	traces := b.snapper.Traces()

	// Any control point added or removed invalidates every sample.
	points := in.Curve.NumPoints()
	if points != st.PointCount {
		decreased := points < st.PointCount
		stats.Destroyed += cache.Reset(b.release)
		st.PointCount = points
		if in.Snap && decreased && points > 0 {
			in.Curve.SetRotationAtPoint(points-1, math.Rotator{})
		}
		log.Debug("control points changed, cache cleared", zap.Int("points", points))
	}

	unchanged := st.LastTransform.NearlyEqual(in.Transform, TransformTolerance)

	meshLength := MeshLength(in.Mesh, in.Transform.Scale3D)
	count := SegmentCount(in.Curve.Length(), meshLength)
	sampler := spline.NewSampler(in.Curve)
	ignore := physics.IgnoreSet{uint64(b.owner)}

	for i := 0; i < count; i++ {
		start := b.sample(sampler, meshLength*float32(i), meshLength)
		stop := b.sample(sampler, meshLength*float32(i+1), meshLength)

		rec := Record{
			RawStart:         start.pos,
			RawEnd:           stop.pos,
			RawStartTangent:  start.tangent,
			RawEndTangent:    stop.tangent,
			RawStartRotation: start.rot,
			RawEndRotation:   stop.rot,
		}

		if cached, ok := cache.Get(i); ok && unchanged && cached.sameRaw(rec) {
			if _, alive := b.scene.Segment(cached.Mesh); !alive {
				cached.Mesh = b.place(in, cached).Handle()
				cache.Set(i, cached)
				stats.Created++
			}
			stats.Skipped++
			continue
		}

		if in.Snap {
			b.snap(sampler, in, &start, meshLength, ignore)
			b.snap(sampler, in, &stop, meshLength, ignore)
		}
		start.rot = blend(sampler, start.distance, start.rot)
		stop.rot = blend(sampler, stop.distance, stop.rot)

		rec.Start, rec.StartTangent, rec.StartRotation = start.pos, start.tangent, start.rot
		rec.End, rec.EndTangent, rec.EndRotation = stop.pos, stop.tangent, stop.rot

		if cached, ok := cache.Get(i); ok {
			rec.Mesh = cached.Mesh
		}
		seg, created := b.acquire(in, rec.Mesh)
		if created {
			stats.Created++
		}
		apply(seg, rec)
		rec.Mesh = seg.Handle()
		cache.Set(i, rec)
		stats.Recomputed++
	}

	stats.Destroyed += cache.TruncateTo(count, b.release)
	st.LastTransform = in.Transform

	stats.Segments = cache.Count()
	stats.Traces = b.snapper.Traces() - traces
	log.Debug("spline mesh rebuilt", zap.Object("stats", stats))
	return stats
}

// Discard destroys every cached object and empties the cache so the next
// Build recomputes all segments.
func (b *Builder) Discard(cache *Cache) int {
	return cache.Reset(b.release)
}

// Restore recreates the scene objects of every cached record without
// sampling or tracing, reusing objects that are still alive.
func (b *Builder) Restore(in Input, cache *Cache) Stats {
	var stats Stats
	if in.Mesh == nil || in.Curve == nil {
		return stats
	}
	for i := 0; i < cache.Count(); i++ {
		rec, _ := cache.Get(i)
		seg, created := b.acquire(in, rec.Mesh)
		if created {
			stats.Created++
		}
		apply(seg, rec)
		rec.Mesh = seg.Handle()
		cache.Set(i, rec)
	}
	stats.Segments = cache.Count()
	return stats
}

// sample reads the curve-only geometry at distance: world position and up
// vector, local tangent clamped to the mesh length, local rotation.
func (b *Builder) sample(s spline.Sampler, distance, meshLength float32) end {
	return end{
		distance: distance,
		pos:      s.LocationAt(distance, spline.World),
		up:       s.UpVectorAt(distance, spline.World),
		tangent:  s.TangentAt(distance, spline.Local).ClampLength(0, meshLength),
		rot:      s.RotationAt(distance, spline.Local),
	}
}

// snap traces down from e and conforms it to the hit surface. On a miss e
// keeps its raw geometry.
func (b *Builder) snap(s spline.Sampler, in Input, e *end, meshLength float32, ignore physics.IgnoreSet) {
	extent := in.Mesh.Extent
	origin := e.pos.Add(e.up.Scale(extent.Z))
	target := e.pos.Sub(e.up.Scale(in.TraceDistance))

	hit := b.snapper.Trace(origin, target, ignore)
	if !hit.Blocking {
		return
	}

	component := in.Curve.ComponentTransform()
	worldTangent := s.TangentAt(e.distance, spline.World)

	lift := extent.Z * in.Transform.Scale3D.Z * in.ZOffset
	e.pos = hit.ImpactPoint.Add(e.up.Scale(lift))
	e.rot = component.InverseTransformRotation(math.QuatFromXZ(worldTangent, hit.Normal)).Rotator()
	e.tangent = component.InverseTransformVector(worldTangent).ClampLength(0, meshLength)
}

// blend composes the authored rotation of the nearest control point onto
// rot, authored first, when that rotation is not identity.
func blend(s spline.Sampler, distance float32, rot math.Rotator) math.Rotator {
	idx := s.NearestControlPointIndex(distance)
	if idx == spline.NoIndex {
		return rot
	}
	authored := s.ControlPointRotation(idx)
	if authored.IsIdentity(identityTolerance) {
		return rot
	}
	return rot.Quat().Mul(authored).Rotator()
}

// acquire resolves h or creates a fresh segment, then applies the shared
// component setup.
func (b *Builder) acquire(in Input, h scene.Handle) (*scene.MeshSegment, bool) {
	seg, ok := b.scene.Segment(h)
	if !ok {
		seg = b.scene.CreateSegment(b.owner, b.parent)
	}
	seg.SetCollisionEnabled(scene.QueryAndPhysics)
	seg.SetCollisionProfileName(scene.ProfileBlockAll)
	seg.SetMobility(scene.Movable)
	seg.AttachTo(b.parent, in.Curve.ComponentTransform())
	seg.SetStaticMesh(in.Mesh)
	for m, mat := range in.Materials {
		seg.SetMaterial(m, mat)
	}
	return seg, !ok
}

func (b *Builder) place(in Input, rec Record) *scene.MeshSegment {
	seg, _ := b.acquire(in, 0)
	apply(seg, rec)
	return seg
}

func apply(seg *scene.MeshSegment, rec Record) {
	seg.SetStartAndEnd(rec.Start, rec.StartTangent, rec.End, rec.EndTangent)
	seg.SetStartRollDegrees(rec.StartRotation.Roll)
	seg.SetEndRollDegrees(rec.EndRotation.Roll)
}

func (b *Builder) release(h scene.Handle) {
	b.scene.DestroySegment(h)
}
