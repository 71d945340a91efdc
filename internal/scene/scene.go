package scene

import (
	"slices"

	"github.com/Faultbox/pcgextras/internal/event"
	"github.com/Faultbox/pcgextras/internal/physics"
	"github.com/Faultbox/pcgextras/pkg/math"
)

// Scene owns actors and mesh segments. Actors are enumerated in spawn order.
type Scene struct {
	actors []Actor
	byID   map[ID]Actor

	segments map[Handle]*MeshSegment
	owned    map[ID][]Handle

	nextID     ID
	nextHandle Handle

	events *event.Dispatcher

	// GameWorld marks a running game rather than an editor scene.
	GameWorld bool
}

// New creates an empty scene. events may be nil.
func New(events *event.Dispatcher) *Scene {
	return &Scene{
		byID:     make(map[ID]Actor),
		segments: make(map[Handle]*MeshSegment),
		owned:    make(map[ID][]Handle),
		events:   events,
	}
}

// Events returns the scene's dispatcher, or nil.
func (s *Scene) Events() *event.Dispatcher { return s.events }

func (s *Scene) emit(e event.Event) {
	if s.events != nil {
		s.events.Emit(e)
	}
}

// Spawn adds a to the scene and returns its id.
func (s *Scene) Spawn(a Actor) ID {
	b := a.ActorBase()
	s.nextID++
	b.id = s.nextID
	b.scene = s
	b.alive = true
	s.actors = append(s.actors, a)
	s.byID[b.id] = a
	return b.id
}

// Destroy removes the actor and every segment it owns.
func (s *Scene) Destroy(id ID) {
	a, ok := s.byID[id]
	if !ok {
		return
	}
	for _, h := range slices.Clone(s.owned[id]) {
		s.DestroySegment(h)
	}
	delete(s.owned, id)
	delete(s.byID, id)
	s.actors = slices.DeleteFunc(s.actors, func(x Actor) bool { return x.ActorBase().id == id })
	a.ActorBase().alive = false
	s.emit(event.Event{Kind: event.ActorDestroyed, Object: a, Actor: uint64(id)})
}

// Actor looks up a live actor.
func (s *Scene) Actor(id ID) (Actor, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Actors returns the live actors in spawn order.
func (s *Scene) Actors() []Actor {
	return slices.Clone(s.actors)
}

// ActorsWithTag returns the live actors carrying tag, in spawn order.
func (s *Scene) ActorsWithTag(tag string) []Actor {
	var out []Actor
	for _, a := range s.actors {
		b := a.ActorBase()
		if b.IsValid() && b.HasTag(tag) {
			out = append(out, a)
		}
	}
	return out
}

// CreateSegment creates a mesh segment owned by owner and attached to the
// named parent component.
func (s *Scene) CreateSegment(owner ID, parent string) *MeshSegment {
	s.nextHandle++
	seg := &MeshSegment{
		handle:          s.nextHandle,
		owner:           owner,
		Parent:          parent,
		ParentTransform: math.TransformIdentity(),
	}
	s.segments[seg.handle] = seg
	s.owned[owner] = append(s.owned[owner], seg.handle)
	return seg
}

// DestroySegment removes a segment. Unknown or zero handles are ignored.
func (s *Scene) DestroySegment(h Handle) {
	seg, ok := s.segments[h]
	if !ok {
		return
	}
	delete(s.segments, h)
	s.owned[seg.owner] = slices.DeleteFunc(s.owned[seg.owner], func(x Handle) bool { return x == h })
	s.emit(event.Event{Kind: event.SegmentDestroyed, Handle: uint64(h), Actor: uint64(seg.owner)})
}

// Segment resolves a weak handle. It reports false once the segment is gone.
func (s *Scene) Segment(h Handle) (*MeshSegment, bool) {
	seg, ok := s.segments[h]
	return seg, ok
}

// SegmentsOf returns the segments owned by an actor in creation order.
func (s *Scene) SegmentsOf(id ID) []*MeshSegment {
	hs := s.owned[id]
	out := make([]*MeshSegment, 0, len(hs))
	for _, h := range hs {
		if seg, ok := s.segments[h]; ok {
			out = append(out, seg)
		}
	}
	return out
}

// SegmentCount returns the number of live segments in the scene.
func (s *Scene) SegmentCount() int { return len(s.segments) }

// SegmentBounds returns the world bounds of a segment as origin and extent.
func (s *Scene) SegmentBounds(seg *MeshSegment) (origin, extent math.Vec3) {
	b := seg.Bounds()
	return b.Center(), b.Extent()
}

// ActorLocalBounds returns the actor's bounds in its own space: the union
// of LocalBounds and its segments brought back into actor space.
func (s *Scene) ActorLocalBounds(a Actor) math.Box {
	b := a.ActorBase()
	box := b.LocalBounds
	inv := inverseMat(b.Transform)
	for _, seg := range s.SegmentsOf(b.id) {
		box = box.Union(seg.Bounds().TransformBy(inv))
	}
	return box
}

// ActorBounds returns the actor's world bounds.
func (s *Scene) ActorBounds(a Actor) math.Box {
	b := a.ActorBase()
	box := b.LocalBounds.TransformBy(b.Transform.ToMat4())
	for _, seg := range s.SegmentsOf(b.id) {
		box = box.Union(seg.Bounds())
	}
	return box
}

// Colliders exposes blocking segments and actors to the physics world.
func (s *Scene) Colliders() []physics.Collider {
	var out []physics.Collider
	for _, a := range s.actors {
		b := a.ActorBase()
		if !b.IsValid() {
			continue
		}
		if b.BlocksTraces {
			box := b.LocalBounds.TransformBy(b.Transform.ToMat4())
			if box.IsValid() {
				out = append(out, physics.BoxCollider{Box: box, OwnerID: uint64(b.id)})
			}
		}
		for _, seg := range s.SegmentsOf(b.id) {
			if seg.BlocksTraces() {
				out = append(out, physics.BoxCollider{Box: seg.Bounds(), OwnerID: uint64(b.id)})
			}
		}
	}
	return out
}

func inverseMat(t math.Transform) math.Mat4 {
	inv := math.Scale(safeInv(t.Scale3D.X), safeInv(t.Scale3D.Y), safeInv(t.Scale3D.Z))
	inv = inv.Mul(t.Rotation.Conjugate().ToMat4())
	return inv.Mul(math.Translate(-t.Translation.X, -t.Translation.Y, -t.Translation.Z))
}

func safeInv(v float32) float32 {
	if v == 0 {
		return 0
	}
	return 1 / v
}
