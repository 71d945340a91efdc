// Package scene is the in-memory stand-in for the host scene: actors with
// tags and transforms, mesh-segment objects addressed by weak handles, and
// the bounds queries used by the exclusion scan.
package scene

import (
	"slices"

	"github.com/Faultbox/pcgextras/internal/event"
	"github.com/Faultbox/pcgextras/pkg/math"
)

// ID identifies an actor. Zero is never assigned.
type ID uint64

// Actor is anything that can be placed in a scene.
type Actor interface {
	ActorBase() *Base
}

// Generator is a content generator attached to an actor (a PCG component).
type Generator interface {
	Cleanup()
	Generate() error
}

// Base holds the state every actor shares.
type Base struct {
	id    ID
	scene *Scene
	alive bool

	Name      string
	Tags      []string
	Transform math.Transform
	// LocalBounds is the actor's own geometry in local space, used when it
	// has no mesh segments.
	LocalBounds math.Box
	// BlocksTraces adds the actor's world bounds to the collision world.
	BlocksTraces bool
	// HiddenInGame hides the actor's geometry at runtime.
	HiddenInGame bool

	generators []Generator
}

// NewBase creates an actor base with an identity transform.
func NewBase(name string, tags ...string) *Base {
	return &Base{
		Name:        name,
		Tags:        append([]string(nil), tags...),
		Transform:   math.TransformIdentity(),
		LocalBounds: math.EmptyBox(),
	}
}

// ActorBase returns b, so a bare *Base is itself an Actor.
func (b *Base) ActorBase() *Base { return b }

// ID returns the id assigned when the actor was spawned.
func (b *Base) ID() ID { return b.id }

// Scene returns the scene the actor lives in, or nil.
func (b *Base) Scene() *Scene { return b.scene }

// IsValid reports whether the actor is spawned and not destroyed.
func (b *Base) IsValid() bool { return b != nil && b.alive }

// HasTag reports whether the actor carries tag.
func (b *Base) HasTag(tag string) bool {
	return slices.Contains(b.Tags, tag)
}

// AddTag adds tag if missing.
func (b *Base) AddTag(tag string) {
	if !b.HasTag(tag) {
		b.Tags = append(b.Tags, tag)
	}
}

// Location returns the actor's world position.
func (b *Base) Location() math.Vec3 { return b.Transform.Translation }

// Rotation returns the actor's world rotation.
func (b *Base) Rotation() math.Rotator { return b.Transform.Rotator() }

// SetTransform moves the actor and notifies transform subscribers.
func (b *Base) SetTransform(t math.Transform) {
	b.Transform = t
	if b.scene != nil && b.alive {
		b.scene.emit(event.Event{Kind: event.TransformUpdated, Object: b, Actor: uint64(b.id)})
	}
}

// Scale returns the actor's scale.
func (b *Base) Scale() math.Vec3 { return b.Transform.Scale3D }

// AddGenerator attaches a generator to the actor.
func (b *Base) AddGenerator(g Generator) {
	b.generators = append(b.generators, g)
}

// Generators returns the attached generators.
func (b *Base) Generators() []Generator {
	return b.generators
}
