package actor

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/pcgextras/internal/assets"
	"github.com/Faultbox/pcgextras/internal/event"
	"github.com/Faultbox/pcgextras/internal/scene"
	"github.com/Faultbox/pcgextras/pkg/math"
)

// Excluder is a hidden, non-colliding cube whose bounds block generation.
type Excluder struct {
	*scene.Base
	pcgRefresher

	Mesh     *assets.Mesh
	Material *assets.Material

	steepness float32
}

// NewExcluder creates an excluder with the engine cube and basic material.
func NewExcluder(name string, lib *assets.Library) *Excluder {
	e := &Excluder{
		Base:         scene.NewBase(name, Tag),
		pcgRefresher: newPCGRefresher(),
		steepness:    1,
	}
	e.HiddenInGame = true
	e.BlocksTraces = false

	if lib != nil {
		if mesh, err := lib.LoadMesh(assets.CubePath); err == nil {
			e.Mesh = mesh
			e.LocalBounds = mesh.Bounds()
		}
		if mat, err := lib.LoadMaterial(assets.BasicShapeMaterialPath); err == nil {
			e.Material = mat
		}
	}
	if !e.LocalBounds.IsValid() {
		e.LocalBounds = math.BoxFromCenterExtent(math.Vec3Zero, math.V3(50, 50, 50))
	}
	return e
}

// PCGSteepness returns the exclusion falloff.
func (e *Excluder) PCGSteepness() float32 { return e.steepness }

// SetPCGSteepness sets the falloff, clamped into [0, 1].
func (e *Excluder) SetPCGSteepness(v float32) {
	e.steepness = math32.Max(0, math32.Min(1, v))
}

// OnConstruction subscribes to the excluder's transform updates once.
func (e *Excluder) OnConstruction() {
	if !e.IsValid() || e.subscribed() {
		return
	}
	events := e.Scene().Events()
	if events == nil {
		return
	}
	id := uint64(e.ID())
	e.track(events.Subscribe(event.TransformUpdated, func(ev event.Event) {
		if ev.Actor == id {
			e.RefreshPCG()
		}
	}))
	e.track(events.Subscribe(event.ActorDestroyed, func(ev event.Event) {
		if ev.Actor == id {
			e.release()
		}
	}))
}

// RefreshPCG regenerates the generators whose bounds touch the excluder.
func (e *Excluder) RefreshPCG() int {
	return e.refresh(e.Base)
}
