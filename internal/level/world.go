package level

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/pcgextras/internal/actor"
	"github.com/Faultbox/pcgextras/internal/assets"
	"github.com/Faultbox/pcgextras/internal/config"
	"github.com/Faultbox/pcgextras/internal/event"
	"github.com/Faultbox/pcgextras/internal/logger"
	"github.com/Faultbox/pcgextras/internal/pcg"
	"github.com/Faultbox/pcgextras/internal/physics"
	"github.com/Faultbox/pcgextras/internal/scene"
	"github.com/Faultbox/pcgextras/pkg/math"
)

// SplineCurvesProperty is the property name reported for spline edits.
const SplineCurvesProperty = "SplineCurves"

// constructible is implemented by actors with construction logic.
type constructible interface {
	OnConstruction()
}

// World is a built level: the scene, its collision world and the actors by
// name.
type World struct {
	Scene   *scene.Scene
	Events  *event.Dispatcher
	Physics *physics.World
	Assets  *assets.Library
	Terrain *physics.Heightfield

	cfg        *config.Config
	file       *File
	actors     map[string]scene.Actor
	defs       map[string]ActorDef
	components []*pcg.Component
	order      []string

	construction *event.Subscription
}

// Build creates a world from f. Actors are constructed in file order.
func Build(f *File, cfg *config.Config, events *event.Dispatcher) (*World, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if events == nil {
		events = event.NewDispatcher()
	}

	w := &World{
		Scene:   scene.New(events),
		Events:  events,
		Physics: physics.NewWorld(),
		Assets:  assets.NewLibrary(),
		cfg:     cfg,
		file:    f,
		actors:  make(map[string]scene.Actor),
		defs:    make(map[string]ActorDef),
	}
	w.Scene.GameWorld = f.GameWorld || cfg.Scene.GameWorld
	w.construction = events.Subscribe(event.Construction, func(e event.Event) {
		if c, ok := e.Object.(constructible); ok {
			c.OnConstruction()
		}
	})

	for _, path := range f.Materials {
		w.Assets.RegisterMaterial(&assets.Material{Path: path})
	}
	for _, m := range f.Meshes {
		if err := w.registerMesh(m); err != nil {
			w.Close()
			return nil, err
		}
	}

	if t := f.Terrain; t != nil {
		w.Terrain = buildTerrain(t)
		w.Physics.Add(w.Terrain)
	}
	for _, b := range f.Blockers {
		w.Physics.Add(physics.BoxCollider{Box: math.NewBox(b.Min, b.Max)})
	}
	w.Physics.AddSource(w.Scene)

	for i, def := range f.Actors {
		if def.Name == "" {
			def.Name = fmt.Sprintf("%s_%d", def.Kind, i)
		}
		if _, dup := w.defs[def.Name]; dup {
			w.Close()
			return nil, fmt.Errorf("actor %q defined twice", def.Name)
		}
		if err := w.spawn(def); err != nil {
			w.Close()
			return nil, err
		}
	}

	if w.Scene.GameWorld {
		events.Emit(event.Event{Kind: event.BeginPlay})
	}

	logger.Named("level").Info("level built",
		zap.Int("actors", len(w.actors)),
		zap.Int("segments", w.Scene.SegmentCount()),
		zap.Bool("game_world", w.Scene.GameWorld))
	return w, nil
}

// Close drops the world's own event subscription.
func (w *World) Close() {
	if w.construction != nil {
		w.construction.Unsubscribe()
		w.construction = nil
	}
}

// Actor returns an actor by name.
func (w *World) Actor(name string) (scene.Actor, bool) {
	a, ok := w.actors[name]
	return a, ok
}

// Components returns the generator components in creation order.
func (w *World) Components() []*pcg.Component {
	return slices.Clone(w.components)
}

// Names returns the actor names in spawn order.
func (w *World) Names() []string {
	return slices.Clone(w.order)
}

func (w *World) registerMesh(m MeshDef) error {
	if m.Path == "" {
		return errors.New("mesh without path")
	}
	mesh := &assets.Mesh{Path: m.Path, Extent: m.Extent, MaterialSlots: 1}
	matPath := m.Material
	if matPath == "" {
		matPath = assets.BasicShapeMaterialPath
	}
	mat, err := w.Assets.LoadMaterial(matPath)
	if err != nil {
		return fmt.Errorf("mesh %s: %w", m.Path, err)
	}
	mesh.DefaultMaterials = []*assets.Material{mat}
	w.Assets.RegisterMesh(mesh)
	return nil
}

func buildTerrain(t *TerrainDef) *physics.Heightfield {
	cell := t.CellSize
	if cell <= 0 {
		cell = 100
	}
	h := physics.NewHeightfield(t.Origin, cell, t.Cols, t.Rows)
	for y := 0; y < t.Rows; y++ {
		for x := 0; x < t.Cols; x++ {
			i := y*t.Cols + x
			if i < len(t.Heights) {
				h.Set(x, y, t.Heights[i])
				continue
			}
			h.Set(x, y, t.Slope[0]*float32(x)*cell+t.Slope[1]*float32(y)*cell)
		}
	}
	return h
}

// spawn creates, places and constructs the actor described by def.
func (w *World) spawn(def ActorDef) error {
	a, err := w.create(def)
	if err != nil {
		return fmt.Errorf("actor %q: %w", def.Name, err)
	}
	w.Scene.Spawn(a)
	if def.Generator {
		node := pcg.NewExcludeByTag(pcg.Settings{
			ActorTag:       w.cfg.PCG.ActorTag,
			SortByPosition: w.cfg.PCG.SortByPosition,
		})
		c := pcg.Attach(a, node)
		c.Seed = w.cfg.PCG.Seed
		w.components = append(w.components, c)
	}
	w.actors[def.Name] = a
	w.defs[def.Name] = def
	w.order = append(w.order, def.Name)

	w.Events.Emit(event.Event{Kind: event.Construction, Object: a, Actor: uint64(a.ActorBase().ID())})
	return nil
}

func (w *World) create(def ActorDef) (scene.Actor, error) {
	switch def.Kind {
	case KindSplineMesh:
		return w.newSplineMesh(def)
	case KindExcluder:
		ex := actor.NewExcluder(def.Name, w.Assets)
		ex.Transform = def.Transform()
		for _, tag := range def.Tags {
			ex.AddTag(tag)
		}
		if def.Steepness != nil {
			ex.SetPCGSteepness(*def.Steepness)
		}
		ex.AutoRefresh = boolOr(def.AutoRefresh, w.cfg.Editor.AutoRefresh)
		ex.SetRefreshInterval(w.cfg.Editor.RefreshInterval.Std())
		return ex, nil
	case KindTagged, KindVolume:
		tags := def.Tags
		if def.Kind == KindTagged && len(tags) == 0 {
			tags = []string{w.cfg.PCG.ActorTag}
		}
		b := scene.NewBase(def.Name, tags...)
		b.Transform = def.Transform()
		extent := math.V3(50, 50, 50)
		if def.Extent != nil {
			extent = *def.Extent
		}
		b.LocalBounds = math.BoxFromCenterExtent(math.Vec3Zero, extent)
		b.BlocksTraces = def.Blocks
		return b, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, def.Kind)
	}
}

func (w *World) newSplineMesh(def ActorDef) (*actor.SnapToSplineMesh, error) {
	a := actor.NewSnapToSplineMesh(def.Name, w.Assets, w.Physics)
	a.Transform = def.Transform()
	for _, tag := range def.Tags {
		a.AddTag(tag)
	}
	a.Spline.SetPoints(def.Points)
	a.Spline.SetClosedLoop(def.Closed)

	if err := w.configureSplineMesh(a, def); err != nil {
		return nil, err
	}
	a.SetRefreshInterval(w.cfg.Editor.RefreshInterval.Std())
	return a, nil
}

// configureSplineMesh applies the asset, snapping and PCG settings of def
// on top of the configured defaults.
func (w *World) configureSplineMesh(a *actor.SnapToSplineMesh, def ActorDef) error {
	snap := w.cfg.Snap

	meshPath := def.Mesh
	if meshPath == "" {
		meshPath = snap.Mesh
	}
	mesh, err := w.Assets.LoadMesh(meshPath)
	if err != nil {
		return err
	}
	a.Curve.Mesh = mesh

	matPaths := def.Materials
	if len(matPaths) == 0 && snap.Material != "" {
		matPaths = []string{snap.Material}
	}
	var mats []*assets.Material
	for _, p := range matPaths {
		mat, err := w.Assets.LoadMaterial(p)
		if err != nil {
			return err
		}
		mats = append(mats, mat)
	}
	a.Curve.Materials = mats

	a.Curve.SnappingOn = boolOr(def.Snapping, snap.Enabled)
	a.Curve.ZOffset = floatOr(def.ZOffset, snap.ZOffset)
	a.Curve.TraceDistance = floatOr(def.TraceDistance, snap.TraceDistance)
	a.AutoRefresh = boolOr(def.AutoRefresh, w.cfg.Editor.AutoRefresh)
	a.SetPCGSteepness(floatOr(def.Steepness, 1))
	a.SetPCGBoundsMultipliers(floatOr(def.MinBoundsMultiplier, 1), floatOr(def.MaxBoundsMultiplier, 1))
	return nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float32, def float32) float32 {
	if v == nil {
		return def
	}
	return *v
}
