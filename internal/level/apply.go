package level

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/pcgextras/internal/actor"
	"github.com/Faultbox/pcgextras/internal/assets"
	"github.com/Faultbox/pcgextras/internal/event"
	"github.com/Faultbox/pcgextras/internal/logger"
	"github.com/Faultbox/pcgextras/internal/pcg"
)

// ErrRebuildRequired is returned by Apply when the terrain, blockers or
// world type changed and the level must be built from scratch.
var ErrRebuildRequired = errors.New("level needs a full rebuild")

// Changes lists the actors touched by Apply.
type Changes struct {
	Spawned   []string
	Destroyed []string
	Updated   []string
}

// Empty reports whether Apply changed nothing.
func (c Changes) Empty() bool {
	return len(c.Spawned)+len(c.Destroyed)+len(c.Updated) == 0
}

// Apply brings the world in line with f the way an editor session would:
// moves go through the transform event, spline edits and PCG settings
// through property change events. Actors whose kind changed are respawned.
func (w *World) Apply(f *File) (Changes, error) {
	var ch Changes
	if w.file != nil && !sameStatic(w.file, f) {
		return ch, ErrRebuildRequired
	}
	for _, m := range f.Meshes {
		if err := w.registerMesh(m); err != nil {
			return ch, err
		}
	}
	for _, path := range f.Materials {
		if _, err := w.Assets.LoadMaterial(path); err != nil {
			w.Assets.RegisterMaterial(&assets.Material{Path: path})
		}
	}

	wanted := make(map[string]ActorDef, len(f.Actors))
	order := make([]string, 0, len(f.Actors))
	for i, def := range f.Actors {
		if def.Name == "" {
			def.Name = fmt.Sprintf("%s_%d", def.Kind, i)
		}
		if _, dup := wanted[def.Name]; dup {
			return ch, fmt.Errorf("actor %q defined twice", def.Name)
		}
		wanted[def.Name] = def
		order = append(order, def.Name)
	}

	for _, name := range slices.Clone(w.order) {
		if _, ok := wanted[name]; !ok {
			w.destroy(name)
			ch.Destroyed = append(ch.Destroyed, name)
		}
	}

	for _, name := range order {
		def := wanted[name]
		old, exists := w.defs[name]
		switch {
		case !exists:
			if err := w.spawn(def); err != nil {
				return ch, err
			}
			ch.Spawned = append(ch.Spawned, name)
		case old.Kind != def.Kind || old.Generator != def.Generator || !sameShape(old, def):
			w.destroy(name)
			if err := w.spawn(def); err != nil {
				return ch, err
			}
			ch.Updated = append(ch.Updated, name)
		default:
			changed, err := w.update(old, def)
			if err != nil {
				return ch, fmt.Errorf("actor %q: %w", name, err)
			}
			if changed {
				ch.Updated = append(ch.Updated, name)
			}
		}
	}
	w.order = order
	w.file = f

	logger.Named("level").Info("level applied",
		zap.Strings("spawned", ch.Spawned),
		zap.Strings("destroyed", ch.Destroyed),
		zap.Strings("updated", ch.Updated))
	return ch, nil
}

// update applies an in-place edit and reports whether anything changed.
func (w *World) update(old, def ActorDef) (bool, error) {
	a := w.actors[def.Name]
	changed := false

	if t := def.Transform(); !a.ActorBase().Transform.NearlyEqual(t, 0) {
		a.ActorBase().SetTransform(t)
		changed = true
	}

	switch a := a.(type) {
	case *actor.SnapToSplineMesh:
		if !slices.Equal(old.Points, def.Points) || old.Closed != def.Closed {
			a.Spline.SetPoints(def.Points)
			a.Spline.SetClosedLoop(def.Closed)
			w.Events.Emit(event.Event{
				Kind:     event.PropertyChanged,
				Object:   a.Spline,
				Property: SplineCurvesProperty,
				Change:   event.ValueSet,
			})
			changed = true
		}
		if !sameSnapSettings(old, def) {
			if err := w.configureSplineMesh(a, def); err != nil {
				return changed, err
			}
			a.Invalidate()
			a.RefreshPCG()
			changed = true
		}
		if !samePCGSettings(old, def) {
			a.SetPCGSteepness(floatOr(def.Steepness, 1))
			a.SetPCGBoundsMultipliers(floatOr(def.MinBoundsMultiplier, 1), floatOr(def.MaxBoundsMultiplier, 1))
			w.emitPCGChange(a)
			changed = true
		}
	case *actor.Excluder:
		if !reflect.DeepEqual(old.Steepness, def.Steepness) || !reflect.DeepEqual(old.AutoRefresh, def.AutoRefresh) {
			a.AutoRefresh = boolOr(def.AutoRefresh, w.cfg.Editor.AutoRefresh)
			if def.Steepness != nil {
				a.SetPCGSteepness(*def.Steepness)
			} else {
				a.SetPCGSteepness(1)
			}
			w.emitPCGChange(a)
			changed = true
		}
	}

	w.defs[def.Name] = def
	return changed, nil
}

func (w *World) emitPCGChange(obj any) {
	w.Events.Emit(event.Event{
		Kind:     event.PropertyChanged,
		Object:   obj,
		Property: actor.PropSteepness,
		Change:   event.ValueSet,
	})
}

// destroy removes a named actor along with its generator components.
func (w *World) destroy(name string) {
	a, ok := w.actors[name]
	if !ok {
		return
	}
	w.components = slices.DeleteFunc(w.components, func(c *pcg.Component) bool {
		return c.Owner() == a
	})
	w.Scene.Destroy(a.ActorBase().ID())
	delete(w.actors, name)
	delete(w.defs, name)
	w.order = slices.DeleteFunc(w.order, func(n string) bool { return n == name })
}

// sameStatic compares the parts of a level Apply cannot edit in place.
func sameStatic(a, b *File) bool {
	return a.GameWorld == b.GameWorld &&
		reflect.DeepEqual(a.Terrain, b.Terrain) &&
		slices.Equal(a.Blockers, b.Blockers)
}

// sameShape compares the fields that are fixed at spawn time.
func sameShape(a, b ActorDef) bool {
	return slices.Equal(a.Tags, b.Tags) &&
		reflect.DeepEqual(a.Extent, b.Extent) &&
		a.Blocks == b.Blocks
}

func sameSnapSettings(a, b ActorDef) bool {
	return a.Mesh == b.Mesh &&
		slices.Equal(a.Materials, b.Materials) &&
		reflect.DeepEqual(a.Snapping, b.Snapping) &&
		reflect.DeepEqual(a.ZOffset, b.ZOffset) &&
		reflect.DeepEqual(a.TraceDistance, b.TraceDistance) &&
		reflect.DeepEqual(a.AutoRefresh, b.AutoRefresh)
}

func samePCGSettings(a, b ActorDef) bool {
	return reflect.DeepEqual(a.Steepness, b.Steepness) &&
		reflect.DeepEqual(a.MinBoundsMultiplier, b.MinBoundsMultiplier) &&
		reflect.DeepEqual(a.MaxBoundsMultiplier, b.MaxBoundsMultiplier)
}
