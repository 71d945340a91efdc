// Package plugin owns the process-wide property-change subscription that
// routes editor edits to the actors.
package plugin

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/pcgextras/internal/event"
	"github.com/Faultbox/pcgextras/internal/logger"
	"github.com/Faultbox/pcgextras/internal/spline"
)

// PCGPropertyPrefix marks properties that only affect generation.
const PCGPropertyPrefix = "PCG_"

// PCGRefresher is an object whose generation settings can change.
type PCGRefresher interface {
	RefreshPCG() int
}

// EditorRefresher is an actor that rebuilds when its spline is edited.
type EditorRefresher interface {
	RefreshEditor(force bool) bool
}

// Module is started once per process and stopped at shutdown.
type Module struct {
	sub *event.Subscription
}

// Startup subscribes to property changes. Calling it twice is a no-op.
func (m *Module) Startup(events *event.Dispatcher) {
	if m.sub != nil && m.sub.Active() {
		return
	}
	m.sub = events.Subscribe(event.PropertyChanged, m.route)
	logger.Named("plugin").Debug("module started")
}

// Shutdown cancels the subscription.
func (m *Module) Shutdown() {
	if m.sub == nil {
		return
	}
	m.sub.Unsubscribe()
	m.sub = nil
	logger.Named("plugin").Debug("module stopped")
}

// Running reports whether the module is subscribed.
func (m *Module) Running() bool {
	return m.sub != nil && m.sub.Active()
}

// route sends committed PCG_ edits to the object's PCG refresh and spline
// edits to the owning actor's editor refresh, forced unless the edit is
// still in progress.
func (m *Module) route(e event.Event) {
	if e.Property == "" {
		return
	}
	log := logger.Named("plugin")

	if e.Change == event.ValueSet && strings.HasPrefix(e.Property, PCGPropertyPrefix) {
		if r, ok := e.Object.(PCGRefresher); ok {
			n := r.RefreshPCG()
			log.Debug("pcg property changed", zap.String("property", e.Property), zap.Int("generators", n))
		}
		return
	}

	s, ok := e.Object.(*spline.Spline)
	if !ok {
		return
	}
	owner, ok := s.Owner().(EditorRefresher)
	if !ok {
		return
	}
	owner.RefreshEditor(e.Change != event.Interactive)
}
