// Package actor holds the placeable actors of the plugin: the spline mesh
// actor that snaps segments to the ground and the box excluder.
package actor

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/pcgextras/internal/event"
	"github.com/Faultbox/pcgextras/internal/logger"
	"github.com/Faultbox/pcgextras/internal/scene"
)

// Property names whose value-set edits refresh PCG generation.
const (
	PropAutoRefresh         = "PCGAutoRefresh"
	PropSteepness           = "PCG_Steepness"
	PropMinBoundsMultiplier = "PCG_MinBoundsMultiplier"
	PropMaxBoundsMultiplier = "PCG_MaxBoundsMultiplier"
)

// Tag marks actors that the exclusion node collects.
const Tag = "PCG_EXCLUDE"

// pcgRefresher regenerates the generators near an actor, at most once per
// debounce window.
type pcgRefresher struct {
	AutoRefresh bool
	gate        Debounce

	subs []*event.Subscription
}

func newPCGRefresher() pcgRefresher {
	return pcgRefresher{
		AutoRefresh: true,
		gate:        Debounce{Interval: DefaultRefreshInterval},
	}
}

// refresh cleans up and regenerates every generator on an actor whose
// bounds touch self's bounds. It returns how many generators ran.
func (r *pcgRefresher) refresh(self *scene.Base) int {
	sc := self.Scene()
	if !r.AutoRefresh || sc == nil || !self.IsValid() || !r.gate.Allow(false) {
		return 0
	}
	log := logger.Named("actor")

	mine := sc.ActorBounds(self)
	var ran int
	for _, other := range sc.Actors() {
		b := other.ActorBase()
		if !b.IsValid() || len(b.Generators()) == 0 {
			continue
		}
		box := sc.ActorBounds(other)
		if !box.IsInsideOrOn(mine) && !box.Intersects(mine) {
			continue
		}
		for _, g := range b.Generators() {
			g.Cleanup()
			if err := g.Generate(); err != nil {
				log.Warn("generator failed", zap.String("actor", b.Name), zap.Error(err))
				continue
			}
			ran++
		}
	}
	log.Debug("pcg refreshed", zap.String("actor", self.Name), zap.Int("generators", ran))
	return ran
}

func (r *pcgRefresher) track(sub *event.Subscription) {
	r.subs = append(r.subs, sub)
}

// release cancels every subscription the actor holds.
func (r *pcgRefresher) release() {
	for _, s := range r.subs {
		s.Unsubscribe()
	}
	r.subs = nil
}

// subscribed reports whether the actor still listens for events.
func (r *pcgRefresher) subscribed() bool { return len(r.subs) > 0 }

// SetClock replaces the clock used by the refresh debounce.
func (r *pcgRefresher) SetClock(now func() time.Time) { r.gate.Now = now }

// SetRefreshInterval replaces the refresh debounce window.
func (r *pcgRefresher) SetRefreshInterval(d time.Duration) { r.gate.Interval = d }
