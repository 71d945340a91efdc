// Package session runs a level: it builds the scene, runs every generator
// and reports their points, optionally rebuilding when the level file
// changes on disk.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/pcgextras/internal/config"
	"github.com/Faultbox/pcgextras/internal/event"
	"github.com/Faultbox/pcgextras/internal/level"
	"github.com/Faultbox/pcgextras/internal/logger"
	"github.com/Faultbox/pcgextras/internal/pcg"
	"github.com/Faultbox/pcgextras/internal/plugin"
	"github.com/Faultbox/pcgextras/pkg/math"
)

// ErrNoLevel is returned when no level file is configured.
var ErrNoLevel = errors.New("no level file configured")

// ErrNoWorld is returned by Generate after a failed rebuild.
var ErrNoWorld = errors.New("no world loaded")

// Session owns the event bus, the plugin module and the current world.
type Session struct {
	cfg    *config.Config
	events *event.Dispatcher
	module plugin.Module
	world  *level.World
	// enc is shared by every Generate so reports form one document stream.
	enc *yaml.Encoder
}

// New loads and builds the configured level. Reports go to out, stdout
// when nil.
func New(cfg *config.Config, out io.Writer) (*Session, error) {
	if cfg.Scene.Level == "" {
		return nil, ErrNoLevel
	}
	if out == nil {
		out = os.Stdout
	}

	s := &Session{
		cfg:    cfg,
		events: event.NewDispatcher(),
		enc:    yaml.NewEncoder(out),
	}
	s.enc.SetIndent(2)
	s.module.Startup(s.events)

	if err := s.rebuild(); err != nil {
		s.module.Shutdown()
		return nil, err
	}
	return s, nil
}

// World returns the current world.
func (s *Session) World() *level.World { return s.world }

// Close tears down the world and stops the plugin module.
func (s *Session) Close() {
	logger.Named("session").Info("closing session")
	if s.world != nil {
		s.world.Close()
	}
	s.module.Shutdown()
	if err := s.enc.Close(); err != nil {
		logger.Named("session").Warn("closing report stream", zap.Error(err))
	}
}

// rebuild replaces the world with a fresh build of the level file.
func (s *Session) rebuild() error {
	f, err := level.Load(s.cfg.Scene.Level)
	if err != nil {
		return err
	}
	w, err := level.Build(f, s.cfg, s.events)
	if err != nil {
		return fmt.Errorf("building level %s: %w", s.cfg.Scene.Level, err)
	}
	if s.world != nil {
		s.world.Close()
	}
	s.world = w
	return nil
}

// reload applies the level file to the current world, rebuilding when the
// change cannot be applied in place.
func (s *Session) reload() error {
	if s.world == nil {
		return s.rebuild()
	}
	f, err := level.Load(s.cfg.Scene.Level)
	if err != nil {
		return err
	}
	ch, err := s.world.Apply(f)
	if errors.Is(err, level.ErrRebuildRequired) {
		logger.Named("session").Info("rebuilding level", zap.String("level", s.cfg.Scene.Level))
		// The event bus is shared, so the old scene must go before the new
		// one subscribes.
		s.destroyWorld()
		return s.rebuild()
	}
	if err != nil {
		return err
	}
	if ch.Empty() {
		logger.Named("session").Debug("level unchanged")
	}
	return nil
}

func (s *Session) destroyWorld() {
	if s.world == nil {
		return
	}
	for _, name := range s.world.Names() {
		if a, ok := s.world.Actor(name); ok {
			s.world.Scene.Destroy(a.ActorBase().ID())
		}
	}
	s.world.Close()
	s.world = nil
}

// Generate runs every generator of the world and writes the report.
func (s *Session) Generate() error {
	if s.world == nil {
		return ErrNoWorld
	}
	comps := s.world.Components()
	reports := make([]Report, 0, len(comps))
	for _, c := range comps {
		c.Cleanup()
		if err := c.Generate(); err != nil {
			return err
		}
		out, _ := c.Output()
		reports = append(reports, newReport(c, out))
	}

	logger.Named("session").Info("generated",
		zap.Int("components", len(comps)),
		zap.Int("segments", s.world.Scene.SegmentCount()))
	return s.writeReports(reports)
}

// Report is the output of one generator component.
type Report struct {
	Actor  string         `yaml:"actor"`
	Seed   int32          `yaml:"seed"`
	Params map[string]int `yaml:"params"`
	Points []ReportPoint  `yaml:"points"`
}

// ReportPoint is a point with its transform flattened for output.
type ReportPoint struct {
	Location  math.Vec3    `yaml:"location"`
	Rotation  math.Rotator `yaml:"rotation"`
	Scale     math.Vec3    `yaml:"scale"`
	BoundsMin math.Vec3    `yaml:"bounds_min"`
	BoundsMax math.Vec3    `yaml:"bounds_max"`
	Density   float32      `yaml:"density"`
	Steepness float32      `yaml:"steepness"`
	Seed      int32        `yaml:"seed"`
}

func newReport(c *pcg.Component, out pcg.Output) Report {
	r := Report{
		Actor:  c.Owner().ActorBase().Name,
		Seed:   c.Seed,
		Params: out.Params,
		Points: make([]ReportPoint, 0, len(out.Points)),
	}
	for _, p := range out.Points {
		r.Points = append(r.Points, ReportPoint{
			Location:  p.Transform.Translation,
			Rotation:  p.Transform.Rotator(),
			Scale:     p.Transform.Scale3D,
			BoundsMin: p.BoundsMin,
			BoundsMax: p.BoundsMax,
			Density:   p.Density,
			Steepness: p.Steepness,
			Seed:      p.Seed,
		})
	}
	return r
}

// writeReports encodes one YAML document per report.
func (s *Session) writeReports(reports []Report) error {
	for _, r := range reports {
		if err := s.enc.Encode(r); err != nil {
			return fmt.Errorf("writing report for %s: %w", r.Actor, err)
		}
	}
	return nil
}
