// Package level reads scene description files and builds a live scene from
// them: terrain, blockers, assets and actors.
package level

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/pcgextras/internal/spline"
	"github.com/Faultbox/pcgextras/pkg/math"
)

// Actor kinds.
const (
	KindSplineMesh = "spline_mesh"
	KindExcluder   = "excluder"
	KindTagged     = "tagged"
	KindVolume     = "volume"
)

// ErrUnknownKind is returned for an actor kind the builder does not know.
var ErrUnknownKind = errors.New("unknown actor kind")

// File is a level description.
type File struct {
	GameWorld bool         `yaml:"game_world" toml:"game_world"`
	Terrain   *TerrainDef  `yaml:"terrain" toml:"terrain"`
	Meshes    []MeshDef    `yaml:"meshes" toml:"meshes"`
	Materials []string     `yaml:"materials" toml:"materials"`
	Blockers  []BlockerDef `yaml:"blockers" toml:"blockers"`
	Actors    []ActorDef   `yaml:"actors" toml:"actors"`
}

// TerrainDef is a heightfield. Heights are row-major; when absent the
// terrain is a plane tilted by Slope.
type TerrainDef struct {
	Origin   math.Vec3  `yaml:"origin" toml:"origin"`
	CellSize float32    `yaml:"cell_size" toml:"cell_size"`
	Cols     int        `yaml:"cols" toml:"cols"`
	Rows     int        `yaml:"rows" toml:"rows"`
	Heights  []float32  `yaml:"heights" toml:"heights"`
	Slope    [2]float32 `yaml:"slope" toml:"slope"`
}

// MeshDef registers a mesh asset.
type MeshDef struct {
	Path     string    `yaml:"path" toml:"path"`
	Extent   math.Vec3 `yaml:"extent" toml:"extent"`
	Material string    `yaml:"material" toml:"material"`
}

// BlockerDef is a static box collider.
type BlockerDef struct {
	Min math.Vec3 `yaml:"min" toml:"min"`
	Max math.Vec3 `yaml:"max" toml:"max"`
}

// ActorDef describes one actor. Pointer fields fall back to configured
// defaults when unset.
type ActorDef struct {
	Kind     string         `yaml:"kind" toml:"kind"`
	Name     string         `yaml:"name" toml:"name"`
	Tags     []string       `yaml:"tags" toml:"tags"`
	Location math.Vec3      `yaml:"location" toml:"location"`
	Rotation math.Rotator   `yaml:"rotation" toml:"rotation"`
	Scale    *math.Vec3     `yaml:"scale" toml:"scale"`
	Extent   *math.Vec3     `yaml:"extent" toml:"extent"`
	Blocks   bool           `yaml:"blocks_traces" toml:"blocks_traces"`
	Points   []spline.Point `yaml:"points" toml:"points"`
	Closed   bool           `yaml:"closed_loop" toml:"closed_loop"`

	Mesh      string   `yaml:"mesh" toml:"mesh"`
	Materials []string `yaml:"materials" toml:"materials"`

	Snapping      *bool    `yaml:"snapping" toml:"snapping"`
	ZOffset       *float32 `yaml:"z_offset" toml:"z_offset"`
	TraceDistance *float32 `yaml:"trace_distance" toml:"trace_distance"`
	AutoRefresh   *bool    `yaml:"auto_refresh" toml:"auto_refresh"`

	Steepness           *float32 `yaml:"steepness" toml:"steepness"`
	MinBoundsMultiplier *float32 `yaml:"min_bounds_multiplier" toml:"min_bounds_multiplier"`
	MaxBoundsMultiplier *float32 `yaml:"max_bounds_multiplier" toml:"max_bounds_multiplier"`

	// Generator attaches an exclusion node component to the actor.
	Generator bool `yaml:"generator" toml:"generator"`
}

// Transform returns the actor transform the definition describes.
func (d ActorDef) Transform() math.Transform {
	scale := math.Vec3One
	if d.Scale != nil {
		scale = *d.Scale
	}
	return math.NewTransform(d.Rotation, d.Location, scale)
}

// Load reads a level file; the format follows the extension.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level %s: %w", path, err)
	}
	f, err := Decode(data, strings.EqualFold(filepath.Ext(path), ".toml"))
	if err != nil {
		return nil, fmt.Errorf("decoding level %s: %w", path, err)
	}
	return f, nil
}

// Decode parses level data as TOML or YAML.
func Decode(data []byte, isTOML bool) (*File, error) {
	var f File
	var err error
	if isTOML {
		err = toml.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}
