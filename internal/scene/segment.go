package scene

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/pcgextras/internal/assets"
	"github.com/Faultbox/pcgextras/pkg/math"
)

// Handle is a weak reference to a mesh segment. Zero is the null handle.
type Handle uint64

// CollisionEnabled selects what a segment participates in.
type CollisionEnabled uint8

const (
	NoCollision CollisionEnabled = iota
	QueryOnly
	QueryAndPhysics
)

// Collision profiles.
const (
	ProfileBlockAll    = "BlockAll"
	ProfileNoCollision = "NoCollision"
)

// Mobility of a scene component.
type Mobility uint8

const (
	Static Mobility = iota
	Movable
)

// MeshSegment is one deformed mesh piece between two spline samples.
// Positions are world space; tangents are in the parent's local space.
type MeshSegment struct {
	handle Handle
	owner  ID
	Parent string

	Mesh      *assets.Mesh
	materials []*assets.Material

	StartPos     math.Vec3
	StartTangent math.Vec3
	EndPos       math.Vec3
	EndTangent   math.Vec3
	StartRoll    float32 // degrees
	EndRoll      float32 // degrees

	Collision CollisionEnabled
	Profile   string
	Mobility  Mobility

	// ParentTransform is the transform of the component the segment is
	// attached to; it maps tangents to world space.
	ParentTransform math.Transform
}

// Handle returns the segment's handle.
func (m *MeshSegment) Handle() Handle { return m.handle }

// Owner returns the owning actor id.
func (m *MeshSegment) Owner() ID { return m.owner }

// SetStaticMesh assigns the mesh.
func (m *MeshSegment) SetStaticMesh(mesh *assets.Mesh) { m.Mesh = mesh }

// SetMaterial overrides material slot i. Negative slots are ignored.
func (m *MeshSegment) SetMaterial(slot int, mat *assets.Material) {
	if slot < 0 {
		return
	}
	for len(m.materials) <= slot {
		m.materials = append(m.materials, nil)
	}
	m.materials[slot] = mat
}

// Material returns the material in slot i: the override if set, else the
// mesh default, else nil.
func (m *MeshSegment) Material(slot int) *assets.Material {
	if slot >= 0 && slot < len(m.materials) && m.materials[slot] != nil {
		return m.materials[slot]
	}
	if m.Mesh != nil && slot >= 0 && slot < len(m.Mesh.DefaultMaterials) {
		return m.Mesh.DefaultMaterials[slot]
	}
	return nil
}

// SetStartAndEnd sets both endpoints and tangents.
func (m *MeshSegment) SetStartAndEnd(start, startTangent, end, endTangent math.Vec3) {
	m.StartPos, m.StartTangent = start, startTangent
	m.EndPos, m.EndTangent = end, endTangent
}

// SetStartRollDegrees sets the roll at the start.
func (m *MeshSegment) SetStartRollDegrees(roll float32) { m.StartRoll = roll }

// SetEndRollDegrees sets the roll at the end.
func (m *MeshSegment) SetEndRollDegrees(roll float32) { m.EndRoll = roll }

// SetCollisionEnabled sets the collision mode.
func (m *MeshSegment) SetCollisionEnabled(c CollisionEnabled) { m.Collision = c }

// SetCollisionProfileName sets the collision profile.
func (m *MeshSegment) SetCollisionProfileName(profile string) { m.Profile = profile }

// SetMobility sets the mobility.
func (m *MeshSegment) SetMobility(mob Mobility) { m.Mobility = mob }

// AttachTo records the parent attachment and its transform.
func (m *MeshSegment) AttachTo(parent string, parentTransform math.Transform) {
	m.Parent = parent
	m.ParentTransform = parentTransform
}

// Scale returns the component scale, inherited from the parent.
func (m *MeshSegment) Scale() math.Vec3 {
	return m.ParentTransform.Scale3D
}

// BlocksTraces reports whether line traces hit this segment.
func (m *MeshSegment) BlocksTraces() bool {
	return m.Collision != NoCollision && m.Profile == ProfileBlockAll
}

// boundsSamples is how many points along the segment curve feed its bounds.
const boundsSamples = 8

// Bounds returns the world box around the deformed segment: the Hermite
// curve through both ends, widened by the mesh cross-section.
func (m *MeshSegment) Bounds() math.Box {
	t0 := m.ParentTransform.TransformVector(m.StartTangent)
	t1 := m.ParentTransform.TransformVector(m.EndTangent)

	box := math.EmptyBox()
	for i := 0; i <= boundsSamples; i++ {
		box = box.Expand(hermite(m.StartPos, t0, m.EndPos, t1, float32(i)/boundsSamples))
	}

	if m.Mesh != nil {
		scale := m.Scale()
		r := math32.Max(m.Mesh.Extent.Y*math32.Abs(scale.Y), m.Mesh.Extent.Z*math32.Abs(scale.Z))
		box = box.ExpandBy(math.Vec3{X: r, Y: r, Z: r})
	}
	return box
}

func hermite(p0, t0, p1, t1 math.Vec3, t float32) math.Vec3 {
	t2 := t * t
	t3 := t2 * t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	return p0.Scale(h00).Add(t0.Scale(h10)).Add(p1.Scale(h01)).Add(t1.Scale(h11))
}
