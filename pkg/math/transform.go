package math

// Transform is a translation, rotation and non-uniform scale applied in
// scale, rotate, translate order.
type Transform struct {
	Translation Vec3
	Rotation    Quat
	Scale3D     Vec3
}

// TransformIdentity returns the identity transform.
func TransformIdentity() Transform {
	return Transform{Rotation: QuatIdentity(), Scale3D: Vec3One}
}

// NewTransform builds a transform from a rotator, location and scale.
func NewTransform(rot Rotator, location, scale Vec3) Transform {
	return Transform{Translation: location, Rotation: rot.Quat(), Scale3D: scale}
}

// TransformPosition maps a local point to the parent space.
func (t Transform) TransformPosition(p Vec3) Vec3 {
	return t.Rotation.Rotate(p.Mul(t.Scale3D)).Add(t.Translation)
}

// InverseTransformPosition maps a parent-space point into local space.
func (t Transform) InverseTransformPosition(p Vec3) Vec3 {
	return t.Rotation.Unrotate(p.Sub(t.Translation)).Div(t.Scale3D)
}

// TransformVector maps a local direction to the parent space, scale included.
func (t Transform) TransformVector(v Vec3) Vec3 {
	return t.Rotation.Rotate(v.Mul(t.Scale3D))
}

// InverseTransformVector maps a parent-space direction into local space.
func (t Transform) InverseTransformVector(v Vec3) Vec3 {
	return t.Rotation.Unrotate(v).Div(t.Scale3D)
}

// TransformRotation maps a local rotation to the parent space.
func (t Transform) TransformRotation(q Quat) Quat {
	return t.Rotation.Mul(q)
}

// InverseTransformRotation maps a parent-space rotation into local space.
func (t Transform) InverseTransformRotation(q Quat) Quat {
	return t.Rotation.Conjugate().Mul(q)
}

// Rotator returns the rotation part as Euler angles.
func (t Transform) Rotator() Rotator {
	return t.Rotation.Rotator()
}

// NearlyEqual reports whether translation, rotation and scale each match
// within tol.
func (t Transform) NearlyEqual(other Transform, tol float32) bool {
	return t.Translation.NearlyEqual(other.Translation, tol) &&
		t.Rotation.Equals(other.Rotation, tol) &&
		t.Scale3D.NearlyEqual(other.Scale3D, tol)
}

// ToMat4 returns the transform as translate * rotate * scale.
func (t Transform) ToMat4() Mat4 {
	return Translate(t.Translation.X, t.Translation.Y, t.Translation.Z).
		Mul(t.Rotation.ToMat4()).
		Mul(Scale(t.Scale3D.X, t.Scale3D.Y, t.Scale3D.Z))
}
