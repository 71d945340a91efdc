package math

import "github.com/chewxy/math32"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	s, c := math32.Sincos(angle / 2)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: c,
	}
}

// QuatFromAxes builds the rotation that maps the unit X, Y and Z axes onto
// x, y and z. The three vectors must form an orthonormal right-handed basis.
func QuatFromAxes(x, y, z Vec3) Quat {
	trace := x.X + y.Y + z.Z
	var q Quat
	switch {
	case trace > 0:
		s := 0.5 / math32.Sqrt(trace+1)
		q = Quat{
			X: (y.Z - z.Y) * s,
			Y: (z.X - x.Z) * s,
			Z: (x.Y - y.X) * s,
			W: 0.25 / s,
		}
	case x.X > y.Y && x.X > z.Z:
		s := 2 * math32.Sqrt(1+x.X-y.Y-z.Z)
		q = Quat{
			X: 0.25 * s,
			Y: (y.X + x.Y) / s,
			Z: (z.X + x.Z) / s,
			W: (y.Z - z.Y) / s,
		}
	case y.Y > z.Z:
		s := 2 * math32.Sqrt(1+y.Y-x.X-z.Z)
		q = Quat{
			X: (y.X + x.Y) / s,
			Y: 0.25 * s,
			Z: (z.Y + y.Z) / s,
			W: (z.X - x.Z) / s,
		}
	default:
		s := 2 * math32.Sqrt(1+z.Z-x.X-y.Y)
		q = Quat{
			X: (z.X + x.Z) / s,
			Y: (z.Y + y.Z) / s,
			Z: 0.25 * s,
			W: (x.Y - y.X) / s,
		}
	}
	return q.Normalize()
}

// QuatFromXZ builds a rotation whose X axis points along x and whose Z axis
// is as close to z as possible. When x and z are parallel a fallback up axis
// is used.
func QuatFromXZ(x, z Vec3) Quat {
	newX := x.Normalize()
	norm := z.Normalize()
	if newX.IsZero() {
		return QuatIdentity()
	}

	if math32.Abs(newX.Dot(norm)) > 1-1e-4 || norm.IsZero() {
		if math32.Abs(newX.Z) < 1-1e-4 {
			norm = Vec3Up
		} else {
			norm = Vec3Forward
		}
	}

	newY := norm.Cross(newX).Normalize()
	newZ := newX.Cross(newY)
	return QuatFromAxes(newX, newY, newZ)
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Conjugate returns the inverse rotation of a unit quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// IsIdentity reports whether q represents no rotation within tol.
// q and -q describe the same rotation, so both are accepted.
func (q Quat) IsIdentity(tol float32) bool {
	return math32.Abs(q.X) <= tol && math32.Abs(q.Y) <= tol && math32.Abs(q.Z) <= tol &&
		math32.Abs(math32.Abs(q.W)-1) <= tol
}

// Equals reports whether q and other describe the same rotation within tol.
func (q Quat) Equals(other Quat, tol float32) bool {
	return math32.Abs(math32.Abs(q.Dot(other))-1) <= tol
}

// Slerp performs spherical linear interpolation between two quaternions.
// t should be in range [0, 1].
func (q Quat) Slerp(other Quat, t float32) Quat {
	dot := q.Dot(other)

	// Take the shorter path.
	if dot < 0 {
		other = Quat{X: -other.X, Y: -other.Y, Z: -other.Z, W: -other.W}
		dot = -dot
	}

	if dot > 0.9995 {
		return Quat{
			X: q.X + t*(other.X-q.X),
			Y: q.Y + t*(other.Y-q.Y),
			Z: q.Z + t*(other.Z-q.Z),
			W: q.W + t*(other.W-q.W),
		}.Normalize()
	}

	theta0 := math32.Acos(dot)
	theta := theta0 * t
	sinTheta := math32.Sin(theta)
	sinTheta0 := math32.Sin(theta0)

	s0 := math32.Cos(theta) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0

	return Quat{
		X: q.X*s0 + other.X*s1,
		Y: q.Y*s0 + other.Y*s1,
		Z: q.Z*s0 + other.Z*s1,
		W: q.W*s0 + other.W*s1,
	}
}

// Mul multiplies two quaternions. The result applies other first, then q.
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Rotate rotates v by q.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Unrotate rotates v by the inverse of q.
func (q Quat) Unrotate(v Vec3) Vec3 {
	return q.Conjugate().Rotate(v)
}

// AxisX returns the rotated forward axis.
func (q Quat) AxisX() Vec3 { return q.Rotate(Vec3Forward) }

// AxisY returns the rotated right axis.
func (q Quat) AxisY() Vec3 { return q.Rotate(Vec3Right) }

// AxisZ returns the rotated up axis.
func (q Quat) AxisZ() Vec3 { return q.Rotate(Vec3Up) }

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()
	return FromAxes(q.AxisX(), q.AxisY(), q.AxisZ())
}
