package math

import "github.com/chewxy/math32"

// Rotator is an Euler rotation in degrees.
// Yaw turns around Z, Pitch lifts the forward axis toward Z, Roll banks
// around the forward axis.
type Rotator struct {
	Pitch float32 `yaml:"pitch" toml:"pitch"`
	Yaw   float32 `yaml:"yaw" toml:"yaw"`
	Roll  float32 `yaml:"roll" toml:"roll"`
}

// singularityThreshold guards the gimbal-lock poles when extracting pitch.
const singularityThreshold = 0.4999995

// DegToRad converts degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * (math32.Pi / 180)
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float32) float32 {
	return rad * (180 / math32.Pi)
}

// IsZero reports whether all three angles are exactly zero.
func (r Rotator) IsZero() bool {
	return r.Pitch == 0 && r.Yaw == 0 && r.Roll == 0
}

// Quat converts the rotator to a quaternion.
func (r Rotator) Quat() Quat {
	sp, cp := math32.Sincos(DegToRad(normalizeAxis(r.Pitch)) / 2)
	sy, cy := math32.Sincos(DegToRad(normalizeAxis(r.Yaw)) / 2)
	sr, cr := math32.Sincos(DegToRad(normalizeAxis(r.Roll)) / 2)

	return Quat{
		X: cr*sp*sy - sr*cp*cy,
		Y: -cr*sp*cy - sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
		W: cr*cp*cy + sr*sp*sy,
	}
}

// Rotator converts the quaternion to Euler angles.
func (q Quat) Rotator() Rotator {
	singularityTest := q.Z*q.X - q.W*q.Y
	yawY := 2 * (q.W*q.Z + q.X*q.Y)
	yawX := 1 - 2*(q.Y*q.Y+q.Z*q.Z)

	yaw := RadToDeg(math32.Atan2(yawY, yawX))

	switch {
	case singularityTest < -singularityThreshold:
		return Rotator{
			Pitch: -90,
			Yaw:   yaw,
			Roll:  normalizeAxis(-yaw - 2*RadToDeg(math32.Atan2(q.X, q.W))),
		}
	case singularityTest > singularityThreshold:
		return Rotator{
			Pitch: 90,
			Yaw:   yaw,
			Roll:  normalizeAxis(yaw - 2*RadToDeg(math32.Atan2(q.X, q.W))),
		}
	default:
		return Rotator{
			Pitch: RadToDeg(math32.Asin(2 * singularityTest)),
			Yaw:   yaw,
			Roll:  RadToDeg(math32.Atan2(-2*(q.W*q.X+q.Y*q.Z), 1-2*(q.X*q.X+q.Y*q.Y))),
		}
	}
}

// normalizeAxis wraps an angle into (-180, 180].
func normalizeAxis(angle float32) float32 {
	angle = math32.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	if angle > 180 {
		angle -= 360
	}
	return angle
}
