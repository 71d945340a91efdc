package spline

import (
	"math"
	"testing"

	gmath "github.com/Faultbox/pcgextras/pkg/math"
)

func straight(points ...float32) *Spline {
	s := New()
	for _, x := range points {
		s.AddPoint(Point{Location: gmath.Vec3{X: x}})
	}
	return s
}

func TestSplineLength(t *testing.T) {
	tests := []struct {
		name   string
		spline *Spline
		want   float32
	}{
		{"empty", New(), 0},
		{"single point", straight(5), 0},
		{"two points", straight(0, 1000), 1000},
		{"three points", straight(0, 400, 1200), 1200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spline.Length(); got != tt.want {
				t.Errorf("Length() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplineClosedLoopLength(t *testing.T) {
	s := New(
		Point{Location: gmath.Vec3{X: 0, Y: 0}},
		Point{Location: gmath.Vec3{X: 100, Y: 0}},
		Point{Location: gmath.Vec3{X: 100, Y: 100}},
	)
	s.SetClosedLoop(true)

	want := float32(200 + math.Sqrt(2)*100)
	if got := s.Length(); math.Abs(float64(got-want)) > 1e-3 {
		t.Errorf("closed Length() = %v, want %v", got, want)
	}
}

func TestSplineLengthTracksEdits(t *testing.T) {
	s := straight(0, 1000)
	s.AddPoint(Point{Location: gmath.Vec3{X: 1200}})
	if got := s.Length(); got != 1200 {
		t.Errorf("Length after AddPoint = %v, want 1200", got)
	}
	s.SetLocationAtPoint(2, gmath.Vec3{X: 1100})
	if got := s.Length(); got != 1100 {
		t.Errorf("Length after move = %v, want 1100", got)
	}
	s.RemovePoint(2)
	if got := s.Length(); got != 1000 {
		t.Errorf("Length after RemovePoint = %v, want 1000", got)
	}
}

func TestSplineLocationAtDistance(t *testing.T) {
	s := straight(0, 400, 1200)
	tests := []struct {
		distance float32
		want     gmath.Vec3
	}{
		{-10, gmath.Vec3{X: 0}},
		{0, gmath.Vec3{X: 0}},
		{200, gmath.Vec3{X: 200}},
		{400, gmath.Vec3{X: 400}},
		{800, gmath.Vec3{X: 800}},
		{5000, gmath.Vec3{X: 1200}},
	}

	for _, tt := range tests {
		if got := s.LocationAtDistance(tt.distance, Local); !got.NearlyEqual(tt.want, 1e-4) {
			t.Errorf("LocationAtDistance(%v) = %v, want %v", tt.distance, got, tt.want)
		}
	}
}

func TestSplineWorldSpace(t *testing.T) {
	s := straight(0, 1000)
	s.SetTransform(gmath.NewTransform(gmath.Rotator{Yaw: 90}, gmath.Vec3{X: 50, Z: 10}, gmath.Vec3One))

	loc := s.LocationAtDistance(100, World)
	if !loc.NearlyEqual(gmath.Vec3{X: 50, Y: 100, Z: 10}, 1e-3) {
		t.Errorf("world location = %v, want (50, 100, 10)", loc)
	}

	tangent := s.TangentAtDistance(100, World)
	if !tangent.NearlyEqual(gmath.Vec3{Y: 1000}, 1e-2) {
		t.Errorf("world tangent = %v, want (0, 1000, 0)", tangent)
	}

	if got := s.RotationAtDistance(100, World); math.Abs(float64(got.Yaw-90)) > 1e-3 {
		t.Errorf("world yaw = %v, want 90", got.Yaw)
	}
	if got := s.RotationAtDistance(100, Local); !got.IsZero() {
		t.Errorf("local rotation = %+v, want zero", got)
	}
}

func TestSplineUpVectorFollowsAuthoredRoll(t *testing.T) {
	s := New(
		Point{Location: gmath.Vec3{X: 0}, Rotation: gmath.Rotator{Roll: 90}},
		Point{Location: gmath.Vec3{X: 100}, Rotation: gmath.Rotator{Roll: 90}},
	)

	up := s.UpVectorAtDistance(50, Local)
	if math.Abs(float64(up.Z)) > 1e-4 || math.Abs(float64(up.Y)) < 0.999 {
		t.Errorf("rolled up vector = %v, want lying along Y", up)
	}
	if got := s.RotationAtDistance(50, Local).Roll; math.Abs(float64(got-90)) > 1e-2 {
		t.Errorf("rolled frame roll = %v, want 90", got)
	}
}

func TestSamplerNearestControlPointIndex(t *testing.T) {
	s := straight(0, 400, 1200)
	sampler := NewSampler(s)

	tests := []struct {
		distance float32
		want     int
	}{
		{0, 0},
		{150, 0},
		{200, 0}, // tie between 0 and 400 keeps the first
		{250, 1},
		{900, 2},
	}
	for _, tt := range tests {
		if got := sampler.NearestControlPointIndex(tt.distance); got != tt.want {
			t.Errorf("NearestControlPointIndex(%v) = %d, want %d", tt.distance, got, tt.want)
		}
	}

	if got := NewSampler(New()).NearestControlPointIndex(0); got != NoIndex {
		t.Errorf("empty curve index = %d, want %d", got, NoIndex)
	}
}

func TestSamplerControlPointRotation(t *testing.T) {
	s := New(
		Point{Location: gmath.Vec3{X: 0}, Rotation: gmath.Rotator{Roll: 10}},
		Point{Location: gmath.Vec3{X: 100}, Rotation: gmath.Rotator{Roll: 20}},
		Point{Location: gmath.Vec3{X: 200}, Rotation: gmath.Rotator{Roll: 30}},
	)
	sampler := NewSampler(s)

	roll := func(q gmath.Quat) float32 { return q.Rotator().Roll }

	tests := []struct {
		name   string
		closed bool
		index  int
		want   float32
	}{
		{"in range", false, 1, 20},
		{"negative clamps", false, -3, 10},
		{"past end clamps", false, 3, 30},
		{"closed wraps", true, 3, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.SetClosedLoop(tt.closed)
			if got := roll(sampler.ControlPointRotation(tt.index)); math.Abs(float64(got-tt.want)) > 1e-3 {
				t.Errorf("ControlPointRotation(%d) roll = %v, want %v", tt.index, got, tt.want)
			}
		})
	}

	if !NewSampler(New()).ControlPointRotation(0).IsIdentity(0) {
		t.Error("empty curve should return the identity rotation")
	}
}
