package geom

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestVec3Add(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}
	got := a.Add(b)
	want := Vec3{5, 7, 9}
	if got != want {
		t.Errorf("Vec3.Add() = %v, want %v", got, want)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 0}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	got := (Vec3{}).Normalize()
	if got != (Vec3{}) {
		t.Errorf("Normalize of zero vector = %v, want zero", got)
	}
}

func TestLookAtPoseFacesTarget(t *testing.T) {
	eye := Vec3{0, 0, 2}
	target := Vec3{0, 0, 0}
	pose := LookAtPose(eye, target, Vec3{0, 1, 0})

	if pose.Translation() != eye {
		t.Errorf("pose translation = %v, want %v", pose.Translation(), eye)
	}

	// Camera looks down local -Z: the Back column must point from target to eye.
	back := pose.Back()
	wantBack := eye.Sub(target).Normalize()
	if back.Distance(wantBack) > 1e-5 {
		t.Errorf("pose back = %v, want %v", back, wantBack)
	}
}

func TestLookAtPoseOrthonormal(t *testing.T) {
	pose := LookAtPose(Vec3{1.2, -0.7, 1.5}, Vec3{0, 0, 0.05}, Vec3{0, 1, 0})

	r, u, b := pose.Right(), pose.Up(), pose.Back()
	for name, v := range map[string]Vec3{"right": r, "up": u, "back": b} {
		if l := v.Length(); l < 0.9999 || l > 1.0001 {
			t.Errorf("%s column length = %v, want 1", name, l)
		}
	}
	if d := r.Dot(u); math32.Abs(d) > 1e-5 {
		t.Errorf("right.up = %v, want 0", d)
	}
	if d := r.Dot(b); math32.Abs(d) > 1e-5 {
		t.Errorf("right.back = %v, want 0", d)
	}
	if d := u.Dot(b); math32.Abs(d) > 1e-5 {
		t.Errorf("up.back = %v, want 0", d)
	}
}

// A camera straight above the target looking down is parallel to a Z up
// vector; the alternate up substitution must keep the basis finite.
func TestLookAtPoseDegenerateUp(t *testing.T) {
	pose := LookAtPose(Vec3{0, 0, 1}, Vec3{0, 0, 0}, Vec3{0, 0, 1})

	r := pose.Right()
	if l := r.Length(); l < 0.9999 || l > 1.0001 || l != l {
		t.Errorf("degenerate up produced right column %v", r)
	}
}

func TestDirectionToEuler(t *testing.T) {
	tests := []struct {
		name string
		dir  Vec3
		want Vec3
	}{
		{"straight down", Vec3{0, 0, -1}, Vec3{math32.Pi / 2, 0, 0}},
		{"along +x", Vec3{1, 0, 0}, Vec3{0, 0, 0}},
		{"along +y", Vec3{0, 1, 0}, Vec3{0, 0, math32.Pi / 2}},
	}
	for _, tt := range tests {
		got := DirectionToEuler(tt.dir)
		if got.Distance(tt.want) > 1e-5 {
			t.Errorf("%s: DirectionToEuler(%v) = %v, want %v", tt.name, tt.dir, got, tt.want)
		}
	}
}

func TestKelvinToRGB(t *testing.T) {
	tests := []struct {
		name   string
		kelvin float32
	}{
		{"candle", 1900},
		{"warm white", 3000},
		{"daylight", 5500},
		{"overcast", 6500},
		{"blue sky", 10000},
	}
	for _, tt := range tests {
		r, g, b := KelvinToRGB(tt.kelvin)
		for ch, v := range map[string]float32{"r": r, "g": g, "b": b} {
			if v < 0 || v > 1 {
				t.Errorf("%s: channel %s = %v out of [0,1]", tt.name, ch, v)
			}
		}
	}

	// Below 6600K red saturates; above, blue saturates.
	r, _, _ := KelvinToRGB(3000)
	if r != 1.0 {
		t.Errorf("red at 3000K = %v, want 1.0", r)
	}
	_, _, b := KelvinToRGB(10000)
	if b != 1.0 {
		t.Errorf("blue at 10000K = %v, want 1.0", b)
	}

	// Very low temperatures carry no blue.
	_, _, b = KelvinToRGB(1800)
	if b != 0.0 {
		t.Errorf("blue at 1800K = %v, want 0.0", b)
	}

	// Warmer light should be redder than cooler light.
	_, gWarm, bWarm := KelvinToRGB(3000)
	_, gCool, bCool := KelvinToRGB(6500)
	if !(bWarm < bCool) {
		t.Errorf("expected less blue at 3000K (%v) than 6500K (%v)", bWarm, bCool)
	}
	if !(gWarm < gCool) {
		t.Errorf("expected less green at 3000K (%v) than 6500K (%v)", gWarm, gCool)
	}
}
