package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func createTestFrustum() Frustum {
	proj := mgl64.Perspective(mgl64.DegToRad(90), 1.0, 0.1, 100)
	view := mgl64.LookAtV(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, -1}, mgl64.Vec3{0, 1, 0})
	return NewFrustumFromMatrix(proj.Mul4(view))
}

func TestFrustumPlanesAreNormalized(t *testing.T) {
	f := createTestFrustum()
	for i, plane := range f.Planes {
		if l := plane.Normal.Len(); l < 1-1e-9 || l > 1+1e-9 {
			t.Errorf("plane %d normal length = %v, want 1", i, l)
		}
	}
}

func TestFrustumIntersectsAABB(t *testing.T) {
	f := createTestFrustum()

	tests := []struct {
		name     string
		box      AABB
		expected bool
	}{
		{"In front of the camera", NewAABB(mgl64.Vec3{0, 0, -10}, mgl64.Vec3{1, 1, 1}), true},
		{"Behind the camera", NewAABB(mgl64.Vec3{0, 0, 10}, mgl64.Vec3{1, 1, 1}), false},
		{"Far to the right", NewAABB(mgl64.Vec3{100, 0, -10}, mgl64.Vec3{1, 1, 1}), false},
		{"Beyond the far plane", NewAABB(mgl64.Vec3{0, 0, -200}, mgl64.Vec3{1, 1, 1}), false},
		{"Straddling the left plane", NewAABB(mgl64.Vec3{-10, 0, -10}, mgl64.Vec3{1, 1, 1}), true},
		{"Enclosing the frustum", NewAABB(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{500, 500, 500}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := f.IntersectsAABB(tt.box); result != tt.expected {
				t.Errorf("IntersectsAABB(%v) = %v, expected %v", tt.box, result, tt.expected)
			}
		})
	}
}

func TestFrustumContainsAABB(t *testing.T) {
	f := createTestFrustum()

	if !f.ContainsAABB(NewAABB(mgl64.Vec3{0, 0, -10}, mgl64.Vec3{1, 1, 1})) {
		t.Error("box in the middle of the view should be fully contained")
	}
	if f.ContainsAABB(NewAABB(mgl64.Vec3{-10, 0, -10}, mgl64.Vec3{1, 1, 1})) {
		t.Error("box straddling the left plane should not be fully contained")
	}
	if f.ContainsAABB(NewAABB(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{500, 500, 500})) {
		t.Error("box enclosing the frustum should not be fully contained")
	}
}

func TestFrustumContainsPoint(t *testing.T) {
	f := createTestFrustum()

	if !f.ContainsPoint(mgl64.Vec3{0, 0, -50}) {
		t.Error("point on the view axis should be inside")
	}
	if f.ContainsPoint(mgl64.Vec3{0, 0, -0.01}) {
		t.Error("point before the near plane should be outside")
	}
}
