package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestRayHitAABB(t *testing.T) {
	box := AABB{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}}

	tests := []struct {
		name   string
		ray    Ray
		tMax   float64
		hit    bool
		tEnter float64
	}{
		{"Straight on", NewRay(mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{1, 0, 0}), math.MaxFloat64, true, 4},
		{"Pointing away", NewRay(mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{-1, 0, 0}), math.MaxFloat64, false, 0},
		{"Parallel outside slab", NewRay(mgl64.Vec3{-5, 2, 0}, mgl64.Vec3{1, 0, 0}), math.MaxFloat64, false, 0},
		{"Parallel on face", NewRay(mgl64.Vec3{-5, 1, 0}, mgl64.Vec3{1, 0, 0}), math.MaxFloat64, true, 4},
		{"Origin inside", NewRay(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0}), math.MaxFloat64, true, 0},
		{"Too short", NewRay(mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{1, 0, 0}), 3.5, false, 0},
		{"Diagonal", NewRay(mgl64.Vec3{-5, -5, -5}, mgl64.Vec3{1, 1, 1}), math.MaxFloat64, true, 4 * math.Sqrt(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, tEnter := tt.ray.HitAABB(box, 0, tt.tMax)
			if hit != tt.hit {
				t.Fatalf("HitAABB hit = %v, want %v", hit, tt.hit)
			}
			if hit && math.Abs(tEnter-tt.tEnter) > 1e-9 {
				t.Errorf("HitAABB t = %v, want %v", tEnter, tt.tEnter)
			}
		})
	}
}

func TestRayAt(t *testing.T) {
	r := NewRay(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{0, 0, 10})
	if p := r.At(2); !p.ApproxEqual(mgl64.Vec3{1, 2, 5}) {
		t.Errorf("At(2) = %v", p)
	}
}
