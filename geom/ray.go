package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// parallelEpsilon is the direction component below which a ray is treated as
// parallel to a slab.
const parallelEpsilon = 1e-12

// Ray is a half-line starting at Origin. Direction does not need to be
// normalized; distances returned by HitAABB are in units of Direction.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// NewRay creates a ray with a normalized direction
func NewRay(origin, direction mgl64.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// HitAABB runs the slab test against box, restricted to [tMin, tMax].
// It reports whether the ray crosses the box and the parameter at which it enters
// (tMin when the origin already is inside).
func (r Ray) HitAABB(box AABB, tMin, tMax float64) (bool, float64) {
	for axis := 0; axis < 3; axis++ {
		origin := r.Origin[axis]
		direction := r.Direction[axis]

		if math.Abs(direction) < parallelEpsilon {
			if origin < box.Min[axis] || origin > box.Max[axis] {
				return false, 0
			}
			continue
		}

		inv := 1.0 / direction
		t1 := (box.Min[axis] - origin) * inv
		t2 := (box.Max[axis] - origin) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false, 0
		}
	}

	return true, tMin
}
