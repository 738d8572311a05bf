package geom

import "github.com/go-gl/mathgl/mgl64"

// Plane is the set of points p with Normal.Dot(p) + Distance == 0.
// The positive half-space is the side Normal points to.
type Plane struct {
	Normal   mgl64.Vec3
	Distance float64
}

// SignedDistance returns how far p is in front of the plane
func (p Plane) SignedDistance(point mgl64.Vec3) float64 {
	return p.Normal.Dot(point) + p.Distance
}

func (p Plane) normalize() Plane {
	l := p.Normal.Len()
	if l == 0 {
		return p
	}
	return Plane{Normal: p.Normal.Mul(1 / l), Distance: p.Distance / l}
}

const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// Frustum is a convex volume bounded by six inward facing planes
type Frustum struct {
	Planes [6]Plane
}

// NewFrustumFromMatrix extracts the clipping planes of a combined
// projection*view matrix (OpenGL clip-space convention, as produced by
// mgl64.Perspective and mgl64.LookAtV).
func NewFrustumFromMatrix(viewProj mgl64.Mat4) Frustum {
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)

	planeFrom := func(v mgl64.Vec4) Plane {
		return Plane{Normal: v.Vec3(), Distance: v.W()}.normalize()
	}

	var f Frustum
	f.Planes[FrustumLeft] = planeFrom(r3.Add(r0))
	f.Planes[FrustumRight] = planeFrom(r3.Sub(r0))
	f.Planes[FrustumBottom] = planeFrom(r3.Add(r1))
	f.Planes[FrustumTop] = planeFrom(r3.Sub(r1))
	f.Planes[FrustumNear] = planeFrom(r3.Add(r2))
	f.Planes[FrustumFar] = planeFrom(r3.Sub(r2))

	return f
}

// IntersectsAABB reports whether any part of box may be inside the frustum.
// A box is rejected only when it lies fully behind one of the planes, so boxes
// near the frustum corners can be reported conservatively.
func (f Frustum) IntersectsAABB(box AABB) bool {
	for _, plane := range f.Planes {
		// Corner of the box furthest along the plane normal
		var positive mgl64.Vec3
		for i := 0; i < 3; i++ {
			if plane.Normal[i] >= 0 {
				positive[i] = box.Max[i]
			} else {
				positive[i] = box.Min[i]
			}
		}

		if plane.SignedDistance(positive) < 0 {
			return false
		}
	}

	return true
}

// ContainsAABB reports whether box lies entirely inside the frustum
func (f Frustum) ContainsAABB(box AABB) bool {
	for _, plane := range f.Planes {
		var negative mgl64.Vec3
		for i := 0; i < 3; i++ {
			if plane.Normal[i] >= 0 {
				negative[i] = box.Min[i]
			} else {
				negative[i] = box.Max[i]
			}
		}

		if plane.SignedDistance(negative) < 0 {
			return false
		}
	}

	return true
}

// ContainsPoint reports whether point is inside all six planes
func (f Frustum) ContainsPoint(point mgl64.Vec3) bool {
	for _, plane := range f.Planes {
		if plane.SignedDistance(point) < 0 {
			return false
		}
	}

	return true
}
