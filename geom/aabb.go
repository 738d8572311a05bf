// Package geom provides the value types the dynamic tree is built on:
// axis-aligned boxes, rays and view frustums over mgl64 vectors.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// NewAABB creates a box from its center and half extents
func NewAABB(center, halfExtents mgl64.Vec3) AABB {
	return AABB{Min: center.Sub(halfExtents), Max: center.Add(halfExtents)}
}

// NewAABBFromPoints returns the smallest box enclosing all the points
func NewAABBFromPoints(points ...mgl64.Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	a := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		a.Min = minVec(a.Min, p)
		a.Max = maxVec(a.Max, p)
	}

	return a
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Contains checks if other lies entirely inside a. Shared faces count as inside.
func (a AABB) Contains(other AABB) bool {
	return a.Min.X() <= other.Min.X() && a.Min.Y() <= other.Min.Y() && a.Min.Z() <= other.Min.Z() &&
		other.Max.X() <= a.Max.X() && other.Max.Y() <= a.Max.Y() && other.Max.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// Union returns the smallest box enclosing both a and other
func (a AABB) Union(other AABB) AABB {
	return AABB{Min: minVec(a.Min, other.Min), Max: maxVec(a.Max, other.Max)}
}

// Extents returns the full size of the box along each axis
func (a AABB) Extents() mgl64.Vec3 {
	return a.Max.Sub(a.Min)
}

// Center returns the midpoint of the box
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// SurfaceArea returns the total area of the six faces.
// This is the cost metric used by the tree's insertion heuristic.
func (a AABB) SurfaceArea() float64 {
	e := a.Extents()
	return 2.0 * (e.X()*e.Y() + e.Y()*e.Z() + e.Z()*e.X())
}

// Perimeter returns the summed length of the twelve edges
func (a AABB) Perimeter() float64 {
	e := a.Extents()
	return 4.0 * (e.X() + e.Y() + e.Z())
}

// Fatten grows the box by margin on every side
func (a AABB) Fatten(margin float64) AABB {
	r := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(r), Max: a.Max.Add(r)}
}

// Predict stretches the box towards where it is heading: on each axis only the
// bound on the side of displacement*multiplier is moved.
func (a AABB) Predict(displacement mgl64.Vec3, multiplier float64) AABB {
	d := displacement.Mul(multiplier)

	for i := 0; i < 3; i++ {
		if d[i] < 0 {
			a.Min[i] += d[i]
		} else {
			a.Max[i] += d[i]
		}
	}

	return a
}

// Translate moves the box by offset
func (a AABB) Translate(offset mgl64.Vec3) AABB {
	return AABB{Min: a.Min.Add(offset), Max: a.Max.Add(offset)}
}

// ApproxEqual compares both corners within threshold
func (a AABB) ApproxEqual(other AABB, threshold float64) bool {
	return a.Min.ApproxEqualThreshold(other.Min, threshold) && a.Max.ApproxEqualThreshold(other.Max, threshold)
}

func minVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])}
}

func maxVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])}
}
