package bvh

import (
	"sync"

	"github.com/akmonengine/bvh/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// QueryFunc is called for every proxy whose fat box passes a query.
// Returning false stops the query.
type QueryFunc func(proxyID ProxyID) bool

// RayCastInput is a segment from Start to Start + MaxFraction*(End-Start)
type RayCastInput struct {
	Start       mgl64.Vec3
	End         mgl64.Vec3
	MaxFraction float64
}

// RayCastFunc is called for every proxy whose fat box the segment crosses.
// input carries the segment as it currently stands. The return value controls the cast:
//   - 0 terminates it
//   - a value in (0, input.MaxFraction) clips the segment to that fraction
//   - anything else (negative, or not below the current fraction) continues unchanged
type RayCastFunc func(input RayCastInput, proxyID ProxyID) float64

const stackCapacity = 256

var stackPool = sync.Pool{
	New: func() interface{} {
		s := make([]int, 0, stackCapacity)
		return &s
	},
}

// traverse runs a depth-first search from the root. Subtrees whose box fails
// test are pruned; visit is called on every leaf that passes and returns false
// to stop. Leaves are visited in stack order, child2 before child1.
func (t *Tree[T]) traverse(test func(aabb geom.AABB) bool, visit func(nodeID int) bool) {
	sp := stackPool.Get().(*[]int)
	stack := append((*sp)[:0], t.root)

	defer func() {
		*sp = stack[:0]
		stackPool.Put(sp)
	}()

	for len(stack) > 0 {
		nodeID := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if nodeID == NullNode {
			continue
		}

		n := &t.nodes[nodeID]
		if !test(n.aabb) {
			continue
		}

		if n.isLeaf() {
			if !visit(nodeID) {
				return
			}
		} else {
			stack = append(stack, n.child1, n.child2)
		}
	}
}

// Query calls fn for every proxy whose fat box overlaps aabb
func (t *Tree[T]) Query(aabb geom.AABB, fn QueryFunc) {
	t.traverse(aabb.Overlaps, func(nodeID int) bool {
		return fn(ProxyID(nodeID))
	})
}

// QueryFrustum calls fn for every proxy whose fat box is at least partly inside frustum
func (t *Tree[T]) QueryFrustum(frustum geom.Frustum, fn QueryFunc) {
	t.traverse(frustum.IntersectsAABB, func(nodeID int) bool {
		return fn(ProxyID(nodeID))
	})
}

// RayCast calls fn for every proxy whose fat box the segment of input crosses.
// The segment shortens as fn reports closer hits, which prunes the remaining search.
func (t *Tree[T]) RayCast(input RayCastInput, fn RayCastFunc) {
	ray := geom.Ray{Origin: input.Start, Direction: input.End.Sub(input.Start)}

	segmentAABB := geom.NewAABBFromPoints(input.Start, ray.At(input.MaxFraction))

	test := func(aabb geom.AABB) bool {
		if !aabb.Overlaps(segmentAABB) {
			return false
		}
		hit, _ := ray.HitAABB(aabb, 0, input.MaxFraction)
		return hit
	}

	visit := func(nodeID int) bool {
		value := fn(input, ProxyID(nodeID))
		if value == 0 {
			// The client has terminated the ray cast.
			return false
		}

		if value > 0 && value < input.MaxFraction {
			input.MaxFraction = value
			segmentAABB = geom.NewAABBFromPoints(input.Start, ray.At(value))
		}

		return true
	}

	t.traverse(test, visit)
}

// RayCastSegment casts the whole segment from start to end
func (t *Tree[T]) RayCastSegment(start, end mgl64.Vec3, fn RayCastFunc) {
	t.RayCast(RayCastInput{Start: start, End: end, MaxFraction: 1}, fn)
}
