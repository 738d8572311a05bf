package bvh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// RebuildBottomUp discards every internal node and rebuilds the hierarchy by
// repeatedly merging the pair of subtrees whose union has the smallest area.
// This is O(n³) in the number of proxies and meant for offline optimization only.
// Proxy ids and user data are preserved. The result is validated before returning.
func (t *Tree[T]) RebuildBottomUp() error {
	nodes := make([]int, 0, t.ProxyCount())

	// Build array of leaves. Free the rest.
	for i := range t.nodes {
		if t.nodes[i].height < 0 {
			continue
		}

		if t.nodes[i].isLeaf() {
			t.nodes[i].parentOrNext = NullNode
			nodes = append(nodes, i)
		} else {
			t.freeNode(i)
		}
	}

	for len(nodes) > 1 {
		minCost := math.MaxFloat64
		iMin, jMin := -1, -1
		for i := 0; i < len(nodes); i++ {
			aabbi := t.nodes[nodes[i]].aabb

			for j := i + 1; j < len(nodes); j++ {
				cost := aabbi.Union(t.nodes[nodes[j]].aabb).SurfaceArea()
				if cost < minCost {
					iMin, jMin = i, j
					minCost = cost
				}
			}
		}

		index1 := nodes[iMin]
		index2 := nodes[jMin]

		parentIndex := t.allocateNode()
		parent := &t.nodes[parentIndex]
		child1 := &t.nodes[index1]
		child2 := &t.nodes[index2]

		parent.child1 = index1
		parent.child2 = index2
		parent.height = 1 + max(child1.height, child2.height)
		parent.aabb = child1.aabb.Union(child2.aabb)
		parent.parentOrNext = NullNode

		child1.parentOrNext = parentIndex
		child2.parentOrNext = parentIndex

		last := len(nodes) - 1
		nodes[jMin] = nodes[last]
		nodes[iMin] = parentIndex
		nodes = nodes[:last]
	}

	if len(nodes) == 0 {
		t.root = NullNode
	} else {
		t.root = nodes[0]
	}

	t.logger.Debug("bvh rebuilt bottom-up",
		zap.Int("proxies", t.ProxyCount()),
		zap.Int("height", t.Height()),
		zap.Float64("areaRatio", t.AreaRatio()))

	return t.Validate()
}

// ShiftOrigin moves the world origin to newOrigin: every stored box is translated
// by -newOrigin. The structure of the tree does not change.
func (t *Tree[T]) ShiftOrigin(newOrigin mgl64.Vec3) {
	offset := newOrigin.Mul(-1)
	for i := range t.nodes {
		t.nodes[i].aabb = t.nodes[i].aabb.Translate(offset)
	}

	t.logger.Debug("bvh origin shifted", zap.Float64s("newOrigin", newOrigin[:]))
}
