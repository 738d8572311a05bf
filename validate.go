package bvh

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Height returns the height of the root, 0 for an empty tree
func (t *Tree[T]) Height() int {
	if t.root == NullNode {
		return 0
	}

	return t.nodes[t.root].height
}

// MaxBalance returns the largest height difference between the two children of any node
func (t *Tree[T]) MaxBalance() int {
	maxBalance := 0
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.height <= 1 {
			continue
		}

		balance := t.nodes[n.child2].height - t.nodes[n.child1].height
		if balance < 0 {
			balance = -balance
		}
		maxBalance = max(maxBalance, balance)
	}

	return maxBalance
}

// AreaRatio returns the summed surface area of all nodes divided by the area of the root.
// Lower is better; it measures how much the boxes of a level overlap.
func (t *Tree[T]) AreaRatio() float64 {
	if t.root == NullNode {
		return 0
	}

	rootArea := t.nodes[t.root].aabb.SurfaceArea()
	if rootArea == 0 {
		return 0
	}

	totalArea := 0.0
	for i := range t.nodes {
		if t.nodes[i].height < 0 {
			// Free node in pool
			continue
		}
		totalArea += t.nodes[i].aabb.SurfaceArea()
	}

	return totalArea / rootArea
}

// ComputeHeight walks the whole tree to compute its height, ignoring stored heights
func (t *Tree[T]) ComputeHeight() int {
	if t.root == NullNode {
		return 0
	}
	return t.computeHeight(t.root)
}

func (t *Tree[T]) computeHeight(nodeID int) int {
	n := &t.nodes[nodeID]
	if n.isLeaf() {
		return 0
	}

	return 1 + max(t.computeHeight(n.child1), t.computeHeight(n.child2))
}

// Validate checks the structural invariants of the tree: parent and child links,
// heights, boxes of internal nodes being the exact union of their children, and
// the pool being partitioned between the tree and the free list.
// All violations found are returned combined; nil means the tree is consistent.
func (t *Tree[T]) Validate() error {
	var err error
	reached := make([]bool, len(t.nodes))

	if t.root != NullNode {
		if !t.inRange(t.root) {
			return errors.Errorf("root %d out of range", t.root)
		}
		if parent := t.nodes[t.root].parentOrNext; parent != NullNode {
			err = multierr.Append(err, errors.Errorf("root %d has parent %d", t.root, parent))
		}
		err = multierr.Append(err, t.validateNode(t.root, reached))
	}

	liveCount := 0
	for _, r := range reached {
		if r {
			liveCount++
		}
	}
	if liveCount != t.nodeCount {
		err = multierr.Append(err, errors.Errorf("%d nodes reachable from the root, %d allocated", liveCount, t.nodeCount))
	}

	freeCount := 0
	for freeIndex := t.freeList; freeIndex != NullNode; freeIndex = t.nodes[freeIndex].parentOrNext {
		if !t.inRange(freeIndex) {
			err = multierr.Append(err, errors.Errorf("free list links to %d, out of range", freeIndex))
			break
		}
		if reached[freeIndex] {
			err = multierr.Append(err, errors.Errorf("node %d is both in the tree and the free list", freeIndex))
			break
		}
		if t.nodes[freeIndex].height != -1 {
			err = multierr.Append(err, errors.Errorf("free node %d has height %d", freeIndex, t.nodes[freeIndex].height))
		}
		reached[freeIndex] = true
		freeCount++
	}

	if t.nodeCount+freeCount != len(t.nodes) {
		err = multierr.Append(err, errors.Errorf("%d live + %d free nodes, capacity %d", t.nodeCount, freeCount, len(t.nodes)))
	}

	if err == nil {
		if height, computed := t.Height(), t.ComputeHeight(); height != computed {
			err = errors.Errorf("root height %d, computed %d", height, computed)
		}
	}

	return err
}

// validateNode checks the subtree under index, marking the nodes it reaches
func (t *Tree[T]) validateNode(index int, reached []bool) error {
	if reached[index] {
		return errors.Errorf("node %d reached twice", index)
	}
	reached[index] = true

	n := &t.nodes[index]
	if n.height < 0 {
		return errors.Errorf("node %d is in the tree but free", index)
	}

	child1, child2 := n.child1, n.child2
	if n.isLeaf() {
		var err error
		if child2 != NullNode {
			err = multierr.Append(err, errors.Errorf("leaf %d has child2 %d", index, child2))
		}
		if n.height != 0 {
			err = multierr.Append(err, errors.Errorf("leaf %d has height %d", index, n.height))
		}
		return err
	}

	if !t.inRange(child1) || !t.inRange(child2) {
		return errors.Errorf("node %d has children %d, %d out of range", index, child1, child2)
	}

	var err error
	if t.nodes[child1].parentOrNext != index {
		err = multierr.Append(err, errors.Errorf("child1 %d of node %d has parent %d", child1, index, t.nodes[child1].parentOrNext))
	}
	if t.nodes[child2].parentOrNext != index {
		err = multierr.Append(err, errors.Errorf("child2 %d of node %d has parent %d", child2, index, t.nodes[child2].parentOrNext))
	}

	if height := 1 + max(t.nodes[child1].height, t.nodes[child2].height); n.height != height {
		err = multierr.Append(err, errors.Errorf("node %d has height %d, want %d", index, n.height, height))
	}

	if aabb := t.nodes[child1].aabb.Union(t.nodes[child2].aabb); aabb != n.aabb {
		err = multierr.Append(err, errors.Errorf("node %d box %v is not the union of its children %v", index, n.aabb, aabb))
	}

	err = multierr.Append(err, t.validateNode(child1, reached))
	err = multierr.Append(err, t.validateNode(child2, reached))

	return err
}

func (t *Tree[T]) inRange(index int) bool {
	return index >= 0 && index < len(t.nodes)
}
