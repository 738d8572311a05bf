package bvh

import "go.uber.org/zap"

// linkFreeList chains the slots [from, capacity) into the free list
func (t *Tree[T]) linkFreeList(from int) {
	capacity := len(t.nodes)
	for i := from; i < capacity-1; i++ {
		t.nodes[i].parentOrNext = i + 1
		t.nodes[i].height = -1
	}
	t.nodes[capacity-1].parentOrNext = NullNode
	t.nodes[capacity-1].height = -1
	t.freeList = from
}

// allocateNode pops a slot from the free list, doubling the pool when it is empty.
// Indices handed out before a growth remain valid after it.
func (t *Tree[T]) allocateNode() int {
	if t.freeList == NullNode {
		oldCapacity := len(t.nodes)

		nodes := make([]node[T], oldCapacity*2)
		copy(nodes, t.nodes)
		t.nodes = nodes
		t.linkFreeList(oldCapacity)

		t.logger.Debug("bvh node pool grown",
			zap.Int("oldCapacity", oldCapacity),
			zap.Int("newCapacity", len(t.nodes)))
	}

	nodeID := t.freeList
	n := &t.nodes[nodeID]
	t.freeList = n.parentOrNext

	var zero T
	n.parentOrNext = NullNode
	n.child1 = NullNode
	n.child2 = NullNode
	n.height = 0
	n.userData = zero
	t.nodeCount++

	return nodeID
}

// freeNode pushes a slot back on the free list
func (t *Tree[T]) freeNode(nodeID int) {
	var zero T
	n := &t.nodes[nodeID]
	n.parentOrNext = t.freeList
	n.height = -1
	n.userData = zero
	t.freeList = nodeID
	t.nodeCount--
}
