package bvh

// insertLeaf links an allocated leaf into the tree.
//
// The sibling is found by descending from the root, at each level comparing the
// cost of pairing the leaf with the current node against the cheapest cost of
// descending into either child. Costs are surface areas: creating a parent costs
// the area of the combined box, and every level walked down adds the area growth
// the ancestors have to absorb.
func (t *Tree[T]) insertLeaf(leaf int) {
	t.insertionCount++

	if t.root == NullNode {
		t.root = leaf
		t.nodes[leaf].parentOrNext = NullNode
		return
	}

	leafAABB := t.nodes[leaf].aabb
	index := t.root
	for !t.nodes[index].isLeaf() {
		n := &t.nodes[index]
		child1 := n.child1
		child2 := n.child2

		area := n.aabb.SurfaceArea()
		combinedArea := n.aabb.Union(leafAABB).SurfaceArea()

		// Cost of creating a new parent for this node and the new leaf
		cost := 2.0 * combinedArea

		// Minimum cost of pushing the leaf further down the tree
		inheritanceCost := 2.0 * (combinedArea - area)

		cost1 := t.descentCost(child1, leafAABB.Union(t.nodes[child1].aabb).SurfaceArea()) + inheritanceCost
		cost2 := t.descentCost(child2, leafAABB.Union(t.nodes[child2].aabb).SurfaceArea()) + inheritanceCost

		if cost < cost1 && cost < cost2 {
			break
		}

		if cost1 <= cost2 {
			index = child1
		} else {
			index = child2
		}
	}

	sibling := index

	// Create a new parent
	oldParent := t.nodes[sibling].parentOrNext
	newParent := t.allocateNode()
	p := &t.nodes[newParent]
	p.parentOrNext = oldParent
	p.aabb = leafAABB.Union(t.nodes[sibling].aabb)
	p.height = t.nodes[sibling].height + 1
	p.child1 = sibling
	p.child2 = leaf

	if oldParent != NullNode {
		t.replaceChild(oldParent, sibling, newParent)
	} else {
		t.root = newParent
	}
	t.nodes[sibling].parentOrNext = newParent
	t.nodes[leaf].parentOrNext = newParent

	t.refit(t.nodes[leaf].parentOrNext)
}

// descentCost is the area a child would add if the leaf went down into it.
// A leaf child has to get a new parent, an internal child only grows.
func (t *Tree[T]) descentCost(child int, combinedArea float64) float64 {
	if t.nodes[child].isLeaf() {
		return combinedArea
	}
	return combinedArea - t.nodes[child].aabb.SurfaceArea()
}

// refit walks from index to the root, rebalancing each ancestor and
// recomputing its height and box from its children.
func (t *Tree[T]) refit(index int) {
	for index != NullNode {
		index = t.balance(index)

		n := &t.nodes[index]
		c1 := &t.nodes[n.child1]
		c2 := &t.nodes[n.child2]

		n.height = 1 + max(c1.height, c2.height)
		n.aabb = c1.aabb.Union(c2.aabb)

		index = n.parentOrNext
	}
}

// replaceChild points parent's child slot holding oldChild to newChild
func (t *Tree[T]) replaceChild(parent, oldChild, newChild int) {
	p := &t.nodes[parent]
	if p.child1 == oldChild {
		p.child1 = newChild
	} else {
		p.child2 = newChild
	}
}
