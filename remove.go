package bvh

// removeLeaf unlinks a leaf from the tree without freeing its slot.
// Its parent is freed and the sibling takes the parent's place.
func (t *Tree[T]) removeLeaf(leaf int) {
	if leaf == t.root {
		t.root = NullNode
		return
	}

	parent := t.nodes[leaf].parentOrNext
	grandParent := t.nodes[parent].parentOrNext

	sibling := t.nodes[parent].child1
	if sibling == leaf {
		sibling = t.nodes[parent].child2
	}

	if grandParent != NullNode {
		// Destroy parent and connect sibling to grandParent
		t.replaceChild(grandParent, parent, sibling)
		t.nodes[sibling].parentOrNext = grandParent
		t.freeNode(parent)

		t.refit(grandParent)
	} else {
		t.root = sibling
		t.nodes[sibling].parentOrNext = NullNode
		t.freeNode(parent)
	}

	t.nodes[leaf].parentOrNext = NullNode
}
