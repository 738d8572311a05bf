package bvh

// balance performs a left or right rotation if node iA is imbalanced and
// returns the index of the node now standing where iA was.
//
//	     A                C
//	    / \              / \
//	   B   C    ==>     A   F      (F the taller child of C)
//	      / \          / \
//	     F   G        B   G
//
// The grandparent's child slot (or the root) is updated here.
//
// A new leaf may be paired with a much taller sibling, so one rotation is not
// always enough: the demoted node is balanced again, recursively. Given two AVL
// subtrees, the result is AVL and its height is max(child heights) or one more.
func (t *Tree[T]) balance(iA int) int {
	A := &t.nodes[iA]
	if A.isLeaf() || A.height < 2 {
		return iA
	}

	iB := A.child1
	iC := A.child2
	B := &t.nodes[iB]
	C := &t.nodes[iC]

	balance := C.height - B.height

	// Rotate C up
	if balance > 1 {
		iF := C.child1
		iG := C.child2
		F := &t.nodes[iF]
		G := &t.nodes[iG]

		// Swap A and C
		C.child1 = iA
		C.parentOrNext = A.parentOrNext
		A.parentOrNext = iC

		// A's old parent should point to C
		if C.parentOrNext != NullNode {
			t.replaceChild(C.parentOrNext, iA, iC)
		} else {
			t.root = iC
		}

		if F.height > G.height {
			C.child2 = iF
			A.child2 = iG
			G.parentOrNext = iA
			A.aabb = B.aabb.Union(G.aabb)
			C.aabb = A.aabb.Union(F.aabb)

			A.height = 1 + max(B.height, G.height)
			C.height = 1 + max(A.height, F.height)
		} else {
			C.child2 = iG
			A.child2 = iF
			F.parentOrNext = iA
			A.aabb = B.aabb.Union(F.aabb)
			C.aabb = A.aabb.Union(G.aabb)

			A.height = 1 + max(B.height, F.height)
			C.height = 1 + max(A.height, G.height)
		}

		t.rebalanceDemoted(iC, iA)

		return iC
	}

	// Rotate B up
	if balance < -1 {
		iD := B.child1
		iE := B.child2
		D := &t.nodes[iD]
		E := &t.nodes[iE]

		// Swap A and B
		B.child1 = iA
		B.parentOrNext = A.parentOrNext
		A.parentOrNext = iB

		// A's old parent should point to B
		if B.parentOrNext != NullNode {
			t.replaceChild(B.parentOrNext, iA, iB)
		} else {
			t.root = iB
		}

		if D.height > E.height {
			B.child2 = iD
			A.child1 = iE
			E.parentOrNext = iA
			A.aabb = C.aabb.Union(E.aabb)
			B.aabb = A.aabb.Union(D.aabb)

			A.height = 1 + max(C.height, E.height)
			B.height = 1 + max(A.height, D.height)
		} else {
			B.child2 = iE
			A.child1 = iD
			D.parentOrNext = iA
			A.aabb = C.aabb.Union(D.aabb)
			B.aabb = A.aabb.Union(E.aabb)

			A.height = 1 + max(C.height, D.height)
			B.height = 1 + max(A.height, E.height)
		}

		t.rebalanceDemoted(iB, iA)

		return iB
	}

	return iA
}

// rebalanceDemoted balances the node pushed down by a rotation and refreshes
// the new local root above it
func (t *Tree[T]) rebalanceDemoted(top, demoted int) {
	if t.balance(demoted) == demoted {
		return
	}

	n := &t.nodes[top]
	c1 := &t.nodes[n.child1]
	c2 := &t.nodes[n.child2]
	n.height = 1 + max(c1.height, c2.height)
	n.aabb = c1.aabb.Union(c2.aabb)
}
