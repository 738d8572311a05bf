// Package bvh implements a dynamic bounding volume hierarchy: a self-balancing
// binary tree of fat axis-aligned boxes used as a broad phase for moving 3D objects.
//
// Leaves are proxies for user objects. Each leaf stores a fattened box so that
// small motions do not touch the tree; when an object escapes its fat box the
// leaf is removed and re-inserted using a surface area heuristic, and ancestors
// are rebalanced with AVL-style rotations.
//
// Proxy identifiers are indices into a node pool. The pool may grow and move in
// memory, but an identifier stays valid until its proxy is destroyed.
//
// A Tree is not safe for concurrent use.
package bvh

import (
	"github.com/akmonengine/bvh/geom"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// AABBExtension fattens proxy boxes so they can move a little without a tree update.
	// This is in world units.
	AABBExtension = 0.1
	// AABBMultiplier scales the displacement used to predict where a moved proxy is heading.
	AABBMultiplier = 2.0

	// NullNode marks the absence of a node (no parent, no child, empty tree, end of free list).
	NullNode = -1

	defaultCapacity = 16
)

// ErrInvalidHandle is returned when a proxy id does not designate a live leaf.
var ErrInvalidHandle = errors.New("invalid proxy handle")

// ProxyID identifies a leaf of the tree. It is an index into the node pool, never an address.
type ProxyID int

type node[T any] struct {
	aabb     geom.AABB
	userData T

	// parent of a live node, or the next slot of the free list when height == -1
	parentOrNext int

	child1 int
	child2 int

	// 0 for leaves, -1 for free nodes
	height int
}

func (n *node[T]) isLeaf() bool {
	return n.child1 == NullNode
}

// Tree is a dynamic AABB tree. T is the caller's handle attached to every proxy;
// the tree stores it by value and never releases whatever it refers to.
type Tree[T any] struct {
	root int

	nodes     []node[T]
	nodeCount int
	freeList  int

	insertionCount int

	margin     float64
	multiplier float64
	logger     *zap.Logger
}

// Option configures a Tree
type Option func(*options)

type options struct {
	margin     float64
	multiplier float64
	capacity   int
	logger     *zap.Logger
}

// WithMargin sets how much leaf boxes are fattened on every side
func WithMargin(margin float64) Option {
	return func(o *options) { o.margin = margin }
}

// WithPredictionMultiplier sets the factor applied to displacements in MoveProxy
func WithPredictionMultiplier(multiplier float64) Option {
	return func(o *options) { o.multiplier = multiplier }
}

// WithInitialCapacity sets the initial number of pool slots
func WithInitialCapacity(capacity int) Option {
	return func(o *options) { o.capacity = capacity }
}

// WithLogger sets the logger used for structural events (pool growth, rebuilds)
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// NewTree creates an empty tree
func NewTree[T any](opts ...Option) *Tree[T] {
	o := options{
		margin:     AABBExtension,
		multiplier: AABBMultiplier,
		capacity:   defaultCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.capacity < 1 {
		o.capacity = 1
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	t := &Tree[T]{
		root:       NullNode,
		margin:     o.margin,
		multiplier: o.multiplier,
		logger:     o.logger,
		nodes:      make([]node[T], o.capacity),
	}
	t.linkFreeList(0)

	return t
}

// CreateProxy inserts a leaf for an object with the given tight bounds.
// The stored box is the tight box fattened by the tree margin.
func (t *Tree[T]) CreateProxy(aabb geom.AABB, userData T) ProxyID {
	proxyID := t.allocateNode()

	n := &t.nodes[proxyID]
	n.aabb = aabb.Fatten(t.margin)
	n.userData = userData
	n.height = 0

	t.insertLeaf(proxyID)

	return ProxyID(proxyID)
}

// DestroyProxy removes a leaf and recycles its slot
func (t *Tree[T]) DestroyProxy(proxyID ProxyID) error {
	if err := t.checkProxy(proxyID); err != nil {
		return err
	}

	t.removeLeaf(int(proxyID))
	t.freeNode(int(proxyID))

	return nil
}

// MoveProxy updates a leaf for the new tight bounds of its object.
// If the stored fat box still contains aabb nothing changes and false is returned.
// Otherwise the leaf is re-inserted with a box fattened by the margin and stretched
// along displacement, and true tells the caller that pairs involving this proxy
// must be recomputed.
func (t *Tree[T]) MoveProxy(proxyID ProxyID, aabb geom.AABB, displacement mgl64.Vec3) (bool, error) {
	if err := t.checkProxy(proxyID); err != nil {
		return false, err
	}

	id := int(proxyID)
	if t.nodes[id].aabb.Contains(aabb) {
		return false, nil
	}

	t.removeLeaf(id)

	t.nodes[id].aabb = aabb.Fatten(t.margin).Predict(displacement, t.multiplier)

	t.insertLeaf(id)

	return true, nil
}

// UserData returns the handle given to CreateProxy
func (t *Tree[T]) UserData(proxyID ProxyID) (T, error) {
	if err := t.checkProxy(proxyID); err != nil {
		var zero T
		return zero, err
	}

	return t.nodes[proxyID].userData, nil
}

// FatAABB returns the fattened box stored for a proxy
func (t *Tree[T]) FatAABB(proxyID ProxyID) (geom.AABB, error) {
	if err := t.checkProxy(proxyID); err != nil {
		return geom.AABB{}, err
	}

	return t.nodes[proxyID].aabb, nil
}

// ProxyCount returns the number of live leaves
func (t *Tree[T]) ProxyCount() int {
	// A tree with n leaves has n-1 internal nodes.
	if t.root == NullNode {
		return 0
	}
	return (t.nodeCount + 1) / 2
}

// NodeCount returns the number of live nodes, leaves and internal nodes
func (t *Tree[T]) NodeCount() int {
	return t.nodeCount
}

// Capacity returns the number of pool slots
func (t *Tree[T]) Capacity() int {
	return len(t.nodes)
}

// InsertionCount returns how many leaf insertions happened, re-insertions by MoveProxy included
func (t *Tree[T]) InsertionCount() int {
	return t.insertionCount
}

// checkProxy reports ErrInvalidHandle unless id designates a live leaf
func (t *Tree[T]) checkProxy(proxyID ProxyID) error {
	id := int(proxyID)
	if id < 0 || id >= len(t.nodes) {
		return errors.Wrapf(ErrInvalidHandle, "proxy %d out of range [0, %d)", id, len(t.nodes))
	}

	n := &t.nodes[id]
	if n.height < 0 {
		return errors.Wrapf(ErrInvalidHandle, "proxy %d is free", id)
	}
	if !n.isLeaf() {
		return errors.Wrapf(ErrInvalidHandle, "node %d is not a proxy", id)
	}

	return nil
}
