package bvh

import (
	"sort"

	"github.com/akmonengine/bvh/geom"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	PAIR_BEGIN PairEventType = iota
	PAIR_END
)

type PairEventType uint8

// Pair - two proxies whose fat boxes overlap, ProxyA < ProxyB
type Pair struct {
	ProxyA ProxyID
	ProxyB ProxyID
}

// makePair creates a normalized pair with consistent ordering
func makePair(a, b ProxyID) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{ProxyA: a, ProxyB: b}
}

// PairEvent is emitted when two fat boxes start or stop overlapping
type PairEvent struct {
	Type PairEventType
	Pair Pair
}

// PairListener - callback for pair events
type PairListener func(event PairEvent)

// BroadPhase tracks which proxies moved since the last update and finds the new
// overlapping pairs among them with tree queries. Proxies whose fat box absorbed
// their motion are not re-queried.
type BroadPhase[T any] struct {
	tree *Tree[T]

	moveBuffer []ProxyID
	pairBuffer []Pair

	// pairs reported since they began overlapping
	activePairs map[Pair]bool

	listeners map[PairEventType][]PairListener
	events    []PairEvent
}

// NewBroadPhase creates a broad phase over a new tree configured with opts
func NewBroadPhase[T any](opts ...Option) *BroadPhase[T] {
	return &BroadPhase[T]{
		tree:        NewTree[T](opts...),
		moveBuffer:  make([]ProxyID, 0, 16),
		pairBuffer:  make([]Pair, 0, 16),
		activePairs: make(map[Pair]bool),
		listeners:   make(map[PairEventType][]PairListener),
		events:      make([]PairEvent, 0, 16),
	}
}

// Tree gives access to the underlying tree for queries and diagnostics
func (bp *BroadPhase[T]) Tree() *Tree[T] {
	return bp.tree
}

// Subscribe adds a listener for a pair event type. Events are delivered at the end of UpdatePairs,
// every end before any begin: pairs ended by DestroyProxy first, then pairs whose fat boxes
// separated, then new pairs, each group in ascending pair order. A slot reused by a new
// proxy therefore always ends its old pairs before beginning new ones.
func (bp *BroadPhase[T]) Subscribe(eventType PairEventType, listener PairListener) {
	bp.listeners[eventType] = append(bp.listeners[eventType], listener)
}

// CreateProxy adds a proxy; its pairs are found on the next UpdatePairs
func (bp *BroadPhase[T]) CreateProxy(aabb geom.AABB, userData T) ProxyID {
	proxyID := bp.tree.CreateProxy(aabb, userData)
	bp.bufferMove(proxyID)
	return proxyID
}

// DestroyProxy removes a proxy and ends every active pair it belongs to
func (bp *BroadPhase[T]) DestroyProxy(proxyID ProxyID) error {
	if err := bp.tree.DestroyProxy(proxyID); err != nil {
		return err
	}

	bp.unbufferMove(proxyID)

	ended := make([]Pair, 0)
	for pair := range bp.activePairs {
		if pair.ProxyA == proxyID || pair.ProxyB == proxyID {
			ended = append(ended, pair)
		}
	}
	bp.endPairs(ended)

	return nil
}

// MoveProxy moves a proxy in the tree and buffers it if it was re-inserted
func (bp *BroadPhase[T]) MoveProxy(proxyID ProxyID, aabb geom.AABB, displacement mgl64.Vec3) error {
	moved, err := bp.tree.MoveProxy(proxyID, aabb, displacement)
	if err != nil {
		return err
	}

	if moved {
		bp.bufferMove(proxyID)
	}

	return nil
}

// TouchProxy forces a proxy to be re-queried on the next UpdatePairs
func (bp *BroadPhase[T]) TouchProxy(proxyID ProxyID) error {
	if err := bp.tree.checkProxy(proxyID); err != nil {
		return err
	}

	bp.bufferMove(proxyID)

	return nil
}

// TestOverlap reports whether the fat boxes of two proxies overlap
func (bp *BroadPhase[T]) TestOverlap(proxyA, proxyB ProxyID) bool {
	aabbA, errA := bp.tree.FatAABB(proxyA)
	aabbB, errB := bp.tree.FatAABB(proxyB)
	if errA != nil || errB != nil {
		return false
	}

	return aabbA.Overlaps(aabbB)
}

// FatAABB returns the fat box of a proxy
func (bp *BroadPhase[T]) FatAABB(proxyID ProxyID) (geom.AABB, error) {
	return bp.tree.FatAABB(proxyID)
}

// UserData returns the handle of a proxy
func (bp *BroadPhase[T]) UserData(proxyID ProxyID) (T, error) {
	return bp.tree.UserData(proxyID)
}

// ProxyCount returns the number of proxies
func (bp *BroadPhase[T]) ProxyCount() int {
	return bp.tree.ProxyCount()
}

// MoveCount returns the number of proxies waiting for the next UpdatePairs
func (bp *BroadPhase[T]) MoveCount() int {
	n := 0
	for _, id := range bp.moveBuffer {
		if id != NullNode {
			n++
		}
	}
	return n
}

// UpdatePairs queries the tree for every buffered proxy and calls fn once for each
// distinct overlapping pair, in ascending (ProxyA, ProxyB) order. Active pairs whose
// fat boxes no longer overlap are ended. The move buffer is cleared.
func (bp *BroadPhase[T]) UpdatePairs(fn func(a, b T)) {
	// Ends are collected first so they precede this update's begins
	ended := make([]Pair, 0)
	for pair := range bp.activePairs {
		if !bp.TestOverlap(pair.ProxyA, pair.ProxyB) {
			ended = append(ended, pair)
		}
	}
	bp.endPairs(ended)

	bp.pairBuffer = bp.pairBuffer[:0]

	for _, queryProxy := range bp.moveBuffer {
		if queryProxy == NullNode {
			continue
		}

		fatAABB := bp.tree.nodes[queryProxy].aabb
		bp.tree.Query(fatAABB, func(proxyID ProxyID) bool {
			// A proxy cannot form a pair with itself.
			if proxyID != queryProxy {
				bp.pairBuffer = append(bp.pairBuffer, makePair(proxyID, queryProxy))
			}
			return true
		})
	}
	bp.moveBuffer = bp.moveBuffer[:0]

	sort.Slice(bp.pairBuffer, func(i, j int) bool {
		if bp.pairBuffer[i].ProxyA != bp.pairBuffer[j].ProxyA {
			return bp.pairBuffer[i].ProxyA < bp.pairBuffer[j].ProxyA
		}
		return bp.pairBuffer[i].ProxyB < bp.pairBuffer[j].ProxyB
	})

	for i, pair := range bp.pairBuffer {
		// Skip duplicates, the buffer is sorted
		if i > 0 && bp.pairBuffer[i-1] == pair {
			continue
		}

		if fn != nil {
			fn(bp.tree.nodes[pair.ProxyA].userData, bp.tree.nodes[pair.ProxyB].userData)
		}

		if !bp.activePairs[pair] {
			bp.activePairs[pair] = true
			bp.events = append(bp.events, PairEvent{Type: PAIR_BEGIN, Pair: pair})
		}
	}

	bp.flush()
}

// ActivePairCount returns the number of pairs that began and have not ended
func (bp *BroadPhase[T]) ActivePairCount() int {
	return len(bp.activePairs)
}

func (bp *BroadPhase[T]) bufferMove(proxyID ProxyID) {
	bp.moveBuffer = append(bp.moveBuffer, proxyID)
}

func (bp *BroadPhase[T]) unbufferMove(proxyID ProxyID) {
	for i := range bp.moveBuffer {
		if bp.moveBuffer[i] == proxyID {
			bp.moveBuffer[i] = NullNode
		}
	}
}

// endPairs removes pairs from the active set, emitting their end events in a stable order
func (bp *BroadPhase[T]) endPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].ProxyA != pairs[j].ProxyA {
			return pairs[i].ProxyA < pairs[j].ProxyA
		}
		return pairs[i].ProxyB < pairs[j].ProxyB
	})

	for _, pair := range pairs {
		delete(bp.activePairs, pair)
		bp.events = append(bp.events, PairEvent{Type: PAIR_END, Pair: pair})
	}
}

// flush delivers buffered events to listeners
func (bp *BroadPhase[T]) flush() {
	for _, event := range bp.events {
		for _, listener := range bp.listeners[event.Type] {
			listener(event)
		}
	}
	bp.events = bp.events[:0]
}
