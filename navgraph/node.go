package navgraph

import (
	"container/heap"
)

const (
	NODE_OPEN   = 0x01
	NODE_CLOSED = 0x02
)

const NULL_IDX int32 = -1

type Node struct {
	Ref    VertexRef ///< Vertex the node corresponds to.
	Parent int32     ///< Index of the parent node, NULL_IDX for the start.
	Cost   float32   ///< Cost up to the node.
	Total  float32   ///< Cost up to the node plus heuristic.
	Flags  uint8     ///< Node flags. A combination of NODE_OPEN and NODE_CLOSED.
}

// nodePool owns the nodes of one search. Nodes are addressed by index so the
// whole pool can be copied into a SearchState.
type nodePool struct {
	nodes    []Node
	index    map[VertexRef]int32
	maxNodes int
}

func newNodePool(maxNodes int) *nodePool {
	return &nodePool{
		nodes:    make([]Node, 0, min(maxNodes, 256)),
		index:    make(map[VertexRef]int32),
		maxNodes: maxNodes,
	}
}

func (p *nodePool) clear() {
	p.nodes = p.nodes[:0]
	clear(p.index)
}

func (p *nodePool) findNode(ref VertexRef) int32 {
	if idx, ok := p.index[ref]; ok {
		return idx
	}
	return NULL_IDX
}

// getNode returns the node of ref, allocating it when needed. NULL_IDX when
// the pool is full.
func (p *nodePool) getNode(ref VertexRef) int32 {
	if idx, ok := p.index[ref]; ok {
		return idx
	}
	if len(p.nodes) >= p.maxNodes {
		return NULL_IDX
	}
	idx := int32(len(p.nodes))
	p.nodes = append(p.nodes, Node{Ref: ref, Parent: NULL_IDX})
	p.index[ref] = idx
	return idx
}

func (p *nodePool) at(idx int32) *Node { return &p.nodes[idx] }

func (p *nodePool) load(nodes []Node) {
	p.clear()
	p.nodes = append(p.nodes, nodes...)
	for i := range p.nodes {
		p.index[p.nodes[i].Ref] = int32(i)
	}
}

// nodeQueue is the open list: a binary heap of node indices ordered by
// (Total, Ref) so that pop order never depends on insertion history.
type nodeQueue struct {
	pool *nodePool
	data []int32
	pos  map[int32]int
}

func newNodeQueue(pool *nodePool) *nodeQueue {
	return &nodeQueue{pool: pool, pos: make(map[int32]int)}
}

func (q *nodeQueue) Len() int { return len(q.data) }

func (q *nodeQueue) Less(i, j int) bool {
	a, b := q.pool.at(q.data[i]), q.pool.at(q.data[j])
	if a.Total != b.Total {
		return a.Total < b.Total
	}
	return a.Ref < b.Ref
}

func (q *nodeQueue) Swap(i, j int) {
	q.data[i], q.data[j] = q.data[j], q.data[i]
	q.pos[q.data[i]] = i
	q.pos[q.data[j]] = j
}

func (q *nodeQueue) Push(x any) {
	idx := x.(int32)
	q.pos[idx] = len(q.data)
	q.data = append(q.data, idx)
}

func (q *nodeQueue) Pop() any {
	n := len(q.data)
	idx := q.data[n-1]
	q.data = q.data[:n-1]
	delete(q.pos, idx)
	return idx
}

func (q *nodeQueue) reset() {
	q.data = q.data[:0]
	clear(q.pos)
}

func (q *nodeQueue) empty() bool { return len(q.data) == 0 }

func (q *nodeQueue) push(idx int32) { heap.Push(q, idx) }

func (q *nodeQueue) pop() int32 { return heap.Pop(q).(int32) }

// modify restores the heap order after the node's total changed.
func (q *nodeQueue) modify(idx int32) {
	if i, ok := q.pos[idx]; ok {
		heap.Fix(q, i)
	}
}

func (q *nodeQueue) rebuild() {
	q.reset()
	for i := range q.pool.nodes {
		if q.pool.nodes[i].Flags&NODE_OPEN != 0 {
			q.pos[int32(i)] = len(q.data)
			q.data = append(q.data, int32(i))
		}
	}
	heap.Init(q)
}
