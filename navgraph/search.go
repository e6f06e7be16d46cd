package navgraph

import (
	"github.com/gorustyt/gonavbot/common"
)

const H_SCALE = 0.999 // Search heuristic scale.

// CostFunc returns the cost of traversing e, false when e is impassable.
type CostFunc func(e Edge, from, to *Vertex) (float32, bool)

// EuclideanCost is the plain edge length.
func EuclideanCost(e Edge, from, to *Vertex) (float32, bool) {
	return from.Pos.Sub(to.Pos).Len(), true
}

// SearchState is the resumable state of a sliced search. It holds everything
// Update needs to continue, so a copy restores the search exactly.
type SearchState struct {
	Status         Status
	Start, Goal    VertexRef
	GoalPos        common.Vec3
	Current        int32 ///< Node being expanded, NULL_IDX between expansions.
	EdgeCursor     int32 ///< Next edge of Current to relax.
	EdgesProcessed int32 ///< Edges relaxed since Init.
	Nodes          []Node
}

// Search runs A* over a Graph in slices of a bounded number of edges.
type Search struct {
	graph *Graph
	cost  CostFunc
	pool  *nodePool
	open  *nodeQueue

	status         Status
	start, goal    VertexRef
	goalPos        common.Vec3
	current        int32
	edgeCursor     int32
	edgesProcessed int32
}

func NewSearch(graph *Graph, maxNodes int) *Search {
	common.AssertTrue(maxNodes > 0, "maxNodes %d", maxNodes)
	s := &Search{graph: graph}
	s.pool = newNodePool(maxNodes)
	s.open = newNodeQueue(s.pool)
	s.current = NULL_IDX
	return s
}

func (s *Search) Graph() *Graph { return s.graph }

func (s *Search) Status() Status { return s.status }

func (s *Search) InProgress() bool { return s.status.InProgress() }

func (s *Search) EdgesProcessed() int { return int(s.edgesProcessed) }

func (s *Search) Reset() {
	s.pool.clear()
	s.open.reset()
	s.status = 0
	s.start, s.goal = NULL_VERTEX, NULL_VERTEX
	s.current = NULL_IDX
	s.edgeCursor = 0
	s.edgesProcessed = 0
}

func (s *Search) heuristic(ref VertexRef) float32 {
	return s.graph.Vertex(ref).Pos.Sub(s.goalPos).Len() * H_SCALE
}

// Init starts a search from start to goal. A nil cost uses EuclideanCost.
func (s *Search) Init(start, goal VertexRef, cost CostFunc) Status {
	s.Reset()
	if cost == nil {
		cost = EuclideanCost
	}
	s.cost = cost
	s.start, s.goal = start, goal
	if !s.graph.IsValidRef(start) || !s.graph.IsValidRef(goal) {
		s.status = STATUS_FAILURE | STATUS_INVALID_PARAM
		return s.status
	}
	if !s.graph.IsVertexStreamed(start) || !s.graph.IsVertexStreamed(goal) {
		s.status = STATUS_FAILURE | STATUS_UNSTREAMED
		return s.status
	}
	s.goalPos = s.graph.Vertex(goal).Pos

	idx := s.pool.getNode(start)
	node := s.pool.at(idx)
	node.Cost = 0
	node.Total = s.heuristic(start)
	node.Flags = NODE_OPEN
	if start == goal {
		node.Flags = NODE_CLOSED
		s.status = STATUS_SUCCESS
		return s.status
	}
	s.open.push(idx)
	s.status = STATUS_IN_PROGRESS
	return s.status
}

// Update relaxes at most maxEdges edges and returns how many it relaxed.
func (s *Search) Update(maxEdges int) (doneEdges int, status Status) {
	if !s.status.InProgress() {
		return 0, s.status
	}
	for doneEdges < maxEdges {
		if s.current == NULL_IDX {
			if s.open.empty() {
				// Open list exhausted, the goal is unreachable.
				s.status = STATUS_FAILURE | STATUS_NO_PATH | (s.status & STATUS_OUT_OF_NODES)
				return doneEdges, s.status
			}
			idx := s.open.pop()
			best := s.pool.at(idx)
			best.Flags &^= NODE_OPEN
			best.Flags |= NODE_CLOSED
			if best.Ref == s.goal {
				s.status = STATUS_SUCCESS | (s.status & STATUS_DETAIL_MASK)
				return doneEdges, s.status
			}
			s.current = idx
			s.edgeCursor = 0
		}

		edges := s.graph.Edges(s.pool.at(s.current).Ref)
		if int(s.edgeCursor) >= len(edges) {
			s.current = NULL_IDX
			continue
		}
		e := edges[s.edgeCursor]
		s.edgeCursor++
		doneEdges++
		s.edgesProcessed++
		s.relax(s.current, e)
	}
	return doneEdges, s.status
}

func (s *Search) relax(parentIdx int32, e Edge) {
	parent := s.pool.at(parentIdx)
	// Do not go back to the parent.
	if parent.Parent != NULL_IDX && s.pool.at(parent.Parent).Ref == e.To {
		return
	}
	if !s.graph.IsVertexStreamed(e.To) {
		return
	}
	from, to := s.graph.Vertex(e.From), s.graph.Vertex(e.To)
	edgeCost, ok := s.cost(e, from, to)
	if !ok {
		return
	}
	cost := parent.Cost + edgeCost
	total := cost + s.heuristic(e.To)

	idx := s.pool.getNode(e.To)
	if idx == NULL_IDX {
		s.status |= STATUS_OUT_OF_NODES
		return
	}
	neighbour := s.pool.at(idx)

	// The node is already in open list and the new result is worse, skip.
	if neighbour.Flags&NODE_OPEN != 0 && total >= neighbour.Total {
		return
	}
	// The node is already visited and process, and the new result is worse, skip.
	if neighbour.Flags&NODE_CLOSED != 0 && total >= neighbour.Total {
		return
	}
	neighbour.Parent = parentIdx
	neighbour.Cost = cost
	neighbour.Total = total
	neighbour.Flags &^= NODE_CLOSED
	if neighbour.Flags&NODE_OPEN != 0 {
		// Already in open, update node location.
		s.open.modify(idx)
	} else {
		// Put the node in open list.
		neighbour.Flags |= NODE_OPEN
		s.open.push(idx)
	}
}

// Finalize returns the vertex path of a successful search, start first.
func (s *Search) Finalize() ([]VertexRef, Status) {
	if !s.status.Succeed() {
		return nil, s.status
	}
	idx := s.pool.findNode(s.goal)
	common.AssertTrue(idx != NULL_IDX, "goal node missing")
	var path []VertexRef
	for idx != NULL_IDX {
		n := s.pool.at(idx)
		path = append(path, n.Ref)
		idx = n.Parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, s.status
}

// PathCost is the accumulated cost at the goal of a successful search.
func (s *Search) PathCost() float32 {
	if !s.status.Succeed() {
		return 0
	}
	return s.pool.at(s.pool.findNode(s.goal)).Cost
}

// Run searches without slicing.
func (s *Search) Run(start, goal VertexRef, cost CostFunc) ([]VertexRef, Status) {
	st := s.Init(start, goal, cost)
	for st.InProgress() {
		_, st = s.Update(1 << 30)
	}
	return s.Finalize()
}

// State snapshots the search.
func (s *Search) State() SearchState {
	return SearchState{
		Status:         s.status,
		Start:          s.start,
		Goal:           s.goal,
		GoalPos:        s.goalPos,
		Current:        s.current,
		EdgeCursor:     s.edgeCursor,
		EdgesProcessed: s.edgesProcessed,
		Nodes:          append([]Node(nil), s.pool.nodes...),
	}
}

// Restore resumes from a snapshot taken on the same graph. The cost function
// is not part of the state and must be supplied again.
func (s *Search) Restore(st SearchState, cost CostFunc) {
	if cost == nil {
		cost = EuclideanCost
	}
	s.cost = cost
	s.status = st.Status
	s.start, s.goal = st.Start, st.Goal
	s.goalPos = st.GoalPos
	s.current = st.Current
	s.edgeCursor = st.EdgeCursor
	s.edgesProcessed = st.EdgesProcessed
	s.pool.load(st.Nodes)
	s.open.rebuild()
}
