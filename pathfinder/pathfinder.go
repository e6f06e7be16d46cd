// Package pathfinder plans coarse paths over the navigation graph with a
// time-sliced A*, follows them, and hands the per-frame target point to an
// IGoto modifier such as the gap avoidance.
package pathfinder

import (
	"github.com/gorustyt/gonavbot/action"
	"github.com/gorustyt/gonavbot/avoidance"
	"github.com/gorustyt/gonavbot/budget"
	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/common/logger"
	"github.com/gorustyt/gonavbot/navgraph"
	"github.com/gorustyt/gonavbot/navmesh"
	"github.com/gorustyt/gonavbot/pathobject"
	"github.com/gorustyt/gonavbot/spatial"
)

// PathFinder is owned by one agent and is not safe for concurrent use. The
// graph and the path object registry are shared read-only.
type PathFinder struct {
	params     Params
	graph      *navgraph.Graph
	objects    *pathobject.Registry
	mods       Modifiers
	constraint Constraint
	search     *navgraph.Search

	path     Path
	nextNode int
	segStart common.Vec3 ///< Agent position when it headed for nextNode.
	segValid bool
	arrived  bool

	destination    common.Vec3
	hasDestination bool
	needCompute    bool
	searching      bool
	searchStart    common.Vec3
	searchDest     common.Vec3
	retryAt        float64
	lastError      PathFinderError
	status         PathStatus
	computations   int
	poRevision     uint64

	nextAccidentCheck  float64
	nextPOCheck        float64
	nextStreamingCheck float64
	accidentDetected   bool
	lastAccidentDate   float64

	injecting     bool
	injectInvalid bool
	injectNodes   []PathNode
	autoRecompute bool
	injectEvent   bool
}

func New(p Params, graph *navgraph.Graph, objects *pathobject.Registry, mods Modifiers) (*PathFinder, error) {
	common.AssertTrue(graph != nil, "pathfinder needs a graph")
	if err := p.Validate(); err != nil {
		logger.Error("pathfinder: rejected params: %v", err)
		return nil, err
	}
	if mods.Goto == nil {
		mods.Goto = DirectGoto{}
	}
	if mods.CanGo == nil {
		mods.CanGo = EuclideanCanGo{}
	}
	return &PathFinder{
		params:     p,
		graph:      graph,
		objects:    objects,
		mods:       mods,
		constraint: Constraint{AllowedTerrain: p.AllowedTerrain},
		search:     navgraph.NewSearch(graph, p.MaxNodes),
	}, nil
}

func (pf *PathFinder) Params() Params                { return pf.params }
func (pf *PathFinder) Goto() IGoto                   { return pf.mods.Goto }
func (pf *PathFinder) GetLastError() PathFinderError { return pf.lastError }
func (pf *PathFinder) GetPathStatus() PathStatus     { return pf.status }
func (pf *PathFinder) Path() *Path                   { return &pf.path }
func (pf *PathFinder) NextNodeIndex() int            { return pf.nextNode }
func (pf *PathFinder) IsSearching() bool             { return pf.searching }
func (pf *PathFinder) Search() *navgraph.Search      { return pf.search }
func (pf *PathFinder) Arrived() bool                 { return pf.arrived }
func (pf *PathFinder) AccidentDetected() bool        { return pf.accidentDetected }
func (pf *PathFinder) LastAccidentDate() float64     { return pf.lastAccidentDate }

// Computations counts the A* searches started so far.
func (pf *PathFinder) Computations() int { return pf.computations }

func (pf *PathFinder) Destination() (common.Vec3, bool) { return pf.destination, pf.hasDestination }

// ForcePathComputation asks for a new search. A running search is not
// interrupted, the request is served once it completes.
func (pf *PathFinder) ForcePathComputation() {
	pf.needCompute = true
	pf.retryAt = 0
}

// FindNextMove is the per-frame entry point: it plans toward dest when needed,
// follows the current path and writes the action through the IGoto modifier.
// It returns false when the agent stands still, either arrived or pathless.
func (pf *PathFinder) FindNextMove(f *avoidance.Frame, body *spatial.Body, dest common.Vec3, act *action.Action) bool {
	pf.setDestination(f.Now, dest)
	pf.checkPath(f, body)
	if pf.needCompute && !pf.searching && f.Now >= pf.retryAt {
		pf.startSearch(f, body)
	}
	if pf.searching {
		pf.updateSearch(f)
	}

	target, ok := pf.FollowPath(f, body)
	if !ok {
		stop(body, act)
		return false
	}
	if !pf.mods.Goto.Goto(f, body, target, act) {
		if tp, ok := action.GetAttribute[*action.TargetPoint](act); ok {
			act.Set(action.NewRotation(headingTo(body, tp.Point)))
		}
	}
	return true
}

func stop(body *spatial.Body, act *action.Action) {
	act.Set(action.NewTargetPoint(body.Position))
	act.Set(action.NewSpeed(0))
	act.Set(action.NewRotation(body.Orientation))
}

func (pf *PathFinder) setDestination(now float64, dest common.Vec3) {
	if pf.hasDestination && common.Vdist2D(dest, pf.destination) <= pf.params.DestinationMoveThreshold {
		return
	}
	pf.destination = dest
	pf.hasDestination = true
	pf.needCompute = true
	pf.retryAt = now
	if pf.searching {
		// The running search aims at the old destination.
		pf.search.Reset()
		pf.searching = false
	}
}

// FollowPath advances along the current path and returns the point to head
// for. ok is false without a path or once the destination is reached.
func (pf *PathFinder) FollowPath(f *avoidance.Frame, body *spatial.Body) (target common.Vec3, ok bool) {
	pf.arrived = false
	if pf.path.Empty() {
		return body.Position, false
	}
	pos := body.Position
	nodes := pf.path.Nodes
	last := len(nodes) - 1
	if common.Vdist2D(pos, nodes[last].Pos) <= pf.params.ArrivalPrecision {
		pf.nextNode = last
		pf.arrived = true
		return nodes[last].Pos, false
	}

	prev := pf.nextNode
	for pf.nextNode < last && common.Vdist2D(pos, nodes[pf.nextNode].Pos) <= pf.params.NodeReachedRadius {
		pf.nextNode++
	}
	// Cut straight to one of the next two nodes when nothing is in the way.
	for k := min(pf.nextNode+2, last); k > pf.nextNode; k-- {
		if pf.gated(pf.nextNode-1, k) {
			continue
		}
		if f.Geometry == nil || f.Geometry.IsSegmentClear(pos, nodes[k].Pos) {
			pf.nextNode = k
			break
		}
	}
	if pf.nextNode != prev || !pf.segValid {
		pf.segStart = pos
		pf.segValid = true
	}
	return nodes[pf.nextNode].Pos, true
}

// gated reports whether a path object controls an edge between nodes i and k.
func (pf *PathFinder) gated(i, k int) bool {
	for j := max(i, 0); j < k; j++ {
		if pf.path.Nodes[j].PathObject != pathobject.NONE {
			return true
		}
	}
	return false
}

func (pf *PathFinder) checkPath(f *avoidance.Frame, body *spatial.Body) {
	if pf.path.Empty() {
		return
	}
	now := f.Now
	if now >= pf.nextAccidentCheck {
		pf.nextAccidentCheck = now + pf.params.AccidentDetectionPeriod
		if pf.isAccident(f.Geometry, body.Position) {
			pf.accidentDetected = true
			pf.lastAccidentDate = now
			logger.Debug("pathfinder: body %d off its path at %.2f", body.ID, now)
			pf.invalidate(now, "accident", true)
		}
	}
	if pf.objects != nil && now >= pf.nextPOCheck {
		pf.nextPOCheck = now + pf.params.POEdgeStatusCheckPeriod
		if rev := pf.objects.Revision(); rev != pf.poRevision {
			pf.poRevision = rev
			pf.invalidate(now, "path object status", !pf.pathObjectBlocked())
		}
	}
	if now >= pf.nextStreamingCheck {
		pf.nextStreamingCheck = now + pf.params.StreamingCheckPeriod
		if cell, ok := pf.path.unstreamedCell(pf.graph); ok {
			logger.Debug("pathfinder: cell %#x of the path was unstreamed", cell)
			pf.invalidate(now, "streaming", false)
		}
	}
}

// isAccident reports whether the agent drifted too far from the followed
// segment or lost sight of the node it heads for.
func (pf *PathFinder) isAccident(geom navmesh.StaticGeometry, pos common.Vec3) bool {
	if pf.nextNode >= len(pf.path.Nodes) {
		return false
	}
	next := pf.path.Nodes[pf.nextNode].Pos
	if pf.segValid {
		if _, d := common.DistancePtSegSqr2D(pos, pf.segStart, next); d > common.Sqr(pf.params.AccidentDistance) {
			return true
		}
	}
	return geom != nil && !geom.IsSegmentClear(pos, next)
}

// pathObjectBlocked reports whether a path object of the path now forbids its edge.
func (pf *PathFinder) pathObjectBlocked() bool {
	nodes := pf.path.Nodes
	for j := 0; j+1 < len(nodes); j++ {
		id := nodes[j].PathObject
		if id == pathobject.NONE {
			continue
		}
		po := pf.objects.Get(id)
		if po == nil || !po.CanTraverse(nodes[j].Pos, nodes[j+1].Pos) {
			return true
		}
	}
	return false
}

// invalidate schedules a recomputation, or raises the injection event when
// the injected path must not be replaced silently.
func (pf *PathFinder) invalidate(now float64, reason string, keepPath bool) {
	if pf.path.Injected && !pf.autoRecompute {
		if !pf.injectEvent {
			logger.Info("pathfinder: injected path invalidated by %s", reason)
		}
		pf.injectEvent = true
		return
	}
	pf.needCompute = true
	pf.retryAt = now
	if !keepPath {
		pf.path.Clear()
		pf.nextNode = 0
		pf.segValid = false
	}
}

// findVertex returns the nearest allowed vertex directly reachable from pos.
func (pf *PathFinder) findVertex(geom navmesh.StaticGeometry, pos common.Vec3) navgraph.VertexRef {
	for _, ref := range pf.graph.NearestVertices(pos, pf.params.StartSearchRadius) {
		v := pf.graph.Vertex(ref)
		if !pf.constraint.AllowedTerrain.Allows(v.Terrain) {
			continue
		}
		if geom == nil || geom.IsSegmentClear(pos, v.Pos) {
			return ref
		}
	}
	return navgraph.NULL_VERTEX
}

func (pf *PathFinder) edgeCost(body *spatial.Body) navgraph.CostFunc {
	return func(e navgraph.Edge, from, to *navgraph.Vertex) (float32, bool) {
		cost, ok := pf.mods.CanGo.GetCost(body, from, to, &pf.constraint)
		if !ok {
			return 0, false
		}
		if e.PathObject != pathobject.NONE && pf.objects != nil {
			if po := pf.objects.Get(e.PathObject); po != nil {
				if !po.CanTraverse(from.Pos, to.Pos) {
					return 0, false
				}
				cost += po.TraversalCost(from.Pos, to.Pos)
			}
		}
		return cost, true
	}
}

func (pf *PathFinder) startSearch(f *avoidance.Frame, body *spatial.Body) {
	pf.needCompute = false
	pf.searchStart = body.Position
	pf.searchDest = pf.destination
	start := pf.findVertex(f.Geometry, body.Position)
	if start == navgraph.NULL_VERTEX {
		pf.fail(f.Now, body, PATHFINDER_ERROR_NO_NODE_START_POINT)
		return
	}
	goal := pf.findVertex(f.Geometry, pf.destination)
	if goal == navgraph.NULL_VERTEX {
		pf.fail(f.Now, body, PATHFINDER_ERROR_NO_NODE_DESTINATION)
		return
	}
	if pf.objects != nil {
		pf.poRevision = pf.objects.Revision()
	}
	pf.computations++
	pf.searching = true
	pf.status = PATH_STATUS_ONGOING
	st := pf.search.Init(start, goal, pf.edgeCost(body))
	pf.handleSearchStatus(f.Now, body, st)
}

func (pf *PathFinder) updateSearch(f *avoidance.Frame) {
	grant := f.Budget.Request(budget.TaskComputePath, pf.params.NbEdgesPerAstar)
	done, st := pf.search.Update(grant)
	f.Budget.Refund(budget.TaskComputePath, grant-done)
	pf.handleSearchStatus(f.Now, nil, st)
}

func (pf *PathFinder) handleSearchStatus(now float64, body *spatial.Body, st navgraph.Status) {
	switch {
	case st.InProgress():
		return
	case st.Succeed():
		refs, _ := pf.search.Finalize()
		buildPath(pf.graph, pf.searchStart, refs, pf.searchDest, &pf.path)
		pf.nextNode = min(1, len(pf.path.Nodes)-1)
		pf.segValid = false
		pf.searching = false
		pf.status = PATH_STATUS_SUCCEEDED
		pf.lastError = PATHFINDER_ERROR_NONE
		pf.injectEvent = false
		logger.Debug("pathfinder: path of %d nodes, cost %.2f, %d edges", len(pf.path.Nodes), pf.search.PathCost(), pf.search.EdgesProcessed())
	default:
		pf.searching = false
		err := PATHFINDER_ERROR_INTERNAL
		if st.Detail(navgraph.STATUS_NO_PATH) {
			err = PATHFINDER_ERROR_NO_PATH
		}
		pf.fail(now, body, err)
	}
}

func (pf *PathFinder) fail(now float64, body *spatial.Body, err PathFinderError) {
	pf.lastError = err
	pf.status = PATH_STATUS_FAILED
	pf.path.Clear()
	pf.nextNode = 0
	pf.segValid = false
	pf.needCompute = true
	pf.retryAt = now + pf.params.AstarNewAttemptPeriod
	if body != nil {
		logger.Warn("pathfinder: body %d failed to plan to %v: %s", body.ID, pf.destination, err)
	} else {
		logger.Warn("pathfinder: failed to plan to %v: %s", pf.destination, err)
	}
}

func (pf *PathFinder) InjectPath_Begin() {
	pf.injecting = true
	pf.injectInvalid = false
	pf.injectNodes = pf.injectNodes[:0]
}

// InjectPath_AddNode appends a node to the path being injected. vertex may be
// NULL_VERTEX for a node off the graph; consecutive graph nodes must share an edge.
func (pf *PathFinder) InjectPath_AddNode(pos common.Vec3, vertex navgraph.VertexRef) bool {
	if !pf.injecting {
		return false
	}
	n := PathNode{Pos: pos}
	if vertex != navgraph.NULL_VERTEX {
		if !pf.graph.IsValidRef(vertex) {
			pf.injectInvalid = true
			return false
		}
		n = nodeOf(pf.graph, vertex)
		n.Pos = pos
	}
	if len(pf.injectNodes) > 0 {
		prev := &pf.injectNodes[len(pf.injectNodes)-1]
		if prev.OnGraph() && n.OnGraph() {
			e, ok := pf.graph.FindEdge(prev.Vertex, n.Vertex)
			if !ok {
				pf.injectInvalid = true
				return false
			}
			prev.PathObject = e.PathObject
		}
	}
	pf.injectNodes = append(pf.injectNodes, n)
	return true
}

// InjectPath_End replaces the current path with the injected one. With
// autoRecompute an invalidating event silently replaces it by an A* path,
// otherwise InjectPath_PathEventWasRaised reports the event.
func (pf *PathFinder) InjectPath_End(autoRecompute bool) bool {
	if !pf.injecting {
		return false
	}
	pf.injecting = false
	valid := !pf.injectInvalid && len(pf.injectNodes) > 0
	for i := range pf.injectNodes {
		if n := &pf.injectNodes[i]; n.OnGraph() && !pf.graph.IsVertexStreamed(n.Vertex) {
			valid = false
		}
	}
	if !valid {
		pf.lastError = PATHFINDER_ERROR_INVALID_INJECTED_PATH
		pf.status = PATH_STATUS_FAILED
		logger.Warn("pathfinder: rejected injected path of %d nodes", len(pf.injectNodes))
		return false
	}
	if pf.searching {
		pf.search.Reset()
		pf.searching = false
	}
	pf.needCompute = false
	pf.path.Clear()
	pf.path.Nodes = append(pf.path.Nodes, pf.injectNodes...)
	pf.path.Injected = true
	pf.path.Destination = pf.injectNodes[len(pf.injectNodes)-1].Pos
	pf.destination = pf.path.Destination
	pf.hasDestination = true
	pf.nextNode = 0
	pf.segValid = false
	pf.autoRecompute = autoRecompute
	pf.injectEvent = false
	pf.status = PATH_STATUS_SUCCEEDED
	pf.lastError = PATHFINDER_ERROR_NONE
	if pf.objects != nil {
		pf.poRevision = pf.objects.Revision()
	}
	return true
}

func (pf *PathFinder) InjectPath_PathEventWasRaised() bool { return pf.injectEvent }

func (pf *PathFinder) InjectPath_ClearEvent() { pf.injectEvent = false }
