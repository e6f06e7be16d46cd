package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/navgraph"
	"github.com/gorustyt/gonavbot/pathobject"
)

func parsePoint(s string) (common.Vec3, error) {
	var x, y float32
	if _, err := fmt.Sscanf(s, "%g,%g", &x, &y); err != nil {
		return common.Vec3{}, fmt.Errorf("point %q: %w", s, err)
	}
	return common.Vec3{x, y, 0}, nil
}

// objectCost prices edges by length plus the traversal cost of their path
// object, refusing edges whose object is closed.
func objectCost(objects *pathobject.Registry) navgraph.CostFunc {
	return func(e navgraph.Edge, from, to *navgraph.Vertex) (float32, bool) {
		c, _ := navgraph.EuclideanCost(e, from, to)
		if e.PathObject == pathobject.NONE {
			return c, true
		}
		po := objects.Get(e.PathObject)
		if po == nil {
			return c, true
		}
		if !po.CanTraverse(from.Pos, to.Pos) {
			return 0, false
		}
		return c + po.TraversalCost(from.Pos, to.Pos), true
	}
}

type pathResult struct {
	Sliced, Reference         []navgraph.VertexRef
	SlicedCost, ReferenceCost float64
	Slices                    int
}

// comparePaths runs the sliced search edgesPerSlice edges at a time and the
// gonum reference between the vertices nearest to from and to.
func comparePaths(s *sim, from, to common.Vec3, edgesPerSlice int) (pathResult, error) {
	var res pathResult
	start := s.graph.NearestVertices(from, 2*s.cfg.Scenario.GridSpacing)
	goal := s.graph.NearestVertices(to, 2*s.cfg.Scenario.GridSpacing)
	if len(start) == 0 || len(goal) == 0 {
		return res, fmt.Errorf("no graph vertex near %v or %v", from, to)
	}
	cost := objectCost(s.world.Objects())
	edgesPerSlice = max(edgesPerSlice, 1)

	search := navgraph.NewSearch(s.graph, s.cfg.PathFinder.MaxNodes)
	status := search.Init(start[0], goal[0], cost)
	for status.InProgress() {
		_, status = search.Update(edgesPerSlice)
		res.Slices++
	}
	if status.Succeed() {
		res.Sliced, status = search.Finalize()
		res.SlicedCost = float64(search.PathCost())
	}
	if status.Failed() {
		return res, fmt.Errorf("sliced search failed: status %#x", uint32(status))
	}
	var ok bool
	res.Reference, res.ReferenceCost, ok = navgraph.FindPath(s.graph, start[0], goal[0], cost)
	if !ok {
		return res, fmt.Errorf("reference search found no path")
	}
	return res, nil
}

func PathCmd() *cobra.Command {
	var (
		configFile string
		scenario   string
		from, to   string
		slice      int
	)
	c := &cobra.Command{
		Use:   "path",
		Short: "compare the sliced path search with the reference search",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile, scenario)
			if err != nil {
				return err
			}
			p, err := parsePoint(from)
			if err != nil {
				return err
			}
			q, err := parsePoint(to)
			if err != nil {
				return err
			}
			s, err := newSim(cfg, 1)
			if err != nil {
				return err
			}
			begin := time.Now()
			res, err := comparePaths(s, p, q, slice)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sliced:    %d nodes, cost %.3f, %d slices\n", len(res.Sliced), res.SlicedCost, res.Slices)
			fmt.Fprintf(out, "reference: %d nodes, cost %.3f\n", len(res.Reference), res.ReferenceCost)
			fmt.Fprintf(out, "took %v\n", time.Since(begin))
			return nil
		},
	}
	c.Flags().StringVar(&configFile, "config", "navsim.yaml", "config file")
	c.Flags().StringVar(&scenario, "scenario", "", "builtin scenario overriding the configured one")
	c.Flags().StringVar(&from, "from", "0,0", "start point x,y")
	c.Flags().StringVar(&to, "to", "0,0", "goal point x,y")
	c.Flags().IntVar(&slice, "slice", 64, "edges relaxed per slice")
	return c
}
