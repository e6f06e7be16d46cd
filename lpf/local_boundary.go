package lpf

import (
	"math"

	"github.com/gorustyt/gonavbot/common"
)

const MAX_LOCAL_SEGS = 16

type segment struct {
	p, q common.Vec3 ///< Segment start/end
	d    float32     ///< Distance for pruning.
	area AreaID
}

// LocalBoundary caches the LPF area edges closest to an agent, nearest first.
type LocalBoundary struct {
	center   common.Vec3
	segs     [MAX_LOCAL_SEGS]segment
	nsegs    int
	revision uint32
	valid    bool
}

func NewLocalBoundary() *LocalBoundary {
	b := &LocalBoundary{}
	b.Reset()
	return b
}

func (b *LocalBoundary) GetCenter() common.Vec3 { return b.center }
func (b *LocalBoundary) GetSegmentCount() int   { return b.nsegs }
func (b *LocalBoundary) GetSegment(i int) (p, q common.Vec3) {
	return b.segs[i].p, b.segs[i].q
}

func (b *LocalBoundary) Reset() {
	b.center = common.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	b.nsegs = 0
	b.valid = false
}

func (b *LocalBoundary) addSegment(dist float32, p, q common.Vec3, area AreaID) {
	// Insert neighbour based on the distance.
	var i int
	if b.nsegs == 0 {
		// First, trivial accept.
		i = 0
	} else if dist >= b.segs[b.nsegs-1].d {
		// Further than the last segment, skip.
		if b.nsegs >= MAX_LOCAL_SEGS {
			return
		}
		// Last, trivial accept.
		i = b.nsegs
	} else {
		// Insert inbetween.
		for i = 0; i < b.nsegs; i++ {
			if dist <= b.segs[i].d {
				break
			}
		}
		tgt := i + 1
		n := min(b.nsegs-i, MAX_LOCAL_SEGS-tgt)
		common.AssertTrue(tgt+n <= MAX_LOCAL_SEGS)
		if n > 0 {
			copy(b.segs[tgt:tgt+n], b.segs[i:i+n])
		}
	}
	b.segs[i] = segment{p: p, q: q, d: dist, area: area}
	if b.nsegs < MAX_LOCAL_SEGS {
		b.nsegs++
	}
}

// Update collects the area edges within queryRange of pos.
func (b *LocalBoundary) Update(pos common.Vec3, queryRange float32, areas *AreaSet) {
	b.nsegs = 0
	b.center = pos
	b.valid = true
	if areas == nil {
		return
	}
	b.revision = areas.Revision()
	rangeSqr := common.Sqr(queryRange)
	areas.forEachSegment(func(id AreaID, p, q common.Vec3) {
		// Skip too distant segments.
		_, distSqr := common.DistancePtSegSqr2D(pos, p, q)
		if distSqr > rangeSqr {
			return
		}
		b.addSegment(distSqr, p, q, id)
	})
}

// IsValid reports whether the cache still describes the area set around pos.
func (b *LocalBoundary) IsValid(pos common.Vec3, queryRange float32, areas *AreaSet) bool {
	if !b.valid {
		return false
	}
	if areas != nil && areas.Revision() != b.revision {
		return false
	}
	// Refresh once the agent moved a quarter of the query range.
	return common.Vdist2DSqr(pos, b.center) <= common.Sqr(queryRange*0.25)
}

// IsSegmentClear tests from-to against the cached boundary segments.
func (b *LocalBoundary) IsSegmentClear(from, to common.Vec3) bool {
	for i := 0; i < b.nsegs; i++ {
		if _, _, hit := common.IntersectSegSeg2D(from, to, b.segs[i].p, b.segs[i].q); hit {
			return false
		}
	}
	return true
}
