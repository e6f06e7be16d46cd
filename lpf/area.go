// Package lpf holds the local pathfinding layer: dynamic blocking areas streamed
// in and out at runtime, and per-agent caches of the nearest area boundaries.
package lpf

import (
	"sync"

	"github.com/gorustyt/gonavbot/common"
)

type AreaID uint32

// / A dynamic blocking polygon, e.g. a crate dropped on the floor.
type Area struct {
	ID    AreaID
	Verts []common.Vec3
}

// AreaSet is the streamed collection of LPF areas. Every change bumps the
// revision so cached boundaries know they are stale.
type AreaSet struct {
	mu       sync.RWMutex
	areas    map[AreaID]*Area
	revision uint32
}

func NewAreaSet() *AreaSet {
	return &AreaSet{areas: make(map[AreaID]*Area)}
}

func (s *AreaSet) Add(a *Area) {
	common.AssertTrue(len(a.Verts) >= 3, "lpf area %d has %d verts", a.ID, len(a.Verts))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.areas[a.ID] = a
	s.revision++
}

func (s *AreaSet) Remove(id AreaID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.areas[id]; !ok {
		return false
	}
	delete(s.areas, id)
	s.revision++
	return true
}

func (s *AreaSet) Revision() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *AreaSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.areas)
}

// Contains reports whether p lies inside any area.
func (s *AreaSet) Contains(p common.Vec3) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.areas {
		if common.PointInPoly(a.Verts, p) {
			return true
		}
	}
	return false
}

// forEachSegment walks every area edge under the read lock.
func (s *AreaSet) forEachSegment(fn func(id AreaID, p, q common.Vec3)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, a := range s.areas {
		n := len(a.Verts)
		for i := 0; i < n; i++ {
			fn(id, a.Verts[i], a.Verts[common.Next(i, n)])
		}
	}
}
