// Package pathobject describes graph edges whose traversal is controlled by a
// stateful object such as a door, a ladder or a jump point.
package pathobject

import (
	"sync"

	"github.com/gorustyt/gonavbot/common"
)

type ID uint32

const NONE ID = 0

// PathObject overrides the traversal of the edges it manages.
type PathObject interface {
	ID() ID
	// CanTraverse reports whether the edge from-to may be used in the current status.
	CanTraverse(from, to common.Vec3) bool
	// TraversalCost is added to the edge length when the edge is usable.
	TraversalCost(from, to common.Vec3) float32
}

// Registry holds the path objects of a world. A path object changing its
// status must call UpdateStatus so path finders notice it.
type Registry struct {
	mu       sync.RWMutex
	objects  map[ID]PathObject
	status   map[ID]uint64
	revision uint64
}

func NewRegistry() *Registry {
	return &Registry{
		objects: make(map[ID]PathObject),
		status:  make(map[ID]uint64),
	}
}

func (r *Registry) Register(po PathObject) {
	common.AssertTrue(po.ID() != NONE, "path object id 0 is reserved")
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[po.ID()] = po
	r.revision++
	r.status[po.ID()] = r.revision
}

func (r *Registry) Unregister(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, id)
	delete(r.status, id)
	r.revision++
}

func (r *Registry) Get(id ID) PathObject {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.objects[id]
}

// UpdateStatus publishes a status change of the path object.
func (r *Registry) UpdateStatus(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.objects[id]; !ok {
		return
	}
	r.revision++
	r.status[id] = r.revision
}

// Revision changes whenever any path object changed status.
func (r *Registry) Revision() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.revision
}

// StatusRevision is the revision at which id last changed status.
func (r *Registry) StatusRevision(id ID) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status[id]
}
