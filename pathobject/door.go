package pathobject

import (
	"sync/atomic"

	"github.com/gorustyt/gonavbot/common"
)

// Door blocks its edges while closed.
type Door struct {
	id       ID
	open     atomic.Bool
	cost     float32
	registry *Registry
}

func NewDoor(id ID, open bool, traversalCost float32, registry *Registry) *Door {
	d := &Door{id: id, cost: traversalCost, registry: registry}
	d.open.Store(open)
	if registry != nil {
		registry.Register(d)
	}
	return d
}

func (d *Door) ID() ID { return d.id }

func (d *Door) IsOpen() bool { return d.open.Load() }

func (d *Door) Open()  { d.setOpen(true) }
func (d *Door) Close() { d.setOpen(false) }

func (d *Door) setOpen(open bool) {
	if d.open.Swap(open) == open {
		return
	}
	if d.registry != nil {
		d.registry.UpdateStatus(d.id)
	}
}

func (d *Door) CanTraverse(from, to common.Vec3) bool { return d.open.Load() }

func (d *Door) TraversalCost(from, to common.Vec3) float32 { return d.cost }
