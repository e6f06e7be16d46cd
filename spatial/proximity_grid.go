package spatial

import (
	"math"

	"github.com/gorustyt/gonavbot/common"
)

const nullItem = -1

type item struct {
	id   int
	x, y int
	next int
}

// ProximityGrid is a hashed uniform grid over item bounding boxes. It is rebuilt
// every frame and only ever answers broad phase queries.
type ProximityGrid struct {
	cellSize    float32
	invCellSize float32
	pool        []item
	poolHead    int

	buckets []int

	bounds [4]int32
}

func (d *ProximityGrid) GetBounds() [4]int32  { return d.bounds }
func (d *ProximityGrid) GetCellSize() float32 { return d.cellSize }

func hashPos2(x, y, n int) int {
	return ((x * 73856093) ^ (y * 19349663)) & (n - 1)
}

func NewProximityGrid(poolSize int, cellSize float32) *ProximityGrid {
	common.AssertTrue(poolSize > 0, "pool size %d", poolSize)
	common.AssertTrue(cellSize > 0, "cell size %v", cellSize)
	d := &ProximityGrid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
	}
	// Allocate hashs buckets
	d.buckets = make([]int, common.NextPow2(uint32(poolSize)))
	d.pool = make([]item, poolSize)
	d.Clear()
	return d
}

func (d *ProximityGrid) Clear() {
	for i := range d.buckets {
		d.buckets[i] = nullItem
	}
	d.poolHead = 0
	d.bounds = [4]int32{0xffff, 0xffff, -0xffff, -0xffff}
}

func (d *ProximityGrid) cell(v float32) int32 {
	return int32(math.Floor(float64(v * d.invCellSize)))
}

// AddItem registers id in every cell overlapped by the box. Items beyond the pool
// capacity are grown into the pool rather than dropped.
func (d *ProximityGrid) AddItem(id int, minx, miny, maxx, maxy float32) {
	iminx, iminy := d.cell(minx), d.cell(miny)
	imaxx, imaxy := d.cell(maxx), d.cell(maxy)

	d.bounds[0] = min(d.bounds[0], iminx)
	d.bounds[1] = min(d.bounds[1], iminy)
	d.bounds[2] = max(d.bounds[2], imaxx)
	d.bounds[3] = max(d.bounds[3], imaxy)

	for y := iminy; y <= imaxy; y++ {
		for x := iminx; x <= imaxx; x++ {
			if d.poolHead >= len(d.pool) {
				d.pool = append(d.pool, make([]item, len(d.pool))...)
			}
			h := hashPos2(int(x), int(y), len(d.buckets))
			idx := d.poolHead
			d.poolHead++
			d.pool[idx] = item{id: id, x: int(x), y: int(y), next: d.buckets[h]}
			d.buckets[h] = idx
		}
	}
}

// QueryItems appends to ids every distinct item overlapping the box.
func (d *ProximityGrid) QueryItems(minx, miny, maxx, maxy float32, ids []int) []int {
	iminx, iminy := int(d.cell(minx)), int(d.cell(miny))
	imaxx, imaxy := int(d.cell(maxx)), int(d.cell(maxy))

	start := len(ids)
	for y := iminy; y <= imaxy; y++ {
		for x := iminx; x <= imaxx; x++ {
			h := hashPos2(x, y, len(d.buckets))
			for idx := d.buckets[h]; idx != nullItem; idx = d.pool[idx].next {
				it := &d.pool[idx]
				if it.x != x || it.y != y {
					continue
				}
				// Check if the id exists already.
				found := false
				for _, existing := range ids[start:] {
					if existing == it.id {
						found = true
						break
					}
				}
				if !found {
					ids = append(ids, it.id)
				}
			}
		}
	}
	return ids
}

func (d *ProximityGrid) GetItemCountAt(x, y int) int {
	n := 0
	h := hashPos2(x, y, len(d.buckets))
	for idx := d.buckets[h]; idx != nullItem; idx = d.pool[idx].next {
		if d.pool[idx].x == x && d.pool[idx].y == y {
			n++
		}
	}
	return n
}
