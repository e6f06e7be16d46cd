// Package budget shares a per-frame amount of work between the agents of a
// world, one pool per task.
package budget

import (
	"fmt"
	"sync"
)

type TaskID int

const (
	TaskComputePath TaskID = iota ///< Unit: A* edges.
	TaskAvoidance                 ///< Unit: collision tests.
	taskCount
)

func (t TaskID) String() string {
	switch t {
	case TaskComputePath:
		return "ComputePath"
	case TaskAvoidance:
		return "Avoidance"
	}
	return fmt.Sprintf("Task(%d)", int(t))
}

// Params are the per-frame budgets. Zero or negative means unlimited.
type Params struct {
	ComputePathEdgesPerFrame int `yaml:"compute_path_edges_per_frame"`
	AvoidanceTestsPerFrame   int `yaml:"avoidance_tests_per_frame"`
}

func DefaultParams() Params {
	return Params{
		ComputePathEdgesPerFrame: 1024,
		AvoidanceTestsPerFrame:   256,
	}
}

// TimeManager hands out work units until the frame budget of a task is spent.
// It is safe for concurrent use by agents updated in parallel.
type TimeManager struct {
	mu        sync.Mutex
	perFrame  [taskCount]int
	remaining [taskCount]int
	spent     [taskCount]int
	frame     uint64
}

func NewTimeManager(p Params) *TimeManager {
	m := &TimeManager{}
	m.SetParams(p)
	return m
}

func (m *TimeManager) SetParams(p Params) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.perFrame[TaskComputePath] = p.ComputePathEdgesPerFrame
	m.perFrame[TaskAvoidance] = p.AvoidanceTestsPerFrame
	m.remaining = m.perFrame
}

// BeginFrame refills every task.
func (m *TimeManager) BeginFrame() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frame++
	m.remaining = m.perFrame
	m.spent = [taskCount]int{}
}

func (m *TimeManager) Frame() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frame
}

// Request grants up to want units of task and charges them. Unused units are
// handed back with Refund.
func (m *TimeManager) Request(task TaskID, want int) int {
	if m == nil {
		return want
	}
	if want <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	grant := want
	if m.perFrame[task] > 0 {
		grant = min(want, m.remaining[task])
		m.remaining[task] -= grant
	}
	m.spent[task] += grant
	return grant
}

func (m *TimeManager) Refund(task TaskID, unused int) {
	if m == nil || unused <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.perFrame[task] > 0 {
		m.remaining[task] = min(m.remaining[task]+unused, m.perFrame[task])
	}
	m.spent[task] = max(0, m.spent[task]-unused)
}

// Remaining returns -1 for unlimited tasks.
func (m *TimeManager) Remaining(task TaskID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.perFrame[task] <= 0 {
		return -1
	}
	return m.remaining[task]
}

// Spent is the amount granted and not refunded during the current frame.
func (m *TimeManager) Spent(task TaskID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.spent[task]
}
