package budget

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeManagerGrants(t *testing.T) {
	m := NewTimeManager(Params{ComputePathEdgesPerFrame: 100, AvoidanceTestsPerFrame: 0})

	assert.Equal(t, 64, m.Request(TaskComputePath, 64))
	assert.Equal(t, 36, m.Request(TaskComputePath, 64))
	assert.Equal(t, 0, m.Request(TaskComputePath, 64))
	assert.Equal(t, 0, m.Remaining(TaskComputePath))

	m.Refund(TaskComputePath, 10)
	assert.Equal(t, 10, m.Remaining(TaskComputePath))
	assert.Equal(t, 90, m.Spent(TaskComputePath))

	// Unlimited.
	assert.Equal(t, 1000, m.Request(TaskAvoidance, 1000))
	assert.Equal(t, -1, m.Remaining(TaskAvoidance))

	m.BeginFrame()
	assert.Equal(t, uint64(1), m.Frame())
	assert.Equal(t, 100, m.Remaining(TaskComputePath))
	assert.Equal(t, 0, m.Spent(TaskComputePath))
}

func TestTimeManagerNilIsUnlimited(t *testing.T) {
	var m *TimeManager
	assert.Equal(t, 5, m.Request(TaskAvoidance, 5))
	m.Refund(TaskAvoidance, 5)
}

func TestTimeManagerConcurrent(t *testing.T) {
	m := NewTimeManager(Params{ComputePathEdgesPerFrame: 1000})
	var wg sync.WaitGroup
	var mu sync.Mutex
	total := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				got := m.Request(TaskComputePath, 7)
				mu.Lock()
				total += got
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, total)
	assert.Equal(t, "ComputePath", TaskComputePath.String())
}
