package avoidance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetGlobalModeIsTotal(t *testing.T) {
	for m := MODE_NORMAL; m < REFINED_MODE_COUNT; m++ {
		g := GetGlobalMode(m)
		assert.Less(t, uint8(g), uint8(GLOBAL_MODE_COUNT), m.String())
		assert.Equal(t, g, GetGlobalMode(m), "pure")
	}
	assert.Equal(t, GLOBAL_STANDARD, GetGlobalMode(MODE_STANDARD_PUSHING))
	assert.Equal(t, GLOBAL_CROWDING, GetGlobalMode(MODE_CROWDING_FOLLOWING_FLOW))
	assert.Equal(t, GLOBAL_STUCK, GetGlobalMode(MODE_STUCK))
	assert.Equal(t, "Standard_Queueing", MODE_STANDARD_QUEUEING.String())
	assert.Panics(t, func() { GetGlobalMode(REFINED_MODE_COUNT) })
}

func TestSelectStrategy(t *testing.T) {
	assert.Equal(t, GLOBAL_NORMAL, SelectStrategy(MODE_NORMAL, Sensors{}))
	assert.Equal(t, GLOBAL_STANDARD, SelectStrategy(MODE_NORMAL, Sensors{Risk: true}))
	assert.Equal(t, GLOBAL_CROWDING, SelectStrategy(MODE_STANDARD_AVOIDING, Sensors{Risk: true, Crowded: true}))
	assert.Equal(t, GLOBAL_REJOINING_ORIGINAL_PATH, SelectStrategy(MODE_CROWDING_CROWDED, Sensors{}))
	assert.Equal(t, GLOBAL_REJOINING_ORIGINAL_PATH, SelectStrategy(MODE_REJOINING_ORIGINAL_PATH, Sensors{}))
	assert.Equal(t, GLOBAL_NORMAL, SelectStrategy(MODE_STANDARD_SLOWING, Sensors{}))
	assert.Equal(t, GLOBAL_REJOINING_ORIGINAL_PATH, SelectStrategy(MODE_STUCK, Sensors{}))
	assert.Equal(t, GLOBAL_STANDARD, SelectStrategy(MODE_STUCK, Sensors{Risk: true}))
}

func TestNextModeBlockedProgression(t *testing.T) {
	p := DefaultParams()
	blocked := func(cur RefinedMode, d float64) RefinedMode {
		return NextMode(cur, Sensors{Outcome: OUTCOME_BLOCKED, BlockedFor: d}, &p)
	}
	assert.Equal(t, MODE_STANDARD_QUEUEING, blocked(MODE_NORMAL, 0))
	assert.Equal(t, MODE_STANDARD_QUEUEING, blocked(MODE_STANDARD_QUEUEING, 0.99))
	assert.Equal(t, MODE_STANDARD_PUSHING, blocked(MODE_STANDARD_QUEUEING, 1))
	assert.Equal(t, MODE_STANDARD_PUSHING, blocked(MODE_STANDARD_PUSHING, 2.99))
	assert.Equal(t, MODE_STUCK, blocked(MODE_STANDARD_PUSHING, 3))
	assert.Equal(t, MODE_STUCK, blocked(MODE_STUCK, 0), "blocked never leaves stuck")

	assert.Equal(t, MODE_STANDARD_AVOIDING,
		NextMode(MODE_STUCK, Sensors{Outcome: OUTCOME_FOUND, AdoptedMode: MODE_STANDARD_AVOIDING}, &p))
	assert.Equal(t, MODE_STUCK, NextMode(MODE_NORMAL, Sensors{Outcome: OUTCOME_STATIC_BLOCKED}, &p))
	assert.Equal(t, MODE_STANDARD_SLOWING, NextMode(MODE_STANDARD_SLOWING, Sensors{Outcome: OUTCOME_PENDING}, &p))
	assert.Equal(t, MODE_CROWDING_CROWDED, NextMode(MODE_CROWDING_CROWDED, Sensors{}, &p))
}

func TestParamsValidate(t *testing.T) {
	p := DefaultParams()
	require.NoError(t, p.Validate(1))

	p.DiagramHalfWidth = 0.5
	err := p.Validate(1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidParam))

	p = DefaultParams()
	p.Courtesy = 1.5
	assert.ErrorIs(t, p.Validate(1), ErrInvalidParam)

	p = DefaultParams()
	p.MaxCollisionTestsPerFrame = 0
	assert.ErrorIs(t, p.Validate(1), ErrInvalidParam)

	_, err = NewGapDynamicAvoidance(p, 1)
	assert.ErrorIs(t, err, ErrInvalidParam)
}
