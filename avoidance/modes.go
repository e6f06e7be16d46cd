package avoidance

import (
	"fmt"

	"github.com/gorustyt/gonavbot/common"
)

type RefinedMode uint8

const (
	MODE_NORMAL RefinedMode = iota
	MODE_STANDARD_AVOIDING
	MODE_STANDARD_SLOWING
	MODE_STANDARD_QUEUEING
	MODE_STANDARD_PUSHING
	MODE_CROWDING_AVOID_ON_RIGHT
	MODE_CROWDING_FOLLOWING_FLOW
	MODE_CROWDING_CROWDED
	MODE_REJOINING_ORIGINAL_PATH
	MODE_STUCK
	REFINED_MODE_COUNT
)

type GlobalMode uint8

const (
	GLOBAL_NORMAL GlobalMode = iota
	GLOBAL_STANDARD
	GLOBAL_CROWDING
	GLOBAL_REJOINING_ORIGINAL_PATH
	GLOBAL_STUCK
	GLOBAL_MODE_COUNT
)

var refinedNames = [REFINED_MODE_COUNT]string{
	"Normal",
	"Standard_Avoiding",
	"Standard_Slowing",
	"Standard_Queueing",
	"Standard_Pushing",
	"Crowding_AvoidOnRight",
	"Crowding_FollowingFlow",
	"Crowding_Crowded",
	"RejoiningOriginalPath",
	"Stuck",
}

var globalNames = [GLOBAL_MODE_COUNT]string{
	"Normal",
	"Standard",
	"Crowding",
	"RejoiningOriginalPath",
	"Stuck",
}

var globalOf = [REFINED_MODE_COUNT]GlobalMode{
	MODE_NORMAL:                  GLOBAL_NORMAL,
	MODE_STANDARD_AVOIDING:       GLOBAL_STANDARD,
	MODE_STANDARD_SLOWING:        GLOBAL_STANDARD,
	MODE_STANDARD_QUEUEING:       GLOBAL_STANDARD,
	MODE_STANDARD_PUSHING:        GLOBAL_STANDARD,
	MODE_CROWDING_AVOID_ON_RIGHT: GLOBAL_CROWDING,
	MODE_CROWDING_FOLLOWING_FLOW: GLOBAL_CROWDING,
	MODE_CROWDING_CROWDED:        GLOBAL_CROWDING,
	MODE_REJOINING_ORIGINAL_PATH: GLOBAL_REJOINING_ORIGINAL_PATH,
	MODE_STUCK:                   GLOBAL_STUCK,
}

func (m RefinedMode) String() string {
	if m < REFINED_MODE_COUNT {
		return refinedNames[m]
	}
	return fmt.Sprintf("RefinedMode(%d)", uint8(m))
}

func (m GlobalMode) String() string {
	if m < GLOBAL_MODE_COUNT {
		return globalNames[m]
	}
	return fmt.Sprintf("GlobalMode(%d)", uint8(m))
}

// GetGlobalMode maps a refined mode onto its global mode.
func GetGlobalMode(m RefinedMode) GlobalMode {
	common.AssertTrue(m < REFINED_MODE_COUNT, "unknown refined mode %d", m)
	return globalOf[m]
}

type Outcome uint8

const (
	OUTCOME_NONE           Outcome = iota ///< No validation ran this frame.
	OUTCOME_FOUND                         ///< A candidate validated.
	OUTCOME_PENDING                       ///< Test budget spent, validation resumes next frame.
	OUTCOME_BLOCKED                       ///< The best static candidate is blocked by bodies.
	OUTCOME_STATIC_BLOCKED                ///< No candidate passed the static tests.
)

func (o Outcome) String() string {
	switch o {
	case OUTCOME_NONE:
		return "None"
	case OUTCOME_FOUND:
		return "Found"
	case OUTCOME_PENDING:
		return "Pending"
	case OUTCOME_BLOCKED:
		return "Blocked"
	case OUTCOME_STATIC_BLOCKED:
		return "StaticBlocked"
	}
	return fmt.Sprintf("Outcome(%d)", uint8(o))
}

// Sensors is what the mode controller sees of a frame.
type Sensors struct {
	Risk        bool        ///< An obstruction covers the straight lane within TtiHorizon.
	Crowded     bool        ///< Crowd density reached the threshold and crowding is allowed.
	Outcome     Outcome     ///< Result of the candidate validation.
	AdoptedMode RefinedMode ///< Mode of the adopted candidate when Outcome is OUTCOME_FOUND.
	BlockedFor  float64     ///< Time since the blockage started.
}

// SelectStrategy picks the candidate generator for the next decision.
func SelectStrategy(cur RefinedMode, s Sensors) GlobalMode {
	if s.Risk {
		if s.Crowded {
			return GLOBAL_CROWDING
		}
		return GLOBAL_STANDARD
	}
	switch GetGlobalMode(cur) {
	case GLOBAL_CROWDING, GLOBAL_REJOINING_ORIGINAL_PATH, GLOBAL_STUCK:
		// The fixed directions give a stuck agent a way around what hides its target.
		return GLOBAL_REJOINING_ORIGINAL_PATH
	}
	return GLOBAL_NORMAL
}

// NextMode is the mode transition function.
func NextMode(cur RefinedMode, s Sensors, p *Params) RefinedMode {
	switch s.Outcome {
	case OUTCOME_FOUND:
		return s.AdoptedMode
	case OUTCOME_STATIC_BLOCKED:
		return MODE_STUCK
	case OUTCOME_BLOCKED:
		if cur == MODE_STUCK {
			return MODE_STUCK
		}
		switch {
		case s.BlockedFor < p.QueueingDelay:
			return MODE_STANDARD_QUEUEING
		case s.BlockedFor < p.QueueingDelay+p.PushingDelay:
			return MODE_STANDARD_PUSHING
		}
		return MODE_STUCK
	}
	// Pending or nothing ran: keep the previous decision.
	return cur
}
