package pathfinder

import "fmt"

// PathFinderError is the reason of the last planning failure. Failures are
// state: the agent stops and retries, nothing is returned as an error.
type PathFinderError uint8

const (
	PATHFINDER_ERROR_NONE PathFinderError = iota
	PATHFINDER_ERROR_NO_NODE_START_POINT
	PATHFINDER_ERROR_NO_NODE_DESTINATION
	PATHFINDER_ERROR_NO_PATH
	PATHFINDER_ERROR_INVALID_INJECTED_PATH
	PATHFINDER_ERROR_INTERNAL
)

func (e PathFinderError) String() string {
	switch e {
	case PATHFINDER_ERROR_NONE:
		return "None"
	case PATHFINDER_ERROR_NO_NODE_START_POINT:
		return "NoNode_StartPoint"
	case PATHFINDER_ERROR_NO_NODE_DESTINATION:
		return "NoNode_Destination"
	case PATHFINDER_ERROR_NO_PATH:
		return "NoPath"
	case PATHFINDER_ERROR_INVALID_INJECTED_PATH:
		return "InvalidInjectedPath"
	case PATHFINDER_ERROR_INTERNAL:
		return "InternalError"
	}
	return fmt.Sprintf("PathFinderError(%d)", uint8(e))
}

type PathStatus uint8

const (
	PATH_STATUS_NONE      PathStatus = iota ///< Nothing requested yet.
	PATH_STATUS_ONGOING                     ///< A computation is running.
	PATH_STATUS_SUCCEEDED                   ///< A path is available.
	PATH_STATUS_FAILED                      ///< The last computation failed, see GetLastError.
)

func (s PathStatus) String() string {
	switch s {
	case PATH_STATUS_NONE:
		return "None"
	case PATH_STATUS_ONGOING:
		return "Ongoing"
	case PATH_STATUS_SUCCEEDED:
		return "Succeeded"
	case PATH_STATUS_FAILED:
		return "Failed"
	}
	return fmt.Sprintf("PathStatus(%d)", uint8(s))
}
