package navgraph

type Status uint32

const (
	// High level status.
	STATUS_FAILURE     Status = 1 << 31 // Operation failed.
	STATUS_SUCCESS     Status = 1 << 30 // Operation succeed.
	STATUS_IN_PROGRESS Status = 1 << 29 // Operation still in progress.

	// Detail information for status.
	STATUS_DETAIL_MASK    Status = 0x0ffffff
	STATUS_INVALID_PARAM  Status = 1 << 3 // An input parameter was invalid.
	STATUS_OUT_OF_NODES   Status = 1 << 5 // Query ran out of nodes during search.
	STATUS_PARTIAL_RESULT Status = 1 << 6 // Query did not reach the end location, returning best guess.
	STATUS_NO_PATH        Status = 1 << 8 // The open list was exhausted before reaching the goal.
	STATUS_UNSTREAMED     Status = 1 << 9 // A vertex of the query is not streamed.
)

// Returns true of status is success.
func (status Status) Succeed() bool {
	return (status & STATUS_SUCCESS) != 0
}

// Returns true of status is failure.
func (status Status) Failed() bool {
	return (status & STATUS_FAILURE) != 0
}

// Returns true of status is in progress.
func (status Status) InProgress() bool {
	return (status & STATUS_IN_PROGRESS) != 0
}

// Returns true if specific detail is set.
func (status Status) Detail(detail Status) bool {
	return (status & detail) != 0
}
