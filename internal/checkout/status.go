package checkout

type Status string

const (
	StatusIdle       Status = "IDLE"
	StatusOpen       Status = "OPEN"
	StatusCompleting Status = "COMPLETING"
	StatusFailed     Status = "FAILED"
)

// CanTransitionTo guards the session state machine.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusIdle:
		return next == StatusOpen
	case StatusOpen:
		return next == StatusOpen || next == StatusIdle || next == StatusCompleting
	case StatusCompleting:
		return next == StatusIdle || next == StatusFailed
	case StatusFailed:
		return next == StatusOpen || next == StatusIdle || next == StatusCompleting
	}
	return false
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}
