package rank

// Endpoint names which side of a range the user just edited.
type Endpoint int

const (
	EditedCurrent Endpoint = iota
	EditedDesired
)

func (e Endpoint) String() string {
	if e == EditedDesired {
		return "desired"
	}
	return "current"
}

// Enforce keeps current strictly below desired. When the pair is out of
// order, the endpoint that was not just edited moves to the adjacent valid
// position:
//   - edited current: desired becomes the next tier up (division IV, or none for apex)
//   - edited desired: current becomes the tier below (division I, or none for apex)
//
// LP is reset on the moved endpoint. ok is false when no adjacent position
// exists (current at challenger, desired at iron IV); callers keep their
// previous pair in that case.
func Enforce(current, desired Position, edited Endpoint) (Position, Position, bool) {
	current, desired = current.Normalize(), desired.Normalize()
	if current.Less(desired) {
		return current, desired, true
	}
	switch edited {
	case EditedCurrent:
		up, ok := above(current)
		if !ok {
			return current, desired, false
		}
		return current, up, true
	default:
		down, ok := below(desired)
		if !ok {
			return current, desired, false
		}
		return down, desired, true
	}
}

// above returns the entry point of the tier above p.
func above(p Position) (Position, bool) {
	if p.Tier >= Challenger {
		return p, false
	}
	return At(p.Tier+1, DivisionIV), true
}

// below returns the top of the tier under p. Inside iron, where there is no
// lower tier, it steps one division down instead.
func below(p Position) (Position, bool) {
	if p.Tier > Iron {
		return At(p.Tier-1, DivisionI), true
	}
	if p.Division > DivisionIV {
		return At(Iron, p.Division-1), true
	}
	return p, false
}

// CanRaise reports whether current can still be edited upward. Views use it
// to disable the control at the top of the ladder.
func CanRaise(current Position) bool {
	_, ok := above(current.Normalize())
	return ok
}

// CanLower reports whether desired can still be edited downward.
func CanLower(desired Position) bool {
	_, ok := below(desired.Normalize())
	return ok
}
