package rank

// Window bounds a plain level range. Max == 0 means unbounded above.
type Window struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

func (w Window) normalize() Window {
	if w.Min < 1 {
		w.Min = 1
	}
	if w.Max != 0 && w.Max <= w.Min {
		w.Max = w.Min + 1
	}
	return w
}

// EnforceLevels clamps the edited level into its slot of the window
// (current in [Min, Max-1], desired in [Min+1, Max]) and then pushes the
// other endpoint to edited±1 if the pair is out of order.
func EnforceLevels(current, desired int, w Window, edited Endpoint) (int, int) {
	w = w.normalize()
	clamp := func(v, lo, hi int) int {
		if v < lo {
			return lo
		}
		if hi != 0 && v > hi {
			return hi
		}
		return v
	}
	curHi, desHi := 0, 0
	if w.Max != 0 {
		curHi, desHi = w.Max-1, w.Max
	}

	switch edited {
	case EditedCurrent:
		current = clamp(current, w.Min, curHi)
		desired = clamp(desired, w.Min+1, desHi)
		if current >= desired {
			desired = current + 1
		}
	default:
		desired = clamp(desired, w.Min+1, desHi)
		current = clamp(current, w.Min, curHi)
		if current >= desired {
			current = desired - 1
		}
	}
	return current, desired
}
