package rank

import (
	"errors"
	"fmt"
	"strings"
)

// Tier is a ranked ladder tier, ordered from lowest to highest.
type Tier int

const (
	Iron Tier = iota
	Bronze
	Silver
	Gold
	Platinum
	Diamond
	Master
	Grandmaster
	Challenger
)

var tierNames = []string{"iron", "bronze", "silver", "gold", "platinum", "diamond", "master", "grandmaster", "challenger"}

// Division inside a tier. The zero value is DivisionNone, used by apex tiers.
type Division int

const (
	DivisionNone Division = iota
	DivisionIV
	DivisionIII
	DivisionII
	DivisionI
)

var divisionNames = []string{"", "IV", "III", "II", "I"}

var (
	ErrUnknownTier     = errors.New("unknown tier")
	ErrUnknownDivision = errors.New("unknown division")
)

func (t Tier) String() string {
	if t < Iron || t > Challenger {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool { return t >= Iron && t <= Challenger }

// Apex reports whether the tier has no divisions (master and above).
func (t Tier) Apex() bool { return t >= Master }

func (d Division) String() string {
	if d < DivisionNone || d > DivisionI {
		return fmt.Sprintf("division(%d)", int(d))
	}
	return divisionNames[d]
}

// index maps IV..I to 0..3; none maps to 0.
func (d Division) index() int {
	if d <= DivisionNone {
		return 0
	}
	return int(d) - 1
}

// ParseTier reads a tier name, case-insensitive.
func ParseTier(s string) (Tier, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range tierNames {
		if n == s {
			return Tier(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// ParseDivision reads a roman numeral division (IV, III, II, I), case-insensitive.
// An empty string is DivisionNone.
func ParseDivision(s string) (Division, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, n := range divisionNames {
		if n == s {
			return Division(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDivision, s)
}

// Position is a point on the ranked ladder. LP is informational only.
type Position struct {
	Tier     Tier
	Division Division
	LP       int
}

// At builds a normalized position for tier t and division d.
func At(t Tier, d Division) Position {
	return Position{Tier: t, Division: d}.Normalize()
}

// Normalize fixes the division to match the tier: apex tiers carry no
// division, divided tiers default to IV.
func (p Position) Normalize() Position {
	if p.Tier.Apex() {
		p.Division = DivisionNone
	} else if p.Division == DivisionNone {
		p.Division = DivisionIV
	}
	if p.LP < 0 {
		p.LP = 0
	}
	return p
}

// Ordinal encodes the position as tier*4 + division index. LP is ignored.
func (p Position) Ordinal() int {
	p = p.Normalize()
	return int(p.Tier)*4 + p.Division.index()
}

// Less reports whether p is strictly below q on the ladder.
func (p Position) Less(q Position) bool { return p.Ordinal() < q.Ordinal() }

// Delta returns the number of division steps from p up to q (may be negative).
func Delta(from, to Position) int { return to.Ordinal() - from.Ordinal() }

// String prints "silver-i" for divided tiers and "master" for apex tiers.
func (p Position) String() string {
	p = p.Normalize()
	if p.Tier.Apex() {
		return p.Tier.String()
	}
	return p.Tier.String() + "-" + strings.ToLower(p.Division.String())
}

// Parse reads "gold-iv", "gold iv", "Gold IV" or "master".
func Parse(s string) (Position, error) {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == ' ' || r == '_' })
	if len(fields) == 0 || len(fields) > 2 {
		return Position{}, fmt.Errorf("%w: %q", ErrUnknownTier, s)
	}
	t, err := ParseTier(fields[0])
	if err != nil {
		return Position{}, err
	}
	d := DivisionNone
	if len(fields) == 2 {
		if d, err = ParseDivision(fields[1]); err != nil {
			return Position{}, err
		}
	}
	return At(t, d), nil
}

func (p Position) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Position) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
