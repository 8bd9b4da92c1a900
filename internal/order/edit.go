package order

import (
	"slices"
	"strconv"
	"strings"

	"github.com/xtding233/boost-backend/internal/pricing"
	"github.com/xtding233/boost-backend/internal/rank"
)

// Rules is what edits consult: the product's rule table and the servers the
// game offers (empty means any server is accepted).
type Rules struct {
	Rule    pricing.Rule
	Servers []string
}

// Edit is one partial update. Edits that do not apply to the product are
// ignored, as are edits whose input cannot be used.
type Edit func(c *Config, r Rules)

// Apply returns a copy of c with edits applied in order.
func Apply(c Config, r Rules, edits ...Edit) Config {
	out := c.Clone()
	if out.Options.Flags == nil {
		out.Options.Flags = map[string]bool{}
	}
	for _, e := range edits {
		if e != nil {
			e(&out, r)
		}
	}
	return out
}

// SetCurrentRank edits the start of a rank boost (desired moves up when
// needed), or the informational rank on a mastery order.
func SetCurrentRank(p rank.Position) Edit {
	return func(c *Config, _ Rules) {
		switch d := c.Details.(type) {
		case RankBoost:
			if cur, des, ok := rank.Enforce(p, d.Desired, rank.EditedCurrent); ok {
				d.Current, d.Desired = cur, des
				c.Details = d
			}
		case Mastery:
			d.Rank = p.Normalize()
			c.Details = d
		}
	}
}

// SetDesiredRank edits the target of a rank boost; current moves down when needed.
func SetDesiredRank(p rank.Position) Edit {
	return func(c *Config, _ Rules) {
		d, ok := c.Details.(RankBoost)
		if !ok {
			return
		}
		if cur, des, ok := rank.Enforce(d.Current, p, rank.EditedDesired); ok {
			d.Current, d.Desired = cur, des
			c.Details = d
		}
	}
}

// SetBoostType switches a rank boost between solo and duo. Duo clears the
// solo-only options, solo clears the duo extras.
func SetBoostType(bt BoostType) Edit {
	return func(c *Config, r Rules) {
		if _, ok := c.Details.(RankBoost); !ok {
			return
		}
		switch bt {
		case Solo, Duo:
			setOption(c, r.Rule, OptionDuoBoost, bt == Duo)
		}
	}
}

// SetCount sets placement matches or arena wins/games; minimum one.
func SetCount(n int) Edit {
	return func(c *Config, _ Rules) {
		count := max(n, 1)
		switch d := c.Details.(type) {
		case Placement:
			d.Matches = count
			c.Details = d
		case NetWins:
			d.Count = count
			c.Details = d
		}
	}
}

// SetCountText is SetCount for raw input; text that is not a number is ignored.
func SetCountText(s string) Edit {
	return func(c *Config, r Rules) {
		if n, ok := parseInt(s); ok {
			SetCount(n)(c, r)
		}
	}
}

// SetMode picks the arena pricing mode; it must be one of the rule's rates.
func SetMode(mode string) Edit {
	return func(c *Config, r Rules) {
		d, ok := c.Details.(NetWins)
		if !ok {
			return
		}
		if _, ok := r.Rule.Rates[mode]; ok {
			d.Mode = mode
			c.Details = d
		}
	}
}

func SetCurrentLevel(n int) Edit { return setLevel(n, rank.EditedCurrent) }

func SetDesiredLevel(n int) Edit { return setLevel(n, rank.EditedDesired) }

// SetLevelText edits one level endpoint from raw input; non-numeric text is ignored.
func SetLevelText(edited rank.Endpoint, s string) Edit {
	return func(c *Config, r Rules) {
		if n, ok := parseInt(s); ok {
			setLevel(n, edited)(c, r)
		}
	}
}

func setLevel(n int, edited rank.Endpoint) Edit {
	return func(c *Config, r Rules) {
		pick := func(cur, des int) (int, int) {
			if edited == rank.EditedCurrent {
				cur = n
			} else {
				des = n
			}
			return rank.EnforceLevels(cur, des, r.Rule.Levels, edited)
		}
		switch d := c.Details.(type) {
		case Leveling:
			d.Current, d.Desired = pick(d.Current, d.Desired)
			c.Details = d
		case Mastery:
			d.Current, d.Desired = pick(d.Current, d.Desired)
			c.Details = d
		}
	}
}

func SetChampion(name string) Edit {
	return func(c *Config, _ Rules) {
		if d, ok := c.Details.(Mastery); ok {
			d.Champion = strings.TrimSpace(name)
			c.Details = d
		}
	}
}

func SetFlash(f Flash) Edit {
	return func(c *Config, _ Rules) {
		if f != FlashF && f != FlashD {
			return
		}
		switch d := c.Details.(type) {
		case Leveling:
			d.Flash = f
			c.Details = d
		case Mastery:
			d.Flash = f
			c.Details = d
		}
	}
}

// SetCoachTier picks the coach tier; it must be one of the rule's rates.
func SetCoachTier(tier string) Edit {
	return func(c *Config, r Rules) {
		d, ok := c.Details.(Coaching)
		if !ok {
			return
		}
		if _, ok := r.Rule.Rates[tier]; ok {
			d.CoachTier = tier
			c.Details = d
		}
	}
}

// SetHours sets coaching hours; minimum one.
func SetHours(n int) Edit {
	return func(c *Config, _ Rules) {
		if d, ok := c.Details.(Coaching); ok {
			d.Hours = max(n, 1)
			c.Details = d
		}
	}
}

// SetHoursText is SetHours for raw input; text that is not a number is ignored.
func SetHoursText(s string) Edit {
	return func(c *Config, r Rules) {
		if n, ok := parseInt(s); ok {
			SetHours(n)(c, r)
		}
	}
}

func SetServer(server string) Edit {
	return func(c *Config, r Rules) {
		s := strings.ToUpper(strings.TrimSpace(server))
		if s == "" {
			return
		}
		if len(r.Servers) > 0 && !slices.Contains(r.Servers, s) {
			return
		}
		c.Server = s
	}
}

// SetPromoCode stores the code as typed; the discount is resolved at pricing time.
func SetPromoCode(code string) Edit {
	return func(c *Config, _ Rules) {
		c.PromoCode = strings.TrimSpace(code)
	}
}

// SetOption toggles a named option. Options the product does not offer are
// ignored, as is enabling an option whose prerequisites are off.
func SetOption(name string, on bool) Edit {
	return func(c *Config, r Rules) {
		setOption(c, r.Rule, name, on)
	}
}

func SetRoles(roles ...string) Edit {
	return func(c *Config, r Rules) {
		if hasList(r.Rule, pricing.ListRoles) {
			c.Options.Roles = cleanList(roles)
		}
	}
}

func SetChampions(champions ...string) Edit {
	return func(c *Config, r Rules) {
		if hasList(r.Rule, pricing.ListChampions) {
			c.Options.Champions = cleanList(champions)
		}
	}
}

func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

func hasList(rule pricing.Rule, list string) bool {
	for _, m := range rule.Modifiers {
		if m.List == list {
			return true
		}
	}
	return false
}

// cleanList trims values and drops blanks and duplicates, keeping first-seen order.
func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
