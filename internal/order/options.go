package order

import (
	"slices"

	"github.com/xtding233/boost-backend/internal/pricing"
)

// setOption flips one flag and restores the exclusion rules:
//   - enabling clears the flags it excludes and the flags that exclude it
//   - any flag whose requirements are no longer met is cleared
func setOption(c *Config, rule pricing.Rule, name string, on bool) {
	m, ok := rule.Modifier(name)
	if !ok || m.List != "" {
		return
	}
	flags := c.Options.Flags
	if on {
		for _, req := range m.Requires {
			if !flags[req] {
				return
			}
		}
		flags[name] = true
		for _, ex := range m.Excludes {
			delete(flags, ex)
		}
		for _, other := range rule.Modifiers {
			if slices.Contains(other.Excludes, name) {
				delete(flags, other.Name)
			}
		}
	} else {
		delete(flags, name)
	}
	pruneRequirements(flags, rule)
	syncBoostType(c)
}

// pruneRequirements clears flags until every remaining flag has its
// requirements met. Chains of requirements settle within len(Modifiers) passes.
func pruneRequirements(flags map[string]bool, rule pricing.Rule) {
	for range rule.Modifiers {
		changed := false
		for _, m := range rule.Modifiers {
			if !flags[m.Name] {
				continue
			}
			for _, req := range m.Requires {
				if !flags[req] {
					delete(flags, m.Name)
					changed = true
					break
				}
			}
		}
		if !changed {
			return
		}
	}
}

func syncBoostType(c *Config) {
	d, ok := c.Details.(RankBoost)
	if !ok {
		return
	}
	d.BoostType = Solo
	if c.Options.Flags[OptionDuoBoost] {
		d.BoostType = Duo
	}
	c.Details = d
}
