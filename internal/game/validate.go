package game

import (
	"fmt"
	"strings"
)

// ValidateRaw checks semantic constraints of a merged product RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	if cfg.Currency == "" {
		errs = append(errs, "currency is required")
	}

	// promos
	for code, pct := range cfg.Promos {
		if strings.TrimSpace(code) == "" {
			errs = append(errs, "promos: empty code")
		}
		if pct < 0 || pct > 100 {
			errs = append(errs, fmt.Sprintf("promos.%s must be in [0,100]", code))
		}
	}

	// pricing
	p := cfg.Pricing
	if p.UnitPrice == nil && len(p.Rates) == 0 {
		errs = append(errs, "pricing.unit_price or pricing.rates is required")
	}
	if p.UnitPrice != nil && *p.UnitPrice < 0 {
		errs = append(errs, "pricing.unit_price must be >= 0")
	}
	for k, v := range p.Rates {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("pricing.rates.%s must be >= 0", k))
		}
	}
	if len(p.Rates) > 0 && p.UnitPrice == nil {
		if _, ok := p.Rates[p.DefaultVariant]; !ok {
			errs = append(errs, "pricing.default_variant must name one of pricing.rates")
		}
	}
	if p.HoursPerUnit == nil {
		errs = append(errs, "pricing.hours_per_unit is required")
	} else if *p.HoursPerUnit <= 0 {
		errs = append(errs, "pricing.hours_per_unit must be > 0")
	}
	if p.PriorityFactor != nil && (*p.PriorityFactor <= 0 || *p.PriorityFactor > 1) {
		errs = append(errs, "pricing.priority_factor must be in (0,1]")
	}

	// levels
	if cfg.Levels != nil {
		minLevel := 1
		if cfg.Levels.Min != nil {
			minLevel = *cfg.Levels.Min
			if minLevel < 1 {
				errs = append(errs, "levels.min must be >= 1")
			}
		}
		if cfg.Levels.Max != nil && *cfg.Levels.Max != 0 && *cfg.Levels.Max <= minLevel {
			errs = append(errs, "levels.max must be 0 (unbounded) or > levels.min")
		}
	}

	// modifiers
	names := make(map[string]bool, len(cfg.Modifiers))
	for i, m := range cfg.Modifiers {
		if m.Name == "" {
			errs = append(errs, fmt.Sprintf("modifiers[%d].name is required", i))
			continue
		}
		if names[m.Name] {
			errs = append(errs, fmt.Sprintf("modifiers[%d]: duplicate name %q", i, m.Name))
		}
		names[m.Name] = true
		switch m.Kind {
		case "", "percent":
			if m.Value <= -100 {
				errs = append(errs, fmt.Sprintf("modifiers[%d].value must be > -100 for kind=percent", i))
			}
		case "fixed":
		default:
			errs = append(errs, fmt.Sprintf("modifiers[%d].kind must be one of: percent, fixed", i))
		}
		switch m.List {
		case "", "roles", "champions":
		default:
			errs = append(errs, fmt.Sprintf("modifiers[%d].list must be one of: roles, champions", i))
		}
	}
	if p.PriorityOption != "" && !names[p.PriorityOption] {
		errs = append(errs, fmt.Sprintf("pricing.priority_option %q is not a declared modifier", p.PriorityOption))
	}
	for i, m := range cfg.Modifiers {
		for _, ref := range append(append([]string(nil), m.Excludes...), m.Requires...) {
			if !names[ref] {
				errs = append(errs, fmt.Sprintf("modifiers[%d]: unknown modifier %q in excludes/requires", i, ref))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
