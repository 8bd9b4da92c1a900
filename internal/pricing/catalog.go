package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/xtding233/boost-backend/internal/rank"
)

// Rule is the per-product rule table: rates, time unit and the ordered
// option table. Products supply data here, the calculator code is shared.
type Rule struct {
	Product        string
	Title          string
	Unit           string                     // e.g. "division", "level", "hour"
	Rates          map[string]decimal.Decimal // variant -> price per unit
	DefaultVariant string
	HoursPerUnit   float64
	PriorityOption string  // flag that speeds up the estimate
	PriorityFactor float64 // hours multiplier when PriorityOption is on
	Levels         rank.Window
	Currency       string
	Modifiers      []Modifier // declaration order is pricing order
	Promos         PromoTable // game-wide codes merged with the product's own
}

// Rate returns the unit price for variant, falling back to DefaultVariant.
func (r Rule) Rate(variant string) (decimal.Decimal, bool) {
	if v, ok := r.Rates[variant]; ok {
		return v, true
	}
	v, ok := r.Rates[r.DefaultVariant]
	return v, ok
}

// Modifier looks up a modifier by name.
func (r Rule) Modifier(name string) (Modifier, bool) {
	for _, m := range r.Modifiers {
		if m.Name == name {
			return m, true
		}
	}
	return Modifier{}, false
}

// Priority reports whether the priority toggle is on in o.
func (r Rule) Priority(o Options) bool {
	return r.PriorityOption != "" && o.Enabled(r.PriorityOption)
}

// Variants lists the configured rate variants in sorted order.
func (r Rule) Variants() []string {
	out := make([]string, 0, len(r.Rates))
	for k := range r.Rates {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Catalog is the full set of rule tables for one game.
type Catalog struct {
	Game     string
	Version  string
	Currency string
	Servers  []string
	Promos   PromoTable
	Rules    map[string]Rule
}

// Rule returns the rule table for product.
func (c Catalog) Rule(product string) (Rule, bool) {
	r, ok := c.Rules[product]
	return r, ok
}

// Products lists configured product ids in sorted order.
func (c Catalog) Products() []string {
	out := make([]string, 0, len(c.Rules))
	for k := range c.Rules {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
