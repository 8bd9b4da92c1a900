package pricing

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Kind is how a modifier changes the running price.
type Kind string

const (
	KindPercent Kind = "percent" // multiply by (1 + Value/100)
	KindFixed   Kind = "fixed"   // add Value
)

// List names for the free-form customisations carried by Options.
const (
	ListRoles     = "roles"
	ListChampions = "champions"
)

var hundred = decimal.NewFromInt(100)

// Options is the customer's toggle state plus the free-form role/champion picks.
type Options struct {
	Flags     map[string]bool `json:"flags,omitempty"`
	Roles     []string        `json:"roles,omitempty"`
	Champions []string        `json:"champions,omitempty"`
}

// Enabled reports whether the named toggle is on.
func (o Options) Enabled(name string) bool { return o.Flags[name] }

// List returns the free-form list with the given name.
func (o Options) List(name string) []string {
	switch name {
	case ListRoles:
		return o.Roles
	case ListChampions:
		return o.Champions
	}
	return nil
}

// Clone deep-copies o so edits never alias a previous configuration.
func (o Options) Clone() Options {
	out := Options{
		Roles:     slices.Clone(o.Roles),
		Champions: slices.Clone(o.Champions),
	}
	if o.Flags != nil {
		out.Flags = make(map[string]bool, len(o.Flags))
		for k, v := range o.Flags {
			out.Flags[k] = v
		}
	}
	return out
}

// Modifier is one entry of a product's option table.
//
// A flag modifier is keyed by Name and active while that flag is set. A list
// modifier (List != "") is active while the named list is non-empty; list
// modifiers are informational and normally carry a zero Value.
type Modifier struct {
	Name     string
	Label    string
	Kind     Kind
	Value    decimal.Decimal
	List     string
	Excludes []string // flags cleared when this one is enabled
	Requires []string // flags that must be on before this one can be enabled
}

// Applies is the modifier's predicate over the option set.
func (m Modifier) Applies(o Options) bool {
	if m.List != "" {
		return len(o.List(m.List)) > 0
	}
	return o.Enabled(m.Name)
}

// Free reports whether the modifier has no price effect.
func (m Modifier) Free() bool { return m.Value.IsZero() }

func (m Modifier) apply(price decimal.Decimal) decimal.Decimal {
	switch m.Kind {
	case KindFixed:
		return price.Add(m.Value)
	default:
		return price.Mul(decimal.NewFromInt(1).Add(m.Value.Div(hundred)))
	}
}
