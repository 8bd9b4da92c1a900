// types.go
package game

// RawConfig is one YAML layer (default, game or product). Pointer fields
// distinguish "not set in this layer" from zero.
type RawConfig struct {
	Version   string             `yaml:"version"`
	Notes     string             `yaml:"notes,omitempty"`
	Currency  string             `yaml:"currency,omitempty"`
	Servers   []string           `yaml:"servers,omitempty"`
	Promos    map[string]float64 `yaml:"promos,omitempty"`
	Pricing   PricingConfig      `yaml:"pricing"`
	Levels    *LevelConfig       `yaml:"levels,omitempty"`
	Modifiers []ModifierConfig   `yaml:"modifiers,omitempty"`
}

type PricingConfig struct {
	Title          string             `yaml:"title,omitempty"`
	Unit           string             `yaml:"unit,omitempty"`
	UnitPrice      *float64           `yaml:"unit_price,omitempty"`
	Rates          map[string]float64 `yaml:"rates,omitempty"` // variant -> unit price
	DefaultVariant string             `yaml:"default_variant,omitempty"`
	HoursPerUnit   *float64           `yaml:"hours_per_unit,omitempty"`
	PriorityOption string             `yaml:"priority_option,omitempty"`
	PriorityFactor *float64           `yaml:"priority_factor,omitempty"`
}

type LevelConfig struct {
	Min *int `yaml:"min,omitempty"`
	Max *int `yaml:"max,omitempty"` // 0 or unset: unbounded
}

type ModifierConfig struct {
	Name     string   `yaml:"name"`
	Label    string   `yaml:"label,omitempty"`
	Kind     string   `yaml:"kind,omitempty"` // "percent" | "fixed"
	Value    float64  `yaml:"value"`
	List     string   `yaml:"list,omitempty"` // "roles" | "champions"
	Excludes []string `yaml:"excludes,omitempty"`
	Requires []string `yaml:"requires,omitempty"`
}
