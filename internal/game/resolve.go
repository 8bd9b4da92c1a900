// resolve.go
package game

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/xtding233/boost-backend/internal/pricing"
	"github.com/xtding233/boost-backend/internal/rank"
)

// Resolver turns the layered YAML for a game into priced rule tables.
type Resolver interface {
	Resolve(game string) (pricing.Catalog, error)
}

// CatalogResolver resolves catalogs through a Loader.
type CatalogResolver struct {
	loader *Loader
	log    logrus.FieldLogger
}

func NewResolver(loader *Loader, log logrus.FieldLogger) *CatalogResolver {
	return &CatalogResolver{loader: loader, log: log}
}

// Resolve loads and validates every product of game.
func (r *CatalogResolver) Resolve(game string) (pricing.Catalog, error) {
	gameCfg, err := r.loader.LoadGame(game)
	if err != nil {
		return pricing.Catalog{}, err
	}
	products, err := r.loader.Products(game)
	if err != nil {
		return pricing.Catalog{}, err
	}
	if len(products) == 0 {
		return pricing.Catalog{}, fmt.Errorf("game %s: no products configured", game)
	}

	cat := pricing.Catalog{
		Game:     game,
		Version:  gameCfg.Version,
		Currency: gameCfg.Currency,
		Servers:  append([]string(nil), gameCfg.Servers...),
		Promos:   pricing.NewPromoTable(gameCfg.Promos),
		Rules:    make(map[string]pricing.Rule, len(products)),
	}
	for _, product := range products {
		cfg, err := r.loader.LoadMerged(game, product)
		if err != nil {
			return pricing.Catalog{}, err
		}
		if err := ValidateRaw(cfg); err != nil {
			return pricing.Catalog{}, fmt.Errorf("%s/%s: %w", game, product, err)
		}
		cat.Rules[product] = ToRule(product, cfg)
	}

	r.log.WithFields(logrus.Fields{
		"game":     game,
		"version":  cat.Version,
		"products": len(cat.Rules),
		"promos":   len(cat.Promos),
	}).Info("catalog resolved")
	return cat, nil
}

// ToRule normalizes a validated RawConfig into a pricing rule.
func ToRule(product string, cfg RawConfig) pricing.Rule {
	p := cfg.Pricing
	rule := pricing.Rule{
		Product:        product,
		Title:          p.Title,
		Unit:           p.Unit,
		Rates:          make(map[string]decimal.Decimal, len(p.Rates)+1),
		DefaultVariant: p.DefaultVariant,
		PriorityOption: p.PriorityOption,
		PriorityFactor: pricing.DefaultPriorityFactor,
		Levels:         rank.Window{Min: 1},
		Currency:       cfg.Currency,
		Promos:         pricing.NewPromoTable(cfg.Promos),
	}
	if rule.Title == "" {
		rule.Title = product
	}
	for k, v := range p.Rates {
		rule.Rates[k] = decimal.NewFromFloat(v)
	}
	if p.UnitPrice != nil {
		rule.Rates[""] = decimal.NewFromFloat(*p.UnitPrice)
		if len(p.Rates) == 0 {
			rule.DefaultVariant = ""
		}
	}
	if p.HoursPerUnit != nil {
		rule.HoursPerUnit = *p.HoursPerUnit
	}
	if p.PriorityFactor != nil {
		rule.PriorityFactor = *p.PriorityFactor
	}
	if cfg.Levels != nil {
		if cfg.Levels.Min != nil {
			rule.Levels.Min = *cfg.Levels.Min
		}
		if cfg.Levels.Max != nil {
			rule.Levels.Max = *cfg.Levels.Max
		}
	}
	for _, m := range cfg.Modifiers {
		kind := pricing.KindPercent
		if m.Kind == string(pricing.KindFixed) {
			kind = pricing.KindFixed
		}
		rule.Modifiers = append(rule.Modifiers, pricing.Modifier{
			Name:     m.Name,
			Label:    m.Label,
			Kind:     kind,
			Value:    decimal.NewFromFloat(m.Value),
			List:     m.List,
			Excludes: append([]string(nil), m.Excludes...),
			Requires: append([]string(nil), m.Requires...),
		})
	}
	return rule
}
