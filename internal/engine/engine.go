// Package engine ties the order configuration to the rule tables: every edit
// is followed by a full recomputation of price, estimate and summary.
package engine

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/xtding233/boost-backend/internal/game"
	"github.com/xtding233/boost-backend/internal/order"
	"github.com/xtding233/boost-backend/internal/pricing"
)

var ErrIncompleteOrder = errors.New("order is incomplete")

// Quote is everything the storefront shows next to a configuration. The
// inline panel and the checkout modal both render Summary.
type Quote struct {
	Pricing        pricing.Result `json:"pricing"`
	EstimatedHours int            `json:"estimated_hours"`
	EstimatedTime  string         `json:"estimated_time"`
	Summary        []pricing.Line `json:"summary"`
}

// Order is a configuration frozen for checkout together with its quote.
type Order struct {
	Config order.Config `json:"config"`
	Quote  Quote        `json:"quote"`
}

// Engine prices configurations against the current catalog. The catalog can
// be swapped while requests are in flight.
type Engine struct {
	catalog atomic.Pointer[pricing.Catalog]
	log     logrus.FieldLogger
}

func New(cat pricing.Catalog, log logrus.FieldLogger) *Engine {
	e := &Engine{log: log}
	e.catalog.Store(&cat)
	return e
}

// Catalog returns the catalog currently in use.
func (e *Engine) Catalog() pricing.Catalog { return *e.catalog.Load() }

// SetCatalog replaces the catalog. Quotes computed afterwards use it.
func (e *Engine) SetCatalog(cat pricing.Catalog) {
	e.catalog.Store(&cat)
	e.log.WithFields(logrus.Fields{
		"game":     cat.Game,
		"version":  cat.Version,
		"products": len(cat.Rules),
	}).Info("catalog swapped")
}

// Reload resolves the game's catalog again and swaps it in. On error the
// previous catalog stays active.
func (e *Engine) Reload(r game.Resolver, gameName string) error {
	cat, err := r.Resolve(gameName)
	if err != nil {
		e.log.WithError(err).WithField("game", gameName).Warn("catalog reload failed, keeping previous")
		return err
	}
	e.SetCatalog(cat)
	return nil
}

func (e *Engine) rules(product order.Product) (order.Rules, bool) {
	cat := e.catalog.Load()
	rule, ok := cat.Rule(string(product))
	return order.Rules{Rule: rule, Servers: cat.Servers}, ok
}

// NewOrder returns the initial configuration for product with its quote.
func (e *Engine) NewOrder(product order.Product) (order.Config, Quote, error) {
	r, ok := e.rules(product)
	if !ok {
		return order.Config{}, Quote{}, fmt.Errorf("%w: %s", order.ErrUnknownProduct, product)
	}
	cfg, err := order.New(product, r.Rule)
	if err != nil {
		return order.Config{}, Quote{}, fmt.Errorf("%w: %s", err, product)
	}
	return cfg, e.quote(cfg, r.Rule), nil
}

// Update applies edits and recomputes. cfg itself is not modified.
func (e *Engine) Update(cfg order.Config, edits ...order.Edit) (order.Config, Quote) {
	r, ok := e.rules(cfg.Product)
	if !ok {
		e.log.WithField("product", cfg.Product).Warn("update for unknown product ignored")
		return cfg.Clone(), Quote{}
	}
	next := order.Apply(cfg, r, edits...)
	return next, e.quote(next, r.Rule)
}

// Quote prices cfg without changing it.
func (e *Engine) Quote(cfg order.Config) Quote {
	r, ok := e.rules(cfg.Product)
	if !ok {
		return Quote{}
	}
	return e.quote(cfg, r.Rule)
}

// quote prices cfg against rule alone. Everything it reads comes from the
// rule, so a catalog swap between lookup and pricing cannot mix tables.
func (e *Engine) quote(cfg order.Config, rule pricing.Rule) Quote {
	res := pricing.Compute(rule, pricing.Input{
		Delta:     cfg.Delta(),
		Variant:   cfg.Variant(),
		Options:   cfg.Options,
		PromoCode: cfg.PromoCode,
	}, rule.Promos)
	priority := rule.Priority(cfg.Options)
	hours := pricing.EstimateHours(rule, max(cfg.Delta(), 0), priority)
	return Quote{
		Pricing:        res,
		EstimatedHours: hours,
		EstimatedTime:  pricing.FormatHours(hours),
		Summary:        pricing.ProjectSummary(rule, cfg.Options, res),
	}
}

// Assemble freezes cfg for checkout. Mastery orders need a champion.
func (e *Engine) Assemble(cfg order.Config) (Order, error) {
	r, ok := e.rules(cfg.Product)
	if !ok {
		return Order{}, fmt.Errorf("%w: %s", order.ErrUnknownProduct, cfg.Product)
	}
	if d, ok := cfg.Details.(order.Mastery); ok && d.Champion == "" {
		return Order{}, fmt.Errorf("%w: champion is required", ErrIncompleteOrder)
	}
	if cfg.Delta() <= 0 {
		return Order{}, fmt.Errorf("%w: nothing to deliver", ErrIncompleteOrder)
	}
	frozen := cfg.Clone()
	return Order{Config: frozen, Quote: e.quote(frozen, r.Rule)}, nil
}
