// Package order holds the customer's in-progress order configuration and the
// edits that change it. Every edit keeps the configuration valid: rank and
// level ranges stay ordered and mutually exclusive options are never both on.
package order

import (
	"errors"

	"github.com/xtding233/boost-backend/internal/pricing"
	"github.com/xtding233/boost-backend/internal/rank"
)

var ErrUnknownProduct = errors.New("unknown product")

// Product identifies a purchasable service.
type Product string

const (
	ProductRankBoost Product = "rank-boost"
	ProductPlacement Product = "placement"
	ProductNetWins   Product = "net-wins"
	ProductLeveling  Product = "leveling"
	ProductMastery   Product = "mastery"
	ProductCoaching  Product = "coaching"
)

// Products lists every product in storefront order.
var Products = []Product{
	ProductRankBoost, ProductPlacement, ProductNetWins,
	ProductLeveling, ProductMastery, ProductCoaching,
}

// BoostType is solo (account shared) or duo (booster plays alongside).
type BoostType string

const (
	Solo BoostType = "solo"
	Duo  BoostType = "duo"
)

// Flash is the summoner key the customer keeps Flash on.
type Flash string

const (
	FlashF Flash = "F"
	FlashD Flash = "D"
)

const (
	// OptionDuoBoost is the rank boost flag mirrored by BoostType.
	OptionDuoBoost = "duoBoost"
	optionOffline  = "offlineMode"
	roleSelection  = "roleSelection"

	DefaultServer = "EUW"
)

// Details is the product specific part of a Config.
type Details interface {
	product() Product
}

type RankBoost struct {
	Current   rank.Position `json:"current"`
	Desired   rank.Position `json:"desired"`
	BoostType BoostType     `json:"boost_type"`
}

type Placement struct {
	Matches int `json:"matches"`
}

// NetWins covers the arena service; Mode picks the rate (net-wins or per-game).
type NetWins struct {
	Mode  string `json:"mode"`
	Count int    `json:"count"`
}

type Leveling struct {
	Current int   `json:"current"`
	Desired int   `json:"desired"`
	Flash   Flash `json:"flash"`
}

// Mastery raises one champion's mastery level. Rank is informational.
type Mastery struct {
	Champion string        `json:"champion"`
	Current  int           `json:"current"`
	Desired  int           `json:"desired"`
	Flash    Flash         `json:"flash"`
	Rank     rank.Position `json:"rank"`
}

type Coaching struct {
	CoachTier string `json:"coach_tier"`
	Hours     int    `json:"hours"`
}

func (RankBoost) product() Product { return ProductRankBoost }
func (Placement) product() Product { return ProductPlacement }
func (NetWins) product() Product   { return ProductNetWins }
func (Leveling) product() Product  { return ProductLeveling }
func (Mastery) product() Product   { return ProductMastery }
func (Coaching) product() Product  { return ProductCoaching }

// Config is one order configuration. Treat it as a value: edits return a
// fresh copy and never touch a Config that was already handed out.
type Config struct {
	Product   Product         `json:"product"`
	Server    string          `json:"server"`
	PromoCode string          `json:"promo_code,omitempty"`
	Options   pricing.Options `json:"options"`
	Details   Details         `json:"details"`
}

// Clone deep-copies c.
func (c Config) Clone() Config {
	c.Options = c.Options.Clone()
	return c
}

// Delta is the quantity the unit rate is charged for.
func (c Config) Delta() int {
	switch d := c.Details.(type) {
	case RankBoost:
		return rank.Delta(d.Current, d.Desired)
	case Placement:
		return d.Matches
	case NetWins:
		return d.Count
	case Leveling:
		return d.Desired - d.Current
	case Mastery:
		return d.Desired - d.Current
	case Coaching:
		return d.Hours
	}
	return 0
}

// Variant is the rate key, empty for single-rate products.
func (c Config) Variant() string {
	switch d := c.Details.(type) {
	case NetWins:
		return d.Mode
	case Coaching:
		return d.CoachTier
	}
	return ""
}

// New returns the storefront's initial configuration for product.
func New(product Product, rule pricing.Rule) (Config, error) {
	c := Config{
		Product: product,
		Server:  DefaultServer,
		Options: pricing.Options{Flags: map[string]bool{}},
	}
	switch product {
	case ProductRankBoost:
		c.Details = RankBoost{
			Current:   rank.At(rank.Silver, rank.DivisionI),
			Desired:   rank.At(rank.Gold, rank.DivisionIV),
			BoostType: Solo,
		}
		if _, ok := rule.Modifier(optionOffline); ok {
			c.Options.Flags[optionOffline] = true
		}
	case ProductPlacement:
		c.Details = Placement{Matches: 5}
	case ProductNetWins:
		c.Details = NetWins{Mode: rule.DefaultVariant, Count: 5}
	case ProductLeveling:
		cur, des := rank.EnforceLevels(1, 30, rule.Levels, rank.EditedDesired)
		c.Details = Leveling{Current: cur, Desired: des, Flash: FlashF}
	case ProductMastery:
		cur, des := rank.EnforceLevels(1, 2, rule.Levels, rank.EditedDesired)
		c.Details = Mastery{Current: cur, Desired: des, Flash: FlashF, Rank: rank.At(rank.Silver, rank.DivisionI)}
	case ProductCoaching:
		c.Details = Coaching{CoachTier: rule.DefaultVariant, Hours: 2}
		if _, ok := rule.Modifier(roleSelection); ok {
			c.Options.Flags[roleSelection] = true
		}
	default:
		return Config{}, ErrUnknownProduct
	}
	return c, nil
}
