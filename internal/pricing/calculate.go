package pricing

import (
	"github.com/shopspring/decimal"
)

// Input is everything the calculator needs from an order configuration.
type Input struct {
	Delta     int    // divisions, levels, wins, matches or hours
	Variant   string // rate key (arena mode, coach tier)
	Options   Options
	PromoCode string
}

// Applied is one active modifier as shown to the customer.
type Applied struct {
	Name         string `json:"name"`
	DisplayValue string `json:"display_value"`
}

// Result is the outcome of pricing one configuration.
type Result struct {
	BasePrice       decimal.Decimal `json:"base_price"`
	Applied         []Applied       `json:"applied_modifiers"`
	Subtotal        decimal.Decimal `json:"subtotal"` // after modifiers, before promo; display rounded
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Currency        string          `json:"currency"`
}

// Compute prices one configuration:
//
//	base  = max(0, delta) * rate(variant)
//	price = fold modifiers in declaration order (percent multiplies, fixed adds)
//	total = max(0, price) * (1 - discount/100), rounded to cents
//
// Rounding happens once, on the total. Compute is pure.
func Compute(rule Rule, in Input, promos PromoTable) Result {
	rate, _ := rule.Rate(in.Variant)
	delta := in.Delta
	if delta < 0 {
		delta = 0
	}
	base := rate.Mul(decimal.NewFromInt(int64(delta)))
	if base.IsNegative() {
		base = decimal.Zero
	}

	price := base
	var applied []Applied
	for _, m := range rule.Modifiers {
		if !m.Applies(in.Options) {
			continue
		}
		price = m.apply(price)
		applied = append(applied, Applied{Name: m.Name, DisplayValue: DisplayValue(m, rule.Currency)})
	}
	if price.IsNegative() {
		price = decimal.Zero
	}

	discount := promos.Resolve(in.PromoCode)
	total := price.Mul(decimal.NewFromInt(1).Sub(discount.Div(hundred))).Round(2)

	return Result{
		BasePrice:       base,
		Applied:         applied,
		Subtotal:        price.Round(2),
		DiscountPercent: discount,
		TotalPrice:      total,
		Currency:        rule.Currency,
	}
}
