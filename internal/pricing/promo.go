package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PromoTable maps normalized promo codes to a discount percentage.
type PromoTable map[string]decimal.Decimal

// NewPromoTable builds a table from raw percentages, normalizing codes and
// clamping each percentage into [0, 100].
func NewPromoTable(raw map[string]float64) PromoTable {
	t := make(PromoTable, len(raw))
	for code, pct := range raw {
		t[normalizeCode(code)] = clampPercent(decimal.NewFromFloat(pct))
	}
	return t
}

// Resolve returns the discount percentage for code. Matching is
// case-insensitive; unknown and empty codes resolve to zero.
func (t PromoTable) Resolve(code string) decimal.Decimal {
	code = normalizeCode(code)
	if code == "" {
		return decimal.Zero
	}
	pct, ok := t[code]
	if !ok {
		return decimal.Zero
	}
	return clampPercent(pct)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func clampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}
