package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(name string, v float64) Modifier {
	return Modifier{Name: name, Label: name, Kind: KindPercent, Value: decimal.NewFromFloat(v)}
}

func fixed(name string, v float64) Modifier {
	return Modifier{Name: name, Label: name, Kind: KindFixed, Value: decimal.NewFromFloat(v)}
}

func rankBoostRule() Rule {
	return Rule{
		Product:        "rank-boost",
		Unit:           "division",
		Rates:          map[string]decimal.Decimal{"": decimal.NewFromInt(5)},
		HoursPerUnit:   2,
		PriorityOption: "priorityBoost",
		PriorityFactor: 0.75,
		Currency:       "$",
		Modifiers: []Modifier{
			pct("priorityBoost", 25),
			pct("soloOnly", 20),
			pct("streaming", 15),
			pct("championsSelection", 10),
			pct("duoBoost", 30),
			{Name: "offlineMode", Label: "Offline Mode", Kind: KindPercent},
			{Name: "roles", Label: "Roles", List: ListRoles},
			{Name: "champions", Label: "Champions", List: ListChampions},
		},
	}
}

func levelingRule() Rule {
	return Rule{
		Product:      "leveling",
		Rates:        map[string]decimal.Decimal{"": decimal.NewFromInt(2)},
		HoursPerUnit: 0.5,
		Currency:     "$",
		Modifiers: []Modifier{
			fixed("streaming", 5),
			pct("expressOrder", 25),
			pct("soloOnly", 40),
		},
	}
}

func flags(names ...string) Options {
	o := Options{Flags: map[string]bool{}}
	for _, n := range names {
		o.Flags[n] = true
	}
	return o
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeBaseOnly(t *testing.T) {
	res := Compute(rankBoostRule(), Input{Delta: 3, Options: flags()}, nil)
	assert.True(t, money("15").Equal(res.BasePrice), res.BasePrice.String())
	assert.True(t, money("15").Equal(res.TotalPrice), res.TotalPrice.String())
	assert.Empty(t, res.Applied)
	assert.True(t, res.DiscountPercent.IsZero())
}

func TestComputePercentModifiersCompound(t *testing.T) {
	res := Compute(rankBoostRule(), Input{Delta: 3, Options: flags("priorityBoost", "streaming")}, nil)
	// 15 * 1.25 * 1.15 = 21.5625
	assert.Equal(t, "21.56", res.TotalPrice.StringFixed(2))
	require.Len(t, res.Applied, 2)
	assert.Equal(t, Applied{Name: "priorityBoost", DisplayValue: "+25%"}, res.Applied[0])
	assert.Equal(t, Applied{Name: "streaming", DisplayValue: "+15%"}, res.Applied[1])
}

func TestComputeFollowsDeclarationOrderForFixed(t *testing.T) {
	// leveling declares the flat streaming fee first: (58 + 5) * 1.25 = 78.75
	res := Compute(levelingRule(), Input{Delta: 29, Options: flags("streaming", "expressOrder")}, nil)
	assert.Equal(t, "78.75", res.TotalPrice.StringFixed(2))

	// the same modifiers declared percent-first give a different price: 58 * 1.25 + 5 = 77.50
	r := levelingRule()
	r.Modifiers = []Modifier{r.Modifiers[1], r.Modifiers[0], r.Modifiers[2]}
	res = Compute(r, Input{Delta: 29, Options: flags("streaming", "expressOrder")}, nil)
	assert.Equal(t, "77.50", res.TotalPrice.StringFixed(2))
}

func TestComputeNegativeModifierIsNotAPromo(t *testing.T) {
	r := Rule{
		Rates:    map[string]decimal.Decimal{"": decimal.NewFromInt(5)},
		Currency: "$",
		Modifiers: []Modifier{
			fixed("streaming", 5),
			pct("expressOrder", 25),
			pct("marksOnly", -50),
		},
	}
	promos := NewPromoTable(map[string]float64{"HALF": 50})
	res := Compute(r, Input{Delta: 2, Options: flags("streaming", "marksOnly"), PromoCode: "half"}, promos)
	// (10 + 5) * 0.5 = 7.50, then promo 50% = 3.75
	assert.Equal(t, "7.50", res.Subtotal.StringFixed(2))
	assert.Equal(t, "3.75", res.TotalPrice.StringFixed(2))
	assert.Equal(t, "-50%", res.Applied[1].DisplayValue)
	assert.Equal(t, "50", res.DiscountPercent.String())
}

func TestComputeClampsAtZero(t *testing.T) {
	r := Rule{
		Rates:     map[string]decimal.Decimal{"": decimal.NewFromInt(1)},
		Modifiers: []Modifier{fixed("credit", -50)},
	}
	res := Compute(r, Input{Delta: 3, Options: flags("credit")}, nil)
	assert.True(t, res.TotalPrice.IsZero())

	res = Compute(r, Input{Delta: -4}, nil)
	assert.True(t, res.BasePrice.IsZero())
	assert.False(t, res.TotalPrice.IsNegative())
}

func TestComputeVariantRates(t *testing.T) {
	r := Rule{
		Rates: map[string]decimal.Decimal{
			"net-wins": decimal.NewFromInt(8),
			"per-game": decimal.NewFromInt(5),
		},
		DefaultVariant: "net-wins",
	}
	assert.Equal(t, "50.00", Compute(r, Input{Delta: 10, Variant: "per-game"}, nil).TotalPrice.StringFixed(2))
	assert.Equal(t, "80.00", Compute(r, Input{Delta: 10, Variant: "unknown"}, nil).TotalPrice.StringFixed(2))
}

func TestComputeMonotonicInDelta(t *testing.T) {
	r := rankBoostRule()
	opts := flags("priorityBoost", "soloOnly", "streaming")
	prev := decimal.Zero
	for d := 0; d <= 32; d++ {
		total := Compute(r, Input{Delta: d, Options: opts, PromoCode: "x"}, nil).TotalPrice
		require.True(t, total.GreaterThanOrEqual(prev), "delta %d: %s < %s", d, total, prev)
		prev = total
	}
}

func TestPromoResolve(t *testing.T) {
	promos := NewPromoTable(map[string]float64{"ARENA10": 10, "eb24play": 30, "BROKEN": 150, "NEG": -5})
	assert.Equal(t, "10", promos.Resolve("arena10").String())
	assert.Equal(t, "10", promos.Resolve("  Arena10 ").String())
	assert.Equal(t, "30", promos.Resolve("EB24PLAY").String())
	assert.True(t, promos.Resolve("BOGUS").IsZero())
	assert.True(t, promos.Resolve("").IsZero())

	for _, code := range []string{"ARENA10", "EB24PLAY", "BROKEN", "NEG", "BOGUS", ""} {
		d := promos.Resolve(code)
		assert.False(t, d.IsNegative(), code)
		assert.True(t, d.LessThanOrEqual(hundred), code)
	}
}

func TestPromoIdempotent(t *testing.T) {
	promos := NewPromoTable(map[string]float64{"ARENA10": 10})
	r := Rule{Rates: map[string]decimal.Decimal{"": decimal.NewFromInt(5)}}
	in := Input{Delta: 10, PromoCode: "ARENA10"}
	once := Compute(r, in, promos)
	twice := Compute(r, in, promos)
	assert.Equal(t, "45.00", once.TotalPrice.StringFixed(2))
	assert.True(t, once.TotalPrice.Equal(twice.TotalPrice))

	in.PromoCode = "BOGUS"
	assert.Equal(t, "50.00", Compute(r, in, promos).TotalPrice.StringFixed(2))
}

func TestEstimateTime(t *testing.T) {
	r := rankBoostRule()
	assert.Equal(t, "~6 Hours", EstimateTime(r, 3, false))
	assert.Equal(t, "~4 Hours", EstimateTime(r, 3, true), "6 * 0.75 = 4.5 floors to 4")
	assert.Equal(t, "~1 Hours", EstimateTime(r, 0, false))
	assert.Equal(t, "~1 Day", EstimateTime(r, 12, false))
	assert.Equal(t, "~2 Days", EstimateTime(r, 24, false))
	assert.Equal(t, "~3 Days", EstimateTime(r, 25, false))
	// 32 divisions: 64h, priority 48h exactly
	assert.Equal(t, "~2 Days", EstimateTime(r, 32, true))
	// 17 divisions: 34h, priority 25.5h floors to 25
	assert.Equal(t, "~1 Day", EstimateTime(r, 17, true))
}

func TestEstimateHoursDefaultsPriorityFactor(t *testing.T) {
	r := Rule{HoursPerUnit: 4, PriorityOption: "expressOrder"}
	assert.Equal(t, 6, EstimateHours(r, 2, true))
	assert.True(t, r.Priority(flags("expressOrder")))
	assert.False(t, r.Priority(flags("streaming")))
}

func TestProjectSummary(t *testing.T) {
	r := rankBoostRule()
	opts := flags("priorityBoost", "streaming", "offlineMode")
	opts.Roles = []string{"top", "jungle"}
	opts.Champions = []string{"Ahri", "Lee Sin"}
	res := Compute(r, Input{Delta: 3, Options: opts}, nil)

	lines := ProjectSummary(r, opts, res)
	require.Len(t, lines, len(res.Applied)+2)
	assert.Equal(t, []Line{
		{Label: "priorityBoost", PriceText: "+25%"},
		{Label: "streaming", PriceText: "+15%"},
		{Label: "Offline Mode", PriceText: "FREE"},
		{Label: "Roles: Top, Jungle", PriceText: "FREE"},
		{Label: "Champions: Ahri, Lee Sin", PriceText: "FREE"},
		{Label: "Base Price", PriceText: "$15.00"},
		{Label: "Total", PriceText: "$21.56"},
	}, lines)
}

func TestDisplayValue(t *testing.T) {
	assert.Equal(t, "+$5", DisplayValue(fixed("streaming", 5), "$"))
	assert.Equal(t, "+€2.50", DisplayValue(fixed("x", 2.5), "€"))
	assert.Equal(t, "+12.5%", DisplayValue(pct("x", 12.5), "$"))
	assert.Equal(t, "FREE", DisplayValue(pct("x", 0), "$"))
}

func TestOptionsClone(t *testing.T) {
	o := flags("streaming")
	o.Roles = []string{"mid"}
	c := o.Clone()
	c.Flags["streaming"] = false
	c.Roles[0] = "top"
	assert.True(t, o.Enabled("streaming"))
	assert.Equal(t, "mid", o.Roles[0])
}
