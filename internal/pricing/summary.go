package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Line is one row of the order summary.
type Line struct {
	Label     string `json:"label"`
	PriceText string `json:"price_text"`
}

const (
	LabelBase  = "Base Price"
	LabelTotal = "Total"
	TextFree   = "FREE"
)

// ProjectSummary lists the applied modifiers in pricing order, then the base
// price and the total. The inline panel and the checkout modal both render
// this output; neither computes its own.
func ProjectSummary(rule Rule, opts Options, res Result) []Line {
	lines := make([]Line, 0, len(res.Applied)+2)
	for _, a := range res.Applied {
		label := a.Name
		if m, ok := rule.Modifier(a.Name); ok {
			label = modifierLabel(m, opts)
		}
		lines = append(lines, Line{Label: label, PriceText: a.DisplayValue})
	}
	lines = append(lines,
		Line{Label: LabelBase, PriceText: FormatMoney(res.Currency, res.BasePrice)},
		Line{Label: LabelTotal, PriceText: FormatMoney(res.Currency, res.TotalPrice)},
	)
	return lines
}

// DisplayValue renders a modifier's price effect: "+25%", "-50%", "+$5" or FREE.
func DisplayValue(m Modifier, currency string) string {
	if m.Free() {
		return TextFree
	}
	sign := "+"
	if m.Value.IsNegative() {
		sign = "-"
	}
	v := m.Value.Abs()
	if m.Kind == KindFixed {
		p := message.NewPrinter(language.English)
		if v.IsInteger() {
			return p.Sprintf("%s%s%d", sign, currency, v.IntPart())
		}
		return p.Sprintf("%s%s%.2f", sign, currency, v.InexactFloat64())
	}
	return sign + v.String() + "%"
}

// FormatMoney renders an amount with two decimals and digit grouping.
func FormatMoney(currency string, d decimal.Decimal) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%s%.2f", currency, d.Round(2).InexactFloat64())
}

func modifierLabel(m Modifier, opts Options) string {
	label := m.Label
	if label == "" {
		label = m.Name
	}
	if m.List == "" {
		return label
	}
	values := opts.List(m.List)
	if m.List == ListRoles {
		caser := cases.Title(language.English)
		titled := make([]string, len(values))
		for i, v := range values {
			titled[i] = caser.String(v)
		}
		values = titled
	}
	return label + ": " + strings.Join(values, ", ")
}
