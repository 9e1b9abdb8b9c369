package bill

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Compute derives the bill totals from its lines, discount and tax.
//
// The discount applies to the subtotal and never exceeds it. Tax applies to
// what is left after the discount. Each figure is rounded half away from zero
// to two places before it feeds the next one.
func Compute(items []LineItem, discount *Discount, tax *Tax) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}

	subtotal = subtotal.Round(2)

	off := decimal.Zero
	if discount != nil {
		off = apply(discount.Kind, discount.Value, subtotal)
		if off.GreaterThan(subtotal) {
			off = subtotal
		}
	}

	taxable := subtotal.Sub(off)

	added := decimal.Zero
	if tax != nil {
		added = apply(tax.Kind, tax.Value, taxable)
	}

	return Totals{
		Subtotal: subtotal,
		Discount: off,
		Taxable:  taxable,
		Tax:      added,
		Total:    taxable.Add(added),
	}
}

func apply(kind Kind, value, base decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		return decimal.Zero
	}

	if kind == KindPercentage {
		return base.Mul(value).Div(hundred).Round(2)
	}

	return value.Round(2)
}
