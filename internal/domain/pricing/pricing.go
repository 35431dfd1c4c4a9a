// Package pricing computes order totals from a per-day portion price, the
// selected add-ons and the number of delivery days.
//
// Every function is a pure recomputation from its inputs: callers re-run
// Calculate whenever the portion, an add-on toggle or a date boundary changes
// instead of adjusting a previous total.
package pricing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNegativePrice is returned when a base or add-on price is below zero.
var ErrNegativePrice = errors.New("price must not be negative")

// AddOn is an optional extra priced per delivery day.
type AddOn struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Selected bool
}

// Line is one row of a quote breakdown: a unit price charged for each day.
type Line struct {
	Name      string
	UnitPrice decimal.Decimal
	Days      int
	Amount    decimal.Decimal
}

// Quote is the full price breakdown of an order.
type Quote struct {
	BasePrice   decimal.Decimal
	AddOnsDaily decimal.Decimal
	DailyTotal  decimal.Decimal
	Days        int
	Total       decimal.Decimal
	Lines       []Line
}

// AddOnsDaily sums the prices of the selected add-ons.
func AddOnsDaily(addOns []AddOn) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range addOns {
		if a.Selected {
			sum = sum.Add(a.Price)
		}
	}
	return sum
}

// Total returns (base + selected add-ons) × days. Day counts below one are
// treated as one.
func Total(base decimal.Decimal, addOns []AddOn, days int) decimal.Decimal {
	days = max(days, 1)
	return base.Add(AddOnsDaily(addOns)).Mul(decimal.NewFromInt(int64(days)))
}

// Calculate builds the itemised quote for a portion price, add-on selection
// and day count. The total keeps full precision; use Format for display.
func Calculate(base decimal.Decimal, addOns []AddOn, days int) (Quote, error) {
	if base.IsNegative() {
		return Quote{}, errors.Wrap(ErrNegativePrice, "base")
	}
	for _, a := range addOns {
		if a.Price.IsNegative() {
			return Quote{}, errors.Wrapf(ErrNegativePrice, "add-on %s", a.ID)
		}
	}

	days = max(days, 1)
	n := decimal.NewFromInt(int64(days))

	lines := make([]Line, 0, len(addOns)+1)
	lines = append(lines, Line{Name: "base", UnitPrice: base, Days: days, Amount: base.Mul(n)})
	for _, a := range addOns {
		if !a.Selected {
			continue
		}
		lines = append(lines, Line{Name: a.Name, UnitPrice: a.Price, Days: days, Amount: a.Price.Mul(n)})
	}

	addOnsDaily := AddOnsDaily(addOns)
	daily := base.Add(addOnsDaily)
	return Quote{
		BasePrice:   base,
		AddOnsDaily: addOnsDaily,
		DailyTotal:  daily,
		Days:        days,
		Total:       daily.Mul(n),
		Lines:       lines,
	}, nil
}

// Format renders an amount as dollars, truncated to cents.
func Format(amount decimal.Decimal) string {
	return "$" + amount.Truncate(2).StringFixed(2)
}
