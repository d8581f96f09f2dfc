// Package filter narrows hotel candidates to the traveler's budget
// band. Records without a parseable price pass through untouched; the
// band is a preference, not a validity check.
package filter

import (
	"github.com/shopspring/decimal"

	"github.com/awidjaja/tripplanner/internal/models"
)

type band struct {
	min decimal.Decimal
	max decimal.Decimal // zero value means unbounded
}

var budgetBands = map[models.BudgetLevel]band{
	models.BudgetLow:      {min: decimal.Zero, max: decimal.NewFromInt(100)},
	models.BudgetModerate: {min: decimal.NewFromInt(100), max: decimal.NewFromInt(300)},
	models.BudgetLuxury:   {min: decimal.NewFromInt(300)},
}

// ByBudget keeps hotels whose nightly price falls in the band for the
// query's budget level. Non-hotel records and unpriced hotels are kept.
func ByBudget(q models.TripQuery, records []models.Record) []models.Record {
	b, ok := budgetBands[q.BudgetLevel]
	if !ok {
		return records
	}

	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		h, isHotel := r.(models.Hotel)
		if !isHotel || h.Price == nil {
			out = append(out, r)
			continue
		}
		if h.Price.Amount.Cmp(b.min) < 0 {
			continue
		}
		if !b.max.IsZero() && h.Price.Amount.Cmp(b.max) > 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}
