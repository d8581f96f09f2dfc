// Package ranking orders normalized records within a category using
// category-specific comparison keys.
package ranking

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/awidjaja/tripplanner/internal/models"
	"github.com/awidjaja/tripplanner/pkg/price"
)

// Options makes the rating default explicit instead of silently
// conflating "no rating" with "worst rating". MissingRating is the
// value substituted when a record has none; 0 reproduces the
// sort-unrated-last behavior.
type Options struct {
	MissingRating float64
}

func DefaultOptions() Options {
	return Options{MissingRating: 0}
}

// Sort orders records best-first, in place, with a stable sort so ties
// keep their source-priority order.
//
// Flights: ascending (stops, price), unpriced after all priced.
// Hotels, activities: descending rating, then ascending price.
func Sort(category models.Category, records []models.Record, opts Options) {
	switch category {
	case models.CategoryFlight:
		sort.SliceStable(records, func(i, j int) bool {
			a, aok := records[i].(models.Flight)
			b, bok := records[j].(models.Flight)
			if !aok || !bok {
				return false
			}
			return flightLess(a, b)
		})
	case models.CategoryHotel, models.CategoryActivity:
		sort.SliceStable(records, func(i, j int) bool {
			return ratedLess(records[i], records[j], opts)
		})
	}
}

func flightLess(a, b models.Flight) bool {
	if a.Stops() != b.Stops() {
		return a.Stops() < b.Stops()
	}
	return priceCmp(flightPrice(a), flightPrice(b)) < 0
}

func ratedLess(a, b models.Record, opts Options) bool {
	ra, rb := recordRating(a, opts), recordRating(b, opts)
	if ra != rb {
		return ra > rb
	}
	return priceCmp(recordPrice(a), recordPrice(b)) < 0
}

func flightPrice(f models.Flight) *decimal.Decimal {
	if f.Price == nil {
		return nil
	}
	return &f.Price.Amount
}

func recordRating(r models.Record, opts Options) float64 {
	var rating *float64
	switch v := r.(type) {
	case models.Hotel:
		rating = v.Rating
	case models.Activity:
		rating = v.Rating
	}
	if rating == nil {
		return opts.MissingRating
	}
	return *rating
}

func recordPrice(r models.Record) *decimal.Decimal {
	switch v := r.(type) {
	case models.Hotel:
		if v.Price != nil {
			return &v.Price.Amount
		}
		if m, ok := price.Parse(v.PriceText); ok {
			return &m.Amount
		}
	case models.Activity:
		if m, ok := price.Parse(v.PriceRange); ok {
			return &m.Amount
		}
	}
	return nil
}

// priceCmp treats a missing price as +infinity: unpriced records sort
// after every priced one.
func priceCmp(a, b *decimal.Decimal) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Cmp(*b)
	}
}
