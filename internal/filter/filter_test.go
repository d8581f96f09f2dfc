package filter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awidjaja/tripplanner/internal/models"
)

func hotel(name string, amount int64) models.Hotel {
	return models.Hotel{
		Name:  name,
		Price: &models.Money{Amount: decimal.NewFromInt(amount), Currency: "USD"},
	}
}

func TestByBudgetBands(t *testing.T) {
	records := []models.Record{
		hotel("hostel", 45),
		hotel("midrange", 180),
		hotel("palace", 600),
	}

	tests := []struct {
		level models.BudgetLevel
		want  string
	}{
		{models.BudgetLow, "hostel"},
		{models.BudgetModerate, "midrange"},
		{models.BudgetLuxury, "palace"},
	}

	for _, tc := range tests {
		t.Run(string(tc.level), func(t *testing.T) {
			out := ByBudget(models.TripQuery{BudgetLevel: tc.level}, records)
			require.Len(t, out, 1)
			assert.Equal(t, tc.want, out[0].(models.Hotel).Name)
		})
	}
}

func TestByBudgetKeepsUnpricedHotels(t *testing.T) {
	records := []models.Record{
		models.Hotel{Name: "unknown price", PriceText: "call for rates"},
		hotel("palace", 600),
	}

	out := ByBudget(models.TripQuery{BudgetLevel: models.BudgetLow}, records)
	require.Len(t, out, 1)
	assert.Equal(t, "unknown price", out[0].(models.Hotel).Name)
}

func TestByBudgetIgnoresNonHotels(t *testing.T) {
	records := []models.Record{
		models.Activity{Name: "museum", PriceRange: "$500"},
	}

	out := ByBudget(models.TripQuery{BudgetLevel: models.BudgetLow}, records)
	assert.Len(t, out, 1)
}

func TestByBudgetUnknownLevelPassesThrough(t *testing.T) {
	records := []models.Record{hotel("any", 999)}
	out := ByBudget(models.TripQuery{}, records)
	assert.Len(t, out, 1)
}
