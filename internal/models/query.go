package models

import (
	"errors"
	"fmt"
)

type BudgetLevel string

const (
	BudgetLow      BudgetLevel = "budget"
	BudgetModerate BudgetLevel = "moderate"
	BudgetLuxury   BudgetLevel = "luxury"
)

// ErrInvalidQuery is the only error the planner surfaces to callers as a
// hard failure. Everything else degrades into suggestions.
var ErrInvalidQuery = errors.New("invalid trip query")

type TripQuery struct {
	OriginCity        string      `json:"origin_city,omitempty"`
	DestinationCity   string      `json:"destination_city"`
	DepartureDate     string      `json:"departure_date"`
	ReturnDate        string      `json:"return_date"`
	Travelers         int         `json:"travelers"`
	BudgetLevel       BudgetLevel `json:"budget_level"`
	AccommodationType string      `json:"accommodation_type,omitempty"`
	FlightClass       string      `json:"flight_class,omitempty"`
}

// Validate fills defaults and rejects queries that cannot be planned at
// all. Unordered or missing dates are tolerated here; sources that need
// them simply come back empty.
func (q *TripQuery) Validate() error {
	if q.DestinationCity == "" {
		return fmt.Errorf("%w: destination_city is required", ErrInvalidQuery)
	}
	if q.Travelers < 1 {
		q.Travelers = 1
	}
	switch q.BudgetLevel {
	case BudgetLow, BudgetModerate, BudgetLuxury:
	default:
		q.BudgetLevel = BudgetModerate
	}
	if q.FlightClass == "" {
		q.FlightClass = "economy"
	}
	return nil
}
