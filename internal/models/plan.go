package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type RankedResultSet struct {
	Category            Category `json:"category"`
	Records             []Record `json:"records"`
	ContributingSources []string `json:"contributing_sources,omitempty"`
	Suggestions         []string `json:"suggestions,omitempty"`
}

// UnmarshalJSON restores the concrete record type from the set's
// category, so cached plans round-trip.
func (s *RankedResultSet) UnmarshalJSON(data []byte) error {
	var shadow struct {
		Category            Category          `json:"category"`
		Records             []json.RawMessage `json:"records"`
		ContributingSources []string          `json:"contributing_sources"`
		Suggestions         []string          `json:"suggestions"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}

	s.Category = shadow.Category
	s.ContributingSources = shadow.ContributingSources
	s.Suggestions = shadow.Suggestions
	s.Records = make([]Record, 0, len(shadow.Records))

	for _, raw := range shadow.Records {
		var rec Record
		switch shadow.Category {
		case CategoryFlight:
			var f Flight
			if err := json.Unmarshal(raw, &f); err != nil {
				return err
			}
			rec = f
		case CategoryHotel:
			var h Hotel
			if err := json.Unmarshal(raw, &h); err != nil {
				return err
			}
			rec = h
		default:
			var a Activity
			if err := json.Unmarshal(raw, &a); err != nil {
				return err
			}
			rec = a
		}
		s.Records = append(s.Records, rec)
	}
	return nil
}

type Summary struct {
	Headline string `json:"headline"`
	Overview string `json:"overview"`
}

type PlanStatus string

const (
	PlanSuccess PlanStatus = "success"
	PlanPartial PlanStatus = "partial"
	PlanEmpty   PlanStatus = "empty"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// TripPlan is built once per query and never updated in place.
type TripPlan struct {
	ID          uuid.UUID       `json:"id"`
	Query       TripQuery       `json:"query"`
	Flights     RankedResultSet `json:"flights"`
	Hotels      RankedResultSet `json:"hotels"`
	Activities  RankedResultSet `json:"activities"`
	TravelInfo  *TravelInfo     `json:"travel_info,omitempty"`
	Summary     Summary         `json:"summary"`
	Suggestions []string        `json:"suggestions,omitempty"`
	Status      PlanStatus      `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}
