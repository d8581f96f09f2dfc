package models

import "strings"

type Segment struct {
	DepartureAirport string `json:"departure_airport"`
	ArrivalAirport   string `json:"arrival_airport"`
	DepartureTime    string `json:"departure_time"`
	ArrivalTime      string `json:"arrival_time"`
	FlightNumber     string `json:"flight_number"`
	Airline          string `json:"airline"`
}

// Flight is the canonical flight shape. Price is nil when the source
// produced no parseable amount; absence is not the same as free.
// Scraped listings often advertise a stop count without per-leg
// airports; StopCount keeps that figure when the itinerary can't.
type Flight struct {
	ID         string    `json:"id,omitempty"`
	Price      *Money    `json:"price,omitempty"`
	Segments   []Segment `json:"segments"`
	StopCount  *int      `json:"stop_count,omitempty"`
	CabinClass string    `json:"cabin_class,omitempty"`
	Source     string    `json:"source"`
}

func (f Flight) Stops() int {
	if f.StopCount != nil {
		return *f.StopCount
	}
	if len(f.Segments) == 0 {
		return 0
	}
	return len(f.Segments) - 1
}

func (f Flight) RecordSource() string { return f.Source }

// Flights have no display name, so the itinerary's airline+number
// sequence stands in as the dedupe key. Listings without flight
// numbers fall back to airline+departure time so two same-airline
// flights never collapse.
func (f Flight) DedupeKey() string {
	parts := make([]string, 0, len(f.Segments))
	for _, s := range f.Segments {
		id := s.Airline + s.FlightNumber
		if s.FlightNumber == "" {
			id = s.Airline + s.DepartureTime
		}
		parts = append(parts, id)
	}
	return strings.Join(parts, " ")
}
