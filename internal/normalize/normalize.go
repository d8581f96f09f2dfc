// Package normalize maps raw source payloads into the canonical
// per-category record shapes. All functions are pure; malformed
// payloads are dropped, never propagated as partial records.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/awidjaja/tripplanner/internal/models"
	"github.com/awidjaja/tripplanner/pkg/price"
)

// Flight requires at least one segment with airports on both ends.
func Flight(raw models.RawRecord) (models.Flight, bool) {
	segs := segments(raw.Fields["segments"])
	if len(segs) == 0 {
		return models.Flight{}, false
	}

	f := models.Flight{
		ID:         getString(raw.Fields, "id"),
		Segments:   segs,
		StopCount:  stopCount(raw.Fields["stops"]),
		CabinClass: getString(raw.Fields, "cabin_class"),
		Source:     raw.Source,
	}
	f.Price = money(raw.Fields)
	return f, true
}

// stopCount reads "stops" in its scraped forms: a number, "2 stops",
// "Nonstop" or "Direct". Absent means derive from the itinerary.
func stopCount(v any) *int {
	switch s := v.(type) {
	case int:
		n := s
		return &n
	case float64:
		n := int(s)
		return &n
	case string:
		lower := strings.ToLower(s)
		if strings.Contains(lower, "nonstop") || strings.Contains(lower, "direct") {
			n := 0
			return &n
		}
		m := ratingNumRe.FindString(s)
		if m == "" {
			return nil
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

// Hotel requires a name. Price may arrive as a number or as display
// text like "€100-150 per night"; both forms are kept.
func Hotel(raw models.RawRecord) (models.Hotel, bool) {
	name := getString(raw.Fields, "name")
	if name == "" {
		return models.Hotel{}, false
	}

	h := models.Hotel{
		Name:      name,
		Address:   getString(raw.Fields, "address", "location"),
		Amenities: getStrings(raw.Fields, "amenities"),
		Rating:    rating(raw.Fields, "rating", "stars", "guest_rating"),
		Source:    raw.Source,
	}
	h.Price = money(raw.Fields)
	if s, ok := raw.Fields["price"].(string); ok {
		h.PriceText = s
	} else if s, ok := raw.Fields["price_range"].(string); ok {
		h.PriceText = s
	}
	return h, true
}

func Activity(raw models.RawRecord) (models.Activity, bool) {
	name := getString(raw.Fields, "name")
	if name == "" {
		return models.Activity{}, false
	}

	return models.Activity{
		Name:        name,
		Description: getString(raw.Fields, "description"),
		Rating:      rating(raw.Fields, "rating"),
		PriceRange:  getString(raw.Fields, "price_range", "price"),
		Location:    getString(raw.Fields, "location", "address"),
		Source:      raw.Source,
	}, true
}

func segments(v any) []models.Segment {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]models.Segment, 0, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		s := models.Segment{
			DepartureAirport: getString(fields, "departure_airport"),
			ArrivalAirport:   getString(fields, "arrival_airport"),
			DepartureTime:    getString(fields, "departure_time"),
			ArrivalTime:      getString(fields, "arrival_time"),
			FlightNumber:     getString(fields, "flight_number"),
			Airline:          getString(fields, "airline"),
		}
		if s.DepartureAirport == "" || s.ArrivalAirport == "" {
			return nil
		}
		out = append(out, s)
	}
	return out
}

// money reads the price and currency fields, accepting numbers, numeric
// strings and free-form price text.
func money(fields map[string]any) *models.Money {
	currency := getString(fields, "currency")

	switch v := fields["price"].(type) {
	case float64:
		return &models.Money{Amount: decimal.NewFromFloat(v), Currency: currency}
	case int:
		return &models.Money{Amount: decimal.NewFromInt(int64(v)), Currency: currency}
	case string:
		m, ok := price.Parse(v)
		if !ok {
			return nil
		}
		if m.Currency == "" {
			m.Currency = currency
		}
		return m
	default:
		return nil
	}
}

var ratingNumRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// rating parses "4.5", 4.5, "3 stars" and "8.5/10" forms; ten-point
// scales are halved onto the usual five-point one.
func rating(fields map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		switch v := fields[key].(type) {
		case float64:
			r := v
			return &r
		case string:
			m := ratingNumRe.FindString(v)
			if m == "" {
				continue
			}
			r, err := strconv.ParseFloat(m, 64)
			if err != nil {
				continue
			}
			if strings.Contains(v, "/10") {
				r /= 2
			}
			return &r
		}
	}
	return nil
}

func getString(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := fields[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func getStrings(fields map[string]any, key string) []string {
	switch v := fields[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
