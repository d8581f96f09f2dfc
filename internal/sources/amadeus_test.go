package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awidjaja/tripplanner/internal/models"
)

const amadeusTokenJSON = `{"access_token": "test-token", "expires_in": 1800}`

const amadeusFlightJSON = `{
	"data": [
		{
			"id": "1",
			"price": {"total": "842.50", "currency": "USD"},
			"itineraries": [
				{
					"segments": [
						{
							"departure": {"iataCode": "JFK", "at": "2026-09-10T18:30:00"},
							"arrival": {"iataCode": "CDG", "at": "2026-09-11T07:45:00"},
							"carrierCode": "AF",
							"number": "007"
						}
					]
				}
			],
			"travelerPricings": [
				{"fareDetailsBySegment": [{"cabin": "ECONOMY"}]}
			]
		}
	]
}`

func newAmadeusTestSource(t *testing.T, handler http.Handler) *AmadeusSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewAmadeusSource(AmadeusConfig{
		BaseURL:   server.URL,
		APIKey:    "key",
		APISecret: "secret",
		Limit:     5,
	}, server.Client(), zerolog.Nop())
}

func flightQuery() models.TripQuery {
	return models.TripQuery{
		OriginCity:      "new york",
		DestinationCity: "paris",
		DepartureDate:   "2026-09-10",
		ReturnDate:      "2026-09-14",
		Travelers:       2,
	}
}

func TestAmadeusSearchFlights(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		w.Write([]byte(amadeusTokenJSON))
	})
	mux.HandleFunc("/v1/reference-data/locations/cities", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		query := r.URL.Query()
		assert.Equal(t, "NYC", query.Get("originLocationCode"))
		assert.Equal(t, "PAR", query.Get("destinationLocationCode"))
		assert.Equal(t, "2026-09-10", query.Get("departureDate"))
		assert.Equal(t, "2026-09-14", query.Get("returnDate"))
		assert.Equal(t, "2", query.Get("adults"))
		w.Write([]byte(amadeusFlightJSON))
	})

	s := newAmadeusTestSource(t, mux)
	records, err := s.Search(context.Background(), models.CategoryFlight, flightQuery())

	require.NoError(t, err)
	require.Len(t, records, 1)

	fields := records[0].Fields
	assert.Equal(t, "amadeus", records[0].Source)
	assert.Equal(t, "842.50", fields["price"])
	assert.Equal(t, "USD", fields["currency"])
	assert.Equal(t, "ECONOMY", fields["cabin_class"])

	segments, ok := fields["segments"].([]any)
	require.True(t, ok)
	require.Len(t, segments, 1)
	seg := segments[0].(map[string]any)
	assert.Equal(t, "JFK", seg["departure_airport"])
	assert.Equal(t, "CDG", seg["arrival_airport"])
	assert.Equal(t, "AF007", seg["flight_number"])
}

func TestAmadeusSearchFlightsWithoutOrigin(t *testing.T) {
	s := newAmadeusTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	records, err := s.Search(context.Background(), models.CategoryFlight, models.TripQuery{DestinationCity: "paris"})

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAmadeusRateLimited(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(amadeusTokenJSON))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	s := newAmadeusTestSource(t, mux)
	_, err := s.Search(context.Background(), models.CategoryFlight, flightQuery())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestAmadeusAuthRejected(t *testing.T) {
	s := newAmadeusTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := s.Search(context.Background(), models.CategoryFlight, flightQuery())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestAmadeusTokenReused(t *testing.T) {
	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		w.Write([]byte(amadeusTokenJSON))
	})
	mux.HandleFunc("/v1/reference-data/locations/cities", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	})

	s := newAmadeusTestSource(t, mux)
	_, err := s.Search(context.Background(), models.CategoryFlight, flightQuery())
	require.NoError(t, err)
	_, err = s.Search(context.Background(), models.CategoryFlight, flightQuery())
	require.NoError(t, err)

	assert.Equal(t, int32(1), tokenCalls.Load())
}

func TestAmadeusSearchHotelsTwoStep(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(amadeusTokenJSON))
	})
	mux.HandleFunc("/v1/reference-data/locations/cities", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	})
	mux.HandleFunc("/v1/reference-data/locations/hotels/by-city", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PAR", r.URL.Query().Get("cityCode"))
		w.Write([]byte(`{"data": [{"hotelId": "HPAR001"}, {"hotelId": "HPAR002"}]}`))
	})
	mux.HandleFunc("/v3/shopping/hotel-offers", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("hotelIds") == "HPAR002" {
			// No availability for this one.
			w.Write([]byte(`{"data": []}`))
			return
		}
		w.Write([]byte(`{
			"data": [
				{
					"hotel": {
						"hotelId": "HPAR001",
						"name": "Grand Palace Hotel",
						"rating": "4",
						"address": {"lines": ["12 Rue de Rivoli"], "cityName": "PARIS"},
						"amenities": ["WIFI"]
					},
					"offers": [{"price": {"total": "180.00", "currency": "EUR"}}]
				}
			]
		}`))
	})

	s := newAmadeusTestSource(t, mux)
	records, err := s.Search(context.Background(), models.CategoryHotel, flightQuery())

	require.NoError(t, err)
	require.Len(t, records, 1)

	fields := records[0].Fields
	assert.Equal(t, models.CategoryHotel, records[0].Category)
	assert.Equal(t, "Grand Palace Hotel", fields["name"])
	assert.Equal(t, "12 Rue de Rivoli, PARIS", fields["address"])
	assert.Equal(t, "180.00", fields["price"])
	assert.Equal(t, "EUR", fields["currency"])
}

func TestAmadeusActivityUnsupported(t *testing.T) {
	s := newAmadeusTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	records, err := s.Search(context.Background(), models.CategoryActivity, flightQuery())

	require.NoError(t, err)
	assert.Empty(t, records)
}
