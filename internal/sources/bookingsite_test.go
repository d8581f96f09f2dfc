package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awidjaja/tripplanner/internal/models"
)

const bookingHotelsHTML = `
<html><body>
	<div data-testid="property-card">
		<div data-testid="title">Grand Palace Hotel</div>
		<span data-testid="address">12 Rue de Rivoli, Paris</span>
		<span data-testid="price-and-discounted-price">€ 180</span>
		<div data-testid="review-score"><div>8.6</div><div>Fabulous</div></div>
	</div>
	<div data-testid="property-card">
		<div data-testid="title">Riverside Inn</div>
		<span data-testid="address">3 Quai Voltaire, Paris</span>
		<span data-testid="price-and-discounted-price">€ 95</span>
	</div>
	<div data-testid="property-card">
		<div data-testid="title"></div>
	</div>
</body></html>`

const bookingAttractionsHTML = `
<html><body>
	<div data-testid="attraction-card">
		<h3>Louvre Museum</h3>
		<div data-testid="description">World's largest art museum.</div>
		<span data-testid="price">€ 22</span>
		<span data-testid="rating">4.7</span>
	</div>
</body></html>`

func newBookingTestSource(t *testing.T, handler http.Handler) *BookingSiteSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	s := NewBookingSiteSource(server.Client(), 5, zerolog.Nop())
	s.baseURL = server.URL
	return s
}

func TestBookingSiteSearchHotels(t *testing.T) {
	s := newBookingTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/searchresults.html", r.URL.Path)
		query := r.URL.Query()
		assert.Equal(t, "Paris", query.Get("ss"))
		assert.Equal(t, "2026-09-10", query.Get("checkin"))
		assert.Equal(t, "2026-09-14", query.Get("checkout"))
		assert.Equal(t, "2", query.Get("group_adults"))
		w.Write([]byte(bookingHotelsHTML))
	}))

	records, err := s.Search(context.Background(), models.CategoryHotel, models.TripQuery{
		DestinationCity: "Paris",
		DepartureDate:   "2026-09-10",
		ReturnDate:      "2026-09-14",
		Travelers:       2,
	})

	require.NoError(t, err)
	require.Len(t, records, 2, "nameless card must be skipped")

	first := records[0].Fields
	assert.Equal(t, "Grand Palace Hotel", first["name"])
	assert.Equal(t, "12 Rue de Rivoli, Paris", first["address"])
	assert.Equal(t, "€ 180", first["price"])
	assert.Equal(t, "8.6/10", first["rating"])

	second := records[1].Fields
	assert.Equal(t, "Riverside Inn", second["name"])
	_, hasRating := second["rating"]
	assert.False(t, hasRating)
}

func TestBookingSiteSearchAttractions(t *testing.T) {
	s := newBookingTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/attractions/searchresults/new-york", r.URL.Path)
		w.Write([]byte(bookingAttractionsHTML))
	}))

	records, err := s.Search(context.Background(), models.CategoryActivity, models.TripQuery{DestinationCity: "New York"})

	require.NoError(t, err)
	require.Len(t, records, 1)

	fields := records[0].Fields
	assert.Equal(t, "Louvre Museum", fields["name"])
	assert.Equal(t, "World's largest art museum.", fields["description"])
	assert.Equal(t, "€ 22", fields["price_range"])
	assert.Equal(t, "4.7", fields["rating"])
	assert.Equal(t, "New York", fields["location"])
}

func TestBookingSiteRateLimited(t *testing.T) {
	s := newBookingTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := s.Search(context.Background(), models.CategoryHotel, models.TripQuery{DestinationCity: "Paris"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestBookingSiteFlightsUnsupported(t *testing.T) {
	s := newBookingTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	records, err := s.Search(context.Background(), models.CategoryFlight, models.TripQuery{DestinationCity: "Paris"})

	require.NoError(t, err)
	assert.Empty(t, records)
}
