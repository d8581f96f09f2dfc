package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awidjaja/tripplanner/internal/models"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "hotel de ville", Key("Hotel De Ville"))
	assert.Equal(t, "hotel de ville", Key("  hotel   de   ville  "))
	assert.Equal(t, "", Key("   "))
}

func TestRecordsKeepsFirstSeen(t *testing.T) {
	in := []models.Record{
		models.Hotel{Name: "Hotel De Ville", Source: "websearch"},
		models.Hotel{Name: "Grand Palace", Source: "websearch"},
		models.Hotel{Name: "hotel   de ville", Source: "bookingsite"},
	}

	out := Records(in)
	require.Len(t, out, 2)
	assert.Equal(t, "Hotel De Ville", out[0].(models.Hotel).Name)
	assert.Equal(t, "websearch", out[0].RecordSource())
	assert.Equal(t, "Grand Palace", out[1].(models.Hotel).Name)
}

func TestRecordsIdempotent(t *testing.T) {
	in := []models.Record{
		models.Hotel{Name: "Alpha"},
		models.Hotel{Name: "Beta"},
		models.Hotel{Name: "alpha"},
	}

	once := Records(in)
	twice := Records(once)
	assert.Equal(t, once, twice)
}

func TestRecordsKeepsUnnamedRecords(t *testing.T) {
	in := []models.Record{
		models.Activity{Name: ""},
		models.Activity{Name: ""},
		models.Activity{Name: "Louvre"},
	}

	out := Records(in)
	assert.Len(t, out, 3)
}

func TestRecordsFlightKey(t *testing.T) {
	flight := func(src string) models.Flight {
		return models.Flight{
			Source: src,
			Segments: []models.Segment{
				{DepartureAirport: "JFK", ArrivalAirport: "CDG", Airline: "AF", FlightNumber: "AF007"},
			},
		}
	}

	out := Records([]models.Record{flight("amadeus"), flight("other")})
	require.Len(t, out, 1)
	assert.Equal(t, "amadeus", out[0].RecordSource())
}
