package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/awidjaja/tripplanner/internal/iata"
	"github.com/awidjaja/tripplanner/internal/models"
)

// AmadeusSource queries the Amadeus self-service REST APIs for flights
// and hotels. It is authoritative but rate-limited, so orchestrators
// place it after cheaper sources where one exists.
type AmadeusSource struct {
	cfg      AmadeusConfig
	client   *http.Client
	resolver *iata.Resolver
	log      zerolog.Logger

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

type AmadeusConfig struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Currency  string
	Limit     int
}

func NewAmadeusSource(cfg AmadeusConfig, client *http.Client, log zerolog.Logger) *AmadeusSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://test.api.amadeus.com"
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 5
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	s := &AmadeusSource{
		cfg:    cfg,
		client: client,
		log:    log.With().Str("source", "amadeus").Logger(),
	}
	s.resolver = iata.NewResolver(s.lookupCityCode)
	return s
}

func (s *AmadeusSource) Name() string { return "amadeus" }

func (s *AmadeusSource) Search(ctx context.Context, category models.Category, q models.TripQuery) ([]models.RawRecord, error) {
	switch category {
	case models.CategoryFlight:
		return s.searchFlights(ctx, q)
	case models.CategoryHotel:
		return s.searchHotels(ctx, q)
	default:
		// Amadeus carries no activity inventory we use.
		return []models.RawRecord{}, nil
	}
}

type amadeusFlightOffers struct {
	Data []struct {
		ID    string `json:"id"`
		Price struct {
			Total    string `json:"total"`
			Currency string `json:"currency"`
		} `json:"price"`
		Itineraries []struct {
			Segments []struct {
				Departure struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"departure"`
				Arrival struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"arrival"`
				CarrierCode string `json:"carrierCode"`
				Number      string `json:"number"`
			} `json:"segments"`
		} `json:"itineraries"`
		TravelerPricings []struct {
			FareDetailsBySegment []struct {
				Cabin string `json:"cabin"`
			} `json:"fareDetailsBySegment"`
		} `json:"travelerPricings"`
	} `json:"data"`
}

func (s *AmadeusSource) searchFlights(ctx context.Context, q models.TripQuery) ([]models.RawRecord, error) {
	if q.OriginCity == "" || q.DepartureDate == "" {
		return []models.RawRecord{}, nil
	}

	params := url.Values{
		"originLocationCode":      {s.resolver.CityCode(ctx, q.OriginCity)},
		"destinationLocationCode": {s.resolver.CityCode(ctx, q.DestinationCity)},
		"departureDate":           {q.DepartureDate},
		"adults":                  {fmt.Sprint(q.Travelers)},
		"currencyCode":            {s.cfg.Currency},
		"max":                     {fmt.Sprint(s.cfg.Limit)},
	}
	if q.ReturnDate != "" {
		params.Set("returnDate", q.ReturnDate)
	}

	body, err := s.get(ctx, "/v2/shopping/flight-offers", params)
	if err != nil {
		return nil, err
	}

	var offers amadeusFlightOffers
	if err := json.Unmarshal(body, &offers); err != nil {
		return nil, fmt.Errorf("amadeus: decode flight offers: %w", err)
	}

	records := make([]models.RawRecord, 0, len(offers.Data))
	for _, offer := range offers.Data {
		var segments []any
		for _, itin := range offer.Itineraries {
			for _, seg := range itin.Segments {
				segments = append(segments, map[string]any{
					"departure_airport": seg.Departure.IataCode,
					"departure_time":    seg.Departure.At,
					"arrival_airport":   seg.Arrival.IataCode,
					"arrival_time":      seg.Arrival.At,
					"airline":           seg.CarrierCode,
					"flight_number":     seg.CarrierCode + seg.Number,
				})
			}
		}

		cabin := ""
		if len(offer.TravelerPricings) > 0 && len(offer.TravelerPricings[0].FareDetailsBySegment) > 0 {
			cabin = offer.TravelerPricings[0].FareDetailsBySegment[0].Cabin
		}

		records = append(records, models.RawRecord{
			Source:   s.Name(),
			Category: models.CategoryFlight,
			Fields: map[string]any{
				"id":          offer.ID,
				"price":       offer.Price.Total,
				"currency":    offer.Price.Currency,
				"segments":    segments,
				"cabin_class": cabin,
			},
		})
	}
	return records, nil
}

type amadeusHotelList struct {
	Data []struct {
		HotelID string `json:"hotelId"`
	} `json:"data"`
}

type amadeusHotelOffers struct {
	Data []struct {
		Hotel struct {
			HotelID string `json:"hotelId"`
			Name    string `json:"name"`
			Rating  string `json:"rating"`
			Address struct {
				Lines       []string `json:"lines"`
				PostalCode  string   `json:"postalCode"`
				CityName    string   `json:"cityName"`
				CountryName string   `json:"countryName"`
			} `json:"address"`
			Amenities []string `json:"amenities"`
		} `json:"hotel"`
		Offers []struct {
			Price struct {
				Total    string `json:"total"`
				Currency string `json:"currency"`
			} `json:"price"`
		} `json:"offers"`
	} `json:"data"`
}

// searchHotels is the two-step dance the API requires: list hotels in
// the city, then probe availability hotel by hotel until enough have
// offers. Per-hotel failures are skipped; a rate-limit signal aborts so
// the retrier can back off.
func (s *AmadeusSource) searchHotels(ctx context.Context, q models.TripQuery) ([]models.RawRecord, error) {
	if q.DepartureDate == "" || q.ReturnDate == "" {
		return []models.RawRecord{}, nil
	}

	cityCode := s.resolver.CityCode(ctx, q.DestinationCity)
	body, err := s.get(ctx, "/v1/reference-data/locations/hotels/by-city", url.Values{
		"cityCode":    {cityCode},
		"radius":      {"20"},
		"radiusUnit":  {"KM"},
		"hotelSource": {"ALL"},
	})
	if err != nil {
		return nil, err
	}

	var list amadeusHotelList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("amadeus: decode hotel list: %w", err)
	}

	maxToTry := s.cfg.Limit * 3
	records := make([]models.RawRecord, 0, s.cfg.Limit)
	for i, h := range list.Data {
		if i >= maxToTry || len(records) >= s.cfg.Limit {
			break
		}
		if h.HotelID == "" {
			continue
		}

		offerBody, err := s.get(ctx, "/v3/shopping/hotel-offers", url.Values{
			"hotelIds":     {h.HotelID},
			"adults":       {fmt.Sprint(q.Travelers)},
			"checkInDate":  {q.DepartureDate},
			"checkOutDate": {q.ReturnDate},
			"currency":     {s.cfg.Currency},
			"bestRateOnly": {"true"},
		})
		if err != nil {
			if isRateLimit(err) {
				return nil, err
			}
			s.log.Debug().Err(err).Str("hotel_id", h.HotelID).Msg("hotel offer lookup failed")
			continue
		}

		var offers amadeusHotelOffers
		if err := json.Unmarshal(offerBody, &offers); err != nil || len(offers.Data) == 0 || len(offers.Data[0].Offers) == 0 {
			continue
		}

		entry := offers.Data[0]
		records = append(records, models.RawRecord{
			Source:   s.Name(),
			Category: models.CategoryHotel,
			Fields: map[string]any{
				"id":        entry.Hotel.HotelID,
				"name":      entry.Hotel.Name,
				"address":   formatAddress(entry.Hotel.Address.Lines, entry.Hotel.Address.PostalCode, entry.Hotel.Address.CityName, entry.Hotel.Address.CountryName),
				"rating":    entry.Hotel.Rating,
				"amenities": entry.Hotel.Amenities,
				"price":     entry.Offers[0].Price.Total,
				"currency":  entry.Offers[0].Price.Currency,
			},
		})
	}
	return records, nil
}

func (s *AmadeusSource) lookupCityCode(ctx context.Context, city string) (string, error) {
	body, err := s.get(ctx, "/v1/reference-data/locations/cities", url.Values{
		"keyword": {city},
		"max":     {"1"},
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		Data []struct {
			IataCode string `json:"iataCode"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Data) == 0 {
		return "", fmt.Errorf("amadeus: no city code for %q", city)
	}
	return resp.Data[0].IataCode, nil
}

func (s *AmadeusSource) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("amadeus: %w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("amadeus: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("amadeus: %w", ErrRateLimited)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("amadeus: auth rejected (%d): %w", resp.StatusCode, ErrSourceUnavailable)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("amadeus: %s returned %d", path, resp.StatusCode)
	}
	return body, nil
}

func (s *AmadeusSource) accessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.tokenExp) {
		return s.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {s.cfg.APIKey},
		"client_secret": {s.cfg.APISecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("amadeus: %w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("amadeus: token: %w", ErrRateLimited)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("amadeus: token request rejected (%d): %w", resp.StatusCode, ErrSourceUnavailable)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil || tok.AccessToken == "" {
		return "", fmt.Errorf("amadeus: malformed token response: %w", ErrSourceUnavailable)
	}

	s.token = tok.AccessToken
	s.tokenExp = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - 30*time.Second)
	return s.token, nil
}

func isRateLimit(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

func formatAddress(lines []string, parts ...string) string {
	all := append([]string{}, lines...)
	for _, p := range parts {
		if p != "" {
			all = append(all, p)
		}
	}
	return strings.Join(all, ", ")
}
