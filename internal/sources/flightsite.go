package sources

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/awidjaja/tripplanner/internal/iata"
	"github.com/awidjaja/tripplanner/internal/models"
)

// FlightSiteSource scrapes a flight metasearch results page. Listings
// carry airline, price, times and a stop count but no per-leg routing,
// so each record is a single synthesized segment between the resolved
// city codes. Like BookingSiteSource it is expected to come back empty
// whenever the markup shifts.
type FlightSiteSource struct {
	client   *http.Client
	baseURL  string
	limit    int
	resolver *iata.Resolver
	log      zerolog.Logger
}

func NewFlightSiteSource(client *http.Client, resolver *iata.Resolver, limit int, log zerolog.Logger) *FlightSiteSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if resolver == nil {
		resolver = iata.NewResolver(nil)
	}
	if limit <= 0 {
		limit = 5
	}
	return &FlightSiteSource{
		client:   client,
		baseURL:  "https://www.kayak.com",
		limit:    limit,
		resolver: resolver,
		log:      log.With().Str("source", "flightsite").Logger(),
	}
}

func (s *FlightSiteSource) Name() string { return "flightsite" }

func (s *FlightSiteSource) Search(ctx context.Context, category models.Category, q models.TripQuery) ([]models.RawRecord, error) {
	if category != models.CategoryFlight {
		return []models.RawRecord{}, nil
	}
	if q.OriginCity == "" {
		return []models.RawRecord{}, nil
	}

	origin := s.resolver.CityCode(ctx, q.OriginCity)
	dest := s.resolver.CityCode(ctx, q.DestinationCity)
	if origin == "" || dest == "" {
		return []models.RawRecord{}, nil
	}

	path := fmt.Sprintf("/flights/%s-%s/%s", origin, dest, q.DepartureDate)
	if q.ReturnDate != "" {
		path += "/" + q.ReturnDate
	}
	params := url.Values{
		"sort":   {"bestflight_a"},
		"adults": {fmt.Sprint(q.Travelers)},
	}

	doc, err := s.fetch(ctx, s.baseURL+path+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	records := make([]models.RawRecord, 0, s.limit)
	doc.Find(`div[class*="resultWrapper"]`).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		airline := strings.TrimSpace(card.Find(`div[class*="codeshares-airline-names"]`).First().Text())
		priceText := strings.TrimSpace(card.Find(`span[class*="price-text"]`).First().Text())
		if airline == "" && priceText == "" {
			return true
		}

		stops := strings.TrimSpace(card.Find(`span[class*="stops-text"]`).First().Text())
		if stops == "" {
			stops = "Direct"
		}

		records = append(records, models.RawRecord{
			Source:   s.Name(),
			Category: models.CategoryFlight,
			Fields: map[string]any{
				"price": priceText,
				"stops": stops,
				"segments": []any{
					map[string]any{
						"departure_airport": origin,
						"arrival_airport":   dest,
						"departure_time":    strings.TrimSpace(card.Find(`span[class*="depart-time"]`).First().Text()),
						"arrival_time":      strings.TrimSpace(card.Find(`span[class*="arrival-time"]`).First().Text()),
						"airline":           airline,
					},
				},
			},
		})
		return len(records) < s.limit
	})
	return records, nil
}

func (s *FlightSiteSource) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flightsite: %w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("flightsite: %w", ErrRateLimited)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("flightsite: page returned %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}
