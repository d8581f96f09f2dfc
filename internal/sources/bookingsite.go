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

	"github.com/awidjaja/tripplanner/internal/models"
)

// BookingSiteSource scrapes a booking site's listing page directly.
// Selector-based scraping is fragile by nature: any markup change makes
// it come back empty, which the fallback chain absorbs.
type BookingSiteSource struct {
	client  *http.Client
	baseURL string
	limit   int
	log     zerolog.Logger
}

func NewBookingSiteSource(client *http.Client, limit int, log zerolog.Logger) *BookingSiteSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if limit <= 0 {
		limit = 5
	}
	return &BookingSiteSource{
		client:  client,
		baseURL: "https://www.booking.com",
		limit:   limit,
		log:     log.With().Str("source", "bookingsite").Logger(),
	}
}

func (s *BookingSiteSource) Name() string { return "bookingsite" }

func (s *BookingSiteSource) Search(ctx context.Context, category models.Category, q models.TripQuery) ([]models.RawRecord, error) {
	switch category {
	case models.CategoryHotel:
		return s.searchHotels(ctx, q)
	case models.CategoryActivity:
		return s.searchAttractions(ctx, q)
	default:
		return []models.RawRecord{}, nil
	}
}

func (s *BookingSiteSource) searchHotels(ctx context.Context, q models.TripQuery) ([]models.RawRecord, error) {
	params := url.Values{
		"ss":           {q.DestinationCity},
		"group_adults": {fmt.Sprint(q.Travelers)},
	}
	if q.DepartureDate != "" {
		params.Set("checkin", q.DepartureDate)
	}
	if q.ReturnDate != "" {
		params.Set("checkout", q.ReturnDate)
	}

	doc, err := s.fetch(ctx, s.baseURL+"/searchresults.html?"+params.Encode())
	if err != nil {
		return nil, err
	}

	records := make([]models.RawRecord, 0, s.limit)
	doc.Find(`div[data-testid="property-card"]`).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		name := strings.TrimSpace(card.Find(`div[data-testid="title"]`).Text())
		if name == "" {
			return true
		}

		fields := map[string]any{
			"name":    name,
			"address": strings.TrimSpace(card.Find(`span[data-testid="address"]`).Text()),
			"price":   strings.TrimSpace(card.Find(`span[data-testid="price-and-discounted-price"]`).Text()),
		}
		if score := strings.TrimSpace(card.Find(`div[data-testid="review-score"] div`).First().Text()); score != "" {
			fields["rating"] = score + "/10"
		}

		records = append(records, models.RawRecord{
			Source:   s.Name(),
			Category: models.CategoryHotel,
			Fields:   fields,
		})
		return len(records) < s.limit
	})
	return records, nil
}

func (s *BookingSiteSource) searchAttractions(ctx context.Context, q models.TripQuery) ([]models.RawRecord, error) {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(q.DestinationCity), " ", "-"))
	doc, err := s.fetch(ctx, s.baseURL+"/attractions/searchresults/"+slug)
	if err != nil {
		return nil, err
	}

	records := make([]models.RawRecord, 0, s.limit)
	doc.Find(`div[data-testid="attraction-card"]`).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		name := strings.TrimSpace(card.Find(`h3`).First().Text())
		if name == "" {
			return true
		}

		fields := map[string]any{
			"name":        name,
			"description": strings.TrimSpace(card.Find(`div[data-testid="description"]`).Text()),
			"price_range": strings.TrimSpace(card.Find(`span[data-testid="price"]`).Text()),
			"location":    q.DestinationCity,
		}
		if score := strings.TrimSpace(card.Find(`span[data-testid="rating"]`).Text()); score != "" {
			fields["rating"] = score
		}

		records = append(records, models.RawRecord{
			Source:   s.Name(),
			Category: models.CategoryActivity,
			Fields:   fields,
		})
		return len(records) < s.limit
	})
	return records, nil
}

func (s *BookingSiteSource) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bookingsite: %w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("bookingsite: %w", ErrRateLimited)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("bookingsite: page returned %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}
