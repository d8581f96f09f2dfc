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

	"github.com/awidjaja/tripplanner/internal/dedupe"
	"github.com/awidjaja/tripplanner/internal/extract"
	"github.com/awidjaja/tripplanner/internal/models"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
}

const (
	maxPageChars  = 15000
	defaultPages  = 3
	searchResults = 5
)

// WebSearchSource issues a DuckDuckGo search for the query, scrapes the
// top result pages, and has an LLM pull structured records out of the
// text. Cheap and quota-free, so it runs ahead of the commercial API.
type WebSearchSource struct {
	client    *http.Client
	extractor extract.Extractor
	searchURL string
	limit     int
	pages     int
	log       zerolog.Logger
}

func NewWebSearchSource(extractor extract.Extractor, client *http.Client, limit int, log zerolog.Logger) *WebSearchSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if limit <= 0 {
		limit = 5
	}
	return &WebSearchSource{
		client:    client,
		extractor: extractor,
		searchURL: "https://html.duckduckgo.com/html/",
		limit:     limit,
		pages:     defaultPages,
		log:       log.With().Str("source", "websearch").Logger(),
	}
}

func (s *WebSearchSource) Name() string { return "websearch" }

func (s *WebSearchSource) Search(ctx context.Context, category models.Category, q models.TripQuery) ([]models.RawRecord, error) {
	if category == models.CategoryFlight {
		// Flights come from the API and metasearch scraper sources.
		return []models.RawRecord{}, nil
	}

	results, err := s.searchDuckDuckGo(ctx, searchQuery(category, q))
	if err != nil {
		return nil, err
	}

	records := make([]models.RawRecord, 0, s.limit)
	seen := make(map[string]bool)

	pages := 0
	for _, result := range results {
		if pages >= s.pages || len(records) >= s.limit {
			break
		}
		content := s.scrapePage(ctx, result.url)
		if content == "" {
			continue
		}
		pages++

		fields, err := s.extractor.ExtractStructured(ctx, content, schemaHint(category))
		if err != nil {
			s.log.Warn().Err(err).Str("url", result.url).Msg("extraction failed")
			continue
		}

		for _, item := range extractedItems(fields, category) {
			name, _ := item["name"].(string)
			key := dedupe.Key(name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			item["source_url"] = result.url

			records = append(records, models.RawRecord{
				Source:   s.Name(),
				Category: category,
				Fields:   item,
			})
			if len(records) >= s.limit {
				break
			}
		}
	}
	return records, nil
}

type searchResult struct {
	title string
	url   string
}

func (s *WebSearchSource) searchDuckDuckGo(ctx context.Context, query string) ([]searchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.searchURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("websearch: %w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("websearch: %w", ErrRateLimited)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("websearch: search returned %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("websearch: parse search page: %w", err)
	}

	var results []searchResult
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find(".result__title a")
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		results = append(results, searchResult{
			title: strings.TrimSpace(link.Text()),
			url:   resolveRedirect(href),
		})
		return len(results) < searchResults
	})
	return results, nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg=<target> indirection.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

// scrapePage fetches a result page and reduces it to plain text,
// dropping chrome and scripts and truncating to stay inside LLM token
// limits. Failures just skip the page.
func (s *WebSearchSource) scrapePage(ctx context.Context, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Debug().Err(err).Str("url", pageURL).Msg("page fetch failed")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}
	doc.Find("script, style, header, footer, nav").Remove()

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if len(text) > maxPageChars {
		text = text[:maxPageChars]
	}
	return text
}

func searchQuery(category models.Category, q models.TripQuery) string {
	switch category {
	case models.CategoryHotel:
		base := "best hotels in " + q.DestinationCity
		switch q.BudgetLevel {
		case models.BudgetLow:
			base = "affordable cheap budget hotels in " + q.DestinationCity
		case models.BudgetLuxury:
			base = "luxury 5 star hotels in " + q.DestinationCity
		}
		if q.AccommodationType != "" {
			base += " " + q.AccommodationType
		}
		if q.DepartureDate != "" && q.ReturnDate != "" {
			base += " " + q.DepartureDate + " to " + q.ReturnDate
		}
		return base
	case models.CategoryActivity:
		return "top things to do in " + q.DestinationCity + " attractions activities"
	default:
		return q.DestinationCity + " travel"
	}
}

func schemaHint(category models.Category) string {
	if category == models.CategoryActivity {
		return `Extract up to 5 activities or attractions from the content. Schema:
{"activities": [{"name": "...", "description": "1-2 sentences", "rating": "4.5", "price_range": "e.g. $20-40 or free", "location": "..."}]}
Leave fields empty when not in the content. If the content has no activities, return {"activities": []}.`
	}
	return `Extract up to 3 hotels from the content. Schema:
{"hotels": [{"name": "...", "address": "...", "rating": "e.g. 4.2 or 8.5/10", "price": "e.g. EUR 100-150 per night", "amenities": ["..."], "description": "1-2 sentences"}]}
Leave fields empty when not in the content. If the content has no hotels, return {"hotels": []}.`
}

// extractedItems digs the record list out of the LLM's reply under the
// expected key, tolerating the generic "items" wrapper.
func extractedItems(fields map[string]any, category models.Category) []map[string]any {
	keys := []string{"items"}
	if category == models.CategoryActivity {
		keys = append([]string{"activities"}, keys...)
	} else {
		keys = append([]string{"hotels"}, keys...)
	}

	for _, key := range keys {
		list, ok := fields[key].([]any)
		if !ok {
			continue
		}
		out := make([]map[string]any, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}
