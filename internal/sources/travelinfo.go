package sources

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/awidjaja/tripplanner/internal/models"
)

// TravelInfoSource collects visa requirements, government advisories
// and health notes for the destination. Every section is best-effort;
// a partial TravelInfo is still useful. Fetch errors only when all
// three lookups came back with nothing.
type TravelInfoSource struct {
	client        *http.Client
	visaBaseURL   string
	advisoryURL   string
	healthBaseURL string
	originCountry string
	log           zerolog.Logger
}

func NewTravelInfoSource(client *http.Client, originCountry string, log zerolog.Logger) *TravelInfoSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if originCountry == "" {
		originCountry = "united-states"
	}
	return &TravelInfoSource{
		client:        client,
		visaBaseURL:   "https://www.visahq.com",
		advisoryURL:   "https://travel.state.gov/content/travel/en/traveladvisories/traveladvisories",
		healthBaseURL: "https://wwwnc.cdc.gov/travel/destinations/traveler/none",
		originCountry: originCountry,
		log:           log.With().Str("source", "travelinfo").Logger(),
	}
}

func (s *TravelInfoSource) Fetch(ctx context.Context, q models.TripQuery) (*models.TravelInfo, error) {
	dest := countrySlug(q.DestinationCity)

	info := &models.TravelInfo{}
	found := false

	if visa := s.fetchVisa(ctx, dest); visa != nil {
		info.Visa = *visa
		found = true
	}
	if advisory := s.fetchAdvisory(ctx, dest); advisory != nil {
		info.Advisories = append(info.Advisories, *advisory)
		found = true
	}
	if health := s.fetchHealth(ctx, dest); health != nil {
		info.Health = *health
		found = true
	}

	if !found {
		return nil, fmt.Errorf("travelinfo: no information found for %s", q.DestinationCity)
	}
	return info, nil
}

func (s *TravelInfoSource) fetchVisa(ctx context.Context, dest string) *models.VisaInfo {
	doc := s.fetchDoc(ctx, fmt.Sprintf("%s/%s/citizens/%s-visa/", s.visaBaseURL, s.originCountry, dest))
	if doc == nil {
		return nil
	}

	requirement := strings.TrimSpace(doc.Find(".visa-status, .requirement-status").First().Text())
	description := strings.TrimSpace(doc.Find(".visa-description, .requirement-details p").First().Text())
	if requirement == "" && description == "" {
		return nil
	}
	return &models.VisaInfo{
		Requirement: requirement,
		Description: truncate(description, 300),
	}
}

func (s *TravelInfoSource) fetchAdvisory(ctx context.Context, dest string) *models.Advisory {
	doc := s.fetchDoc(ctx, fmt.Sprintf("%s/%s-travel-advisory.html", s.advisoryURL, dest))
	if doc == nil {
		return nil
	}

	level := strings.TrimSpace(doc.Find(".tsg-rwd-emergency-alert-text, h1.advisory-level").First().Text())
	summary := strings.TrimSpace(doc.Find(".tsg-rwd-emergency-alert-frame p, .advisory-summary").First().Text())
	if level == "" && summary == "" {
		return nil
	}
	return &models.Advisory{
		Source:  "US State Department",
		Level:   level,
		Summary: truncate(summary, 200),
	}
}

func (s *TravelInfoSource) fetchHealth(ctx context.Context, dest string) *models.HealthInfo {
	doc := s.fetchDoc(ctx, s.healthBaseURL+"/"+dest)
	if doc == nil {
		return nil
	}

	summary := strings.TrimSpace(doc.Find(".notice-summary, #vaccines-and-medicines p").First().Text())
	var vaccinations []string
	doc.Find(".clinician-disease-vaccine a, .vaccine-name").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if v := strings.TrimSpace(sel.Text()); v != "" {
			vaccinations = append(vaccinations, v)
		}
		return len(vaccinations) < 5
	})
	if summary == "" && len(vaccinations) == 0 {
		return nil
	}
	return &models.HealthInfo{
		Summary:      truncate(summary, 200),
		Vaccinations: vaccinations,
	}
}

func (s *TravelInfoSource) fetchDoc(ctx context.Context, pageURL string) *goquery.Document {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Debug().Err(err).Str("url", pageURL).Msg("travel info fetch failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil
	}
	return doc
}

// countrySlug turns a destination name into the hyphenated lowercase
// form the advisory sites use in their URLs.
func countrySlug(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.TrimSpace(name)), "-"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
