package aggregator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/awidjaja/tripplanner/internal/extract"
	"github.com/awidjaja/tripplanner/internal/models"
	"github.com/awidjaja/tripplanner/pkg/price"
)

const summarySystemPrompt = "You are a travel assistant that writes concise trip summaries. " +
	`Reply with JSON only: {"headline": "...", "overview": "..."} where the overview is 2-3 sentences.`

// buildSummary asks the summarizer for a short narrative referencing
// the top-ranked picks, falling back to a static summary whenever the
// LLM is absent or misbehaves.
func (a *Aggregator) buildSummary(ctx context.Context, q models.TripQuery, plan *models.TripPlan) models.Summary {
	fallback := staticSummary(q)
	if a.summarizer == nil {
		return fallback
	}

	raw, err := a.summarizer.Summarize(ctx, summarySystemPrompt, summaryPrompt(q, plan))
	if err != nil {
		a.log.Warn().Err(err).Msg("summary generation failed")
		return fallback
	}

	fields, err := extract.DecodeLoose(raw)
	if err != nil {
		a.log.Warn().Err(err).Msg("summary response was not JSON")
		return fallback
	}

	summary := fallback
	if h, ok := fields["headline"].(string); ok && h != "" {
		summary.Headline = h
	}
	if o, ok := fields["overview"].(string); ok && o != "" {
		summary.Overview = o
	}
	return summary
}

func summaryPrompt(q models.TripQuery, plan *models.TripPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trip from %s to %s, %s to %s, %d traveler(s), %s budget.\n",
		orUnknown(q.OriginCity), q.DestinationCity, orUnknown(q.DepartureDate), orUnknown(q.ReturnDate), q.Travelers, q.BudgetLevel)

	b.WriteString("Best flight: " + bestFlight(plan.Flights) + "\n")
	b.WriteString("Best hotel: " + bestHotel(plan.Hotels) + "\n")
	b.WriteString("Best activity: " + bestActivity(plan.Activities) + "\n")

	if plan.TravelInfo != nil && plan.TravelInfo.Visa.Requirement != "" {
		b.WriteString("Visa requirement: " + plan.TravelInfo.Visa.Requirement + "\n")
	}
	if len(plan.Suggestions) > 0 {
		b.WriteString("Issues: " + strings.Join(plan.Suggestions, "; ") + "\n")
	}
	return b.String()
}

func bestFlight(set models.RankedResultSet) string {
	if len(set.Records) == 0 {
		return "none found"
	}
	f, ok := set.Records[0].(models.Flight)
	if !ok || len(f.Segments) == 0 {
		return "none found"
	}
	desc := fmt.Sprintf("%s %s, %d stop(s)", f.Segments[0].Airline, f.Segments[0].FlightNumber, f.Stops())
	if f.Price != nil {
		desc += " for " + price.Format(*f.Price)
	}
	return desc
}

func bestHotel(set models.RankedResultSet) string {
	if len(set.Records) == 0 {
		return "none found"
	}
	h, ok := set.Records[0].(models.Hotel)
	if !ok {
		return "none found"
	}
	desc := h.Name
	if h.Rating != nil {
		desc += fmt.Sprintf(" (%.1f/5)", *h.Rating)
	}
	if h.Price != nil {
		desc += " for " + price.Format(*h.Price) + " per night"
	}
	return desc
}

func bestActivity(set models.RankedResultSet) string {
	if len(set.Records) == 0 {
		return "none found"
	}
	act, ok := set.Records[0].(models.Activity)
	if !ok {
		return "none found"
	}
	return act.Name
}

func staticSummary(q models.TripQuery) models.Summary {
	summary := models.Summary{Headline: "Trip to " + q.DestinationCity}

	from := ""
	if q.OriginCity != "" {
		from = " from " + q.OriginCity
	}
	if days, ok := tripDays(q.DepartureDate, q.ReturnDate); ok {
		summary.Overview = fmt.Sprintf("A %d-day trip%s to %s.", days, from, q.DestinationCity)
	} else {
		summary.Overview = fmt.Sprintf("A trip%s to %s.", from, q.DestinationCity)
	}
	return summary
}

func tripDays(departure, ret string) (int, bool) {
	start, err := time.Parse("2006-01-02", departure)
	if err != nil {
		return 0, false
	}
	end, err := time.Parse("2006-01-02", ret)
	if err != nil {
		return 0, false
	}
	days := int(end.Sub(start).Hours() / 24)
	if days < 0 {
		return 0, false
	}
	return days, true
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
