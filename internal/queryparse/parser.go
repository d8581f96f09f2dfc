// Package queryparse turns a free-text trip request into a structured
// query. It is regex-driven and deliberately forgiving: anything it
// cannot pick out is left at its zero value for validation to default
// or reject.
package queryparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/awidjaja/tripplanner/internal/models"
)

var (
	fromToRe    = regexp.MustCompile(`(?i)\bfrom\s+([a-zA-Z][a-zA-Z .'-]*?)\s+to\s+([a-zA-Z][a-zA-Z .'-]*?)(?:\s+(?:on|in|for|between|from|departing|leaving)\b|[,.]|$)`)
	toOnlyRe    = regexp.MustCompile(`(?i)\b(?:to|in|visit(?:ing)?)\s+(?:visit(?:ing)?\s+)?([a-zA-Z][a-zA-Z .'-]*?)(?:\s+(?:on|in|for|between|from|departing|leaving|with)\b|[,.]|$)`)
	dateRe      = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	monthDayRe  = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`)
	travelersRe = regexp.MustCompile(`(?i)\b(\d+)\s*(?:travelers?|travellers?|people|persons?|adults?|pax)\b`)
)

var monthNums = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Parse extracts a TripQuery from natural language. The result is not
// validated; callers run Validate themselves.
func Parse(text string) models.TripQuery {
	q := models.TripQuery{}

	if m := fromToRe.FindStringSubmatch(text); m != nil {
		q.OriginCity = cleanCity(m[1])
		q.DestinationCity = cleanCity(m[2])
	} else if m := toOnlyRe.FindStringSubmatch(text); m != nil {
		q.DestinationCity = cleanCity(m[1])
	}

	dates := dateRe.FindAllString(text, 2)
	if len(dates) == 0 {
		dates = monthDayDates(text, time.Now())
	}
	if len(dates) > 0 {
		q.DepartureDate = dates[0]
	}
	if len(dates) > 1 {
		q.ReturnDate = dates[1]
	}

	if m := travelersRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			q.Travelers = n
		}
	}

	q.BudgetLevel = parseBudget(text)
	q.FlightClass = parseCabin(text)
	return q
}

// monthDayDates resolves "Jun 15" style dates to ISO form. Without an
// explicit year the nearest future occurrence is assumed.
func monthDayDates(text string, now time.Time) []string {
	matches := monthDayRe.FindAllStringSubmatch(text, 2)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		month := monthNums[strings.ToLower(m[1])]
		day, err := strconv.Atoi(m[2])
		if err != nil || day < 1 || day > 31 {
			continue
		}

		year := now.Year()
		if m[3] != "" {
			year, err = strconv.Atoi(m[3])
			if err != nil {
				continue
			}
		} else if d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC); d.Before(now.Truncate(24 * time.Hour)) {
			year++
		}
		out = append(out, time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02"))
	}
	return out
}

func parseBudget(text string) models.BudgetLevel {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "luxury"), strings.Contains(lower, "5 star"),
		strings.Contains(lower, "five star"), strings.Contains(lower, "upscale"):
		return models.BudgetLuxury
	case strings.Contains(lower, "cheap"), strings.Contains(lower, "budget"),
		strings.Contains(lower, "affordable"), strings.Contains(lower, "low cost"):
		return models.BudgetLow
	}
	return ""
}

func parseCabin(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "first class"):
		return "first"
	case strings.Contains(lower, "business class"), strings.Contains(lower, "business flight"):
		return "business"
	case strings.Contains(lower, "premium economy"):
		return "premium_economy"
	}
	return ""
}

func cleanCity(s string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
