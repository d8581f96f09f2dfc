// Package iata resolves city names to IATA location codes, preferring a
// live API lookup with a static table as fallback.
package iata

import (
	"context"
	"strings"
	"sync"
)

// LookupFunc asks an external reference-data API for a city code.
type LookupFunc func(ctx context.Context, city string) (string, error)

var cityCodes = map[string]string{
	"new york":      "NYC",
	"los angeles":   "LAX",
	"chicago":       "CHI",
	"san francisco": "SFO",
	"miami":         "MIA",
	"london":        "LON",
	"paris":         "PAR",
	"rome":          "ROM",
	"madrid":        "MAD",
	"amsterdam":     "AMS",
	"berlin":        "BER",
	"tokyo":         "TYO",
	"osaka":         "OSA",
	"seoul":         "SEL",
	"singapore":     "SIN",
	"bangkok":       "BKK",
	"hong kong":     "HKG",
	"sydney":        "SYD",
	"melbourne":     "MEL",
	"dubai":         "DXB",
	"delhi":         "DEL",
	"mumbai":        "BOM",
	"bangalore":     "BLR",
	"hyderabad":     "HYD",
	"chennai":       "MAA",
	"jakarta":       "JKT",
	"bali":          "DPS",
	"denpasar":      "DPS",
	"kuala lumpur":  "KUL",
	"istanbul":      "IST",
	"toronto":       "YTO",
	"mexico city":   "MEX",
	"sao paulo":     "SAO",
	"buenos aires":  "BUE",
	"cairo":         "CAI",
	"cape town":     "CPT",
}

type Resolver struct {
	lookup LookupFunc

	mu    sync.Mutex
	cache map[string]string
}

// NewResolver builds a resolver; lookup may be nil, in which case only
// the static table is consulted.
func NewResolver(lookup LookupFunc) *Resolver {
	return &Resolver{
		lookup: lookup,
		cache:  make(map[string]string),
	}
}

// CityCode resolves a city name to an IATA code. When neither the API
// nor the table knows the city, the uppercased 3-letter prefix is
// returned as a best guess so a search can still be attempted.
func (r *Resolver) CityCode(ctx context.Context, city string) string {
	key := strings.ToLower(strings.TrimSpace(city))
	if key == "" {
		return ""
	}

	r.mu.Lock()
	code, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return code
	}

	code = r.resolve(ctx, key)

	r.mu.Lock()
	r.cache[key] = code
	r.mu.Unlock()
	return code
}

func (r *Resolver) resolve(ctx context.Context, key string) string {
	if r.lookup != nil {
		if code, err := r.lookup(ctx, key); err == nil && code != "" {
			return code
		}
	}

	if code, ok := cityCodes[key]; ok {
		return code
	}
	for name, code := range cityCodes {
		if strings.Contains(key, name) || strings.Contains(name, key) {
			return code
		}
	}

	guess := strings.ToUpper(strings.ReplaceAll(key, " ", ""))
	if len(guess) > 3 {
		guess = guess[:3]
	}
	return guess
}
