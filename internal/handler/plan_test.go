package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awidjaja/tripplanner/internal/aggregator"
	"github.com/awidjaja/tripplanner/internal/models"
)

type stubRunner struct {
	result models.RankedResultSet
}

func (r *stubRunner) Run(ctx context.Context, q models.TripQuery) models.RankedResultSet {
	return r.result
}

type memoryCache struct {
	data map[string][]byte
	sets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) key(q models.TripQuery) string {
	b, _ := json.Marshal(q)
	return string(b)
}

func (c *memoryCache) Get(ctx context.Context, q models.TripQuery) ([]byte, bool) {
	b, ok := c.data[c.key(q)]
	return b, ok
}

func (c *memoryCache) Set(ctx context.Context, q models.TripQuery, plan []byte) error {
	c.sets++
	c.data[c.key(q)] = plan
	return nil
}

func (c *memoryCache) Close() error { return nil }

func newTestHandler(c *memoryCache) *PlanHandler {
	hotels := &stubRunner{result: models.RankedResultSet{
		Category: models.CategoryHotel,
		Records:  []models.Record{models.Hotel{Name: "Grand Palace", Source: "test"}},
	}}
	empty := func(cat models.Category) *stubRunner {
		return &stubRunner{result: models.RankedResultSet{Category: cat, Records: []models.Record{}}}
	}

	agg := aggregator.New(
		empty(models.CategoryFlight),
		hotels,
		empty(models.CategoryActivity),
		nil, nil,
		aggregator.Config{Workers: 2},
		zerolog.Nop(),
	)
	return NewPlanHandler(agg, c, zerolog.Nop())
}

func doRequest(t *testing.T, h *PlanHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/trips/plan", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Plan(e.NewContext(req, rec)))
	return rec
}

func TestPlanStructuredRequest(t *testing.T) {
	cache := newMemoryCache()
	h := newTestHandler(cache)

	rec := doRequest(t, h, `{"origin_city": "New York", "destination_city": "Paris", "departure_date": "2026-09-10", "return_date": "2026-09-14", "travelers": 2}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var plan models.TripPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Equal(t, "Paris", plan.Query.DestinationCity)
	assert.Equal(t, models.PlanSuccess, plan.Status)
	assert.Equal(t, 1, cache.sets)
}

func TestPlanNaturalLanguageRequest(t *testing.T) {
	h := newTestHandler(newMemoryCache())

	rec := doRequest(t, h, `{"query": "plan a trip from new york to paris for 2 travelers"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var plan models.TripPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Equal(t, "Paris", plan.Query.DestinationCity)
	assert.Equal(t, "New York", plan.Query.OriginCity)
	assert.Equal(t, 2, plan.Query.Travelers)
}

func TestPlanMissingDestination(t *testing.T) {
	h := newTestHandler(newMemoryCache())

	rec := doRequest(t, h, `{"travelers": 2}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error)
	assert.Contains(t, resp.Message, "destination_city")
}

func TestPlanMalformedBody(t *testing.T) {
	h := newTestHandler(newMemoryCache())

	rec := doRequest(t, h, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanServedFromCache(t *testing.T) {
	cache := newMemoryCache()
	h := newTestHandler(cache)

	body := `{"destination_city": "Paris"}`
	first := doRequest(t, h, body)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, 1, cache.sets)

	second := doRequest(t, h, body)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, cache.sets, "second request must not rebuild the plan")

	var a, b models.TripPlan
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, a.ID, b.ID)
}

func TestHealthHandler(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, HealthHandler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
