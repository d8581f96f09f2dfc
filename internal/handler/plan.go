package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/awidjaja/tripplanner/internal/aggregator"
	"github.com/awidjaja/tripplanner/internal/cache"
	"github.com/awidjaja/tripplanner/internal/models"
	"github.com/awidjaja/tripplanner/internal/queryparse"
)

// PlanRequest accepts either structured query fields or a free-text
// "query" sentence. When both are present the structured fields win.
type PlanRequest struct {
	Query string `json:"query"`
	models.TripQuery
}

type PlanHandler struct {
	aggregator *aggregator.Aggregator
	cache      cache.Cache
	log        zerolog.Logger
}

func NewPlanHandler(agg *aggregator.Aggregator, c cache.Cache, log zerolog.Logger) *PlanHandler {
	return &PlanHandler{
		aggregator: agg,
		cache:      c,
		log:        log.With().Str("component", "handler").Logger(),
	}
}

func (h *PlanHandler) Plan(c echo.Context) error {
	startTime := time.Now()
	ctx := c.Request().Context()

	var req PlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	q := req.TripQuery
	if strings.TrimSpace(req.Query) != "" && q.DestinationCity == "" {
		q = queryparse.Parse(req.Query)
	}

	if err := q.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	if cached, found := h.cache.Get(ctx, q); found {
		h.log.Info().
			Str("destination", q.DestinationCity).
			Dur("elapsed", time.Since(startTime)).
			Msg("plan served from cache")
		return c.JSONBlob(http.StatusOK, cached)
	}

	plan, err := h.aggregator.Plan(ctx, q)
	if err != nil {
		if errors.Is(err, models.ErrInvalidQuery) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "validation_error",
				Message: err.Error(),
				Code:    http.StatusBadRequest,
			})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "plan_error",
			Message: "Failed to build trip plan: " + err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}

	body, err := json.Marshal(plan)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "plan_error",
			Message: "Failed to encode trip plan: " + err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}
	_ = h.cache.Set(ctx, q, body)

	h.log.Info().
		Str("destination", q.DestinationCity).
		Str("status", string(plan.Status)).
		Int("flights", len(plan.Flights.Records)).
		Int("hotels", len(plan.Hotels.Records)).
		Int("activities", len(plan.Activities.Records)).
		Dur("elapsed", time.Since(startTime)).
		Msg("plan built")

	return c.JSONBlob(http.StatusOK, body)
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
