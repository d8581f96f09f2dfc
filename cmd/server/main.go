package main

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/awidjaja/tripplanner/internal/aggregator"
	"github.com/awidjaja/tripplanner/internal/cache"
	"github.com/awidjaja/tripplanner/internal/extract"
	"github.com/awidjaja/tripplanner/internal/filter"
	"github.com/awidjaja/tripplanner/internal/handler"
	"github.com/awidjaja/tripplanner/internal/models"
	"github.com/awidjaja/tripplanner/internal/normalize"
	"github.com/awidjaja/tripplanner/internal/orchestrator"
	"github.com/awidjaja/tripplanner/internal/ratelimit"
	"github.com/awidjaja/tripplanner/internal/sources"
)

type Config struct {
	Port         string
	CacheEnabled bool
	RedisHost    string
	RedisPort    string
	RedisTTL     time.Duration

	OpenAIKey   string
	OpenAIModel string

	AmadeusKey     string
	AmadeusSecret  string
	AmadeusBaseURL string

	TargetCount    int
	CategoryBudget time.Duration
	MaxRetries     int
	BaseDelay      time.Duration
	SourceLimits   map[string]ratelimit.RateLimitConfig

	OriginCountry string
	LogLevel      string
}

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()

	logger := newLogger(cfg.LogLevel)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	httpClient := &http.Client{Timeout: 15 * time.Second}

	var extractor *extract.OpenAIExtractor
	if cfg.OpenAIKey != "" {
		extractor = extract.NewOpenAIExtractor(cfg.OpenAIKey, cfg.OpenAIModel)
	} else {
		logger.Warn().Msg("OPENAI_API_KEY not set; web search extraction and LLM summaries disabled")
	}

	flightSources, hotelSources, activitySources := initializeSources(cfg, extractor, httpClient, logger)
	logger.Info().
		Int("flights", len(flightSources)).
		Int("hotels", len(hotelSources)).
		Int("activities", len(activitySources)).
		Msg("sources initialized")

	rateLimiter := ratelimit.NewSourceLimiter(ratelimit.DefaultConfig(), cfg.SourceLimits)

	caller := ratelimit.NewCaller(cfg.MaxRetries, cfg.BaseDelay, rateLimiter)

	orchCfg := orchestrator.Config{
		TargetCount: cfg.TargetCount,
		Budget:      cfg.CategoryBudget,
	}
	flights := orchestrator.New(models.CategoryFlight, flightSources, normalizeFlight, caller, orchCfg, logger)
	hotels := orchestrator.New(models.CategoryHotel, hotelSources, normalizeHotel, caller, orchCfg, logger).
		WithFilter(filter.ByBudget)
	activities := orchestrator.New(models.CategoryActivity, activitySources, normalizeActivity, caller, orchCfg, logger)

	travelInfo := sources.NewTravelInfoSource(httpClient, cfg.OriginCountry, logger)

	var summarizer aggregator.Summarizer
	if extractor != nil {
		summarizer = extractor
	}

	agg := aggregator.New(flights, hotels, activities, travelInfo, summarizer, aggregator.Config{Workers: 2}, logger)

	var planCache cache.Cache
	if cfg.CacheEnabled {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Host: cfg.RedisHost,
			Port: cfg.RedisPort,
			TTL:  cfg.RedisTTL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		planCache = redisCache
		logger.Info().Str("host", cfg.RedisHost+":"+cfg.RedisPort).Dur("ttl", cfg.RedisTTL).Msg("redis cache enabled")
	} else {
		planCache = cache.NewNoOpCache()
		logger.Info().Msg("cache disabled")
	}

	planHandler := handler.NewPlanHandler(agg, planCache, logger)

	api := e.Group("/api/v1")
	api.POST("/trips/plan", planHandler.Plan)
	e.GET("/health", handler.HealthHandler)

	logger.Info().Str("port", cfg.Port).Msg("starting trip planner server")

	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func loadConfig() Config {
	return Config{
		Port:         getEnv("PORT", "8080"),
		CacheEnabled: getEnvBool("CACHE_ENABLED", true),
		RedisHost:    getEnv("REDIS_HOST", "localhost"),
		RedisPort:    getEnv("REDIS_PORT", "6379"),
		RedisTTL:     getEnvDuration("REDIS_TTL", 10*time.Minute),

		OpenAIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIModel: getEnv("OPENAI_MODEL", ""),

		AmadeusKey:     getEnv("AMADEUS_API_KEY", ""),
		AmadeusSecret:  getEnv("AMADEUS_API_SECRET", ""),
		AmadeusBaseURL: getEnv("AMADEUS_BASE_URL", ""),

		TargetCount:    getEnvInt("TARGET_COUNT", orchestrator.DefaultTargetCount),
		CategoryBudget: getEnvDuration("CATEGORY_BUDGET", 45*time.Second),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		BaseDelay:      getEnvDuration("RETRY_BASE_DELAY", time.Second),
		SourceLimits: map[string]ratelimit.RateLimitConfig{
			"amadeus":     getEnvRateLimit("RATE_LIMIT_AMADEUS", 10, 20),
			"flightsite":  getEnvRateLimit("RATE_LIMIT_FLIGHTSITE", 2, 5),
			"websearch":   getEnvRateLimit("RATE_LIMIT_WEBSEARCH", 2, 5),
			"bookingsite": getEnvRateLimit("RATE_LIMIT_BOOKINGSITE", 2, 5),
		},

		OriginCountry: getEnv("ORIGIN_COUNTRY", "united-states"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// initializeSources builds each category's priority-ordered chain from
// whatever credentials are configured. Missing credentials shorten the
// chain rather than failing startup.
func initializeSources(cfg Config, extractor *extract.OpenAIExtractor, client *http.Client, logger zerolog.Logger) (flights, hotels, activities []sources.Source) {
	var amadeus *sources.AmadeusSource
	if cfg.AmadeusKey != "" && cfg.AmadeusSecret != "" {
		amadeus = sources.NewAmadeusSource(sources.AmadeusConfig{
			BaseURL:   cfg.AmadeusBaseURL,
			APIKey:    cfg.AmadeusKey,
			APISecret: cfg.AmadeusSecret,
			Limit:     cfg.TargetCount,
		}, client, logger)
	} else {
		logger.Warn().Msg("Amadeus credentials not set; flight and hotel API search disabled")
	}

	var webSearch *sources.WebSearchSource
	if extractor != nil {
		webSearch = sources.NewWebSearchSource(extractor, client, cfg.TargetCount, logger)
	}
	bookingSite := sources.NewBookingSiteSource(client, cfg.TargetCount, logger)
	flightSite := sources.NewFlightSiteSource(client, nil, cfg.TargetCount, logger)

	if amadeus != nil {
		flights = append(flights, amadeus)
	}
	flights = append(flights, flightSite)

	if webSearch != nil {
		hotels = append(hotels, webSearch)
	}
	if amadeus != nil {
		hotels = append(hotels, amadeus)
	}
	hotels = append(hotels, bookingSite)

	if webSearch != nil {
		activities = append(activities, webSearch)
	}
	activities = append(activities, bookingSite)

	return flights, hotels, activities
}

func normalizeFlight(raw models.RawRecord) (models.Record, bool) {
	f, ok := normalize.Flight(raw)
	return f, ok
}

func normalizeHotel(raw models.RawRecord) (models.Record, bool) {
	h, ok := normalize.Hotel(raw)
	return h, ok
}

func normalizeActivity(raw models.RawRecord) (models.Record, bool) {
	a, ok := normalize.Activity(raw)
	return a, ok
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvRateLimit reads a "rps:burst" pair, e.g. "10:20".
func getEnvRateLimit(key string, rps float64, burst int) ratelimit.RateLimitConfig {
	fallback := ratelimit.RateLimitConfig{RequestsPerSecond: rps, BurstSize: burst}

	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return fallback
	}
	r, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return fallback
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil {
		return fallback
	}
	return ratelimit.RateLimitConfig{RequestsPerSecond: r, BurstSize: b}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
