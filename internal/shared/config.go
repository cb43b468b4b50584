package shared

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	MetricsAddr    string
	RequestTimeout time.Duration
	AllowedOrigins []string

	SerpAPIKey     string
	SerpAPIBase    string
	SerpAPIRPS     int
	SerpAPIRetries int
	Language       string
	Region         string
	CityQualifier  string
	FetchWorkers   int

	SheetID         string
	SheetWorksheet  string
	GoogleCredsJSON string

	MySQLDSN  string
	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	PersistQueue   int
	PersistTimeout time.Duration
}

// Load reads configuration from the environment, after merging an optional
// .env file from the working directory (real environment wins).
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg(".env present but unreadable")
	}
	return fromEnv()
}

func fromEnv() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
		AllowedOrigins: list(env("ALLOWED_ORIGINS", "*")),

		SerpAPIKey:     env("SERPAPI_KEY", ""),
		SerpAPIBase:    env("SERPAPI_BASE_URL", "https://serpapi.com"),
		SerpAPIRPS:     atoi("SERPAPI_RPS", 5),
		SerpAPIRetries: atoi("SERPAPI_RETRIES", 0),
		Language:       env("SEARCH_LANGUAGE", "en"),
		Region:         env("SEARCH_REGION", "in"),
		CityQualifier:  env("CITY_QUALIFIER", "Chennai"),
		FetchWorkers:   atoi("FETCH_WORKERS", 8),

		SheetID:         env("SHEET_ID", ""),
		SheetWorksheet:  env("SHEET_WORKSHEET", "AggregatedData"),
		GoogleCredsJSON: env("GOOGLE_CREDENTIALS_JSON", ""),

		MySQLDSN:  env("MYSQL_DSN", ""),
		RedisAddr: env("REDIS_ADDR", ""),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		PersistQueue:   atoi("PERSIST_QUEUE", 16),
		PersistTimeout: time.Duration(atoi("PERSIST_TIMEOUT_SECONDS", 30)) * time.Second,
	}
	if c.SerpAPIKey == "" {
		log.Warn().Msg("SERPAPI_KEY is empty; scrape requests will be rejected")
	}
	if c.SheetID == "" || c.GoogleCredsJSON == "" {
		log.Warn().Msg("SHEET_ID or GOOGLE_CREDENTIALS_JSON is empty; sheets persistence disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func list(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
