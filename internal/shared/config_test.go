package shared

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"SERPAPI_KEY", "CITY_QUALIFIER", "FETCH_WORKERS", "ALLOWED_ORIGINS", "SERPAPI_RETRIES"} {
		t.Setenv(k, "")
	}
	c := fromEnv()
	if c.Language != "en" || c.Region != "in" || c.CityQualifier != "Chennai" {
		t.Fatalf("unexpected locale defaults: %+v", c)
	}
	if c.FetchWorkers != 8 || c.SerpAPIRetries != 0 || c.SheetWorksheet != "AggregatedData" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if len(c.AllowedOrigins) != 1 || c.AllowedOrigins[0] != "*" {
		t.Fatalf("unexpected origins: %v", c.AllowedOrigins)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SERPAPI_KEY", "k")
	t.Setenv("CITY_QUALIFIER", "Mumbai")
	t.Setenv("FETCH_WORKERS", "3")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("PERSIST_QUEUE", "not-a-number")

	c := fromEnv()
	if c.SerpAPIKey != "k" || c.CityQualifier != "Mumbai" || c.FetchWorkers != 3 || c.CacheTTL != time.Minute {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if len(c.AllowedOrigins) != 2 || c.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", c.AllowedOrigins)
	}
	if c.PersistQueue != 16 {
		t.Fatalf("bad int should fall back to default, got %d", c.PersistQueue)
	}
}
