package sheets_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/api/option"

	"review_aggregator/internal/adapters/sheets"
	"review_aggregator/internal/domain"
)

func pfloat(f float64) *float64 { return &f }
func pint64(i int64) *int64     { return &i }

func newSink(t *testing.T, h http.HandlerFunc) *sheets.Sink {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	s, err := sheets.NewWithOptions(context.Background(), "sheet-123", "AggregatedData",
		option.WithEndpoint(ts.URL+"/"),
		option.WithoutAuthentication(),
	)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	return s
}

func TestSink_Append_RawRows(t *testing.T) {
	var body struct {
		Values [][]any `json:"values"`
	}
	s := newSink(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost ||
			!strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/sheet-123/values/") ||
			!strings.Contains(r.URL.Path, "AggregatedData") ||
			!strings.HasSuffix(r.URL.Path, ":append") {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("valueInputOption") != "RAW" || r.URL.Query().Get("insertDataOption") != "INSERT_ROWS" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-123"}`))
	})

	at := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	recs := []domain.ReviewRecord{
		{
			Name: "The Leela Palace", Source: domain.Booking, Rating: pfloat(4.5), ReviewCount: pint64(1200),
			Address: "Adyar", Website: "https://leela.com", Phone: domain.NA,
			RatingDistribution: map[string]int64{"5": 900}, Reviews: `"Great stay"`,
		},
		{Name: domain.NA, Source: domain.GoogleMaps, Address: domain.NA, Website: domain.NA, Phone: domain.NA, Reviews: domain.NA},
	}
	if err := s.Append(context.Background(), "b1", recs, at); err != nil {
		t.Fatalf("append: %v", err)
	}

	if len(body.Values) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(body.Values))
	}
	first := body.Values[0]
	want := []any{"The Leela Palace", "Booking", 4.5, float64(1200), "Adyar", "https://leela.com", "N/A", `{"5":900}`, `"Great stay"`, "2024-05-01 10:30:00"}
	if len(first) != len(want) {
		t.Fatalf("row width: got %d want %d", len(first), len(want))
	}
	for i := range want {
		if first[i] != want[i] {
			t.Fatalf("col %d: got %v want %v", i, first[i], want[i])
		}
	}
	if body.Values[1][2] != "N/A" || body.Values[1][7] != "{}" {
		t.Fatalf("unexpected defaults row: %v", body.Values[1])
	}
}

func TestSink_Append_EmptyIsNoop(t *testing.T) {
	var hits int32
	s := newSink(t, func(w http.ResponseWriter, r *http.Request) { atomic.AddInt32(&hits, 1) })
	if err := s.Append(context.Background(), "b1", nil, time.Now()); err != nil {
		t.Fatalf("append: %v", err)
	}
	if hits != 0 {
		t.Fatalf("expected no request, got %d", hits)
	}
}

func TestSink_Append_Error(t *testing.T) {
	s := newSink(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"denied"}}`))
	})
	err := s.Append(context.Background(), "b1", []domain.ReviewRecord{{Name: "x", Source: domain.TripAdvisor}}, time.Now())
	if err == nil || !strings.Contains(err.Error(), "b1") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestNew_RejectsBadCredentials(t *testing.T) {
	if _, err := sheets.New(context.Background(), "sheet-123", "AggregatedData", []byte("{not json")); err == nil {
		t.Fatalf("expected error for invalid JSON credentials")
	}
	if _, err := sheets.New(context.Background(), "sheet-123", "AggregatedData", nil); err == nil {
		t.Fatalf("expected error for missing credentials")
	}
}
