package domain

import (
	"testing"
	"time"
)

func TestRow_NumericCells(t *testing.T) {
	rating, count := 4.5, int64(1200)
	at := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	row := ReviewRecord{
		Name: "Leela", Source: Booking, Rating: &rating, ReviewCount: &count,
		Address: NA, Website: NA, Phone: NA, Reviews: NA,
	}.Row(at)

	if len(row) != 10 {
		t.Fatalf("row width: got %d want 10", len(row))
	}
	if v, ok := row[2].(float64); !ok || v != 4.5 {
		t.Fatalf("rating cell: got %T %v", row[2], row[2])
	}
	if v, ok := row[3].(int64); !ok || v != 1200 {
		t.Fatalf("count cell: got %T %v", row[3], row[3])
	}
	if row[9] != "2024-05-01 10:30:00" {
		t.Fatalf("timestamp cell: %v", row[9])
	}
}

func TestRow_MissingNumbersAreNA(t *testing.T) {
	row := ReviewRecord{Name: "Leela", Source: GoogleMaps}.Row(time.Now())
	if row[2] != NA || row[3] != NA {
		t.Fatalf("expected N/A cells, got %v %v", row[2], row[3])
	}
	if row[7] != "{}" {
		t.Fatalf("distribution cell: %v", row[7])
	}
}
