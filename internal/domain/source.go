package domain

import (
	"fmt"
	"strings"
)

// Source identifies which review provider a listing URL belongs to.
type Source int

const (
	Unknown Source = iota
	Booking
	TripAdvisor
	GoogleMaps
)

// Sources lists every recognized provider, in classification order.
var Sources = []Source{Booking, TripAdvisor, GoogleMaps}

func (s Source) String() string {
	switch s {
	case Booking:
		return "Booking"
	case TripAdvisor:
		return "TripAdvisor"
	case GoogleMaps:
		return "GoogleMaps"
	default:
		return "Unknown"
	}
}

// Known reports whether s is a provider the pipeline can fetch for.
func (s Source) Known() bool {
	switch s {
	case Booking, TripAdvisor, GoogleMaps:
		return true
	default:
		return false
	}
}

func (s Source) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Source) UnmarshalText(b []byte) error {
	v := strings.TrimSpace(string(b))
	for _, c := range append([]Source{Unknown}, Sources...) {
		if strings.EqualFold(v, c.String()) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown source %q", v)
}
