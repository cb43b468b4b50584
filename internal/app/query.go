package app

import (
	"strings"

	"review_aggregator/internal/domain"
)

// QueryBuilder turns an extracted term into a provider search request.
// Language, Region and City are deployment settings, not request input.
type QueryBuilder struct {
	Language string
	Region   string
	City     string
}

func (b QueryBuilder) Build(term string, src domain.Source) domain.SearchRequest {
	q := strings.TrimSpace(term)
	if q == "" {
		q = FallbackTerm
	}
	switch src {
	case domain.GoogleMaps:
		// place ids and precise names go through untouched
	case domain.Booking, domain.TripAdvisor, domain.Unknown:
		if b.City != "" {
			q = q + " " + b.City
		}
	}
	return domain.SearchRequest{
		Query:    q,
		Language: b.Language,
		Region:   b.Region,
		Source:   src,
	}
}
