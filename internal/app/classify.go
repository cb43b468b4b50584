package app

import (
	"regexp"
	"strings"

	"review_aggregator/internal/domain"
)

// FallbackTerm is searched when no hotel name or place id can be read off a URL.
const FallbackTerm = "hotel"

// domain substrings per source; checked in domain.Sources order, first match wins.
var sourceMarkers = map[domain.Source][]string{
	domain.Booking:     {"booking.com"},
	domain.TripAdvisor: {"tripadvisor."},
	domain.GoogleMaps: {
		"google.com/maps",
		"google.com/travel",
		"maps.google.",
		"maps.app.goo.gl",
		"goo.gl/maps",
	},
}

// Classify maps a listing URL to the provider that hosts it.
func Classify(rawURL string) domain.Source {
	u := strings.ToLower(rawURL)
	for _, src := range domain.Sources {
		for _, m := range sourceMarkers[src] {
			if strings.Contains(u, m) {
				return src
			}
		}
	}
	return domain.Unknown
}

var (
	tripAdvisorName = regexp.MustCompile(`-Reviews-(.*?)-`)
	bookingSlug     = regexp.MustCompile(`/hotel/[A-Za-z]{2}/(.*?)\.html`)
	// Booking sometimes suffixes the slug with a language tag: foo.en-gb.html
	bookingLangTag = regexp.MustCompile(`\.[a-z]{2}(-[a-z]{2})?$`)

	googlePlaceIDs = []*regexp.Regexp{
		regexp.MustCompile(`ChIJ[A-Za-z0-9_-]{10,}`),
		regexp.MustCompile(`Ch[oksg][IQ][A-Za-z0-9_-]{10,}`),
		regexp.MustCompile(`0x[0-9a-fA-F]+:0x[0-9a-fA-F]+`),
	}
)

// ExtractQueryTerm derives the search term for a listing URL. Pattern misses
// are expected and fall back to FallbackTerm.
func ExtractQueryTerm(rawURL string) string {
	switch Classify(rawURL) {
	case domain.TripAdvisor:
		if m := tripAdvisorName.FindStringSubmatch(rawURL); m != nil {
			return nonEmpty(strings.ReplaceAll(m[1], "_", " "))
		}
	case domain.Booking:
		if m := bookingSlug.FindStringSubmatch(rawURL); m != nil {
			slug := bookingLangTag.ReplaceAllString(m[1], "")
			return nonEmpty(strings.ReplaceAll(slug, "-", " "))
		}
	case domain.GoogleMaps:
		for _, re := range googlePlaceIDs {
			if id := re.FindString(rawURL); id != "" {
				return id
			}
		}
	case domain.Unknown:
	}
	return FallbackTerm
}

func nonEmpty(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return FallbackTerm
	}
	return s
}
