package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"review_aggregator/internal/app"
	"review_aggregator/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		url  string
		want domain.Source
	}{
		{"https://www.booking.com/hotel/in/the-leela-palace-chennai.html", domain.Booking},
		{"https://WWW.BOOKING.COM/hotel/in/x.html", domain.Booking},
		{"https://www.tripadvisor.com/Hotel_Review-g304556-d3240217-Reviews-The_Leela_Palace_Chennai-Chennai.html", domain.TripAdvisor},
		{"https://www.tripadvisor.in/Hotel_Review-g1-d2-Reviews-X-Y.html", domain.TripAdvisor},
		{"https://www.google.com/travel/hotels/entity/ChoQ_4-c8M_E94f8ARoNL2cvMTFjNV9za21qcBAE/reviews", domain.GoogleMaps},
		{"https://www.google.com/maps/place/?q=place_id:ChIJN1t_tDeuEmsRUsoyG83frY4", domain.GoogleMaps},
		{"https://maps.google.com/?cid=123", domain.GoogleMaps},
		{"https://maps.app.goo.gl/abc123", domain.GoogleMaps},
		// booking is checked first, so a redirect through google stays Booking
		{"https://www.google.com/url?q=https://www.booking.com/hotel/in/x.html", domain.Booking},
		{"https://www.expedia.com/Chennai-Hotels-The-Leela.h123.Hotel-Information", domain.Unknown},
		{"https://www.google.com/search?q=leela", domain.Unknown},
		{"", domain.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, app.Classify(tt.url))
		})
	}
}

func TestExtractQueryTerm(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"tripadvisor name", "https://www.tripadvisor.com/Hotel_Review-g304556-d3240217-Reviews-The_Leela_Palace_Chennai-Chennai.html", "The Leela Palace Chennai"},
		{"tripadvisor miss", "https://www.tripadvisor.com/Hotels-g304556-Chennai-Hotels.html", app.FallbackTerm},
		{"booking slug", "https://www.booking.com/hotel/in/the-leela-palace-chennai.html", "the leela palace chennai"},
		{"booking lang suffix", "https://www.booking.com/hotel/in/taj-coromandel.en-gb.html?aid=1", "taj coromandel"},
		{"booking miss", "https://www.booking.com/searchresults.html?ss=Chennai", app.FallbackTerm},
		{"google travel entity", "https://www.google.com/travel/hotels/entity/ChoQ_4-c8M_E94f8ARoNL2cvMTFjNV9za21qcBAE/reviews", "ChoQ_4-c8M_E94f8ARoNL2cvMTFjNV9za21qcBAE"},
		{"google place id", "https://www.google.com/maps/place/?q=place_id:ChIJN1t_tDeuEmsRUsoyG83frY4", "ChIJN1t_tDeuEmsRUsoyG83frY4"},
		{"google feature id", "https://www.google.com/maps/place/Leela/@13.0,80.2,17z/data=!4m9!3m8!1s0x3a5267f4b1c9f8c1:0x6b8d5f0e2b6e3f0a!8m2", "0x3a5267f4b1c9f8c1:0x6b8d5f0e2b6e3f0a"},
		{"google miss", "https://www.google.com/maps/place/The+Leela+Palace+Chennai/", app.FallbackTerm},
		{"unknown", "https://www.expedia.com/h123.Hotel-Information", app.FallbackTerm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, app.ExtractQueryTerm(tt.url))
		})
	}
}

func TestQueryBuilder_Build(t *testing.T) {
	b := app.QueryBuilder{Language: "en", Region: "in", City: "Chennai"}

	req := b.Build("the leela palace chennai", domain.Booking)
	assert.Equal(t, domain.SearchRequest{Query: "the leela palace chennai Chennai", Language: "en", Region: "in", Source: domain.Booking}, req)

	req = b.Build("The Leela Palace Chennai", domain.TripAdvisor)
	assert.Equal(t, "The Leela Palace Chennai Chennai", req.Query)

	req = b.Build("ChIJN1t_tDeuEmsRUsoyG83frY4", domain.GoogleMaps)
	assert.Equal(t, "ChIJN1t_tDeuEmsRUsoyG83frY4", req.Query)
	assert.Equal(t, domain.GoogleMaps, req.Source)

	req = b.Build("  ", domain.GoogleMaps)
	assert.Equal(t, app.FallbackTerm, req.Query)

	noCity := app.QueryBuilder{Language: "en", Region: "in"}
	assert.Equal(t, "hotel", noCity.Build("hotel", domain.Booking).Query)
}
