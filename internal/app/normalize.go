package app

import (
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"review_aggregator/internal/domain"
)

// MaxSnippets caps how many review texts are carried into a record.
const MaxSnippets = 3

// SnippetSeparator joins quoted review snippets into the display string.
const SnippetSeparator = " | "

/********** alias registries (single source of truth) **********/

var placeAliases = map[string][]string{
	"name":    {"name", "title", "hotel_name"},
	"address": {"address", "formatted_address", "location.address", "full_address"},
	"website": {"website", "link", "url", "serpapi_property_details_link"},
	"phone":   {"phone", "phone_number", "formatted_phone_number"},
	"rating":  {"overall_rating", "rating", "rating.value", "score"},
	"count":   {"reviews", "reviews_count", "review_count", "user_ratings_total"},
	"dist":    {"ratings", "rating_summary", "rating_distribution", "reviews_per_rating"},
	"reviews": {
		"reviews_breakdown.user_reviews.reviews",
		"user_reviews.most_relevant",
		"user_reviews.summary",
		"user_reviews",
		"other_reviews",
		"reviews",
	},
}

var reviewTextAliases = []string{
	"snippet", "description", "comment", "text", "review",
	"user_review.comment", "user_review.snippet", "extracted_snippet.original",
}

var bucketKeyAliases = []string{"stars", "star", "rating", "score"}
var bucketCountAliases = []string{"count", "amount", "total", "reviews"}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstStr returns the first non-empty string for the given paths, or N/A.
func firstStr(m map[string]any, paths ...string) string {
	for _, p := range paths {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return domain.NA
}

// getFloatFlexible: number from several paths (float64/int/string like "4,5").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case int64:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstInt64Flexible: int64 from several paths (float64/int/string like "1,200").
func firstInt64Flexible(m map[string]any, paths ...string) *int64 {
	for _, k := range paths {
		if n := toInt64(lookupAny(m, k)); n != nil {
			return n
		}
	}
	return nil
}

// toInt64 reads one value as an int64; nil when it is not numeric.
func toInt64(v any) *int64 {
	switch v := v.(type) {
	case float64:
		x := int64(v)
		return &x
	case int:
		x := int64(v)
		return &x
	case int64:
		x := v
		return &x
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		if s == "" {
			return nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &n
		}
	}
	return nil
}

// firstMapSlice returns the first path holding a non-empty list of objects.
func firstMapSlice(m map[string]any, paths ...string) []map[string]any {
	for _, k := range paths {
		raw, ok := lookupAny(m, k).([]any)
		if !ok {
			continue
		}
		out := make([]map[string]any, 0, len(raw))
		for _, it := range raw {
			if obj, ok := it.(map[string]any); ok {
				out = append(out, obj)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

/********** normalizer **********/

// Normalize shapes one provider payload into a ReviewRecord. It reports false
// when the payload carries no place/property data at all.
func Normalize(raw map[string]any, src domain.Source) (domain.ReviewRecord, bool) {
	var place map[string]any
	switch src {
	case domain.GoogleMaps:
		place = googlePlace(raw)
	case domain.Booking, domain.TripAdvisor:
		place = hotelProperty(raw)
	case domain.Unknown:
		return domain.ReviewRecord{}, false
	}
	if place == nil {
		log.Warn().Str("source", src.String()).Msg("no results")
		return domain.ReviewRecord{}, false
	}

	rec := domain.ReviewRecord{
		Name:               firstStr(place, placeAliases["name"]...),
		Source:             src,
		Rating:             getFloatFlexible(place, placeAliases["rating"]...),
		ReviewCount:        firstInt64Flexible(place, placeAliases["count"]...),
		Address:            firstStr(place, placeAliases["address"]...),
		Website:            firstStr(place, placeAliases["website"]...),
		Phone:              firstStr(place, placeAliases["phone"]...),
		RatingDistribution: distribution(place),
	}

	// Review lists sit on the place for hotels and maps places, but on the
	// root for the maps reviews engine.
	reviews := firstMapSlice(place, placeAliases["reviews"]...)
	if reviews == nil {
		reviews = firstMapSlice(raw, placeAliases["reviews"]...)
	}
	if rec.Rating == nil && len(reviews) > 0 {
		avg, n := averageRating(reviews)
		rec.Rating = avg
		if rec.ReviewCount == nil {
			rec.ReviewCount = n
		}
	}
	rec.ReviewSnippets = snippets(reviews, MaxSnippets)
	rec.Reviews = JoinSnippets(rec.ReviewSnippets)
	return rec, true
}

// hotelProperty picks the first listed property, or the root when the
// provider matched a single property and returned its details inline.
func hotelProperty(raw map[string]any) map[string]any {
	if props := firstMapSlice(raw, "properties"); len(props) > 0 {
		return props[0]
	}
	if _, isList := raw["properties"].([]any); isList {
		return nil
	}
	for _, k := range []string{"name", "overall_rating"} {
		if lookupAny(raw, k) != nil {
			return raw
		}
	}
	if firstInt64Flexible(raw, "reviews") != nil {
		return raw
	}
	return nil
}

func googlePlace(raw map[string]any) map[string]any {
	for _, k := range []string{"place_results", "place_info"} {
		if p, ok := raw[k].(map[string]any); ok && len(p) > 0 {
			return p
		}
	}
	if locals := firstMapSlice(raw, "local_results"); len(locals) > 0 {
		return locals[0]
	}
	return nil
}

// distribution reads star buckets from either a list of {stars,count}
// objects or a flat {"5": n} object. Never nil.
func distribution(place map[string]any) map[string]int64 {
	out := map[string]int64{}
	for _, path := range placeAliases["dist"] {
		switch v := lookupAny(place, path).(type) {
		case []any:
			for _, it := range v {
				b, ok := it.(map[string]any)
				if !ok {
					continue
				}
				star := getFloatFlexible(b, bucketKeyAliases...)
				n := firstInt64Flexible(b, bucketCountAliases...)
				if star == nil || n == nil {
					continue
				}
				out[strconv.FormatFloat(*star, 'f', -1, 64)] = *n
			}
		case map[string]any:
			// keys such as "4.5" are bucket labels, not paths
			for k, raw := range v {
				if n := toInt64(raw); n != nil {
					out[k] = *n
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return out
}

// averageRating derives rating/count from individual reviews when the place
// carries no aggregate score.
func averageRating(reviews []map[string]any) (*float64, *int64) {
	var sum float64
	var n int64
	for _, r := range reviews {
		if f := getFloatFlexible(r, "rating"); f != nil {
			sum += *f
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	avg := math.Round(sum/float64(n)*100) / 100
	return &avg, &n
}

// snippets collects up to limit review texts in list order. Entries without
// text (rating-only reviews) are skipped, so later entries can fill the slots.
func snippets(reviews []map[string]any, limit int) []string {
	out := make([]string, 0, limit)
	for _, r := range reviews {
		if len(out) == limit {
			break
		}
		if t := firstStr(r, reviewTextAliases...); t != domain.NA {
			out = append(out, t)
		}
	}
	return out
}

// JoinSnippets quotes each snippet and joins them for display, or returns N/A.
func JoinSnippets(in []string) string {
	if len(in) == 0 {
		return domain.NA
	}
	if len(in) > MaxSnippets {
		in = in[:MaxSnippets]
	}
	quoted := make([]string, len(in))
	for i, s := range in {
		quoted[i] = strconv.Quote(s)
	}
	return strings.Join(quoted, SnippetSeparator)
}
