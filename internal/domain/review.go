package domain

import (
	"encoding/json"
	"time"
)

// NA marks a field the provider did not return.
const NA = "N/A"

// ReviewRecord is the provider-independent summary produced for one URL.
type ReviewRecord struct {
	URL                string           `json:"url"`
	Name               string           `json:"name"`
	Source             Source           `json:"source"`
	Rating             *float64         `json:"rating"`
	ReviewCount        *int64           `json:"count"`
	Address            string           `json:"address"`
	Website            string           `json:"website"`
	Phone              string           `json:"phone"`
	RatingDistribution map[string]int64 `json:"distribution"`
	ReviewSnippets     []string         `json:"review_snippets"`
	Reviews            string           `json:"reviews"`
}

// RowTimeLayout is the timestamp format written alongside each row.
const RowTimeLayout = "2006-01-02 15:04:05"

// Row flattens r into the column order of the aggregated-data worksheet:
// name, source, rating, count, address, website, phone, distribution,
// review snippets, written at. Rating and count stay numeric so the sheet
// stores number cells.
func (r ReviewRecord) Row(at time.Time) []any {
	var rating, count any = NA, NA
	if r.Rating != nil {
		rating = *r.Rating
	}
	if r.ReviewCount != nil {
		count = *r.ReviewCount
	}
	return []any{
		r.Name,
		r.Source.String(),
		rating,
		count,
		r.Address,
		r.Website,
		r.Phone,
		r.DistributionJSON(),
		r.Reviews,
		at.Format(RowTimeLayout),
	}
}

// DistributionJSON renders the star buckets as a JSON object ("{}" when empty).
func (r ReviewRecord) DistributionJSON() string {
	if len(r.RatingDistribution) == 0 {
		return "{}"
	}
	b, err := json.Marshal(r.RatingDistribution)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Batch is one request's worth of input URLs and the records they produced,
// in completion order.
type Batch struct {
	ID      string
	URLs    []string
	Records []ReviewRecord
}
