// Package sheets appends review records to a Google Sheets worksheet.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"review_aggregator/internal/adapters/observability"
	"review_aggregator/internal/domain"
)

type Sink struct {
	svc           *gsheets.Service
	spreadsheetID string
	worksheet     string
}

// New authenticates with a service-account credential blob.
func New(ctx context.Context, spreadsheetID, worksheet string, credentialsJSON []byte) (*Sink, error) {
	if len(credentialsJSON) == 0 {
		return nil, errors.New("sheets: credentials are required")
	}
	if !json.Valid(credentialsJSON) {
		return nil, errors.New("sheets: credentials are not valid JSON")
	}
	return NewWithOptions(ctx, spreadsheetID, worksheet,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
}

func NewWithOptions(ctx context.Context, spreadsheetID, worksheet string, opts ...option.ClientOption) (*Sink, error) {
	if spreadsheetID == "" {
		return nil, errors.New("sheets: spreadsheet id is required")
	}
	if worksheet == "" {
		worksheet = "AggregatedData"
	}
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: new service: %w", err)
	}
	return &Sink{svc: svc, spreadsheetID: spreadsheetID, worksheet: worksheet}, nil
}

func (s *Sink) Name() string { return "sheets" }

// Append writes one row per record as literal values below the last used row.
func (s *Sink) Append(ctx context.Context, batchID string, recs []domain.ReviewRecord, at time.Time) error {
	if len(recs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, r.Row(at))
	}

	start := time.Now()
	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, s.worksheet+"!A1", &gsheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	observability.ObserveExternal("sheets", "values.append", statusOf(err), time.Since(start))
	if err != nil {
		return fmt.Errorf("sheets: append %d rows for batch %s: %w", len(rows), batchID, err)
	}
	return nil
}

func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}
