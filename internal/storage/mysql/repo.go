package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"review_aggregator/internal/domain"
)

func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

// Repo mirrors persisted batches into the review_snapshots table.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Name() string { return "mysql" }

func (r *Repo) Append(ctx context.Context, batchID string, recs []domain.ReviewRecord, at time.Time) error {
	if len(recs) == 0 {
		return nil
	}
	values := make([]string, 0, len(recs))
	args := make([]any, 0, len(recs)*12) // 12 params per row
	for _, rv := range recs {
		values = append(values, insertSnapshotRow)
		args = append(args,
			batchID,
			rv.URL,
			rv.Source.String(),
			rv.Name,
			valF64(rv.Rating),
			valInt64(rv.ReviewCount),
			rv.Address,
			rv.Website,
			rv.Phone,
			rv.DistributionJSON(),
			rv.Reviews,
			at.UTC(),
		)
	}
	_, err := r.db.ExecContext(ctx, insertSnapshotsPrefix+strings.Join(values, ","), args...)
	return err
}

// ListBatch returns the records stored for batchID, or domain.ErrNotFound.
func (r *Repo) ListBatch(ctx context.Context, batchID string) ([]domain.ReviewRecord, error) {
	rows, err := r.db.QueryContext(ctx, listBatchSQL, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReviewRecord
	for rows.Next() {
		var rv domain.ReviewRecord
		var (
			source  string
			rating  sql.NullFloat64
			count   sql.NullInt64
			distRaw []byte
		)
		if err := rows.Scan(
			&rv.URL,
			&source,
			&rv.Name,
			&rating,
			&count,
			&rv.Address,
			&rv.Website,
			&rv.Phone,
			&distRaw,
			&rv.Reviews,
		); err != nil {
			return nil, err
		}
		_ = rv.Source.UnmarshalText([]byte(source))
		if rating.Valid {
			f := rating.Float64
			rv.Rating = &f
		}
		if count.Valid {
			n := count.Int64
			rv.ReviewCount = &n
		}
		rv.RatingDistribution = map[string]int64{}
		_ = json.Unmarshal(distRaw, &rv.RatingDistribution)
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}
