// Package wiring builds the pipeline's collaborators from configuration.
// Both binaries share it so the API and the CLI behave identically.
package wiring

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	redisad "review_aggregator/internal/adapters/redis"
	"review_aggregator/internal/adapters/serpapi"
	"review_aggregator/internal/adapters/sheets"
	"review_aggregator/internal/app"
	"review_aggregator/internal/domain"
	"review_aggregator/internal/shared"
	mysqlrepo "review_aggregator/internal/storage/mysql"
)

// Deps holds everything a binary needs plus the resources to release on exit.
type Deps struct {
	Aggregator *app.Aggregator
	Persister  *app.Persister
	Snapshots  *mysqlrepo.Repo // nil unless MYSQL_DSN is set

	closers []func() error
}

// Build wires provider, cache and sinks. Optional collaborators that fail to
// initialize are logged and left out; only a broken database DSN is fatal.
func Build(ctx context.Context, cfg shared.Config) (*Deps, error) {
	d := &Deps{}

	var provider domain.SearchProvider
	if client, err := serpapi.New(cfg.SerpAPIBase, cfg.SerpAPIKey, cfg.SerpAPIRPS, cfg.SerpAPIRetries); err != nil {
		log.Warn().Err(err).Msg("search provider disabled")
	} else {
		provider = client
		if cfg.RedisAddr != "" {
			cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
			if err := cache.Ping(ctx); err != nil {
				log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; provider cache disabled")
				_ = cache.Close()
			} else {
				provider = app.NewCachedProvider(client, cache, cfg.CacheTTL)
				d.closers = append(d.closers, cache.Close)
				log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("provider cache enabled")
			}
		}
	}

	builder := app.QueryBuilder{Language: cfg.Language, Region: cfg.Region, City: cfg.CityQualifier}
	d.Aggregator = app.NewAggregator(provider, builder, cfg.FetchWorkers)

	var sinks []domain.RecordSink
	if cfg.SheetID != "" && cfg.GoogleCredsJSON != "" {
		s, err := sheets.New(ctx, cfg.SheetID, cfg.SheetWorksheet, []byte(cfg.GoogleCredsJSON))
		if err != nil {
			log.Error().Err(err).Msg("sheets sink disabled")
		} else {
			sinks = append(sinks, s)
		}
	}
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Msg("database connection ok")
		d.Snapshots = mysqlrepo.New(db)
		sinks = append(sinks, d.Snapshots)
		d.closers = append(d.closers, db.Close)
	}
	if len(sinks) == 0 {
		log.Warn().Msg("no record sinks configured; results will not be persisted")
	}
	d.Persister = app.NewPersister(sinks, cfg.PersistQueue, cfg.PersistTimeout)
	return d, nil
}

// Close drains pending persistence, then releases connections.
func (d *Deps) Close(ctx context.Context) error {
	errs := []error{d.Persister.Close(ctx)}
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i]())
	}
	return errors.Join(errs...)
}
