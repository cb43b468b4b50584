package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"review_aggregator/internal/adapters/observability"
	"review_aggregator/internal/shared"
	"review_aggregator/internal/wiring"
)

func main() {
	file := flag.String("file", "", "read listing URLs from this file, one per line ('-' for stdin)")
	workers := flag.Int("workers", 0, "max concurrent fetches (0 = FETCH_WORKERS)")
	noPersist := flag.Bool("no-persist", false, "print results without writing them to the sinks")
	flag.Parse()

	cfg := shared.Load()
	if *workers > 0 {
		cfg.FetchWorkers = *workers
	}

	// logs go to stderr so stdout stays pure JSON
	log.Logger = observability.NewLoggerTo(os.Stderr, cfg.AppEnv, cfg.LogLevel)

	urls := flag.Args()
	if *file != "" {
		more, err := readURLs(*file)
		if err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("read urls failed")
		}
		urls = append(urls, more...)
	}
	if len(urls) == 0 {
		log.Fatal().Msg("no urls given; pass them as arguments or with -file")
	}

	ctx := context.Background()
	deps, err := wiring.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("dependency setup failed")
	}

	log.Info().Int("urls", len(urls)).Int("workers", cfg.FetchWorkers).Msg("aggregation starting")
	batch, err := deps.Aggregator.Run(ctx, urls)
	if err != nil {
		log.Fatal().Err(err).Msg("aggregation failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{"batch": batch.ID, "data": batch.Records}); err != nil {
		log.Error().Err(err).Msg("write results failed")
	}

	if !*noPersist {
		deps.Persister.Persist(batch)
	}
	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.PersistTimeout+5*time.Second)
	defer cancel()
	if err := deps.Close(closeCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	log.Info().Str("batch", batch.ID).Int("records", len(batch.Records)).Msg("aggregation completed")
}

func readURLs(path string) ([]string, error) {
	f := os.Stdin
	if path != "-" {
		var err error
		if f, err = os.Open(path); err != nil {
			return nil, err
		}
		defer f.Close()
	}
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}
