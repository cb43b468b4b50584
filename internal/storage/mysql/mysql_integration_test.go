//go:build integration

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"review_aggregator/internal/domain"
	mysqlrepo "review_aggregator/internal/storage/mysql"
)

// ---------- small helpers ----------
func pfloat(f float64) *float64 { return &f }
func pint64(i int64) *int64     { return &i }

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// ---------- the test ----------
func TestRepo_MySQL_AppendAndListBatch(t *testing.T) {
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=reviews",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "reviews")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	recs := []domain.ReviewRecord{
		{
			URL: "https://www.booking.com/hotel/in/the-leela-palace-chennai.html", Name: "The Leela Palace",
			Source: domain.Booking, Rating: pfloat(4.5), ReviewCount: pint64(1200),
			Address: "Adyar Seaface", Website: "https://leela.com", Phone: domain.NA,
			RatingDistribution: map[string]int64{"5": 900, "4": 200}, Reviews: `"Lovely"`,
		},
		{
			URL: "https://maps.google.com/?cid=1", Name: domain.NA, Source: domain.GoogleMaps,
			Address: domain.NA, Website: domain.NA, Phone: domain.NA,
			RatingDistribution: map[string]int64{}, Reviews: domain.NA,
		},
	}
	if err := repo.Append(ctx, "batch-1", recs, time.Now()); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := repo.ListBatch(ctx, "batch-1")
	if err != nil {
		t.Fatalf("ListBatch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Source != domain.Booking || got[0].Rating == nil || *got[0].Rating != 4.5 ||
		got[0].ReviewCount == nil || *got[0].ReviewCount != 1200 || got[0].RatingDistribution["5"] != 900 {
		t.Fatalf("unexpected first row: %+v", got[0])
	}
	if got[1].Rating != nil || got[1].ReviewCount != nil || got[1].Source != domain.GoogleMaps {
		t.Fatalf("unexpected second row: %+v", got[1])
	}

	if _, err := repo.ListBatch(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
