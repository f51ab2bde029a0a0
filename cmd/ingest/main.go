package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/finarth/regdesk/internal/config"
	domain "github.com/finarth/regdesk/internal/domain/circulars"
	mysqlp "github.com/finarth/regdesk/internal/infra/db/mysql"
	postgresp "github.com/finarth/regdesk/internal/infra/db/postgres"
	"github.com/finarth/regdesk/internal/infra/storage"
	"github.com/finarth/regdesk/internal/ingest"
)

func main() {
	source := flag.String("source", "all", "which listing to ingest: rbi, sebi, or all")
	flag.Parse()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	db, repo, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("database connect error: %v", err)
	}
	defer db.Close()

	archive, err := storage.NewFromConfig(ctx, cfg.Archive)
	if err != nil {
		log.Fatalf("archive init error: %v", err)
	}

	in := ingest.New(repo, archive, nil)

	switch *source {
	case "rbi":
		run(ctx, in.RunRBI)
	case "sebi":
		run(ctx, in.RunSEBI)
	case "all":
		run(ctx, in.RunRBI)
		run(ctx, in.RunSEBI)
	default:
		log.Fatalf("unknown source %q", *source)
	}
}

func run(ctx context.Context, fn func(context.Context) (ingest.Stats, error)) {
	stats, err := fn(ctx)
	if err != nil {
		log.Printf("ingest run=%s failed: %v", stats.RunID, err)
		return
	}
	log.Printf("ingest run=%s done stored=%d archived=%d failed=%d",
		stats.RunID, stats.Stored, stats.Archived, stats.Failed)
}

func openRepository(ctx context.Context, cfg *config.Config) (*sql.DB, domain.Repository, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		return db, postgresp.NewCircularRepository(db), nil
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		return db, mysqlp.NewCircularRepository(db), nil
	}
	return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}
