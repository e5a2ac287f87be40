// Command seed-menu loads the drink catalog into PostgreSQL. Without a file
// it seeds the built-in menu; with --menu-file it ingests a JSON catalog,
// transparently decompressing .gz files.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/tdhoang/teahouse/internal/domain/menu"
	"github.com/tdhoang/teahouse/internal/storage/postgres"
)

type menuItemJSON struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	BasePrice        decimal.Decimal `json:"basePrice"`
	HasCustomization bool            `json:"hasCustomization"`
}

func main() {
	var (
		databaseURL string
		menuFile    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&menuFile, "menu-file", "", "path to menu JSON file (.gz supported); empty seeds the built-in menu")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, menuFile); err != nil {
		slog.Error("Seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, databaseURL, menuFile string) error {
	items, err := loadItems(menuFile)
	if err != nil {
		return errors.Wrap(err, "load menu")
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	for _, it := range items {
		_, err := pool.Exec(ctx, `
			INSERT INTO menu_items (id, name, base_price, has_customization)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name,
			    base_price = EXCLUDED.base_price,
			    has_customization = EXCLUDED.has_customization
		`, it.ID, it.Name, it.BasePrice, it.HasCustomization)
		if err != nil {
			return errors.Wrapf(err, "upsert %s", it.ID)
		}
	}

	slog.Info("Menu seeded", "items", len(items))
	return nil
}

// loadItems reads the catalog from path, or returns the built-in menu when
// path is empty.
func loadItems(path string) ([]menu.Item, error) {
	if path == "" {
		return menu.Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "gzip reader")
		}
		defer gz.Close()
		r = gz
	}

	var raw []menuItemJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if len(raw) == 0 {
		return nil, errors.New("menu file contains no items")
	}

	items := make([]menu.Item, len(raw))
	for i, it := range raw {
		if it.ID == "" || it.Name == "" {
			return nil, errors.Errorf("item %d: id and name are required", i)
		}
		items[i] = menu.Item{
			ID:               it.ID,
			Name:             it.Name,
			BasePrice:        it.BasePrice,
			HasCustomization: it.HasCustomization,
		}
	}
	return items, nil
}
