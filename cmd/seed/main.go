// Seed writes the market categories and imports HTML price lists into the catalog.
//
//	seed [-dry-run] pricelist.html...
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	avquote "github.com/set-night/avquote"
	"github.com/set-night/avquote/internal/config"
	"github.com/set-night/avquote/internal/domain"
	"github.com/set-night/avquote/internal/pricelist"
	"github.com/set-night/avquote/internal/repository"
	"github.com/set-night/avquote/internal/service"
)

var dryRun = flag.Bool("dry-run", false, "Parse price lists and report without writing")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-dry-run] pricelist.html...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	var pricelists []domain.Pricelist
	var products []domain.Product
	for _, path := range flag.Args() {
		res, err := parseFile(path)
		if err != nil {
			slog.Error("failed to parse price list", "path", path, "error", err)
			os.Exit(1)
		}
		for _, reason := range res.Skipped {
			slog.Warn("row skipped", "path", path, "reason", reason)
		}
		slog.Info("price list parsed", "path", path, "pricelists", len(res.Pricelists), "products", len(res.Products))
		pricelists = append(pricelists, res.Pricelists...)
		products = append(products, res.Products...)
	}

	if *dryRun {
		slog.Info("dry run, nothing written", "categories", len(domain.Categories), "pricelists", len(pricelists), "products", len(products))
		return
	}
	if cfg.StoreDriver == config.StoreDriverMemory {
		slog.Warn("memory store selected, the seeded catalog will not outlive this process")
	}

	ctx := context.Background()
	migrationsFS, err := fs.Sub(avquote.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	store, err := repository.Open(ctx, cfg, migrationsFS)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	catalog := service.NewCatalogService(store)
	if err := catalog.Import(ctx, domain.Categories, pricelists, products); err != nil {
		slog.Error("import failed", "error", err)
		os.Exit(1)
	}
	slog.Info("catalog seeded", "categories", len(domain.Categories), "pricelists", len(pricelists), "products", len(products))
}

func parseFile(path string) (*pricelist.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return pricelist.Parse(f)
}
