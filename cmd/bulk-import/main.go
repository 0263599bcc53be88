// Command bulk-import reads product page URLs (one per line, file
// arguments or stdin), runs them through the extraction pipeline and
// imports the results into the catalog.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/dropflow/product-extractor/internal/config"
	"github.com/dropflow/product-extractor/internal/database"
	"github.com/dropflow/product-extractor/internal/events"
	"github.com/dropflow/product-extractor/internal/extractor"
	"github.com/dropflow/product-extractor/internal/fetch"
	"github.com/dropflow/product-extractor/internal/importer"
)

func main() {
	categoryID := flag.String("category", "", "catalog category id for imported products")
	supplierID := flag.String("supplier", "", "supplier id for imported products")
	margin := flag.Float64("margin", 0, "profit margin percent (overrides IMPORTER_DEFAULT_MARGIN_PERCENT)")
	autoPrice := flag.Bool("auto-price", true, "derive sell price from supplier price and margin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if *categoryID == "" || *supplierID == "" {
		logger.Error("both -category and -supplier are required")
		os.Exit(1)
	}

	marginPercent := cfg.Importer.DefaultMarginPercent
	if *margin > 0 {
		marginPercent = *margin
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	urls, err := readURLs(flag.Args())
	if err != nil {
		logger.Error("failed to read URLs", "error", err)
		os.Exit(1)
	}
	if len(urls) == 0 {
		logger.Error("no URLs to import")
		os.Exit(1)
	}

	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	fetcher := fetch.NewClient(cfg.Fetcher)
	service := extractor.NewService(fetcher, nil, extractor.Options{
		StripDiagnostics: true,
	})

	publisher := events.NewPublisher(redisClient, cfg.Redis.Stream)
	imp := importer.New(database.NewCatalogRepository(db), publisher)

	opts := importer.Options{
		CategoryID:          *categoryID,
		SupplierID:          *supplierID,
		ProfitMarginPercent: decimal.NewFromFloat(marginPercent),
		AutoCalculatePrice:  *autoPrice,
	}

	queue := importer.NewQueue(cfg.Importer.QueueMaxSize)
	bulk := importer.NewBulkImporter(queue, service, imp)

	for _, url := range urls {
		if _, err := bulk.Enqueue(url, opts, 0); err != nil {
			logger.Error("failed to enqueue URL", "url", url, "error", err)
		}
	}
	queue.Close()

	logger.Info("starting bulk import", "urls", len(urls), "workers", cfg.Importer.Workers)
	bulk.Run(ctx, cfg.Importer.Workers)
	logger.Info("bulk import finished")
}

func readURLs(paths []string) ([]string, error) {
	var readers []io.Reader
	if len(paths) == 0 {
		readers = append(readers, os.Stdin)
	}
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		readers = append(readers, f)
	}

	var urls []string
	scanner := bufio.NewScanner(io.MultiReader(readers...))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
